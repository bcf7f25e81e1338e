package config

import (
	"github.com/spf13/viper"
)

// All settings come from environment variables so the service can run
// unchanged in a pod or in docker-compose; only the defaults differ.

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	IsLocalDev bool   `mapstructure:"IS_LOCAL_DEV"`

	AWSRegion       string `mapstructure:"AWS_REGION"`
	AWSEndpoint     string `mapstructure:"AWS_ENDPOINT"`
	SyncSQSQueueURL string `mapstructure:"SYNC_SQS_QUEUE_URL"`
	MailSQSQueueURL string `mapstructure:"MAIL_SQS_QUEUE_URL"`
	ApproverEmail   string `mapstructure:"APPROVER_EMAIL"`

	// ApprovalRequired decides whether new entries start in status "new"
	// and wait for an approver, or are auto-approved on creation.
	ApprovalRequired bool `mapstructure:"APPROVAL_REQUIRED"`

	// CalDAVURL may contain a {username} placeholder which is replaced
	// with the entry owner's username when building event URLs.
	CalDAVEnabled  bool   `mapstructure:"CALDAV_ENABLED"`
	CalDAVURL      string `mapstructure:"CALDAV_URL"`
	CalDAVUsername string `mapstructure:"CALDAV_USERNAME"`
	CalDAVPassword string `mapstructure:"CALDAV_PASSWORD"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "remotework_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("IS_LOCAL_DEV", false)
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("SYNC_SQS_QUEUE_URL", "http://localstack:4566/000000000000/calendar-sync-queue")
	viper.SetDefault("MAIL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/approval-mail-queue")
	viper.SetDefault("APPROVER_EMAIL", "approver@remotework.local")
	viper.SetDefault("APPROVAL_REQUIRED", true)
	viper.SetDefault("CALDAV_ENABLED", false)
	viper.SetDefault("CALDAV_URL", "")
	viper.SetDefault("CALDAV_USERNAME", "")
	viper.SetDefault("CALDAV_PASSWORD", "")

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
