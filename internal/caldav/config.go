package caldav

import (
	"net/url"

	appconfig "remotework.service/internal/config"
)

// defaultDomain is used for UID generation when no usable host can be
// parsed out of the configured base URL.
const defaultDomain = "remotework.local"

// Config is the sync-relevant slice of the application configuration.
type Config struct {
	Enabled  bool
	BaseURL  string
	Username string
	Password string
}

// NewConfig extracts the CalDAV settings from the application config.
func NewConfig(cfg appconfig.Config) Config {
	return Config{
		Enabled:  cfg.CalDAVEnabled,
		BaseURL:  cfg.CalDAVURL,
		Username: cfg.CalDAVUsername,
		Password: cfg.CalDAVPassword,
	}
}

// Domain returns the host of the configured base URL, used as the UID
// domain. Falls back to a fixed default when the URL is empty or broken.
func (c Config) Domain() string {
	if c.BaseURL == "" {
		return defaultDomain
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Host == "" {
		return defaultDomain
	}

	return parsed.Hostname()
}
