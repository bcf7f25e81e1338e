package caldav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appconfig "remotework.service/internal/config"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(appconfig.Config{
		CalDAVEnabled:  true,
		CalDAVURL:      "https://dav.example.com/calendars/{username}/remote-work/",
		CalDAVUsername: "svc-calendar",
		CalDAVPassword: "secret",
	})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "https://dav.example.com/calendars/{username}/remote-work/", cfg.BaseURL)
	assert.Equal(t, "svc-calendar", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
}

func TestConfigDomain(t *testing.T) {
	t.Run("extracts the host from the base url", func(t *testing.T) {
		cfg := Config{BaseURL: "https://dav.example.com/calendars/jdoe/"}
		assert.Equal(t, "dav.example.com", cfg.Domain())
	})

	t.Run("strips the port", func(t *testing.T) {
		cfg := Config{BaseURL: "http://localhost:8081/dav/"}
		assert.Equal(t, "localhost", cfg.Domain())
	})

	t.Run("falls back on empty url", func(t *testing.T) {
		cfg := Config{}
		assert.Equal(t, "remotework.local", cfg.Domain())
	})

	t.Run("falls back on url without host", func(t *testing.T) {
		cfg := Config{BaseURL: "/calendars/jdoe/"}
		assert.Equal(t, "remotework.local", cfg.Domain())
	})
}
