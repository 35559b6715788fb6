package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("BACKEND_BASE_URL", "http://backend.local/api/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.local/api", cfg.Backend.BaseURL)
	assert.Equal(t, DriverMemory, cfg.Session.Driver)
	assert.Equal(t, 3*time.Second, cfg.Support.PollInterval)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadRejectsPostgresDriverWithoutDSN(t *testing.T) {
	t.Setenv("SESSION_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{name: "empty", val: "", want: time.Second},
		{name: "millis", val: "1500", want: 1500 * time.Millisecond},
		{name: "duration", val: "2m", want: 2 * time.Minute},
		{name: "garbage", val: "soon", want: time.Second},
		{name: "negative", val: "-5", want: time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.val)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION", time.Second))
		})
	}
}
