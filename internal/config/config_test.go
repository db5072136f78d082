package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := NewViper()
	v.Set("auth.master_secret", "secret")

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:3005", cfg.HTTPAddress)
	require.Equal(t, "carrier.db", cfg.DatabasePath)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "/ws", cfg.SocketPath)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.Equal(t, 64, cfg.SessionOutboxCap)
}

func TestLoadRequiresMasterSecret(t *testing.T) {
	v := NewViper()

	_, err := Load(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "master_secret")
}

func TestLoadRejectsNonPositiveOutbox(t *testing.T) {
	v := NewViper()
	v.Set("auth.master_secret", "secret")
	v.Set("socket.outbox_capacity", 0)

	_, err := Load(v)
	require.Error(t, err)
}
