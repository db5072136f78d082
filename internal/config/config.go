package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix               = "CARRIER"
	defaultHTTPAddress      = "0.0.0.0:3005"
	defaultDatabasePath     = "carrier.db"
	defaultLogLevel         = "info"
	defaultRateLimitWindow  = time.Minute
	defaultRateLimitMax     = 120
	defaultAllowedOrigins   = "*"
	defaultSocketPath       = "/ws"
	defaultSessionOutboxCap = 64
)

// AppConfig captures runtime configuration for the messaging server.
type AppConfig struct {
	HTTPAddress      string
	DatabasePath     string
	MasterSecret     string
	LogLevel         string
	AllowedOrigins   []string
	SocketPath       string
	RateLimitWindow  time.Duration
	RateLimitMax     int
	SessionOutboxCap int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("cors.allowed_origins", defaultAllowedOrigins)
	configViper.SetDefault("socket.path", defaultSocketPath)
	configViper.SetDefault("socket.outbox_capacity", defaultSessionOutboxCap)
	configViper.SetDefault("ratelimit.window", defaultRateLimitWindow)
	configViper.SetDefault("ratelimit.max", defaultRateLimitMax)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:      configViper.GetString("http.address"),
		DatabasePath:     configViper.GetString("database.path"),
		MasterSecret:     configViper.GetString("auth.master_secret"),
		LogLevel:         configViper.GetString("log.level"),
		AllowedOrigins:   strings.Split(configViper.GetString("cors.allowed_origins"), ","),
		SocketPath:       configViper.GetString("socket.path"),
		RateLimitWindow:  configViper.GetDuration("ratelimit.window"),
		RateLimitMax:     configViper.GetInt("ratelimit.max"),
		SessionOutboxCap: configViper.GetInt("socket.outbox_capacity"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.MasterSecret) == "" {
		return fmt.Errorf("auth.master_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("ratelimit.max must be positive")
	}
	if c.SessionOutboxCap <= 0 {
		return fmt.Errorf("socket.outbox_capacity must be positive")
	}
	return nil
}
