package config

import (
	"fmt"
	"time"
)

// ServerConfig is the server-specific view over [StructuredConfig].
type ServerConfig struct {
	// HTTPAddress is the listen address in "host:port" form.
	HTTPAddress string
	// RequestTimeout bounds every inbound request.
	RequestTimeout time.Duration
	// DB carries the Postgres connection settings.
	DB DB
	// App carries the token signing parameters, the log level and the
	// build version.
	App App
}

// GetServerConfig builds and validates the server view of the merged
// structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newServerConfig(cfg)
}

func newServerConfig(cfg *StructuredConfig) (*ServerConfig, error) {
	serverCfg := &ServerConfig{
		HTTPAddress:    cfg.Server.HTTPAddress,
		RequestTimeout: cfg.Server.RequestTimeout,
		DB:             cfg.Storage.DB,
		App:            cfg.App,
	}

	if serverCfg.HTTPAddress == "" {
		serverCfg.HTTPAddress = "localhost:8080"
	}
	if serverCfg.RequestTimeout == 0 {
		serverCfg.RequestTimeout = 60 * time.Second
	}
	if serverCfg.App.TokenIssuer == "" {
		serverCfg.App.TokenIssuer = "basket-buddy"
	}
	if serverCfg.App.TokenDuration == 0 {
		serverCfg.App.TokenDuration = 24 * time.Hour
	}
	if serverCfg.App.Version == "" {
		serverCfg.App.Version = "dev"
	}

	return serverCfg, serverCfg.validate()
}
