package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// ServerURL is the base URL of the document-store server.
	ServerURL string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
}

// ClientStorage holds the client's durable store settings.
type ClientStorage struct {
	// Path is the SQLite file location; empty resolves to a file next
	// to the executable.
	Path string
}

// ClientSession holds the credentials the client signs in with.
type ClientSession struct {
	Email    string
	Password string
}

// ClientJobs holds background job settings.
type ClientJobs struct {
	// VerifyInterval enables periodic count verification when non-zero.
	VerifyInterval time.Duration
}

// ClientConfig is the client-specific view over [StructuredConfig].
type ClientConfig struct {
	// Adapter contains transport address and timeout.
	Adapter ClientAdapter
	// Storage contains the local store settings.
	Storage ClientStorage
	// Session contains sign-in credentials.
	Session ClientSession
	// Jobs contains background job settings.
	Jobs ClientJobs
	// ExportDir is where manual exports are written.
	ExportDir string
	// LogLevel is the zerolog level string.
	LogLevel string
	// Version is the build version shown in the console footer.
	Version string
}

// GetClientConfig builds and validates the client view of the merged
// structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			ServerURL:      cfg.Client.ServerURL,
			RequestTimeout: cfg.Client.RequestTimeout,
		},
		Storage: ClientStorage{
			Path: cfg.Storage.Local.Path,
		},
		Session: ClientSession{
			Email:    cfg.Client.Email,
			Password: cfg.Client.Password,
		},
		Jobs: ClientJobs{
			VerifyInterval: cfg.Client.VerifyInterval,
		},
		ExportDir: cfg.Client.ExportDir,
		LogLevel:  cfg.App.LogLevel,
		Version:   cfg.App.Version,
	}

	if clientCfg.Adapter.RequestTimeout == 0 {
		clientCfg.Adapter.RequestTimeout = 30 * time.Second
	}
	if clientCfg.ExportDir == "" {
		clientCfg.ExportDir = "."
	}

	return clientCfg, clientCfg.validate()
}
