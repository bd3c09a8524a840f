package config

import "errors"

// Validation errors returned by the config views when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client transport
	// settings (for example, a missing server URL).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidSessionConfigs indicates missing sign-in credentials.
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAuthConfigs indicates missing token parameters
	// (for example, an empty sign key).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
)
