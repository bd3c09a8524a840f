// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package config

// validate checks that the client view satisfies all invariants the
// client runtime depends on at startup.
func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.ServerURL == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Session.Email == "" || cfg.Session.Password == "" {
		return ErrInvalidSessionConfigs
	}

	return nil
}

// validate checks that the server view satisfies all invariants the
// server runtime depends on at startup.
func (cfg *ServerConfig) validate() error {
	if cfg.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" {
		return ErrInvalidAuthConfigs
	}

	return nil
}
