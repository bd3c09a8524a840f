// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package client

// Client is the lifecycle contract of a runnable client application.
type Client interface {
	// Run starts the client and blocks until the user quits or a fatal
	// error occurs.
	Run() error
}
