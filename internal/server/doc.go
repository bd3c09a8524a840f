// Package server wires and runs the application's transport servers.
//
// It orchestrates the HTTP server lifecycle: startup, stop-signal
// handling and graceful shutdown.
package server
