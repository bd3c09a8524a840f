// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package tui

import (
	"errors"
	"strings"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/service"
)

// ErrUserQuit reports that the user left the sign-in flow without
// completing it.
var ErrUserQuit = errors.New("user quit")

// actionErrorMessage turns engine errors into the short messages shown on
// the console status line.
func actionErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrSyncInFlight):
		return "a sync is already running"
	case errors.Is(err, service.ErrQuotaExhausted):
		return "write quota exhausted, cooling down"
	case errors.Is(err, service.ErrNetworkFailure):
		return "no network, or the server is unreachable"
	case errors.Is(err, service.ErrPermissionDenied):
		return "the server rejected the request, check credentials"
	case errors.Is(err, service.ErrBackupMissing):
		return "no backup snapshot exists yet"
	case errors.Is(err, service.ErrParseFailure):
		return "the file is not a valid export"
	case errors.Is(err, service.ErrLoadFailure):
		return "initial load failed, automatic sync is blocked"
	case errors.Is(err, service.ErrNotSignedIn):
		return "not signed in"
	}
	return humanizeTransportError(err)
}

// humanizeTransportError keeps raw dial and timeout noise off the screen
// for errors that bypassed the adapter translation.
func humanizeTransportError(err error) string {
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "no network, or the server is unreachable"
	}
	return err.Error()
}
