// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package http

import "errors"

// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
// incoming request carries no "Authorization" header at all. Malformed
// headers are reported by [utils.ParseBearerToken] instead.
var ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")
