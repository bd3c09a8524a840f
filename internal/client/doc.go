// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

// Package client wires the sync engine, the local store, and the
// terminal console into the Basket Buddy client process lifecycle.
package client
