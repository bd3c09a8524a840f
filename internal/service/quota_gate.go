// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package service

import (
	"sync/atomic"
	"time"
)

// quotaCooldown is how long the gate blocks remote writes after a
// detected quota exhaustion. The gate is time-based, not operation-based:
// the transport offers no reliable "quota restored" signal, so only
// deadline expiry reopens it.
const quotaCooldown = 10 * time.Minute

// QuotaGate records a cooldown deadline once a remote write is rejected
// for exceeding quota. One gate is constructed per session and shared by
// reference between the sync scheduler and the remote sync client. Reads
// vastly outnumber writes, so the deadline is a single atomically
// replaced timestamp instead of a lock.
type QuotaGate struct {
	clock    Clock
	deadline atomic.Int64 // unix nanoseconds; zero means no cooldown
}

// NewQuotaGate returns an open gate that consults clock on every check.
func NewQuotaGate(clock Clock) *QuotaGate {
	return &QuotaGate{clock: clock}
}

// MarkExhausted starts (or restarts) the cooldown from now.
func (g *QuotaGate) MarkExhausted() {
	g.deadline.Store(g.clock.Now().Add(quotaCooldown).UnixNano())
}

// IsExhausted reports whether the cooldown deadline is still ahead.
func (g *QuotaGate) IsExhausted() bool {
	return g.clock.Now().UnixNano() < g.deadline.Load()
}

// Deadline returns the current cooldown deadline, or the zero time when
// the gate has never been engaged.
func (g *QuotaGate) Deadline() time.Time {
	ns := g.deadline.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
