package service

import "time"

// Clock abstracts wall time for the quota gate, the sync client, and the
// backup service, so cooldown and stamping behavior is testable without
// sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the production clock backed by [time.Now].
func SystemClock() Clock { return systemClock{} }
