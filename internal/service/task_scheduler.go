package service

import "time"

// TaskHandle is one scheduled task. Cancel is safe to call more than once
// and after the task has fired; it reports whether the call prevented the
// task from running.
type TaskHandle interface {
	Cancel() bool
}

// TaskScheduler runs a function once after a delay. There is no reset
// primitive: a debounce restart is an explicit cancel-then-reschedule by
// the caller.
type TaskScheduler interface {
	Schedule(after time.Duration, fn func()) TaskHandle
}

type timerScheduler struct{}

// NewTimerScheduler returns the production TaskScheduler backed by
// [time.AfterFunc]. The scheduled function runs on its own goroutine and
// may block without holding anything else up.
func NewTimerScheduler() TaskScheduler { return timerScheduler{} }

func (timerScheduler) Schedule(after time.Duration, fn func()) TaskHandle {
	return &timerHandle{timer: time.AfterFunc(after, fn)}
}

type timerHandle struct {
	timer *time.Timer
}

func (h *timerHandle) Cancel() bool { return h.timer.Stop() }
