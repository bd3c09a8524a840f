package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerScheduler_FiresOnce(t *testing.T) {
	tasks := NewTimerScheduler()

	fired := make(chan struct{})
	tasks.Schedule(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never fired")
	}
}

func TestTimerScheduler_CancelPreventsRun(t *testing.T) {
	tasks := NewTimerScheduler()

	fired := make(chan struct{}, 1)
	handle := tasks.Schedule(50*time.Millisecond, func() { fired <- struct{}{} })

	require.True(t, handle.Cancel(), "cancelling a pending task must report success")

	select {
	case <-fired:
		t.Fatal("cancelled task ran anyway")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestTimerScheduler_CancelAfterFire(t *testing.T) {
	tasks := NewTimerScheduler()

	fired := make(chan struct{})
	handle := tasks.Schedule(time.Millisecond, func() { close(fired) })

	<-fired
	assert.False(t, handle.Cancel(), "cancelling a fired task must report failure")
}
