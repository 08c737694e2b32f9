package browser

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedule_opensOnceAfterDelay(t *testing.T) {
	var calls atomic.Int32
	opened := make(chan string, 2)

	s := NewScheduler(WithDelay(10*time.Millisecond), WithOpener(func(url string) error {
		calls.Add(1)
		opened <- url
		return nil
	}))

	start := time.Now()
	require.True(t, s.Schedule("http://0.0.0.0:3000"))
	require.False(t, s.Schedule("http://localhost:8080"))

	select {
	case url := <-opened:
		require.Equal(t, "http://0.0.0.0:3000", url)
		require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("browser was not opened")
	}

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestSchedule_failureSwallowed(t *testing.T) {
	done := make(chan struct{})

	s := NewScheduler(WithDelay(time.Millisecond), WithOpener(func(string) error {
		defer close(done)
		return errors.New("no display")
	}))

	require.True(t, s.Schedule("http://localhost:8080"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("opener was not called")
	}

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not report the attempt")
	}
}

func TestScheduler_Done(t *testing.T) {
	var called atomic.Bool

	s := NewScheduler(WithDelay(time.Millisecond), WithOpener(func(string) error {
		called.Store(true)
		return nil
	}))

	select {
	case <-s.Done():
		t.Fatal("done before anything was scheduled")
	default:
	}

	s.Schedule("http://localhost:8080")

	select {
	case <-s.Done():
		require.True(t, called.Load())
	case <-time.After(time.Second):
		t.Fatal("scheduler did not report the attempt")
	}
}

func TestNewScheduler_defaults(t *testing.T) {
	s := NewScheduler()
	require.Equal(t, DefaultDelay, s.delay)
	require.NotNil(t, s.open)
}
