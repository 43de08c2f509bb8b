package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"linguacv/internal/domain"
	"linguacv/internal/model"
)

const waitTimeout = 2 * time.Second

// fakeClock hands every armed timer to the test through timers.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers chan *fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		timers: make(chan *fakeTimer, 32),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	t := &fakeTimer{d: d, ch: make(chan time.Time, 1), clock: c}
	c.timers <- t
	return t
}

func (c *fakeClock) nextTimer(t *testing.T) *fakeTimer {
	t.Helper()
	select {
	case ft := <-c.timers:
		return ft
	case <-time.After(waitTimeout):
		t.Fatal("no timer armed")
		return nil
	}
}

func (c *fakeClock) assertNoTimer(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case ft := <-c.timers:
		t.Fatalf("unexpected timer armed for %s", ft.d)
	case <-time.After(within):
	}
}

type fakeTimer struct {
	d       time.Duration
	ch      chan time.Time
	clock   *fakeClock
	stopped atomic.Bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }
func (t *fakeTimer) Stop() bool          { return !t.stopped.Swap(true) }

// fire advances the clock by the timer's duration and delivers the tick.
func (t *fakeTimer) fire() {
	t.clock.mu.Lock()
	t.clock.now = t.clock.now.Add(t.d)
	now := t.clock.now
	t.clock.mu.Unlock()
	t.ch <- now
}

type fetchResult struct {
	snap *model.ResumeSnapshot
	err  error
}

// scriptedFetcher blocks every call until the test supplies a result. It
// ignores ctx so a result can arrive after the poller is stopped.
type scriptedFetcher struct {
	started     chan struct{}
	results     chan fetchResult
	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		started: make(chan struct{}, 32),
		results: make(chan fetchResult),
	}
}

func (f *scriptedFetcher) Latest(ctx context.Context) (*model.ResumeSnapshot, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	f.calls.Add(1)
	f.started <- struct{}{}
	r := <-f.results
	return r.snap, r.err
}

func (f *scriptedFetcher) awaitCall(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(waitTimeout):
		t.Fatal("fetch not issued")
	}
}

func (f *scriptedFetcher) assertNoCall(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case <-f.started:
		t.Fatal("unexpected fetch issued")
	case <-time.After(within):
	}
}

func (f *scriptedFetcher) succeed(snap *model.ResumeSnapshot) {
	f.results <- fetchResult{snap: snap}
}

func (f *scriptedFetcher) fail(status int) {
	f.results <- fetchResult{err: &domain.FetchError{Status: status}}
}
