package search

import (
	"sync"
	"time"
)

// Timer is a pending call that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealScheduler runs callbacks on wall-clock timers.
func RealScheduler() Scheduler { return clock{} }

// Debouncer coalesces bursts of calls into the last one.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	sched Scheduler
	timer Timer
}

func NewDebouncer(delay time.Duration, sched Scheduler) *Debouncer {
	if sched == nil {
		sched = clock{}
	}
	return &Debouncer{delay: delay, sched: sched}
}

// Trigger cancels any pending call and schedules f after the delay.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.sched.AfterFunc(d.delay, f)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
