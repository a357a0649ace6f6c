package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a Clock whose time only moves when Advance is called. It is safe
// for concurrent use.
type Fake struct {
	mu      sync.Mutex
	changed *sync.Cond
	now     time.Time
	timers  []*fakeTimer
}

type fakeTimer struct {
	deadline time.Time
	interval time.Duration // zero for one-shot timers
	ch       chan time.Time
	stopped  bool
}

// NewFake returns a Fake starting at start.
func NewFake(start time.Time) *Fake {
	f := &Fake{now: start}
	f.changed = sync.NewCond(&f.mu)
	return f
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that fires once the clock has advanced by d.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.timers = append(f.timers, &fakeTimer{deadline: f.now.Add(d), ch: ch})
	f.changed.Broadcast()
	return ch
}

// NewTicker returns a ticker driven by Advance.
func (f *Fake) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	ft := &fakeTimer{deadline: f.now.Add(d), interval: d, ch: ch}
	f.timers = append(f.timers, ft)
	f.changed.Broadcast()

	return &Ticker{
		C: ch,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.removeLocked(ft)
			f.changed.Broadcast()
		},
		reset: func(d time.Duration) {
			if d <= 0 {
				panic("clock: non-positive interval for Ticker.Reset")
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			ft.interval = d
			ft.deadline = f.now.Add(d)
			if ft.stopped {
				ft.stopped = false
				f.timers = append(f.timers, ft)
			}
			f.changed.Broadcast()
		},
	}
}

func (f *Fake) removeLocked(target *fakeTimer) {
	target.stopped = true
	kept := f.timers[:0]
	for _, ft := range f.timers {
		if ft != target {
			kept = append(kept, ft)
		}
	}
	f.timers = kept
}

// Advance moves time forward by d and fires every timer whose deadline has
// been reached, in deadline order. A ticker spanning several intervals
// fires once per interval, subject to its one-slot buffer.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	target := f.now
	f.mu.Unlock()

	for {
		due := f.collectDue(target)
		if len(due) == 0 {
			return
		}
		for _, ft := range due {
			select {
			case ft.ch <- target:
			default:
			}
		}
	}
}

func (f *Fake) collectDue(target time.Time) []*fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	var due, pending []*fakeTimer
	for _, ft := range f.timers {
		switch {
		case ft.stopped:
		case !ft.deadline.After(target):
			due = append(due, ft)
		default:
			pending = append(pending, ft)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })

	for _, ft := range due {
		if ft.interval > 0 {
			ft.deadline = ft.deadline.Add(ft.interval)
			pending = append(pending, ft)
		}
	}
	f.timers = pending
	if len(due) > 0 {
		f.changed.Broadcast()
	}
	return due
}

// Tickers returns the number of running tickers.
func (f *Fake) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickersLocked()
}

func (f *Fake) tickersLocked() int {
	n := 0
	for _, ft := range f.timers {
		if ft.interval > 0 && !ft.stopped {
			n++
		}
	}
	return n
}

// WaitForTickers blocks until exactly n tickers are running. Tests use it to
// wait for a goroutine to register (or release) its ticker before calling
// Advance.
func (f *Fake) WaitForTickers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.tickersLocked() != n {
		f.changed.Wait()
	}
}
