package widget

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler runs callbacks later. Callbacks run on their own goroutine and
// must do their own locking.
type Scheduler interface {
	// Every runs fn every d until the timer is stopped.
	Every(d time.Duration, fn func()) Timer

	// After runs fn once after d.
	After(d time.Duration, fn func()) Timer
}

// RealScheduler returns a Scheduler backed by the time package.
func RealScheduler() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) Every(d time.Duration, fn func()) Timer {
	t := &ticker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

func (realScheduler) After(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}

// ManualScheduler is a Scheduler driven by Advance. It is used by tests and
// by headless runs that don't need animation.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	seq     int
	due     time.Duration
	every   time.Duration
	fn      func()
	stopped bool
}

// NewManualScheduler returns a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(d time.Duration, fn func()) Timer {
	return s.add(d, d, fn)
}

// After implements Scheduler.
func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) add(d, every time.Duration, fn func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		d = time.Nanosecond
	}
	if every < 0 {
		every = 0
	}
	s.seq++
	t := &manualTimer{s: s, seq: s.seq, due: s.now + d, every: every, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves time forward by d, firing due callbacks in order. Callbacks
// run on the calling goroutine without the scheduler lock held.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.due
		if next.every > 0 {
			next.due += next.every
		} else {
			next.stopped = true
		}
		fn := next.fn
		s.mu.Unlock()

		fn()
	}
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live

	sort.SliceStable(live, func(i, j int) bool {
		if live[i].due != live[j].due {
			return live[i].due < live[j].due
		}
		return live[i].seq < live[j].seq
	})
	if len(live) > 0 && live[0].due <= target {
		return live[0]
	}
	return nil
}

// Active returns the number of timers that can still fire.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
