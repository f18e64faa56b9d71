// Package scheduler drives periodic re-scraping of the CodeChef listing.
//
// Starters run Wednesday evenings IST, so the scheduler brackets that
// slot with two UTC windows — Tuesday 22:00 before the contest and
// Thursday 06:00 after it — and checks eligibility once an hour. A
// six-hour cooldown stops a window from triggering more than once no
// matter how many checks fire inside it. All state lives on the
// Scheduler instance; tests construct as many independent instances as
// they need.
package scheduler

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// CheckInterval is how often eligibility is evaluated.
	CheckInterval = time.Hour

	// Cooldown is the minimum gap between two triggered scrapes. A
	// failed scrape still consumes its window; it retries at the next
	// eligible window, not immediately.
	Cooldown = 6 * time.Hour
)

// window is an eligibility slot: a UTC weekday and hour.
type window struct {
	day  time.Weekday
	hour int
}

// One window before the typical Wednesday contest, one after.
var defaultWindows = []window{
	{time.Tuesday, 22},
	{time.Thursday, 6},
}

// ScrapeFunc is invoked on each triggered refresh.
type ScrapeFunc func(ctx context.Context)

// Scheduler owns the background re-scrape loop.
type Scheduler struct {
	scrape   ScrapeFunc
	interval time.Duration
	cooldown time.Duration
	windows  []window
	now      func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	running bool
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a Scheduler that calls scrape on eligible ticks.
func New(scrape ScrapeFunc) *Scheduler {
	return &Scheduler{
		scrape:   scrape,
		interval: CheckInterval,
		cooldown: Cooldown,
		windows:  defaultWindows,
		now:      time.Now,
	}
}

// Start launches the background loop. Starting an already-running
// scheduler is a no-op. An eligibility check runs immediately so a
// process booted inside a window does not wait an hour.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	log.WithField("interval", s.interval.String()).Info("Contest scheduler started")

	go func() {
		defer close(done)

		s.RunIfDue(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunIfDue(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and releases its ticker, waiting for the loop
// goroutine to exit. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	log.Info("Contest scheduler stopped")
}

// RunIfDue triggers a scrape when the current instant falls inside an
// eligibility window, the cooldown has elapsed, and no scrape is already
// in flight. lastRun advances on trigger regardless of how the scrape
// goes. Returns whether a scrape ran.
func (s *Scheduler) RunIfDue(ctx context.Context) bool {
	s.mu.Lock()
	now := s.now()

	if !s.inWindow(now) {
		s.mu.Unlock()
		return false
	}
	if !s.lastRun.IsZero() && now.Sub(s.lastRun) < s.cooldown {
		s.mu.Unlock()
		return false
	}
	if s.running {
		s.mu.Unlock()
		return false
	}

	s.lastRun = now
	s.running = true
	s.mu.Unlock()

	log.WithField("at", now.UTC().Format(time.RFC3339)).Info("Scheduled scrape triggered")
	s.scrape(ctx)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return true
}

// inWindow reports whether t falls in one of the UTC eligibility windows.
func (s *Scheduler) inWindow(t time.Time) bool {
	utc := t.UTC()
	for _, w := range s.windows {
		if utc.Weekday() == w.day && utc.Hour() == w.hour {
			return true
		}
	}
	return false
}
