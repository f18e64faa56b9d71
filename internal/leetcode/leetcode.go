// Package leetcode synthesizes LeetCode contests from the platform's
// published cadence instead of scraping. Weekly contests run every 7 days
// and biweekly contests every 14, so the whole calendar is derivable from
// one known (date, contest number) anchor per series.
package leetcode

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"

	log "github.com/sirupsen/logrus"
)

const (
	// DurationMinutes is fixed: every LeetCode contest is 90 minutes.
	DurationMinutes = 90

	// PastWindow is the trailing window of past occurrences to generate.
	PastWindow = 30 * 24 * time.Hour

	// FutureCount is how many future occurrences to keep across both series.
	FutureCount = 2

	// MemoTTL bounds how long the generated occurrence set is reused
	// before being recomputed. Status is re-derived on every call.
	MemoTTL = 5 * time.Minute
)

// Anchor is one known-good occurrence of a recurring series: the
// reference start time and the contest number it carried.
type Anchor struct {
	Reference time.Time
	Number    int
}

// Default anchors, verified against the 2025-05-10/11 contest weekend.
var (
	DefaultWeeklyAnchor   = Anchor{Reference: time.Date(2025, 5, 11, 2, 30, 0, 0, time.UTC), Number: 449}
	DefaultBiweeklyAnchor = Anchor{Reference: time.Date(2025, 5, 10, 14, 30, 0, 0, time.UTC), Number: 156}
)

// series is one recurring contest line (weekly or biweekly).
type series struct {
	name     string
	anchor   Anchor
	interval time.Duration
}

// timeOf returns the start time of occurrence number n.
func (s series) timeOf(n int) time.Time {
	return s.anchor.Reference.Add(time.Duration(n-s.anchor.Number) * s.interval)
}

// numberAt recovers the sequence number of the occurrence at t. The
// division is rounded, not truncated, so numberAt(timeOf(n)) == n even
// when the elapsed span is not an exact multiple due to direction of
// travel from the anchor.
func (s series) numberAt(t time.Time) int {
	steps := math.Round(float64(t.Sub(s.anchor.Reference)) / float64(s.interval))
	return s.anchor.Number + int(steps)
}

// latestAtOrBefore returns the number of the nearest occurrence whose
// start is at or before t.
func (s series) latestAtOrBefore(t time.Time) int {
	steps := math.Floor(float64(t.Sub(s.anchor.Reference)) / float64(s.interval))
	return s.anchor.Number + int(steps)
}

// occurrence is a generated contest instance before status derivation.
type occurrence struct {
	series string
	number int
	start  time.Time
}

// Generator computes the synthetic LeetCode calendar. Safe for
// concurrent use.
type Generator struct {
	weekly   series
	biweekly series

	now func() time.Time

	mu       sync.Mutex
	memo     []occurrence
	memoWhen time.Time
}

// New creates a Generator with the default anchors.
func New() *Generator {
	g, err := NewWithAnchors(DefaultWeeklyAnchor, DefaultBiweeklyAnchor)
	if err != nil {
		// Default anchors are compile-time constants; this cannot happen.
		panic(err)
	}
	return g
}

// NewWithAnchors creates a Generator from explicit anchors. An invalid
// anchor is a configuration defect and fails loudly.
func NewWithAnchors(weekly, biweekly Anchor) (*Generator, error) {
	if weekly.Reference.IsZero() || weekly.Number <= 0 {
		return nil, fmt.Errorf("invalid weekly anchor: %+v", weekly)
	}
	if biweekly.Reference.IsZero() || biweekly.Number <= 0 {
		return nil, fmt.Errorf("invalid biweekly anchor: %+v", biweekly)
	}
	return &Generator{
		weekly:   series{name: "weekly", anchor: weekly, interval: 7 * 24 * time.Hour},
		biweekly: series{name: "biweekly", anchor: biweekly, interval: 14 * 24 * time.Hour},
		now:      time.Now,
	}, nil
}

// Contests returns the synthetic calendar: all occurrences in the
// trailing 30-day window plus the next two future occurrences across
// both series, sorted by start time ascending. Status is derived fresh
// against "now" on every call, even when the occurrence set itself is
// served from the memo.
func (g *Generator) Contests() []contest.Contest {
	now := g.now()
	occs := g.occurrences(now)

	contests := make([]contest.Contest, 0, len(occs))
	for _, o := range occs {
		contests = append(contests, g.toContest(o, now))
	}
	return contests
}

// occurrences returns the memoized occurrence set, recomputing it when
// the memo is older than MemoTTL.
func (g *Generator) occurrences(now time.Time) []occurrence {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.memo != nil && now.Sub(g.memoWhen) < MemoTTL {
		return g.memo
	}

	occs := g.generate(now)
	g.memo = occs
	g.memoWhen = now

	log.WithFields(log.Fields{
		"count": len(occs),
		"from":  now.Add(-PastWindow).Format(time.RFC3339),
		"to":    now.Format(time.RFC3339),
	}).Debug("Generated LeetCode contest calendar")

	return occs
}

// generate builds the occurrence set for the window ending at now.
func (g *Generator) generate(now time.Time) []occurrence {
	cutoff := now.Add(-PastWindow)
	var occs []occurrence

	// Window occurrences per series: walk backward from the nearest
	// occurrence at or before now until leaving the trailing window.
	for _, s := range []series{g.weekly, g.biweekly} {
		for n := s.latestAtOrBefore(now); ; n-- {
			start := s.timeOf(n)
			if start.Before(cutoff) {
				break
			}
			occs = append(occs, occurrence{series: s.name, number: n, start: start})
		}
	}

	// Next future occurrence per series, strictly after now; keep the
	// first FutureCount across the union of both series.
	var future []occurrence
	for _, s := range []series{g.weekly, g.biweekly} {
		n := s.latestAtOrBefore(now) + 1
		future = append(future, occurrence{series: s.name, number: n, start: s.timeOf(n)})
	}
	sortOccurrences(future)
	if len(future) > FutureCount {
		future = future[:FutureCount]
	}
	occs = append(occs, future...)

	sortOccurrences(occs)
	return occs
}

// toContest converts a generated occurrence into a Contest with status
// derived at now.
func (g *Generator) toContest(o occurrence, now time.Time) contest.Contest {
	id := fmt.Sprintf("%s-contest-%d", o.series, o.number)
	title := fmt.Sprintf("%s Contest %d", titleCase(o.series), o.number)

	return contest.Contest{
		Platform:        contest.PlatformLeetCode,
		ID:              id,
		Title:           title,
		URL:             fmt.Sprintf("https://leetcode.com/contest/%s/", id),
		StartTime:       o.start,
		DurationMinutes: DurationMinutes,
		Status:          contest.ComputeStatus(o.start, DurationMinutes, now),
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func sortOccurrences(occs []occurrence) {
	sort.Slice(occs, func(i, j int) bool {
		return occs[i].start.Before(occs[j].start)
	})
}
