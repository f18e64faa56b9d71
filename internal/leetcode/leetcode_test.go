package leetcode

import (
	"fmt"
	"testing"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

func newTestGenerator(t *testing.T, now time.Time) *Generator {
	t.Helper()
	g, err := NewWithAnchors(DefaultWeeklyAnchor, DefaultBiweeklyAnchor)
	if err != nil {
		t.Fatalf("NewWithAnchors failed: %v", err)
	}
	g.now = func() time.Time { return now }
	return g
}

func TestSequenceNumberRoundTrip(t *testing.T) {
	weekly := series{name: "weekly", anchor: DefaultWeeklyAnchor, interval: 7 * 24 * time.Hour}
	biweekly := series{name: "biweekly", anchor: DefaultBiweeklyAnchor, interval: 14 * 24 * time.Hour}

	for _, s := range []series{weekly, biweekly} {
		for offset := -50; offset <= 50; offset++ {
			n := s.anchor.Number + offset
			got := s.numberAt(s.timeOf(n))
			if got != n {
				t.Fatalf("%s: numberAt(timeOf(%d)) = %d", s.name, n, got)
			}
		}
	}
}

func TestLatestAtOrBefore(t *testing.T) {
	s := series{name: "weekly", anchor: DefaultWeeklyAnchor, interval: 7 * 24 * time.Hour}

	tests := []struct {
		name     string
		at       time.Time
		expected int
	}{
		{"exactly the anchor", s.anchor.Reference, s.anchor.Number},
		{"one second after anchor", s.anchor.Reference.Add(time.Second), s.anchor.Number},
		{"one second before anchor", s.anchor.Reference.Add(-time.Second), s.anchor.Number - 1},
		{"three weeks later", s.anchor.Reference.Add(21 * 24 * time.Hour), s.anchor.Number + 3},
		{"ten days before anchor", s.anchor.Reference.Add(-10 * 24 * time.Hour), s.anchor.Number - 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.latestAtOrBefore(tt.at); got != tt.expected {
				t.Errorf("latestAtOrBefore(%v) = %d, expected %d", tt.at, got, tt.expected)
			}
		})
	}
}

func TestContestsStatusDerivation(t *testing.T) {
	// Pin "now" 45 minutes into the weekly contest two weeks after the anchor.
	start := DefaultWeeklyAnchor.Reference.Add(14 * 24 * time.Hour)
	now := start.Add(45 * time.Minute)
	g := newTestGenerator(t, now)

	contests := g.Contests()
	if len(contests) == 0 {
		t.Fatal("expected generated contests")
	}

	var sawOngoing bool
	for _, c := range contests {
		expected := contest.StatusPast
		if c.StartTime.After(now) {
			expected = contest.StatusUpcoming
		} else if now.Before(c.EndTime()) {
			expected = contest.StatusOngoing
		}
		if c.Status != expected {
			t.Errorf("%s: status %q, expected %q", c.ID, c.Status, expected)
		}
		if c.Status == contest.StatusOngoing {
			sawOngoing = true
		}
	}

	if !sawOngoing {
		t.Error("expected the in-flight weekly contest to be ongoing")
	}
}

func TestContestsWindowAndFutureCount(t *testing.T) {
	now := DefaultWeeklyAnchor.Reference.Add(10 * 24 * time.Hour)
	g := newTestGenerator(t, now)

	contests := g.Contests()
	cutoff := now.Add(-PastWindow)

	var future int
	for _, c := range contests {
		if c.StartTime.Before(cutoff) {
			t.Errorf("%s starts before the 30-day window: %v", c.ID, c.StartTime)
		}
		if c.StartTime.After(now) {
			future++
		}
	}

	if future != FutureCount {
		t.Errorf("expected %d future contests, got %d", FutureCount, future)
	}

	// Sorted ascending by start time.
	for i := 1; i < len(contests); i++ {
		if contests[i].StartTime.Before(contests[i-1].StartTime) {
			t.Fatalf("contests not sorted at index %d", i)
		}
	}
}

func TestContestFields(t *testing.T) {
	now := DefaultWeeklyAnchor.Reference.Add(24 * time.Hour)
	g := newTestGenerator(t, now)

	for _, c := range g.Contests() {
		if c.Platform != contest.PlatformLeetCode {
			t.Errorf("%s: platform %q", c.ID, c.Platform)
		}
		if c.DurationMinutes != DurationMinutes {
			t.Errorf("%s: duration %d", c.ID, c.DurationMinutes)
		}
		wantURL := fmt.Sprintf("https://leetcode.com/contest/%s/", c.ID)
		if c.URL != wantURL {
			t.Errorf("%s: url %q, expected %q", c.ID, c.URL, wantURL)
		}
	}
}

func TestMemoReusedWithinTTL(t *testing.T) {
	now := DefaultWeeklyAnchor.Reference.Add(3 * 24 * time.Hour)
	g := newTestGenerator(t, now)

	first := g.Contests()

	// Advance inside the TTL: same occurrence set must be served.
	g.now = func() time.Time { return now.Add(MemoTTL / 2) }
	second := g.Contests()

	if len(first) != len(second) {
		t.Fatalf("occurrence set changed within TTL: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("occurrence %d changed within TTL: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestMemoStatusRederivedWithinTTL(t *testing.T) {
	// "now" just before a weekly contest; a minute later it is ongoing.
	start := DefaultWeeklyAnchor.Reference.Add(7 * 24 * time.Hour)
	g := newTestGenerator(t, start.Add(-30*time.Second))

	statusOf := func(contests []contest.Contest) contest.Status {
		for _, c := range contests {
			if c.StartTime.Equal(start) {
				return c.Status
			}
		}
		t.Fatal("target contest not generated")
		return ""
	}

	if got := statusOf(g.Contests()); got != contest.StatusUpcoming {
		t.Fatalf("before start: status %q", got)
	}

	g.now = func() time.Time { return start.Add(time.Minute) }
	if got := statusOf(g.Contests()); got != contest.StatusOngoing {
		t.Errorf("after start, within TTL: status %q, expected ongoing", got)
	}
}

func TestNewWithAnchorsValidation(t *testing.T) {
	if _, err := NewWithAnchors(Anchor{}, DefaultBiweeklyAnchor); err == nil {
		t.Error("expected error for zero weekly anchor")
	}
	if _, err := NewWithAnchors(DefaultWeeklyAnchor, Anchor{Reference: time.Now(), Number: 0}); err == nil {
		t.Error("expected error for non-positive biweekly number")
	}
}
