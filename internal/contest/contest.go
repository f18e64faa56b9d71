package contest

import (
	"fmt"
	"time"
)

// Platform identifies a contest source.
type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformCodeChef   Platform = "codechef"
	PlatformLeetCode   Platform = "leetcode"
)

// Status is the derived lifecycle state of a contest.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusPast     Status = "past"

	// StatusAll is accepted by filters to mean "no status restriction".
	StatusAll Status = "all"
)

// Contest is the unifying record produced by all three source adapters.
// Batches are immutable: each fetch produces fresh values, never patches.
type Contest struct {
	Platform        Platform  `json:"platform"`
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url,omitempty"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          Status    `json:"status"`
	Participants    int       `json:"participants,omitempty"`
}

// EndTime returns the instant the contest finishes.
func (c Contest) EndTime() time.Time {
	return c.StartTime.Add(time.Duration(c.DurationMinutes) * time.Minute)
}

// Key returns the bookmark identity of a contest. Sources do not share
// an ID space, so identity is the (platform, title, startTime) triple.
func (c Contest) Key() string {
	return string(c.Platform) + "|" + c.Title + "|" + c.StartTime.UTC().Format(time.RFC3339)
}

// ComputeStatus classifies a contest at the given instant:
// upcoming if now < start, ongoing while now is in [start, start+duration),
// past otherwise.
func ComputeStatus(start time.Time, durationMinutes int, now time.Time) Status {
	if now.Before(start) {
		return StatusUpcoming
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if now.Before(end) {
		return StatusOngoing
	}
	return StatusPast
}

// Reclassify returns a copy of the contest with Status recomputed at now.
func (c Contest) Reclassify(now time.Time) Contest {
	c.Status = ComputeStatus(c.StartTime, c.DurationMinutes, now)
	return c
}

// WithinLast30Days reports whether t falls inside the trailing 30-day
// window ending at now, inclusive on both ends.
func WithinLast30Days(t, now time.Time) bool {
	cutoff := now.Add(-30 * 24 * time.Hour)
	return !t.Before(cutoff) && !t.After(now)
}

// FormatDuration renders a minute count as "2h 30m" (or "45m" when under
// an hour) for display and feed output.
func FormatDuration(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
