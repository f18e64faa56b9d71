// Package aggregator merges the three source adapters' outputs into one
// normalized contest feed.
//
// Combine is deliberately dumb about where contests came from: it
// concatenates, recomputes every status against the current instant
// (cached records lie about status by construction), applies the
// canonical sort, and filters. Source failures never reach this layer —
// an adapter that failed contributes an empty list.
package aggregator

import (
	"strings"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

// Filter narrows the combined feed. The zero value matches everything.
type Filter struct {
	// Platforms is an allow-list; empty means all platforms.
	Platforms []contest.Platform

	// Status keeps only contests in the given state. Empty or
	// StatusAll disables the restriction.
	Status contest.Status

	// BookmarkedOnly intersects the feed with Bookmarks.
	BookmarkedOnly bool

	// Bookmarks is the externally supplied bookmark identity set,
	// keyed by Contest.Key(). Only consulted when BookmarkedOnly is set.
	Bookmarks map[string]bool
}

// IsEmpty reports whether the filter has no active criteria.
func (f *Filter) IsEmpty() bool {
	return len(f.Platforms) == 0 &&
		(f.Status == "" || f.Status == contest.StatusAll) &&
		!f.BookmarkedOnly
}

// Matches checks a single contest against all active criteria.
func (f *Filter) Matches(c contest.Contest) bool {
	if len(f.Platforms) > 0 {
		found := false
		for _, p := range f.Platforms {
			if c.Platform == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Status != "" && f.Status != contest.StatusAll && c.Status != f.Status {
		return false
	}

	if f.BookmarkedOnly && !f.Bookmarks[c.Key()] {
		return false
	}

	return true
}

// Apply returns the contests matching all active criteria.
func (f *Filter) Apply(contests []contest.Contest) []contest.Contest {
	if f.IsEmpty() {
		return contests
	}

	filtered := make([]contest.Contest, 0, len(contests))
	for _, c := range contests {
		if f.Matches(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// String describes the active criteria for logging.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "no active filters"
	}

	var parts []string
	if len(f.Platforms) > 0 {
		names := make([]string, len(f.Platforms))
		for i, p := range f.Platforms {
			names[i] = string(p)
		}
		parts = append(parts, "platforms: "+strings.Join(names, ","))
	}
	if f.Status != "" && f.Status != contest.StatusAll {
		parts = append(parts, "status: "+string(f.Status))
	}
	if f.BookmarkedOnly {
		parts = append(parts, "bookmarked only")
	}
	return strings.Join(parts, " | ")
}

// Combine merges the three source lists into one feed: statuses are
// recomputed at now, the canonical ordering applied, then the filter.
// The result is never nil.
func Combine(codechef, codeforces, leetcode []contest.Contest, now time.Time, f *Filter) []contest.Contest {
	combined := make([]contest.Contest, 0, len(codechef)+len(codeforces)+len(leetcode))

	for _, list := range [][]contest.Contest{codechef, codeforces, leetcode} {
		for _, c := range list {
			combined = append(combined, c.Reclassify(now))
		}
	}

	contest.Sort(combined)

	if f == nil {
		return combined
	}
	filtered := f.Apply(combined)
	if filtered == nil {
		filtered = make([]contest.Contest, 0)
	}
	return filtered
}
