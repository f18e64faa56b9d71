package bookmarks

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testContest() contest.Contest {
	return contest.Contest{
		Platform:        contest.PlatformCodeChef,
		ID:              "START185",
		Title:           "Starters 185 (Rated till 5 star)",
		URL:             "https://www.codechef.com/START185",
		StartTime:       time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC),
		DurationMinutes: 150,
		Status:          contest.StatusUpcoming,
	}
}

func TestAddAndIsBookmarked(t *testing.T) {
	s := newTestStore(t)
	c := testContest()

	bookmarked, err := s.IsBookmarked(c)
	if err != nil {
		t.Fatalf("IsBookmarked failed: %v", err)
	}
	if bookmarked {
		t.Fatal("fresh store should have no bookmarks")
	}

	if err := s.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	bookmarked, err = s.IsBookmarked(c)
	if err != nil {
		t.Fatalf("IsBookmarked failed: %v", err)
	}
	if !bookmarked {
		t.Error("contest should be bookmarked after Add")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	c := testContest()

	if err := s.Add(c); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := s.Add(c); err != nil {
		t.Fatalf("duplicate Add failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 bookmark, got %d", len(all))
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	c := testContest()

	if err := s.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Remove(c); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	bookmarked, err := s.IsBookmarked(c)
	if err != nil {
		t.Fatalf("IsBookmarked failed: %v", err)
	}
	if bookmarked {
		t.Error("contest should not be bookmarked after Remove")
	}

	// Removing again is a no-op.
	if err := s.Remove(c); err != nil {
		t.Errorf("Remove of absent bookmark failed: %v", err)
	}
}

func TestIdentityIsPlatformTitleStart(t *testing.T) {
	s := newTestStore(t)
	c := testContest()

	if err := s.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Same title and start on another platform is a different contest.
	other := c
	other.Platform = contest.PlatformCodeforces
	bookmarked, err := s.IsBookmarked(other)
	if err != nil {
		t.Fatalf("IsBookmarked failed: %v", err)
	}
	if bookmarked {
		t.Error("identity should include the platform")
	}
}

func TestKeysMatchContestKey(t *testing.T) {
	s := newTestStore(t)
	c := testContest()

	if err := s.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !keys[c.Key()] {
		t.Errorf("Keys() missing %q, got %v", c.Key(), keys)
	}
}

func TestAllRoundTripsFields(t *testing.T) {
	s := newTestStore(t)
	c := testContest()

	if err := s.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(all))
	}

	got := all[0]
	if got.Platform != c.Platform || got.Title != c.Title || got.URL != c.URL {
		t.Errorf("fields mismatch: %+v", got)
	}
	if !got.StartTime.Equal(c.StartTime) {
		t.Errorf("start time mismatch: %v vs %v", got.StartTime, c.StartTime)
	}
	if got.DurationMinutes != c.DurationMinutes {
		t.Errorf("duration mismatch: %d", got.DurationMinutes)
	}
}
