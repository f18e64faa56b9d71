package aggregator

import (
	"testing"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func mkContest(platform contest.Platform, title string, start time.Time, duration int) contest.Contest {
	return contest.Contest{
		Platform:        platform,
		Title:           title,
		StartTime:       start,
		DurationMinutes: duration,
	}
}

func TestCombineRecomputesStatusAndSorts(t *testing.T) {
	// Cached CodeChef contest claiming upcoming, but it already ended.
	stale := mkContest(contest.PlatformCodeChef, "Starters 184", now.Add(-4*time.Hour), 150)
	stale.Status = contest.StatusUpcoming

	live := mkContest(contest.PlatformCodeforces, "Round Live", now.Add(-30*time.Minute), 120)
	future := mkContest(contest.PlatformLeetCode, "Weekly Contest 450", now.Add(24*time.Hour), 90)
	old := mkContest(contest.PlatformLeetCode, "Weekly Contest 445", now.Add(-10*24*time.Hour), 90)

	result := Combine(
		[]contest.Contest{stale},
		[]contest.Contest{live},
		[]contest.Contest{future, old},
		now, nil,
	)

	wantTitles := []string{"Round Live", "Weekly Contest 450", "Starters 184", "Weekly Contest 445"}
	if len(result) != len(wantTitles) {
		t.Fatalf("got %d contests, expected %d", len(result), len(wantTitles))
	}
	for i, want := range wantTitles {
		if result[i].Title != want {
			t.Errorf("position %d: got %q, expected %q", i, result[i].Title, want)
		}
	}

	// Stale cached status was overridden: the contest ended 90 minutes ago.
	if result[2].Status != contest.StatusPast {
		t.Errorf("Starters 184 status = %q, expected past", result[2].Status)
	}
}

func TestCombineNeverReturnsNil(t *testing.T) {
	if result := Combine(nil, nil, nil, now, nil); result == nil {
		t.Fatal("Combine(nil, nil, nil) returned nil")
	}

	f := &Filter{Status: contest.StatusOngoing}
	result := Combine(nil, nil, []contest.Contest{mkContest(contest.PlatformLeetCode, "x", now.Add(time.Hour), 90)}, now, f)
	if result == nil {
		t.Fatal("filtered-to-empty Combine returned nil")
	}
	if len(result) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestFilterPlatforms(t *testing.T) {
	contests := []contest.Contest{
		mkContest(contest.PlatformCodeChef, "a", now.Add(time.Hour), 150),
		mkContest(contest.PlatformCodeforces, "b", now.Add(time.Hour), 120),
		mkContest(contest.PlatformLeetCode, "c", now.Add(time.Hour), 90),
	}

	f := &Filter{Platforms: []contest.Platform{contest.PlatformCodeChef, contest.PlatformLeetCode}}
	result := Combine(contests, nil, nil, now, f)

	if len(result) != 2 {
		t.Fatalf("got %d contests, expected 2", len(result))
	}
	for _, c := range result {
		if c.Platform == contest.PlatformCodeforces {
			t.Errorf("codeforces contest passed the platform filter")
		}
	}

	// Empty allow-list matches all platforms.
	all := Combine(contests, nil, nil, now, &Filter{})
	if len(all) != 3 {
		t.Errorf("empty filter dropped contests: %d", len(all))
	}
}

func TestFilterStatus(t *testing.T) {
	contests := []contest.Contest{
		mkContest(contest.PlatformLeetCode, "future", now.Add(time.Hour), 90),
		mkContest(contest.PlatformLeetCode, "live", now.Add(-10*time.Minute), 90),
		mkContest(contest.PlatformLeetCode, "done", now.Add(-24*time.Hour), 90),
	}

	result := Combine(nil, nil, contests, now, &Filter{Status: contest.StatusOngoing})
	if len(result) != 1 || result[0].Title != "live" {
		t.Fatalf("expected only the live contest, got %+v", result)
	}

	all := Combine(nil, nil, contests, now, &Filter{Status: contest.StatusAll})
	if len(all) != 3 {
		t.Errorf("status=all should match everything, got %d", len(all))
	}
}

func TestFilterBookmarkedOnly(t *testing.T) {
	a := mkContest(contest.PlatformCodeChef, "Starters 185", now.Add(time.Hour), 150)
	b := mkContest(contest.PlatformCodeforces, "Round 950", now.Add(2*time.Hour), 120)

	f := &Filter{
		BookmarkedOnly: true,
		Bookmarks:      map[string]bool{a.Key(): true},
	}

	result := Combine([]contest.Contest{a}, []contest.Contest{b}, nil, now, f)
	if len(result) != 1 || result[0].Title != "Starters 185" {
		t.Fatalf("expected only the bookmarked contest, got %+v", result)
	}
}

func TestFilterString(t *testing.T) {
	if got := (&Filter{}).String(); got != "no active filters" {
		t.Errorf("empty filter String() = %q", got)
	}

	f := &Filter{
		Platforms:      []contest.Platform{contest.PlatformCodeChef},
		Status:         contest.StatusUpcoming,
		BookmarkedOnly: true,
	}
	want := "platforms: codechef | status: upcoming | bookmarked only"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, expected %q", got, want)
	}
}
