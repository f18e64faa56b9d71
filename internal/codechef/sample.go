package codechef

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

// Placeholder participant counts for the sample past contests, most
// recent first.
var sampleParticipants = []int{19600, 24530, 32303}

// sampleSnapshot builds deterministic placeholder contests around the
// weekly Wednesday cadence so the feed is never empty even when every
// scrape path has failed. Numbering continues from the baseline: the
// next two Starters upcoming, the last three as past.
func sampleSnapshot(now time.Time, baseline int) *contest.ScrapeSnapshot {
	snap := contest.NewScrapeSnapshot()

	ratings := []int{5, 6}
	for i := 0; i < 2; i++ {
		n := baseline + 1 + i
		snap.Upcoming = append(snap.Upcoming, sampleContest(n, ratings[i%len(ratings)], nextWednesday(now, i*7), contest.StatusUpcoming, 0))
	}

	for i, participants := range sampleParticipants {
		n := baseline - i
		if n <= 0 {
			break
		}
		start := previousWednesday(now, i)
		if !contest.WithinLast30Days(start, now) {
			break
		}
		snap.Past30Days = append(snap.Past30Days, sampleContest(n, ratings[i%len(ratings)], start, contest.StatusPast, participants))
	}

	return snap
}

func sampleContest(number, rating int, start time.Time, status contest.Status, participants int) contest.Contest {
	id := fmt.Sprintf("START%d", number)
	return contest.Contest{
		Platform:        contest.PlatformCodeChef,
		ID:              id,
		Title:           fmt.Sprintf("Starters %d (Rated till %d star)", number, rating),
		URL:             "https://www.codechef.com/" + id,
		StartTime:       start,
		DurationMinutes: DurationMinutes,
		Status:          status,
		Participants:    participants,
	}
}
