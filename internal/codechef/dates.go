package codechef

import "time"

// CodeChef Starters run Wednesdays at 20:00 IST. A fixed zone avoids
// depending on the host's tzdata.
var istZone = time.FixedZone("IST", 5*3600+30*60)

const contestHourIST = 20

// nextWednesday returns the next Starters slot strictly usable from now:
// today at 20:00 IST if it is Wednesday and the slot hasn't passed,
// otherwise the coming Wednesday. additionalDays shifts the result, so
// nextWednesday(now, 7) is the Wednesday after next.
func nextWednesday(now time.Time, additionalDays int) time.Time {
	ist := now.In(istZone)

	daysToAdd := (int(time.Wednesday) - int(ist.Weekday()) + 7) % 7
	if ist.Weekday() == time.Wednesday && ist.Hour() >= contestHourIST {
		daysToAdd = 7
	}

	d := ist.AddDate(0, 0, daysToAdd+additionalDays)
	return time.Date(d.Year(), d.Month(), d.Day(), contestHourIST, 0, 0, 0, istZone)
}

// previousWednesday returns the most recent Starters slot already past:
// today at 20:00 IST if it is Wednesday and the slot has passed,
// otherwise the preceding Wednesday. weeksAgo steps further back.
func previousWednesday(now time.Time, weeksAgo int) time.Time {
	ist := now.In(istZone)

	daysBack := (int(ist.Weekday()) - int(time.Wednesday) + 7) % 7
	if ist.Weekday() == time.Wednesday && ist.Hour() < contestHourIST {
		daysBack = 7
	}

	d := ist.AddDate(0, 0, -(daysBack + weeksAgo*7))
	return time.Date(d.Year(), d.Month(), d.Day(), contestHourIST, 0, 0, 0, istZone)
}
