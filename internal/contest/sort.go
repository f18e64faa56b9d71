package contest

import "sort"

// statusRank orders the feed: live contests first, then what is coming,
// then what already happened.
var statusRank = map[Status]int{
	StatusOngoing:  0,
	StatusUpcoming: 1,
	StatusPast:     2,
}

// Less implements the canonical feed ordering: status precedence first,
// then start time ascending for ongoing/upcoming and descending for past
// (most recent past contest first).
func Less(a, b Contest) bool {
	if statusRank[a.Status] != statusRank[b.Status] {
		return statusRank[a.Status] < statusRank[b.Status]
	}
	if a.Status == StatusPast {
		return a.StartTime.After(b.StartTime)
	}
	return a.StartTime.Before(b.StartTime)
}

// Sort orders contests in place by the canonical feed ordering. The sort
// is stable so equal contests keep their input order.
func Sort(contests []Contest) {
	sort.SliceStable(contests, func(i, j int) bool {
		return Less(contests[i], contests[j])
	})
}
