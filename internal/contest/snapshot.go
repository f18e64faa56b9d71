package contest

// ScrapeSnapshot is the durable cache unit for the scraped source: the
// upcoming contests plus past contests whose start time fell within the
// trailing 30-day window at write time. Past30Days is not re-filtered at
// read time, so it can go stale until the next successful scrape.
type ScrapeSnapshot struct {
	Upcoming   []Contest `json:"upcoming"`
	Past30Days []Contest `json:"past30Days"`
}

// NewScrapeSnapshot returns an empty snapshot with non-nil slices so it
// serializes as {"upcoming":[],"past30Days":[]} rather than nulls.
func NewScrapeSnapshot() *ScrapeSnapshot {
	return &ScrapeSnapshot{
		Upcoming:   make([]Contest, 0),
		Past30Days: make([]Contest, 0),
	}
}

// IsEmpty reports whether the snapshot holds no contests at all.
func (s *ScrapeSnapshot) IsEmpty() bool {
	return len(s.Upcoming) == 0 && len(s.Past30Days) == 0
}

// Contests returns the snapshot's contents as one flat list.
func (s *ScrapeSnapshot) Contests() []Contest {
	out := make([]Contest, 0, len(s.Upcoming)+len(s.Past30Days))
	out = append(out, s.Upcoming...)
	out = append(out, s.Past30Days...)
	return out
}
