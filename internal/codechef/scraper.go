package codechef

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/contest-tracker/internal/contest"
	"github.com/pfrederiksen/contest-tracker/internal/snapshot"

	log "github.com/sirupsen/logrus"
)

const (
	ContestsURL = "https://www.codechef.com/contests"
	Timeout     = 30 * time.Second

	// BrowserUserAgent mitigates CodeChef's bot detection; the default
	// Go client UA gets an empty shell page.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DurationMinutes is fixed: CodeChef Starters are uniformly 2h30m.
	DurationMinutes = 150

	// DefaultBaselineNumber is the most recent past Starters number,
	// used to back-date past contests when the page exposes no dates.
	// Goes stale over time; the scraper prefers a baseline derived from
	// the upcoming list when one is available.
	DefaultBaselineNumber = 184

	maxFetchRetries = 2
)

// Fixture file names, matching the saved copies of the listing pages.
const (
	upcomingFixture = "upcomingCon.html"
	pastFixture     = "pastContest.html"
)

// Config carries the scraper's tunables. Zero values select defaults.
type Config struct {
	URL            string // listing page URL
	FixtureDir     string // directory holding saved listing pages
	BaselineNumber int    // most recent past contest number
}

// Scraper fetches and parses CodeChef contests, maintaining the on-disk
// snapshot. Only one scrape runs at a time.
type Scraper struct {
	client    *http.Client
	store     *snapshot.Store
	extractor cardExtractor
	cfg       Config
	now       func() time.Time

	mu sync.Mutex
}

// New creates a Scraper persisting through store.
func New(store *snapshot.Store, cfg Config) *Scraper {
	if cfg.URL == "" {
		cfg.URL = ContestsURL
	}
	if cfg.BaselineNumber == 0 {
		cfg.BaselineNumber = DefaultBaselineNumber
	}
	return &Scraper{
		client:    &http.Client{Timeout: Timeout},
		store:     store,
		extractor: classFragmentExtractor{},
		cfg:       cfg,
		now:       time.Now,
	}
}

// strategy is one stage of the fallback chain. A stage either produces a
// non-empty snapshot or the chain moves on; persist marks stages whose
// result should overwrite the on-disk snapshot.
type strategy struct {
	name    string
	persist bool
	run     func(ctx context.Context) (*contest.ScrapeSnapshot, error)
}

// Scrape returns the best available snapshot, never an error. Unless
// forceRefresh is set, a non-empty cached snapshot short-circuits the
// chain without any network I/O.
func (s *Scraper) Scrape(ctx context.Context, forceRefresh bool) *contest.ScrapeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := []strategy{
		{name: "cache", run: s.fromCache},
		{name: "live", persist: true, run: s.fromLive},
		{name: "fixtures", persist: true, run: s.fromFixtures},
		{name: "sample", persist: true, run: s.fromSample},
	}
	if forceRefresh {
		chain = chain[1:]
	}

	for _, st := range chain {
		snap, err := st.run(ctx)
		if err != nil {
			log.WithField("strategy", st.name).WithError(err).Debug("Scrape strategy failed")
			continue
		}
		if snap.IsEmpty() {
			log.WithField("strategy", st.name).Debug("Scrape strategy yielded no contests")
			continue
		}

		if st.persist {
			if err := s.store.Save(snap); err != nil {
				// The previous good snapshot is still intact on disk.
				log.WithError(err).Warn("Failed to persist scrape snapshot")
			}
		}

		log.WithFields(log.Fields{
			"strategy": st.name,
			"upcoming": len(snap.Upcoming),
			"past":     len(snap.Past30Days),
		}).Info("CodeChef scrape complete")
		return snap
	}

	// The sample stage cannot be empty, so this is unreachable in
	// practice; return an empty snapshot rather than nil regardless.
	return contest.NewScrapeSnapshot()
}

// fromCache serves the on-disk snapshot if it has any contests.
func (s *Scraper) fromCache(context.Context) (*contest.ScrapeSnapshot, error) {
	return s.store.Load(), nil
}

// fromLive fetches the listing page and extracts both lists from it.
// The same page carries upcoming and past contests.
func (s *Scraper) fromLive(ctx context.Context) (*contest.ScrapeSnapshot, error) {
	html, err := s.fetchPage(ctx)
	if err != nil {
		return nil, err
	}
	return s.extract(html, html)
}

// fromFixtures re-runs extraction against saved copies of the listing
// pages, one per list.
func (s *Scraper) fromFixtures(context.Context) (*contest.ScrapeSnapshot, error) {
	if s.cfg.FixtureDir == "" {
		return nil, fmt.Errorf("no fixture directory configured")
	}

	upcomingHTML, err := os.ReadFile(filepath.Join(s.cfg.FixtureDir, upcomingFixture))
	if err != nil {
		return nil, fmt.Errorf("reading upcoming fixture: %w", err)
	}
	pastHTML, err := os.ReadFile(filepath.Join(s.cfg.FixtureDir, pastFixture))
	if err != nil {
		return nil, fmt.Errorf("reading past fixture: %w", err)
	}

	return s.extract(string(upcomingHTML), string(pastHTML))
}

// fromSample returns deterministic placeholder contests so the feed is
// never empty.
func (s *Scraper) fromSample(context.Context) (*contest.ScrapeSnapshot, error) {
	return sampleSnapshot(s.now(), s.cfg.BaselineNumber), nil
}

// fetchPage requests the listing page with a browser User-Agent.
func (s *Scraper) fetchPage(ctx context.Context) (string, error) {
	var html string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", BrowserUserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parsing HTML: %w", err)
		}
		h, err := doc.Html()
		if err != nil {
			return fmt.Errorf("serializing HTML: %w", err)
		}
		html = h
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return html, nil
}

// extract parses both contest lists out of page HTML.
func (s *Scraper) extract(upcomingHTML, pastHTML string) (*contest.ScrapeSnapshot, error) {
	now := s.now()

	upcomingDoc, err := goquery.NewDocumentFromReader(strings.NewReader(upcomingHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing upcoming HTML: %w", err)
	}
	upcoming := s.extractor.extractUpcoming(upcomingDoc, now)

	pastDoc := upcomingDoc
	if pastHTML != upcomingHTML {
		pastDoc, err = goquery.NewDocumentFromReader(strings.NewReader(pastHTML))
		if err != nil {
			return nil, fmt.Errorf("parsing past HTML: %w", err)
		}
	}

	// Prefer a baseline derived from the upcoming list over the
	// hard-coded default; the latter silently goes stale.
	baseline := s.cfg.BaselineNumber
	if derived := deriveBaseline(upcoming); derived > 0 {
		baseline = derived
	}

	past := s.extractor.extractPast(pastDoc, now, baseline)

	kept := past[:0]
	for _, c := range past {
		if contest.WithinLast30Days(c.StartTime, now) {
			kept = append(kept, c)
		}
	}

	return &contest.ScrapeSnapshot{Upcoming: upcoming, Past30Days: kept}, nil
}

// deriveBaseline infers the most recent past contest number from the
// smallest numbered upcoming contest. Returns 0 when nothing parseable
// is present.
func deriveBaseline(upcoming []contest.Contest) int {
	lowest := 0
	for _, c := range upcoming {
		n := contestNumber(c.ID)
		if n > 0 && (lowest == 0 || n < lowest) {
			lowest = n
		}
	}
	if lowest == 0 {
		return 0
	}
	return lowest - 1
}
