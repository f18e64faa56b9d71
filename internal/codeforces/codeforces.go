// Package codeforces fetches contests from the Codeforces JSON API.
//
// Codeforces is the one source with a stable API: a single contest.list
// call returns every contest ever run, wrapped in a status envelope. The
// client filters that down to the recent window, normalizes records, and
// reports any upstream failure as ErrNetwork so callers can degrade to
// an empty list instead of failing the whole feed.
package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/contest-tracker/internal/contest"

	log "github.com/sirupsen/logrus"
)

const (
	ContestListURL = "https://codeforces.com/api/contest.list"
	UserAgent      = "contest-tracker/1.0 (github.com/pfrederiksen/contest-tracker)"
	Timeout        = 30 * time.Second

	maxRetries = 3
)

// ErrNetwork reports that Codeforces was unreachable or returned a
// non-success envelope. Callers degrade to an empty list.
var ErrNetwork = errors.New("codeforces unavailable")

// privateMarker excludes unlisted contests from the feed.
const privateMarker = "(private)"

// apiResponse is the contest.list envelope.
type apiResponse struct {
	Status  string       `json:"status"`
	Comment string       `json:"comment,omitempty"`
	Result  []apiContest `json:"result"`
}

// apiContest is one contest record as Codeforces reports it.
type apiContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	DurationSeconds  int64  `json:"durationSeconds"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
}

// Client fetches and normalizes Codeforces contests.
type Client struct {
	client *http.Client
	url    string
	now    func() time.Time
}

// New creates a Client with a bounded request timeout.
func New() *Client {
	return &Client{
		client: &http.Client{Timeout: Timeout},
		url:    ContestListURL,
		now:    time.Now,
	}
}

// Fetch returns the recent and upcoming Codeforces contests, sorted by
// the canonical feed ordering. Failures are wrapped in ErrNetwork.
func (c *Client) Fetch(ctx context.Context) ([]contest.Contest, error) {
	var resp apiResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", UserAgent)

		res, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching contest list: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", res.StatusCode)
		}

		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.Status != "OK" {
		return nil, fmt.Errorf("%w: envelope status %q (%s)", ErrNetwork, resp.Status, resp.Comment)
	}

	contests := c.normalize(resp.Result)
	log.WithField("count", len(contests)).Debug("Fetched Codeforces contests")
	return contests, nil
}

// normalize filters and converts API records into the shared Contest
// shape, then sorts them by the canonical feed ordering.
func (c *Client) normalize(records []apiContest) []contest.Contest {
	now := c.now()
	out := make([]contest.Contest, 0, len(records))

	for _, r := range records {
		if r.StartTimeSeconds == 0 {
			// Gym and some announced contests carry no start time yet.
			continue
		}
		if strings.Contains(strings.ToLower(r.Name), privateMarker) {
			continue
		}

		start := time.Unix(r.StartTimeSeconds, 0).UTC()
		durationMinutes := int(r.DurationSeconds / 60)
		status := contest.ComputeStatus(start, durationMinutes, now)

		// Past contests older than the trailing window are dropped.
		if status == contest.StatusPast && !contest.WithinLast30Days(start, now) {
			continue
		}

		out = append(out, contest.Contest{
			Platform:        contest.PlatformCodeforces,
			ID:              strconv.Itoa(r.ID),
			Title:           r.Name,
			URL:             fmt.Sprintf("https://codeforces.com/contest/%d", r.ID),
			StartTime:       start,
			DurationMinutes: durationMinutes,
			Status:          status,
		})
	}

	contest.Sort(out)
	return out
}
