// Package server exposes the aggregation pipeline over HTTP: one
// endpoint per source, a combined filterable feed, an RSS rendering,
// and bookmark management. It only reads from the pipeline — all
// scraping policy lives in the adapters.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pfrederiksen/contest-tracker/internal/aggregator"
	"github.com/pfrederiksen/contest-tracker/internal/bookmarks"
	"github.com/pfrederiksen/contest-tracker/internal/contest"
	"github.com/pfrederiksen/contest-tracker/internal/feed"

	log "github.com/sirupsen/logrus"
)

// Scraper is the CodeChef adapter as the server sees it.
type Scraper interface {
	Scrape(ctx context.Context, forceRefresh bool) *contest.ScrapeSnapshot
}

// Fetcher is the Codeforces adapter as the server sees it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]contest.Contest, error)
}

// Generator is the LeetCode adapter as the server sees it.
type Generator interface {
	Contests() []contest.Contest
}

// Server wires the three adapters and the bookmark store into an HTTP
// handler.
type Server struct {
	codechef   Scraper
	codeforces Fetcher
	leetcode   Generator
	bookmarks  *bookmarks.Store
	now        func() time.Time
}

// New creates a Server. The bookmark store may be nil, which disables
// the bookmark endpoints and the bookmarked-only filter.
func New(codechef Scraper, codeforces Fetcher, leetcode Generator, bm *bookmarks.Store) *Server {
	return &Server{
		codechef:   codechef,
		codeforces: codeforces,
		leetcode:   leetcode,
		bookmarks:  bm,
		now:        time.Now,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/contests", s.handleCombined)
		r.Get("/contests/codechef", s.handleCodeChef)
		r.Get("/contests/codeforces", s.handleCodeforces)
		r.Get("/contests/leetcode", s.handleLeetCode)

		r.Get("/bookmarks", s.handleListBookmarks)
		r.Post("/bookmarks", s.handleAddBookmark)
		r.Delete("/bookmarks", s.handleRemoveBookmark)
	})

	r.Get("/feed.rss", s.handleRSS)

	return r
}

// handleCodeChef serves the scrape snapshot. ?refresh=true bypasses the
// cache short-circuit. Statuses are recomputed at serve time; the cached
// values only say what was true at scrape time.
func (s *Server) handleCodeChef(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"
	snap := s.codechef.Scrape(r.Context(), force)

	now := s.now()
	out := contest.NewScrapeSnapshot()
	for _, c := range snap.Upcoming {
		out.Upcoming = append(out.Upcoming, c.Reclassify(now))
	}
	for _, c := range snap.Past30Days {
		out.Past30Days = append(out.Past30Days, c.Reclassify(now))
	}

	writeJSON(w, http.StatusOK, out)
}

// handleCodeforces serves the API source, degrading to an empty list on
// upstream failure.
func (s *Server) handleCodeforces(w http.ResponseWriter, r *http.Request) {
	contests, err := s.codeforces.Fetch(r.Context())
	if err != nil {
		log.WithError(err).Warn("Codeforces fetch failed, serving empty list")
		contests = make([]contest.Contest, 0)
	}
	writeJSON(w, http.StatusOK, contests)
}

// handleLeetCode serves the synthetic source; purely time-derived.
func (s *Server) handleLeetCode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.leetcode.Contests())
}

// handleCombined serves the merged feed with optional query filters:
// ?platforms=codechef,leetcode&status=upcoming&bookmarked=true
func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.parseFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.combined(r.Context(), filter))
}

// handleRSS renders the unfiltered combined feed as RSS.
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	contests := s.combined(r.Context(), nil)

	rss, err := feed.RenderRSS(contests, s.now())
	if err != nil {
		log.WithError(err).Error("RSS rendering failed")
		http.Error(w, "feed unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

// combined pulls all three sources and merges them. Adapter failures
// degrade to empty lists; the combined feed itself cannot fail.
func (s *Server) combined(ctx context.Context, filter *aggregator.Filter) []contest.Contest {
	snap := s.codechef.Scrape(ctx, false)

	cf, err := s.codeforces.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Codeforces fetch failed, combining without it")
		cf = nil
	}

	return aggregator.Combine(snap.Contests(), cf, s.leetcode.Contests(), s.now(), filter)
}

// parseFilter builds an aggregator.Filter from query parameters. On an
// invalid parameter it writes a 400 and returns ok=false.
func (s *Server) parseFilter(w http.ResponseWriter, r *http.Request) (*aggregator.Filter, bool) {
	q := r.URL.Query()
	filter := &aggregator.Filter{}

	if platforms := q.Get("platforms"); platforms != "" {
		for _, p := range strings.Split(platforms, ",") {
			switch contest.Platform(strings.TrimSpace(p)) {
			case contest.PlatformCodeChef, contest.PlatformCodeforces, contest.PlatformLeetCode:
				filter.Platforms = append(filter.Platforms, contest.Platform(strings.TrimSpace(p)))
			default:
				http.Error(w, "unknown platform: "+p, http.StatusBadRequest)
				return nil, false
			}
		}
	}

	if status := q.Get("status"); status != "" {
		switch contest.Status(status) {
		case contest.StatusAll, contest.StatusUpcoming, contest.StatusOngoing, contest.StatusPast:
			filter.Status = contest.Status(status)
		default:
			http.Error(w, "unknown status: "+status, http.StatusBadRequest)
			return nil, false
		}
	}

	if q.Get("bookmarked") == "true" {
		if s.bookmarks == nil {
			http.Error(w, "bookmarks unavailable", http.StatusBadRequest)
			return nil, false
		}
		keys, err := s.bookmarks.Keys()
		if err != nil {
			log.WithError(err).Error("Loading bookmark keys failed")
			http.Error(w, "bookmarks unavailable", http.StatusInternalServerError)
			return nil, false
		}
		filter.BookmarkedOnly = true
		filter.Bookmarks = keys
	}

	return filter, true
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		http.Error(w, "bookmarks unavailable", http.StatusNotFound)
		return
	}

	contests, err := s.bookmarks.All()
	if err != nil {
		log.WithError(err).Error("Listing bookmarks failed")
		http.Error(w, "bookmarks unavailable", http.StatusInternalServerError)
		return
	}

	now := s.now()
	for i := range contests {
		contests[i] = contests[i].Reclassify(now)
	}
	writeJSON(w, http.StatusOK, contests)
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	s.mutateBookmark(w, r, func(c contest.Contest) error {
		return s.bookmarks.Add(c)
	})
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	s.mutateBookmark(w, r, func(c contest.Contest) error {
		return s.bookmarks.Remove(c)
	})
}

// mutateBookmark decodes the contest identity from the request body and
// applies op to it.
func (s *Server) mutateBookmark(w http.ResponseWriter, r *http.Request, op func(contest.Contest) error) {
	if s.bookmarks == nil {
		http.Error(w, "bookmarks unavailable", http.StatusNotFound)
		return
	}

	var c contest.Contest
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid contest payload", http.StatusBadRequest)
		return
	}
	if c.Platform == "" || c.Title == "" || c.StartTime.IsZero() {
		http.Error(w, "platform, title, and startTime are required", http.StatusBadRequest)
		return
	}

	if err := op(c); err != nil {
		log.WithError(err).Error("Bookmark update failed")
		http.Error(w, "bookmark update failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Encoding response failed")
	}
}
