// Package bookmarks persists the user's bookmarked contests.
//
// Contests from different platforms do not share an ID space, so a
// bookmark is identified by the (platform, title, startTime) triple.
// The store keeps enough of each contest to survive the upstream feed
// dropping it (contests age out of every source after 30 days).
package bookmarks

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/contest"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Store is a SQLite-backed bookmark collection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the bookmark database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening bookmark database: %w", err)
	}

	createTable := `
	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		title TEXT NOT NULL,
		start_time TEXT NOT NULL,         -- RFC3339 UTC; part of the identity triple
		duration_minutes INTEGER DEFAULT 0,
		url TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(platform, title, start_time)
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bookmarks table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add bookmarks a contest. Adding an already-bookmarked contest is a
// no-op.
func (s *Store) Add(c contest.Contest) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO bookmarks (platform, title, start_time, duration_minutes, url)
		 VALUES (?, ?, ?, ?, ?)`,
		string(c.Platform), c.Title, c.StartTime.UTC().Format(time.RFC3339), c.DurationMinutes, c.URL,
	)
	if err != nil {
		return fmt.Errorf("adding bookmark: %w", err)
	}
	return nil
}

// Remove deletes a contest's bookmark. Removing an absent bookmark is a
// no-op.
func (s *Store) Remove(c contest.Contest) error {
	_, err := s.db.Exec(
		`DELETE FROM bookmarks WHERE platform = ? AND title = ? AND start_time = ?`,
		string(c.Platform), c.Title, c.StartTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("removing bookmark: %w", err)
	}
	return nil
}

// IsBookmarked reports whether the contest's identity triple is stored.
func (s *Store) IsBookmarked(c contest.Contest) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(1) FROM bookmarks WHERE platform = ? AND title = ? AND start_time = ?`,
		string(c.Platform), c.Title, c.StartTime.UTC().Format(time.RFC3339),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking bookmark: %w", err)
	}
	return n > 0, nil
}

// Keys returns the identity set of all bookmarks, keyed by
// contest.Contest.Key, for use as a feed filter.
func (s *Store) Keys() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT platform, title, start_time FROM bookmarks`)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var platform, title, start string
		if err := rows.Scan(&platform, &title, &start); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		keys[platform+"|"+title+"|"+start] = true
	}
	return keys, rows.Err()
}

// All returns the stored bookmarks as contests, most recently added
// first. Status is left unset; callers reclassify before presenting.
func (s *Store) All() ([]contest.Contest, error) {
	rows, err := s.db.Query(
		`SELECT platform, title, start_time, duration_minutes, url
		 FROM bookmarks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	contests := make([]contest.Contest, 0)
	for rows.Next() {
		var platform, title, start, url string
		var duration int
		if err := rows.Scan(&platform, &title, &start, &duration, &url); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		startTime, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, fmt.Errorf("parsing bookmark start time %q: %w", start, err)
		}
		contests = append(contests, contest.Contest{
			Platform:        contest.Platform(platform),
			Title:           title,
			StartTime:       startTime,
			DurationMinutes: duration,
			URL:             url,
		})
	}
	return contests, rows.Err()
}
