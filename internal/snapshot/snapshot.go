// Package snapshot provides JSON-based persistence for the scraper's
// last successful result.
//
// The snapshot file is the only durable state in the pipeline. It lives
// at a well-known path under the data directory, pretty-printed so it
// can be inspected by hand. A missing or corrupt file is treated as "no
// cache", never as an error, and writes go through a temp file and
// rename so a crash mid-write cannot leave an unparsable file behind.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/contest-tracker/internal/contest"

	log "github.com/sirupsen/logrus"
)

// FileName is the snapshot file's name under the data directory.
const FileName = "codechef-contests.json"

// Store handles persistence of scrape snapshots.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir, creating the directory if it
// does not exist. A leading ~/ is expanded to the user's home directory.
func New(dataDir string) (*Store, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{dataDir: dataDir}, nil
}

// Path returns the snapshot file's full path.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, FileName)
}

// Load reads the snapshot from disk. A missing, unreadable, or corrupt
// file yields an empty snapshot, never an error: stale-or-empty is the
// contract, the caller's fallback chain handles the rest.
func (s *Store) Load() *contest.ScrapeSnapshot {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithField("path", s.Path()).WithError(err).Warn("Snapshot unreadable, treating as absent")
		}
		return contest.NewScrapeSnapshot()
	}

	var snap contest.ScrapeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.WithField("path", s.Path()).WithError(err).Warn("Snapshot corrupt, treating as absent")
		return contest.NewScrapeSnapshot()
	}

	if snap.Upcoming == nil {
		snap.Upcoming = make([]contest.Contest, 0)
	}
	if snap.Past30Days == nil {
		snap.Past30Days = make([]contest.Contest, 0)
	}
	return &snap
}

// Save replaces the snapshot on disk wholesale. The JSON is written to a
// temp file in the same directory and renamed into place, so a failed
// write never corrupts the previous good snapshot.
func (s *Store) Save(snap *contest.ScrapeSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"path":     s.Path(),
		"upcoming": len(snap.Upcoming),
		"past":     len(snap.Past30Days),
	}).Debug("Saved scrape snapshot")

	return nil
}
