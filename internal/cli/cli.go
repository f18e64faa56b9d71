// Package cli implements the contest-tracker command line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pfrederiksen/contest-tracker/internal/aggregator"
	"github.com/pfrederiksen/contest-tracker/internal/bookmarks"
	"github.com/pfrederiksen/contest-tracker/internal/codechef"
	"github.com/pfrederiksen/contest-tracker/internal/codeforces"
	"github.com/pfrederiksen/contest-tracker/internal/contest"
	"github.com/pfrederiksen/contest-tracker/internal/leetcode"
	"github.com/pfrederiksen/contest-tracker/internal/scheduler"
	"github.com/pfrederiksen/contest-tracker/internal/server"
	"github.com/pfrederiksen/contest-tracker/internal/snapshot"
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"
)

var (
	flagDataDir    string
	flagFixtureDir string
	flagBaseline   int
	flagVerbose    bool

	flagListen string

	flagRefresh bool
	flagFormat  string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contest-tracker",
		Short: "Aggregate programming contests from Codeforces, CodeChef, and LeetCode",
		Long: `contest-tracker aggregates programming contest schedules into one feed.
Codeforces comes from its JSON API, CodeChef is scraped from its contests
page (with cached and synthetic fallbacks), and LeetCode is synthesized
from its weekly/biweekly cadence.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	// Define flags
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "~/.local/share/contest-tracker", "Data directory for snapshots and bookmarks")
	cmd.PersistentFlags().StringVar(&flagFixtureDir, "fixture-dir", "", "Directory with saved CodeChef listing pages used as a scrape fallback")
	cmd.PersistentFlags().IntVar(&flagBaseline, "codechef-baseline", codechef.DefaultBaselineNumber, "Most recent past Starters number, used to back-date past contests")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newFetchCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the background scrape scheduler",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagListen, "listen", ":8080", "HTTP listen address")
	return cmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the combined contest feed once and print it",
		RunE:  runFetch,
	}
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Force a fresh CodeChef scrape instead of the cached snapshot")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

// buildAdapters constructs the three source adapters from the flags.
func buildAdapters() (*codechef.Scraper, *codeforces.Client, *leetcode.Generator, *snapshot.Store, error) {
	store, err := snapshot.New(flagDataDir)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("initializing snapshot store: %w", err)
	}

	scraper := codechef.New(store, codechef.Config{
		FixtureDir:     flagFixtureDir,
		BaselineNumber: flagBaseline,
	})

	return scraper, codeforces.New(), leetcode.New(), store, nil
}

// runServe wires the adapters into the HTTP server, starts the scrape
// scheduler, and blocks until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	scraper, cfClient, lcGen, store, err := buildAdapters()
	if err != nil {
		return err
	}

	bm, err := bookmarks.Open(filepath.Join(filepath.Dir(store.Path()), "bookmarks.db"))
	if err != nil {
		return fmt.Errorf("initializing bookmark store: %w", err)
	}
	defer bm.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(func(ctx context.Context) {
		scraper.Scrape(ctx, true)
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := &http.Server{
		Addr:              flagListen,
		Handler:           server.New(scraper, cfClient, lcGen, bm).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", flagListen).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runFetch pulls all three sources once and prints the combined feed.
func runFetch(cmd *cobra.Command, args []string) error {
	if flagFormat != "text" && flagFormat != "json" {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	scraper, cfClient, lcGen, _, err := buildAdapters()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap := scraper.Scrape(ctx, flagRefresh)

	cf, err := cfClient.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Codeforces fetch failed, continuing without it")
		cf = nil
	}

	combined := aggregator.Combine(snap.Contests(), cf, lcGen.Contests(), time.Now(), nil)

	if flagFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(combined)
	}

	printFeed(os.Stdout, combined)
	return nil
}

// printFeed writes a human-readable feed listing.
func printFeed(w io.Writer, contests []contest.Contest) {
	if len(contests) == 0 {
		fmt.Fprintln(w, "No contests found.")
		return
	}

	for _, c := range contests {
		fmt.Fprintf(w, "[%-10s] %-8s  %s  %s (%s)\n",
			c.Platform,
			c.Status,
			c.StartTime.UTC().Format("2006-01-02 15:04"),
			c.Title,
			contest.FormatDuration(c.DurationMinutes))
	}
	fmt.Fprintf(w, "\n%d contests\n", len(contests))
}
