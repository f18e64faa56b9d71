// Package feed renders the combined contest list as an RSS feed, so the
// upcoming schedule can be followed from a feed reader without the web
// UI.
package feed

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"
	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

const (
	feedTitle       = "Programming Contests"
	feedDescription = "Upcoming and recent contests from Codeforces, CodeChef, and LeetCode"
	feedLink        = "https://github.com/pfrederiksen/contest-tracker"
)

// RenderRSS builds an RSS document from the contests, in the order they
// are given (callers pass an already-sorted feed).
func RenderRSS(contests []contest.Contest, now time.Time) (string, error) {
	f := &feeds.Feed{
		Title:       feedTitle,
		Description: feedDescription,
		Link:        &feeds.Link{Href: feedLink, Rel: "self", Type: "text/html"},
		Created:     now,
	}

	for _, c := range contests {
		f.Items = append(f.Items, &feeds.Item{
			Id:    c.Key(),
			Title: fmt.Sprintf("[%s] %s", c.Platform, c.Title),
			Link:  &feeds.Link{Href: c.URL, Rel: "alternate", Type: "text/html"},
			Description: fmt.Sprintf("%s · starts %s · %s",
				c.Status,
				c.StartTime.UTC().Format(time.RFC1123),
				contest.FormatDuration(c.DurationMinutes)),
			Created: c.StartTime,
		})
	}

	rss, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("rendering RSS: %w", err)
	}
	return rss, nil
}
