package codechef

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/contest-tracker/internal/contest"
)

// cardExtractor locates contest cards in listing-page HTML and turns
// them into Contest records. The interface exists because the page's
// markup heuristics are the least stable part of the scraper: a markup
// change should mean a new implementation, not a rewrite of the chain.
type cardExtractor interface {
	extractUpcoming(doc *goquery.Document, now time.Time) []contest.Contest
	extractPast(doc *goquery.Document, now time.Time, baseline int) []contest.Contest
}

// classFragmentExtractor matches cards by a stable substring of their
// hashed CSS class names. CodeChef's build tooling rewrites class names
// on every deploy ("_flex__container_1e4x7_21" one week,
// "_flex__container_9bf2c_14" the next) but the human-chosen fragment in
// the middle survives.
type classFragmentExtractor struct{}

// Class-name fragments that survive redeploys.
const (
	cardSelector     = `div[class*="_flex__container_"]`
	timerSelector    = `div[class*="_timer__container_"]`
	subtitleSelector = `div[class*="_subtitle_"]`
)

var (
	numberPattern       = regexp.MustCompile(`\d+`)
	participantsPattern = regexp.MustCompile(`Participants:\s*(\d+)`)
)

// extractUpcoming pulls upcoming contests from the listing page. Start
// times come from each card's countdown timer: two text nodes shaped
// like "3 Days" and "14 Hrs", added to the current instant.
func (classFragmentExtractor) extractUpcoming(doc *goquery.Document, now time.Time) []contest.Contest {
	results := make([]contest.Contest, 0)

	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		link := card.Find("a").First()
		url, ok := link.Attr("href")
		if !ok || url == "" {
			// Promotional tiles have no link; not a contest.
			return
		}

		name := strings.TrimSpace(link.Text())
		url = absoluteURL(url)

		timerValues := card.Find(timerSelector).First().Find("p")
		days := parseTimerValue(timerValues.Eq(0).Text())
		hours := parseTimerValue(timerValues.Eq(1).Text())

		start := now.Add(time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour)

		results = append(results, contest.Contest{
			Platform:        contest.PlatformCodeChef,
			ID:              contestID(url),
			Title:           name,
			URL:             url,
			StartTime:       start,
			DurationMinutes: DurationMinutes,
			Status:          contest.StatusUpcoming,
		})
	})

	return results
}

// extractPast pulls past contests. The page exposes no dates for them,
// so start times are estimated by numbering Starters backward from the
// baseline (contests run weekly) anchored at the most recent past
// Wednesday slot.
func (classFragmentExtractor) extractPast(doc *goquery.Document, now time.Time, baseline int) []contest.Contest {
	results := make([]contest.Contest, 0)

	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		link := card.Find("a").First()
		url, ok := link.Attr("href")
		if !ok || url == "" {
			return
		}

		name := strings.TrimSpace(link.Text())
		url = absoluteURL(url)
		id := contestID(url)

		participants := parseParticipants(card.Find(subtitleSelector).First().Text())

		start := previousWednesday(now, 0)
		if n := contestNumber(id); n > 0 && baseline > n {
			start = previousWednesday(now, baseline-n)
		}

		results = append(results, contest.Contest{
			Platform:        contest.PlatformCodeChef,
			ID:              id,
			Title:           name,
			URL:             url,
			StartTime:       start,
			DurationMinutes: DurationMinutes,
			Status:          contest.StatusPast,
			Participants:    participants,
		})
	})

	return results
}

// parseTimerValue reads the leading number out of timer text like
// "3 Days" or "14 Hrs". Malformed or missing text counts as 0 rather
// than failing the card.
func parseTimerValue(text string) int {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// parseParticipants reads a count out of "Participants: 19600" text.
// Returns 0 when absent.
func parseParticipants(text string) int {
	m := participantsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// contestID is the last path segment of a contest URL,
// e.g. "START185" from "https://www.codechef.com/START185".
func contestID(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	return parts[len(parts)-1]
}

// contestNumber extracts the numeric part of a contest ID ("START185"
// yields 185). Returns 0 when the ID carries no digits.
func contestNumber(id string) int {
	match := numberPattern.FindString(id)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// absoluteURL resolves page-relative contest links.
func absoluteURL(url string) string {
	if strings.HasPrefix(url, "/") {
		return "https://www.codechef.com" + url
	}
	return url
}
