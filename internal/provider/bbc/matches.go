// Package bbc provides results and fixtures adapters for BBC Sport team
// pages. Matches are read from promo cards whose heading is the match title.
package bbc

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

// MaxMatches caps the number of results or fixtures returned.
const MaxMatches = 10

// Options describes the tracked club for title matching.
type Options struct {
	Club        string   // e.g. "Real Madrid"
	Aliases     []string // extra names the club appears under in titles
	Competition string   // label stamped on every parsed match
}

var (
	resultTitle  = regexp.MustCompile(`^(.+?)\s+(\d+)\s*[-–]\s*(\d+)\s+(.+)$`)
	fixtureTitle = regexp.MustCompile(`(?i)^(.+?)\s+(?:v|vs\.?)\s+(.+)$`)
)

// ParsedTitle is a match title split into teams and, for results, scores.
type ParsedTitle struct {
	Home, Away           string
	HomeScore, AwayScore *int
}

// ParseTitle splits "<home> <h>-<a> <away>" or "<home> v <away>". ok is
// false when the title matches neither form.
func ParseTitle(title string) (ParsedTitle, bool) {
	title = provider.CleanText(title)
	if m := resultTitle.FindStringSubmatch(title); m != nil {
		h, _ := strconv.Atoi(m[2])
		a, _ := strconv.Atoi(m[3])
		return ParsedTitle{Home: m[1], Away: m[4], HomeScore: &h, AwayScore: &a}, true
	}
	if m := fixtureTitle.FindStringSubmatch(title); m != nil {
		return ParsedTitle{Home: m[1], Away: m[2]}, true
	}
	return ParsedTitle{}, false
}

func (o Options) involves(p ParsedTitle) bool {
	home, away := strings.ToLower(p.Home), strings.ToLower(p.Away)
	for _, name := range append([]string{o.Club}, o.Aliases...) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if strings.Contains(home, name) || strings.Contains(away, name) {
			return true
		}
	}
	return false
}

// matchDate returns the YYYY-MM-DD part of a datetime attribute.
func matchDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	if len(s) >= len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return s[:len(time.DateOnly)]
		}
	}
	return ""
}

// ParseMatches reads up to MaxMatches dated promo cards involving the club. With
// finished set, only titles carrying a score are kept and stamped FINISHED;
// otherwise only unscored "<home> v <away>" titles are kept as SCHEDULED.
func ParseMatches(doc *goquery.Document, opts Options, finished bool) ([]provider.Match, error) {
	promos := doc.Find(".gs-c-promo")
	if promos.Length() == 0 {
		return nil, fmt.Errorf("promo cards .gs-c-promo: %w", provider.ErrStructureMissing)
	}

	status := provider.StatusScheduled
	if finished {
		status = provider.StatusFinished
	}

	var matches []provider.Match
	promos.EachWithBreak(func(_ int, promo *goquery.Selection) bool {
		title := promo.Find(".gs-c-promo-heading__title").First().Text()
		parsed, ok := ParseTitle(title)
		if !ok || !opts.involves(parsed) {
			return true
		}
		if finished != (parsed.HomeScore != nil) {
			return true
		}
		datetime, _ := promo.Find("time[datetime]").First().Attr("datetime")
		date := matchDate(datetime)
		if date == "" {
			return true
		}

		matches = append(matches, provider.NormalizeMatch(provider.Match{
			ID:          len(matches) + 1,
			HomeTeam:    parsed.Home,
			AwayTeam:    parsed.Away,
			HomeScore:   parsed.HomeScore,
			AwayScore:   parsed.AwayScore,
			Date:        date,
			Competition: opts.Competition,
			Status:      status,
		}))
		return len(matches) < MaxMatches
	})
	if len(matches) == 0 {
		return nil, fmt.Errorf("no promo cards for %q: %w", opts.Club, provider.ErrNoRecords)
	}
	return matches, nil
}

// Results returns an adapter for the finished matches on pageURL.
func Results(client *fetch.Client, pageURL string, opts Options, logger *slog.Logger) provider.Adapter[[]provider.Match] {
	return provider.NewAdapter("bbc/results", func(ctx context.Context) ([]provider.Match, error) {
		doc, err := client.GetDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return ParseMatches(doc, opts, true)
	}, logger)
}

// Fixtures returns an adapter for the scheduled matches on pageURL.
func Fixtures(client *fetch.Client, pageURL string, opts Options, logger *slog.Logger) provider.Adapter[[]provider.Match] {
	return provider.NewAdapter("bbc/fixtures", func(ctx context.Context) ([]provider.Match, error) {
		doc, err := client.GetDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return ParseMatches(doc, opts, false)
	}, logger)
}
