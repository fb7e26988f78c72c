// Package transfermarkt provides the squad adapter for Transfermarkt club
// "kader" pages.
package transfermarkt

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

// ageInParens matches the "(29)" suffix of "Dec 25, 1995 (29)".
var ageInParens = regexp.MustCompile(`\((\d{1,2})\)`)

// ParseSquad extracts squad members from the ".items" table. A row is kept
// only when it has both a player name and a position.
func ParseSquad(doc *goquery.Document) ([]provider.SquadMember, error) {
	rows := doc.Find("table.items > tbody > tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("squad table .items: %w", provider.ErrStructureMissing)
	}

	var players []provider.SquadMember
	rows.Each(func(_ int, row *goquery.Selection) {
		name := row.Find(".hauptlink a").First().Text()

		position := row.Find("td.posrela table tr").Last().Text()
		if provider.CleanText(position) == "" {
			position = row.Find("td:nth-child(2)").First().Text()
		}

		nationality, _ := row.Find(".flaggenrahmen").First().Attr("title")

		ageText := row.Find("td:nth-child(4)").First().Text()
		if m := ageInParens.FindStringSubmatch(ageText); m != nil {
			ageText = m[1]
		}

		shirt := row.Find(".rn_nummer").First().Text()
		if provider.CleanText(shirt) == "" {
			shirt = row.Find("td:nth-child(1)").First().Text()
		}

		member, ok := provider.NormalizeSquadRow(len(players)+1, provider.SquadRow{
			Name:        name,
			Position:    position,
			Nationality: nationality,
			Age:         ageText,
			ShirtNumber: shirt,
		})
		if ok {
			players = append(players, member)
		}
	})
	if len(players) == 0 {
		return nil, fmt.Errorf("squad table has no parsable rows: %w", provider.ErrNoRecords)
	}
	return players, nil
}

// Squad returns an adapter scraping the squad page at pageURL.
func Squad(client *fetch.Client, pageURL string, logger *slog.Logger) provider.Adapter[[]provider.SquadMember] {
	return provider.NewAdapter("transfermarkt/squad", func(ctx context.Context) ([]provider.SquadMember, error) {
		doc, err := client.GetDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return ParseSquad(doc)
	}, logger)
}
