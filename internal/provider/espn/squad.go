// Package espn provides the squad adapter for ESPN team squad pages.
package espn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

// Columns maps squad fields to .Table__TD indexes within a row.
type Columns struct {
	Name, Position, Nationality, Age int
}

// DefaultColumns is the squad page layout: Name, POS, NAT, Age.
var DefaultColumns = Columns{Name: 0, Position: 1, Nationality: 2, Age: 3}

// ParseSquad extracts squad members from ".Table__TR" rows. The name cell
// holds the player link followed by the shirt number.
func ParseSquad(doc *goquery.Document, cols Columns) ([]provider.SquadMember, error) {
	rows := doc.Find(".Table__TR")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("squad rows .Table__TR: %w", provider.ErrStructureMissing)
	}

	var players []provider.SquadMember
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find(".Table__TD")
		if cells.Length() == 0 {
			return
		}

		nameCell := cells.Eq(cols.Name)
		name := nameCell.Find("a").First().Text()
		shirt := nameCell.Find("span").First().Text()
		if provider.CleanText(name) == "" {
			name = nameCell.Text()
			shirt = ""
		}

		member, ok := provider.NormalizeSquadRow(len(players)+1, provider.SquadRow{
			Name:        name,
			Position:    cells.Eq(cols.Position).Text(),
			Nationality: cells.Eq(cols.Nationality).Text(),
			Age:         cells.Eq(cols.Age).Text(),
			ShirtNumber: shirt,
		})
		if ok {
			players = append(players, member)
		}
	})
	if len(players) == 0 {
		return nil, fmt.Errorf("squad rows have no parsable players: %w", provider.ErrNoRecords)
	}
	return players, nil
}

// Squad returns an adapter scraping the squad page at pageURL.
func Squad(client *fetch.Client, pageURL string, logger *slog.Logger) provider.Adapter[[]provider.SquadMember] {
	return provider.NewAdapter("espn/squad", func(ctx context.Context) ([]provider.SquadMember, error) {
		doc, err := client.GetDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return ParseSquad(doc, DefaultColumns)
	}, logger)
}
