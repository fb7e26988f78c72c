package wikipedia

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-feeds/internal/provider"
)

// DriverColumns maps driver standings fields to td column indexes.
type DriverColumns struct {
	Position, Name, Nationality, Team, Points int
	MinCells                                  int
}

// DefaultDriverColumns is the season-page layout: Pos, Driver, Nat, Team, Pts.
var DefaultDriverColumns = DriverColumns{Position: 0, Name: 1, Nationality: 2, Team: 3, Points: 4, MinCells: 4}

// ConstructorColumns maps constructor standings fields to td column indexes.
type ConstructorColumns struct {
	Position, Team, Points int
	MinCells               int
}

// DefaultConstructorColumns is the season-page layout: Pos, Constructor, Pts.
var DefaultConstructorColumns = ConstructorColumns{Position: 0, Team: 1, Points: 2, MinCells: 3}

// DriverStandingsLocator finds the drivers' standings table.
var DriverStandingsLocator = FirstOf(
	ByCaption("driver", "standings"),
	ByHeading("drivers", "standings"),
)

// ConstructorStandingsLocator finds the constructors' standings table.
var ConstructorStandingsLocator = FirstOf(
	ByCaption("constructor", "standings"),
	ByHeading("constructors", "standings"),
)

// ParseDriverStandings extracts driver standings from a season page.
func ParseDriverStandings(doc *goquery.Document, locate Locator, cols DriverColumns) ([]provider.DriverStanding, error) {
	tables := locate(doc)
	if tables.Length() == 0 {
		return nil, fmt.Errorf("driver standings table: %w", provider.ErrStructureMissing)
	}

	var drivers []provider.DriverStanding
	tables.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := dataCells(row)
		if len(cells) < cols.MinCells {
			return
		}
		ds, ok := provider.NormalizeDriverRow(provider.DriverRow{
			Position:    cellAt(cells, cols.Position),
			Name:        cellAt(cells, cols.Name),
			Nationality: cellAt(cells, cols.Nationality),
			Team:        cellAt(cells, cols.Team),
			Points:      cellAt(cells, cols.Points),
		})
		if ok {
			drivers = append(drivers, ds)
		}
	})
	if len(drivers) == 0 {
		return nil, fmt.Errorf("driver standings table has no parsable rows: %w", provider.ErrNoRecords)
	}
	return drivers, nil
}

// ParseConstructorStandings extracts constructor standings from a season
// page. The season page carries no wins column, so wins are 0.
func ParseConstructorStandings(doc *goquery.Document, locate Locator, cols ConstructorColumns) ([]provider.ConstructorStanding, error) {
	tables := locate(doc)
	if tables.Length() == 0 {
		return nil, fmt.Errorf("constructor standings table: %w", provider.ErrStructureMissing)
	}

	var constructors []provider.ConstructorStanding
	tables.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := dataCells(row)
		if len(cells) < cols.MinCells {
			return
		}
		cs, ok := provider.NormalizeConstructorRow(provider.ConstructorRow{
			Position: cellAt(cells, cols.Position),
			Team:     cellAt(cells, cols.Team),
			Points:   cellAt(cells, cols.Points),
		})
		if ok {
			constructors = append(constructors, cs)
		}
	})
	if len(constructors) == 0 {
		return nil, fmt.Errorf("constructor standings table has no parsable rows: %w", provider.ErrNoRecords)
	}
	return constructors, nil
}

// DriverStandings returns an adapter scraping the drivers' standings from a
// season page.
func (h *Handler) DriverStandings(seasonPage string) provider.Adapter[[]provider.DriverStanding] {
	u := h.PageURL(seasonPage)
	return provider.NewAdapter("wikipedia/drivers", func(ctx context.Context) ([]provider.DriverStanding, error) {
		doc, err := h.client.GetDocument(ctx, u)
		if err != nil {
			return nil, err
		}
		return ParseDriverStandings(doc, DriverStandingsLocator, DefaultDriverColumns)
	}, h.logger)
}

// ConstructorStandings returns an adapter scraping the constructors'
// standings from a season page.
func (h *Handler) ConstructorStandings(seasonPage string) provider.Adapter[[]provider.ConstructorStanding] {
	u := h.PageURL(seasonPage)
	return provider.NewAdapter("wikipedia/constructors", func(ctx context.Context) ([]provider.ConstructorStanding, error) {
		doc, err := h.client.GetDocument(ctx, u)
		if err != nil {
			return nil, err
		}
		return ParseConstructorStandings(doc, ConstructorStandingsLocator, DefaultConstructorColumns)
	}, h.logger)
}
