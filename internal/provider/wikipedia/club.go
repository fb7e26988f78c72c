package wikipedia

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dario.cat/mergo"
	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-feeds/internal/provider"
)

var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// infoboxValue returns the cleaned td text of the first infobox row whose
// header contains any of labels.
func infoboxValue(doc *goquery.Document, labels ...string) string {
	value := ""
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !containsAny(row.Find("th").First().Text(), labels) {
			return true
		}
		value = provider.CleanText(row.Find("td").First().Text())
		return value == ""
	})
	return value
}

func containsAny(text string, subs []string) bool {
	text = strings.ToLower(text)
	for _, s := range subs {
		if strings.Contains(text, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// ParseTeamProfile reads the club infobox and overlays what it finds on
// base: fields the page does not provide keep base's values. Returns
// ErrStructureMissing when the infobox yields none of founded, ground or
// manager.
func ParseTeamProfile(doc *goquery.Document, base provider.TeamProfile) (provider.TeamProfile, error) {
	var scraped provider.TeamProfile

	if m := yearPattern.FindString(infoboxValue(doc, "founded")); m != "" {
		scraped.Founded = provider.IntOr(m, 0)
	}
	scraped.Stadium = firstLine(infoboxValue(doc, "ground", "stadium"))
	scraped.Manager = firstLine(infoboxValue(doc, "manager", "head coach"))
	if capText := strings.ReplaceAll(infoboxValue(doc, "capacity"), ",", ""); capText != "" {
		scraped.Capacity = provider.NonNegative(provider.IntOr(capText, 0))
	}
	scraped.League = firstLine(infoboxValue(doc, "league"))

	if scraped.Founded == 0 && scraped.Stadium == "" && scraped.Manager == "" {
		return provider.TeamProfile{}, fmt.Errorf("club infobox: %w", provider.ErrStructureMissing)
	}

	if err := mergo.Merge(&scraped, base); err != nil {
		return provider.TeamProfile{}, fmt.Errorf("merge profile defaults: %w", err)
	}
	return scraped, nil
}

// firstLine keeps the text before the first parenthesis or semicolon, which
// is where infoboxes append notes like "(as Madrid Football Club)".
func firstLine(s string) string {
	if i := strings.IndexAny(s, "(;"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// TeamProfile returns an adapter scraping the club page infobox. base
// supplies the fields the page cannot provide (description, trophies).
func (h *Handler) TeamProfile(clubPage string, base func() provider.TeamProfile) provider.Adapter[provider.TeamProfile] {
	u := h.PageURL(clubPage)
	return provider.NewAdapter("wikipedia/team-info", func(ctx context.Context) (provider.TeamProfile, error) {
		doc, err := h.client.GetDocument(ctx, u)
		if err != nil {
			return provider.TeamProfile{}, err
		}
		return ParseTeamProfile(doc, base())
	}, h.logger)
}

// --------------------------------------------------------------------------
// League table
// --------------------------------------------------------------------------

// LeagueColumns maps league table fields to cell indexes (th and td).
type LeagueColumns struct {
	Position, Team, Played, Won, Drawn, Lost, GoalsFor, GoalsAgainst, Points int
	MinCells                                                                 int
}

// DefaultLeagueColumns is the layout Pos, Team, Pld, W, D, L, GF, GA, GD, Pts.
var DefaultLeagueColumns = LeagueColumns{
	Position: 0, Team: 1, Played: 2, Won: 3, Drawn: 4, Lost: 5,
	GoalsFor: 6, GoalsAgainst: 7, Points: 9, MinCells: 10,
}

// LeagueTableLocator finds the league table on a league season page.
var LeagueTableLocator = FirstOf(
	ByCaption("league", "table"),
	ByHeading("league table"),
)

// ParseLeagueTable extracts the league table. The team column is often a
// row header, so th cells are read alongside td cells.
func ParseLeagueTable(doc *goquery.Document, locate Locator, cols LeagueColumns) ([]provider.LeagueStanding, error) {
	tables := locate(doc)
	if tables.Length() == 0 {
		return nil, fmt.Errorf("league table: %w", provider.ErrStructureMissing)
	}

	var rows []provider.LeagueStanding
	tables.First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := allCells(row)
		if len(cells) < cols.MinCells {
			return
		}
		ls, ok := provider.NormalizeLeagueRow(provider.LeagueRow{
			Position:     cellAt(cells, cols.Position),
			Team:         cellAt(cells, cols.Team),
			Played:       cellAt(cells, cols.Played),
			Won:          cellAt(cells, cols.Won),
			Drawn:        cellAt(cells, cols.Drawn),
			Lost:         cellAt(cells, cols.Lost),
			GoalsFor:     cellAt(cells, cols.GoalsFor),
			GoalsAgainst: cellAt(cells, cols.GoalsAgainst),
			Points:       cellAt(cells, cols.Points),
		})
		if ok {
			ls.Team = firstLine(ls.Team)
			rows = append(rows, ls)
		}
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("league table has no parsable rows: %w", provider.ErrNoRecords)
	}
	return rows, nil
}

// LeagueTable returns an adapter scraping a league season page.
func (h *Handler) LeagueTable(leaguePage string) provider.Adapter[[]provider.LeagueStanding] {
	u := h.PageURL(leaguePage)
	return provider.NewAdapter("wikipedia/league-table", func(ctx context.Context) ([]provider.LeagueStanding, error) {
		doc, err := h.client.GetDocument(ctx, u)
		if err != nil {
			return nil, err
		}
		return ParseLeagueTable(doc, LeagueTableLocator, DefaultLeagueColumns)
	}, h.logger)
}
