package wikipedia

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-feeds/internal/provider"
)

// TrackedDriver is a driver whose session results are collected.
type TrackedDriver struct {
	Key  string `yaml:"key" json:"key"`   // e.g. "lando_norris"
	Name string `yaml:"name" json:"name"` // e.g. "Lando Norris"
}

func (d TrackedDriver) matcher() *regexp.Regexp {
	words := strings.Fields(d.Name)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `\s+`))
}

// SessionLayout maps session table fields to td column indexes.
type SessionLayout struct {
	Position, Name, Time int
	MinCells             int
}

var (
	// PracticeLayout covers practice and qualifying tables: Pos, Driver, Time.
	PracticeLayout = SessionLayout{Position: 0, Name: 1, Time: 2, MinCells: 3}
	// ClassificationLayout covers race and sprint classifications:
	// Pos, No., Driver, Constructor, Laps, Grid?, Time/Retired.
	ClassificationLayout = SessionLayout{Position: 0, Name: 2, Time: 6, MinCells: 7}
)

// CalendarColumns maps season calendar fields to td column indexes.
type CalendarColumns struct {
	Name, Date int
	MinCells   int
}

// DefaultCalendarColumns is the season calendar layout.
var DefaultCalendarColumns = CalendarColumns{Name: 1, Date: 2, MinCells: 5}

var dayMonthYear = regexp.MustCompile(`(\d{1,2}) ([A-Za-z]+) (\d{4})`)

// parseDate reads the first "29 June 2025" style date in s.
func parseDate(s string) (time.Time, bool) {
	m := dayMonthYear.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CalendarEntry is one round of the season calendar.
type CalendarEntry struct {
	Name string
	Date time.Time
	Link string
}

// ParseMostRecentRace finds the latest calendar round dated on or before now.
func ParseMostRecentRace(doc *goquery.Document, now time.Time, cols CalendarColumns) (CalendarEntry, error) {
	table := doc.Find("table.wikitable").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return strings.Contains(t.Text(), "Grand Prix")
	}).First()
	if table.Length() == 0 {
		return CalendarEntry{}, fmt.Errorf("season calendar table: %w", provider.ErrStructureMissing)
	}

	var latest CalendarEntry
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		tds := row.Find("td")
		cells := cellText(tds)
		if len(cells) < cols.MinCells {
			return
		}
		date, ok := parseDate(cellAt(cells, cols.Date))
		if !ok {
			for _, c := range cells {
				if date, ok = parseDate(c); ok {
					break
				}
			}
		}
		if !ok || date.After(now) || (!latest.Date.IsZero() && !date.After(latest.Date)) {
			return
		}
		href, _ := tds.Eq(cols.Name).Find("a").First().Attr("href")
		latest = CalendarEntry{Name: cellAt(cells, cols.Name), Date: date, Link: href}
	})

	if latest.Name == "" || latest.Link == "" {
		return CalendarEntry{}, fmt.Errorf("no completed race with a link before %s: %w",
			now.Format(time.DateOnly), provider.ErrNoRecords)
	}
	return latest, nil
}

// classifyCaption maps a session table caption to its session key.
func classifyCaption(caption string) (provider.SessionKey, bool) {
	c := strings.ToLower(caption)
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(c, s) {
				return true
			}
		}
		return false
	}
	switch {
	case has("practice 1", "first practice"):
		return provider.SessionFP1, true
	case has("practice 2", "second practice"):
		return provider.SessionFP2, true
	case has("practice 3", "third practice"):
		return provider.SessionFP3, true
	case has("sprint") && has("qualifying", "shootout"):
		return provider.SessionSprintQualifying, true
	case has("sprint"):
		return provider.SessionSprint, true
	case has("qualifying"):
		return provider.SessionQualifying, true
	case has("race result", "race classification", "grand prix"):
		return provider.SessionRace, true
	}
	return "", false
}

func layoutFor(key provider.SessionKey) SessionLayout {
	if key == provider.SessionRace || key == provider.SessionSprint {
		return ClassificationLayout
	}
	return PracticeLayout
}

// ParseRaceWeekend reads a race page. entry supplies the race name and the
// calendar date used when the infobox has none. A sprint table on the page
// makes it a sprint weekend.
func ParseRaceWeekend(doc *goquery.Document, entry CalendarEntry, drivers []TrackedDriver) (provider.RaceWeekend, error) {
	if entry.Name == "" {
		return provider.RaceWeekend{}, fmt.Errorf("race name: %w", provider.ErrStructureMissing)
	}

	results := make(map[string]provider.DriverResults, len(drivers))
	matchers := make([]*regexp.Regexp, len(drivers))
	for i, d := range drivers {
		results[d.Key] = provider.NewDriverResults()
		matchers[i] = d.matcher()
	}

	weekend := provider.WeekendNormal
	sessions := 0
	doc.Find("table.wikitable").Each(func(_ int, table *goquery.Selection) {
		key, ok := classifyCaption(table.Find("caption").First().Text())
		if !ok {
			return
		}
		sessions++
		if key == provider.SessionSprint || key == provider.SessionSprintQualifying {
			weekend = provider.WeekendSprint
		}
		layout := layoutFor(key)
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := dataCells(row)
			if len(cells) < layout.MinCells {
				return
			}
			name := cellAt(cells, layout.Name)
			for i, m := range matchers {
				if !m.MatchString(name) {
					continue
				}
				r := results[drivers[i].Key]
				r.Set(key, provider.NewSessionResult(cellAt(cells, layout.Position), cellAt(cells, layout.Time)))
				results[drivers[i].Key] = r
			}
		})
	})
	if sessions == 0 {
		return provider.RaceWeekend{}, fmt.Errorf("no session tables on %q page: %w", entry.Name, provider.ErrStructureMissing)
	}

	circuit, date := "", ""
	doc.Find("table.infobox").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := strings.ToLower(row.Find("th").Text())
		cell := row.Find("td").First()
		td := provider.CleanText(cell.Text())
		if circuit == "" && (strings.Contains(th, "course") || strings.Contains(th, "circuit")) {
			circuit = provider.CleanText(cell.Find("a").First().Text())
			if circuit == "" {
				circuit = td
			}
		}
		if date == "" && strings.Contains(th, "date") {
			if t, ok := parseDate(td); ok {
				date = t.Format(time.DateOnly)
			}
		}
	})
	if circuit == "" {
		circuit = entry.Name
	}
	if date == "" && !entry.Date.IsZero() {
		date = entry.Date.Format(time.DateOnly)
	}

	return provider.RaceWeekend{
		RaceName:      entry.Name,
		CircuitName:   circuit,
		Date:          date,
		WeekendType:   weekend,
		DriverResults: results,
	}, nil
}

// RecentRace returns an adapter that finds the most recent race on the
// season page and scrapes its results for the tracked drivers.
func (h *Handler) RecentRace(seasonPage string, drivers []TrackedDriver) provider.Adapter[provider.RaceWeekend] {
	u := h.PageURL(seasonPage)
	return provider.NewAdapter("wikipedia/recent-race", func(ctx context.Context) (provider.RaceWeekend, error) {
		season, err := h.client.GetDocument(ctx, u)
		if err != nil {
			return provider.RaceWeekend{}, err
		}
		entry, err := ParseMostRecentRace(season, h.now(), DefaultCalendarColumns)
		if err != nil {
			return provider.RaceWeekend{}, err
		}

		raceURL := h.resolve(entry.Link)
		race, err := h.client.GetDocument(ctx, raceURL)
		if err != nil {
			return provider.RaceWeekend{}, err
		}
		return ParseRaceWeekend(race, entry, drivers)
	}, h.logger)
}
