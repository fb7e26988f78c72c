package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

var tracked = []TrackedDriver{
	{Key: "lando_norris", Name: "Lando Norris"},
	{Key: "oscar_piastri", Name: "Oscar Piastri"},
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func loadDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(readFixture(t, name)))
	require.NoError(t, err)
	return doc
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

// --------------------------------------------------------------------------
// Standings
// --------------------------------------------------------------------------

func TestParseDriverStandingsByCaption(t *testing.T) {
	got, err := ParseDriverStandings(loadDoc(t, "season.html"), DriverStandingsLocator, DefaultDriverColumns)
	require.NoError(t, err)

	want := []provider.DriverStanding{
		{Position: 1, DriverName: "Oscar Piastri", Team: "McLaren", Points: 216, DriverNumber: 81, CountryCode: "AUS"},
		{Position: 2, DriverName: "Lando Norris", Team: "McLaren", Points: 201, DriverNumber: 4, CountryCode: "GBR"},
		{Position: 3, DriverName: "Max Verstappen", Team: provider.UnknownTeam, Points: 155, CountryCode: "NED"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("driver standings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConstructorStandingsByHeading(t *testing.T) {
	got, err := ParseConstructorStandings(loadDoc(t, "season.html"), ConstructorStandingsLocator, DefaultConstructorColumns)
	require.NoError(t, err)
	assert.Equal(t, []provider.ConstructorStanding{
		{Position: 1, Team: "McLaren-Mercedes", Points: 417},
		{Position: 2, Team: "Ferrari", Points: 210},
	}, got)
}

func TestParseStandingsMissingTable(t *testing.T) {
	_, err := ParseDriverStandings(loadDoc(t, "club.html"), DriverStandingsLocator, DefaultDriverColumns)
	assert.ErrorIs(t, err, provider.ErrStructureMissing)

	_, err = ParseConstructorStandings(loadDoc(t, "club.html"), ConstructorStandingsLocator, DefaultConstructorColumns)
	assert.ErrorIs(t, err, provider.ErrStructureMissing)
}

// --------------------------------------------------------------------------
// Race weekend
// --------------------------------------------------------------------------

func TestParseMostRecentRace(t *testing.T) {
	doc := loadDoc(t, "season.html")

	entry, err := ParseMostRecentRace(doc, mustDate(t, "2025-07-01"), DefaultCalendarColumns)
	require.NoError(t, err)
	assert.Equal(t, "Austrian Grand Prix", entry.Name)
	assert.Equal(t, "/wiki/2025_Austrian_Grand_Prix", entry.Link)
	assert.Equal(t, mustDate(t, "2025-06-29"), entry.Date)

	entry, err = ParseMostRecentRace(doc, mustDate(t, "2025-06-29"), DefaultCalendarColumns)
	require.NoError(t, err)
	assert.Equal(t, "Austrian Grand Prix", entry.Name, "a race on the current day counts as completed")

	_, err = ParseMostRecentRace(doc, mustDate(t, "2025-01-01"), DefaultCalendarColumns)
	assert.ErrorIs(t, err, provider.ErrNoRecords)
}

func TestParseRaceWeekendNormal(t *testing.T) {
	entry := CalendarEntry{Name: "Austrian Grand Prix", Date: mustDate(t, "2025-06-29")}
	got, err := ParseRaceWeekend(loadDoc(t, "race_normal.html"), entry, tracked)
	require.NoError(t, err)

	assert.Equal(t, "Austrian Grand Prix", got.RaceName)
	assert.Equal(t, "Red Bull Ring", got.CircuitName)
	assert.Equal(t, "2025-06-29", got.Date)
	assert.Equal(t, provider.WeekendNormal, got.WeekendType)

	norris := got.DriverResults["lando_norris"]
	assert.Equal(t, provider.SessionResult{Position: provider.Position{Token: "DNS"}, LapTime: ""}, norris.FP1,
		"a DNS position drops the scraped lap time")
	assert.Equal(t, provider.NewSessionResult("2", "1:05.234"), norris.FP2)
	assert.Equal(t, provider.NotAvailable(), norris.FP3)
	assert.Equal(t, provider.NewSessionResult("1", "1:04.123"), norris.Qualifying)
	assert.Equal(t, provider.NewSessionResult("1", "1:23:47.693"), norris.Race)

	piastri := got.DriverResults["oscar_piastri"]
	assert.Equal(t, provider.NewSessionResult("4", "1:05.567"), piastri.FP2)
	assert.Equal(t, provider.NewSessionResult("2", "+2.695"), piastri.Race)
	assert.Equal(t, provider.NotAvailable(), piastri.Sprint)
}

func TestParseRaceWeekendDetectsSprint(t *testing.T) {
	entry := CalendarEntry{Name: "Belgian Grand Prix", Date: mustDate(t, "2025-07-27")}
	got, err := ParseRaceWeekend(loadDoc(t, "race_sprint.html"), entry, tracked)
	require.NoError(t, err)

	assert.Equal(t, provider.WeekendSprint, got.WeekendType)
	assert.Equal(t, "Belgian Grand Prix", got.CircuitName, "falls back to the race name without an infobox")
	assert.Equal(t, "2025-07-27", got.Date, "falls back to the calendar date")

	piastri := got.DriverResults["oscar_piastri"]
	assert.Equal(t, provider.NewSessionResult("1", "1:26.200"), piastri.SprintQualifying)
	assert.Equal(t, provider.SessionResult{Position: provider.Position{Token: "DSQ"}}, piastri.Sprint)
	assert.Equal(t, provider.NotAvailable(), got.DriverResults["lando_norris"].Sprint)
}

func TestParseRaceWeekendWithoutSessionTables(t *testing.T) {
	_, err := ParseRaceWeekend(loadDoc(t, "club.html"), CalendarEntry{Name: "Austrian Grand Prix"}, tracked)
	assert.ErrorIs(t, err, provider.ErrStructureMissing)
}

func TestClassifyCaption(t *testing.T) {
	tests := map[string]provider.SessionKey{
		"First practice":                   provider.SessionFP1,
		"Free Practice 3 results":          provider.SessionFP3,
		"Sprint shootout classification":   provider.SessionSprintQualifying,
		"Sprint classification":            provider.SessionSprint,
		"Qualifying classification":        provider.SessionQualifying,
		"2025 Austrian Grand Prix results": provider.SessionRace,
	}
	for caption, want := range tests {
		got, ok := classifyCaption(caption)
		assert.True(t, ok, caption)
		assert.Equal(t, want, got, caption)
	}
	_, ok := classifyCaption("Championship standings after the race")
	assert.False(t, ok)
}

// --------------------------------------------------------------------------
// Club pages
// --------------------------------------------------------------------------

func baseProfile() provider.TeamProfile {
	return provider.TeamProfile{
		Name:            "Real Madrid CF",
		Founded:         1902,
		Stadium:         "Santiago Bernabéu",
		Capacity:        81044,
		Manager:         "Carlo Ancelotti",
		League:          "La Liga",
		CurrentPosition: 1,
		Description:     "Spanish professional football club based in Madrid.",
		Trophies:        map[string]int{"laLiga": 36},
	}
}

func TestParseTeamProfileOverlaysBase(t *testing.T) {
	got, err := ParseTeamProfile(loadDoc(t, "club.html"), baseProfile())
	require.NoError(t, err)

	want := baseProfile()
	want.Capacity = 83186
	want.Manager = "Xabi Alonso"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTeamProfileWithoutInfobox(t *testing.T) {
	_, err := ParseTeamProfile(loadDoc(t, "league.html"), baseProfile())
	assert.ErrorIs(t, err, provider.ErrStructureMissing)
}

func TestParseLeagueTable(t *testing.T) {
	got, err := ParseLeagueTable(loadDoc(t, "league.html"), LeagueTableLocator, DefaultLeagueColumns)
	require.NoError(t, err)
	assert.Equal(t, []provider.LeagueStanding{
		{Position: 1, Team: "Barcelona", Played: 38, Won: 28, Drawn: 4, Lost: 6, GoalsFor: 102, GoalsAgainst: 39, Points: 88},
		{Position: 2, Team: "Real Madrid", Played: 38, Won: 26, Drawn: 6, Lost: 6, GoalsFor: 78, GoalsAgainst: 38, Points: 84},
	}, got)
}

// --------------------------------------------------------------------------
// Adapters over HTTP
// --------------------------------------------------------------------------

func newHandler(t *testing.T, pages map[string]string, now time.Time) *Handler {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(readFixture(t, name)))
	}))
	t.Cleanup(srv.Close)

	client := fetch.NewClient(fetch.Options{RequestsPerMinute: 6000}, nil)
	return NewHandler(client, srv.URL, func() time.Time { return now }, nil)
}

func TestRecentRaceAdapterFollowsCalendarLink(t *testing.T) {
	h := newHandler(t, map[string]string{
		"/wiki/2025_Formula_One_World_Championship": "season.html",
		"/wiki/2025_Austrian_Grand_Prix":            "race_normal.html",
	}, mustDate(t, "2025-07-02"))

	got := h.RecentRace("2025_Formula_One_World_Championship", tracked).Fetch(context.Background())
	assert.Equal(t, "Austrian Grand Prix", got.RaceName)
	assert.Equal(t, "Red Bull Ring", got.CircuitName)
	assert.Len(t, got.DriverResults, 2)
}

func TestRecentRaceAdapterEmptyWhenRacePageMissing(t *testing.T) {
	h := newHandler(t, map[string]string{
		"/wiki/2025_Formula_One_World_Championship": "season.html",
	}, mustDate(t, "2025-07-02"))

	got := h.RecentRace("2025_Formula_One_World_Championship", tracked).Fetch(context.Background())
	assert.Equal(t, provider.RaceWeekend{}, got)
}

func TestStandingsAdapters(t *testing.T) {
	h := newHandler(t, map[string]string{"/wiki/Season": "season.html"}, time.Now())

	assert.Len(t, h.DriverStandings("Season").Fetch(context.Background()), 3)
	assert.Len(t, h.ConstructorStandings("Season").Fetch(context.Background()), 2)
	assert.Empty(t, h.DriverStandings("Missing_Page").Fetch(context.Background()))
}

func TestPageURL(t *testing.T) {
	h := NewHandler(nil, "https://en.wikipedia.org/", nil, nil)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Real_Madrid_CF", h.PageURL("Real Madrid CF"))
	assert.Equal(t, "https://en.wikipedia.org/wiki/X", h.PageURL("/wiki/X"))
	assert.Equal(t, "https://example.org/p", h.PageURL("https://example.org/p"))
	assert.Equal(t, "https://en.wikipedia.org/wiki/2025_Austrian_Grand_Prix", h.resolve("/wiki/2025_Austrian_Grand_Prix"))
}
