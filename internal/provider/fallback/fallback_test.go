package fallback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-feeds/internal/provider"
)

func TestDatasetsAreNonEmpty(t *testing.T) {
	assert.Len(t, DriverStandings(), 21)
	assert.Len(t, ConstructorStandings(), 10)
	assert.Len(t, Squad(), 20)
	assert.Len(t, LeagueTable(), 20)
	assert.Len(t, RecentResults(), 10)
	assert.Len(t, UpcomingFixtures(), 10)
	assert.Equal(t, "Real Madrid CF", TeamProfile().Name)
	assert.Equal(t, 15, TeamProfile().Trophies["championsLeague"])
}

func TestDriverStandingsArePositionallyDense(t *testing.T) {
	for i, d := range DriverStandings() {
		assert.Equal(t, i+1, d.Position)
		assert.GreaterOrEqual(t, d.Points, 0.0)
	}
	for i, c := range ConstructorStandings() {
		assert.Equal(t, i+1, c.Position)
	}
}

func TestRecentRaceHonoursSpecialPositions(t *testing.T) {
	race := RecentRace()
	assert.Equal(t, "Austrian Grand Prix", race.RaceName)
	assert.Equal(t, "2025-06-29", race.Date)
	require.Contains(t, race.DriverResults, "lando_norris")
	require.Contains(t, race.DriverResults, "oscar_piastri")

	for driver, results := range race.DriverResults {
		for _, key := range provider.SessionKeys {
			s := results.Get(key)
			if s.Position.IsSpecial() {
				assert.Empty(t, s.LapTime, "%s %s", driver, key)
			}
		}
	}
	assert.Equal(t, "DNS", race.DriverResults["lando_norris"].FP1.Position.String())
}

func TestMatchesRespectScoreRule(t *testing.T) {
	for _, m := range RecentResults() {
		assert.Equal(t, provider.StatusFinished, m.Status)
		assert.NotNil(t, m.HomeScore)
	}
	for _, m := range UpcomingFixtures() {
		assert.Equal(t, provider.StatusScheduled, m.Status)
		assert.Nil(t, m.HomeScore)
	}
}

func TestAdaptersAreVersioned(t *testing.T) {
	a := DriverStandingsAdapter()
	assert.Equal(t, "static/driver-standings@"+Version, a.Name())

	first := a.Fetch(context.Background())
	first[0].DriverName = "changed"
	assert.Equal(t, "Oscar Piastri", a.Fetch(context.Background())[0].DriverName)
}

func TestDocumentUnknownKind(t *testing.T) {
	_, err := Document("lap-charts")
	assert.Error(t, err)
}
