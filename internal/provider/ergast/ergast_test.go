package ergast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

const verstappenEntry = `{
	"position": "1",
	"points": "155",
	"wins": "2",
	"Driver": {"givenName": "Max", "familyName": "Verstappen", "permanentNumber": "1", "nationality": "Dutch"},
	"Constructors": [{"name": "Red Bull Racing"}]
}`

func TestNormalizeDriverStandingConcreteScenario(t *testing.T) {
	var raw RawDriverStanding
	require.NoError(t, json.Unmarshal([]byte(verstappenEntry), &raw))

	got, ok := NormalizeDriverStanding(raw)
	require.True(t, ok)
	assert.Equal(t, provider.DriverStanding{
		Position:     1,
		DriverName:   "Max Verstappen",
		Team:         "Red Bull Racing",
		Points:       155,
		DriverNumber: 1,
		CountryCode:  "Dutch",
	}, got)
}

func TestNormalizeDriverStandingDefaults(t *testing.T) {
	var raw RawDriverStanding
	require.NoError(t, json.Unmarshal([]byte(`{"position":"4","points":"n/a","Driver":{"givenName":"Kimi","familyName":"Antonelli"}}`), &raw))

	got, ok := NormalizeDriverStanding(raw)
	require.True(t, ok)
	assert.Equal(t, provider.UnknownTeam, got.Team)
	assert.Zero(t, got.Points)
	assert.Zero(t, got.DriverNumber)

	_, ok = NormalizeDriverStanding(RawDriverStanding{Position: "1"})
	assert.False(t, ok, "entries without a driver name are dropped")
}

func newServer(t *testing.T, routes map[string]string) (*Handler, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := fetch.NewClient(fetch.Options{RequestsPerMinute: 6000}, nil)
	return NewHandler(client, srv.URL, nil), &hits
}

func TestDriverStandingsAdapter(t *testing.T) {
	h, _ := newServer(t, map[string]string{
		"/current/driverStandings.json": `{"MRData":{"StandingsTable":{"season":"2025","StandingsLists":[{"season":"2025","round":"11","DriverStandings":[` + verstappenEntry + `]}]}}}`,
	})

	a := h.DriverStandings(SeasonCurrent)
	assert.Equal(t, "ergast/current/drivers", a.Name())

	got := a.Fetch(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "Max Verstappen", got[0].DriverName)
}

func TestConstructorStandingsAdapter(t *testing.T) {
	h, _ := newServer(t, map[string]string{
		"/2024/constructorStandings.json": `{"MRData":{"StandingsTable":{"StandingsLists":[{"ConstructorStandings":[
			{"position":"1","points":"666","wins":"6","Constructor":{"name":"McLaren"}},
			{"position":"2","points":"652","wins":"5","Constructor":{"name":"Ferrari"}}
		]}]}}}`,
	})

	got := h.ConstructorStandings("2024").Fetch(context.Background())
	assert.Equal(t, []provider.ConstructorStanding{
		{Position: 1, Team: "McLaren", Points: 666, Wins: 6},
		{Position: 2, Team: "Ferrari", Points: 652, Wins: 5},
	}, got)
}

func TestAdapterEmptyOnBadShapes(t *testing.T) {
	tests := map[string]string{
		"missing wrapper": `{"data":[]}`,
		"empty lists":     `{"MRData":{"StandingsTable":{"season":"2026","StandingsLists":[]}}}`,
		"not json":        `<html>maintenance</html>`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newServer(t, map[string]string{"/current/driverStandings.json": body})
			assert.Empty(t, h.DriverStandings(SeasonCurrent).Fetch(context.Background()))
		})
	}

	t.Run("not found", func(t *testing.T) {
		h, hits := newServer(t, nil)
		assert.Empty(t, h.DriverStandings(SeasonCurrent).Fetch(context.Background()))
		assert.Equal(t, int32(1), hits.Load(), "no retries")
	})
}
