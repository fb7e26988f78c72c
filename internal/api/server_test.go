package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-feeds/internal/api/handler"
	"github.com/albapepper/scoracle-feeds/internal/cache"
	"github.com/albapepper/scoracle-feeds/internal/config"
	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fallback"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
	"github.com/albapepper/scoracle-feeds/internal/snapshot"
)

// --------------------------------------------------------------------------
// Fixtures
// --------------------------------------------------------------------------

var verstappen = []provider.DriverStanding{
	{Position: 1, DriverName: "Max Verstappen", Team: "Red Bull Racing", Points: 155, DriverNumber: 1, CountryCode: "Dutch"},
}

type testServer struct {
	router    http.Handler
	store     snapshot.Store
	liveCalls *atomic.Int32
}

// newTestServer serves the F1 kinds. Driver standings have one live source
// returning verstappen; the other kinds only have their static tail.
func newTestServer(t *testing.T, store snapshot.Store, cfg *config.Config) *testServer {
	t.Helper()
	calls := &atomic.Int32{}
	live := provider.NewAdapter("live/drivers", func(context.Context) ([]provider.DriverStanding, error) {
		calls.Add(1)
		return verstappen, nil
	}, nil)

	drivers, err := dataset.New(dataset.DriverStandings, provider.IsEmptySlice[provider.DriverStanding], nil, nil,
		live, provider.Adapter[[]provider.DriverStanding](fallback.DriverStandingsAdapter()))
	require.NoError(t, err)
	constructors, err := dataset.New(dataset.ConstructorStandings, provider.IsEmptySlice[provider.ConstructorStanding], nil, nil,
		provider.Adapter[[]provider.ConstructorStanding](fallback.ConstructorStandingsAdapter()))
	require.NoError(t, err)
	race, err := dataset.New(dataset.RecentRace, func(r provider.RaceWeekend) bool { return r.RaceName == "" }, nil, nil,
		provider.Adapter[provider.RaceWeekend](fallback.RecentRaceAdapter()))
	require.NoError(t, err)

	if cfg == nil {
		cfg = &config.Config{CORSAllowOrigins: []string{"*"}, CacheEnabled: true, CacheTTL: time.Minute, SnapshotBackend: config.BackendFile}
	}
	appCache := cache.New(cfg.CacheEnabled)
	t.Cleanup(appCache.Close)

	res := resolver.New(dataset.NewRegistryFrom(drivers, constructors, race), store, nil)
	return &testServer{router: NewRouter(res, store, appCache, cfg, nil), store: store, liveCalls: calls}
}

func newFileStore(t *testing.T) snapshot.Store {
	t.Helper()
	s, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) resolver.Snapshot {
	t.Helper()
	var snap resolver.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func decodeAdmin(t *testing.T, rec *httptest.ResponseRecorder) handler.AdminResponse {
	t.Helper()
	var resp handler.AdminResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type failingPutStore struct{ snapshot.Store }

func (failingPutStore) Put(context.Context, string, json.RawMessage) error {
	return errors.New("read-only file system")
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

func TestCurrentSnapshotNeverFetches(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	snap := decodeSnapshot(t, rec)
	assert.ElementsMatch(t, []dataset.Kind{dataset.DriverStandings, dataset.ConstructorStandings, dataset.RecentRace}, snap.Kinds())
	assert.Equal(t, resolver.OriginFallback, snap.Meta[dataset.DriverStandings].Origin)
	assert.False(t, snap.Override)
	assert.Zero(t, s.liveCalls.Load())

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = s.do(t, http.MethodGet, "/api/v1/snapshot", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestPreviewResolvesLiveAndPersists(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/snapshot/preview?datasets=driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decodeSnapshot(t, rec)
	var got []provider.DriverStanding
	require.NoError(t, json.Unmarshal(snap.Datasets[dataset.DriverStandings], &got))
	assert.Equal(t, verstappen, got)
	assert.Equal(t, resolver.OriginLive, snap.Meta[dataset.DriverStandings].Origin)

	stored, err := s.store.Get(context.Background(), string(dataset.DriverStandings))
	require.NoError(t, err)
	assert.JSONEq(t, string(snap.Datasets[dataset.DriverStandings]), string(stored))

	rec = s.do(t, http.MethodGet, "/api/v1/snapshot/preview?datasets=driver-standings", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), s.liveCalls.Load())
}

func TestCurrentSnapshotSeesWritesFromOtherProcesses(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/snapshot?datasets=driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")

	// A write that bypasses this server's resolver, e.g. the ingest CLI.
	manual := `[{"position":1,"driver_name":"Manual Entry","team":"X","points":1,"driver_number":0,"country_code":"GBR"}]`
	require.NoError(t, s.store.Put(context.Background(), string(dataset.DriverStandings), json.RawMessage(manual)))

	rec = s.do(t, http.MethodGet, "/api/v1/snapshot?datasets=driver-standings", nil, "If-None-Match", etag)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, resolver.OriginStored, snap.Meta[dataset.DriverStandings].Origin)
	assert.JSONEq(t, manual, string(snap.Datasets[dataset.DriverStandings]))
}

func TestInvalidDatasetsParameter(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/snapshot?datasets=nba-standings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_DATASETS")

	// Known kind, but this server has no chain for it.
	rec = s.do(t, http.MethodGet, "/api/v1/snapshot?datasets=squad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_DATASET")
}

func TestGetDataset(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/datasets/driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got []provider.DriverStanding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, verstappen, got)

	rec = s.do(t, http.MethodGet, "/api/v1/datasets/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDatasets(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)
	require.NoError(t, s.store.Put(context.Background(), string(dataset.RecentRace), json.RawMessage(`{}`)))

	rec := s.do(t, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []handler.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, dataset.DriverStandings, got[0].Kind)
	assert.Equal(t, []string{"live/drivers", "static/driver-standings@" + fallback.Version}, got[0].Sources)
	assert.False(t, got[0].Stored)
	assert.True(t, got[2].Stored)
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

func TestSaveOverridesAndInvalidatesCache(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/datasets/driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/datasets/driver-standings", nil)
	require.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	before := rec.Header().Get("ETag")

	manual := `[{"position":1,"driver_name":"Manual Entry","team":"X","points":1,"driver_number":0,"country_code":"GBR"}]`
	rec = s.do(t, http.MethodPost, "/api/v1/admin/save", `{"driverStandings":`+manual+`,"recentRace":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeAdmin(t, rec).Success)

	stored, err := s.store.Get(context.Background(), string(dataset.DriverStandings))
	require.NoError(t, err)
	assert.JSONEq(t, manual, string(stored))

	rec = s.do(t, http.MethodGet, "/api/v1/datasets/driver-standings", nil, "If-None-Match", before)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, manual, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/snapshot?datasets=driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.True(t, snap.Override)
	assert.Equal(t, resolver.OriginStored, snap.Meta[dataset.DriverStandings].Origin)
	assert.JSONEq(t, manual, string(snap.Datasets[dataset.DriverStandings]))
}

func TestSaveAcceptsLegacyRaceDocument(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	body := `{"recentRace":{
		"race_name":"Austrian Grand Prix","circuit_name":"Red Bull Ring","date":"2025-06-29","weekend_type":"normal",
		"mclaren_results":{
			"lando_norris":{"qualifying":{"position":1,"lap_time":"1:04.251"},"race":{"position":1,"lap_time":"1:23:47.693"}},
			"oscar_piastri":{"fp1":{"position":"DNS","lap_time":""},"race":{"position":2,"lap_time":"+2.695"}}
		}}}`
	rec := s.do(t, http.MethodPost, "/api/v1/admin/save", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.store.Get(context.Background(), string(dataset.RecentRace))
	require.NoError(t, err)
	var race provider.RaceWeekend
	require.NoError(t, json.Unmarshal(stored, &race))
	assert.Equal(t, "Austrian Grand Prix", race.RaceName)
	assert.Equal(t, provider.Position{Rank: 1}, race.DriverResults["lando_norris"].Race.Position)
	assert.Equal(t, "DNS", race.DriverResults["oscar_piastri"].FP1.Position.String())
	assert.NotContains(t, string(stored), "mclaren_results")
}

func TestSaveRejectsInvalidBodies(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	cases := map[string]string{
		"not json":     `{"driver-standings":`,
		"unknown kind": `{"nbaStandings":[]}`,
		"wrong shape":  `{"driver-standings":[{"position":1}],"constructor-standings":"oops"}`,
		"nothing":      `{"recentRace":null}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/admin/save", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	keys, err := s.store.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys, "rejected saves must not write anything")
}

func TestRefreshPersistsEveryDataset(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/refresh?datasets=f1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeAdmin(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]int{"live": 1, "fallback": 2}, resp.Origins)

	keys, err := s.store.Keys(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"driver-standings", "constructor-standings", "recent-race"}, keys)
}

func TestRefreshReturnsDataWhenStoreFails(t *testing.T) {
	s := newTestServer(t, failingPutStore{newFileStore(t)}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/refresh?datasets=driver-standings", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeAdmin(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SNAPSHOT_NOT_SAVED", resp.Error.Code)
	require.NotNil(t, resp.Data)
	assert.Contains(t, resp.Data.Datasets, dataset.DriverStandings)
}

func TestPreviewServesDataWhenStoreFails(t *testing.T) {
	s := newTestServer(t, failingPutStore{newFileStore(t)}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/snapshot/preview?datasets=driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("ETag"), "unsaved data is not cached")
	assert.Contains(t, decodeSnapshot(t, rec).Datasets, dataset.DriverStandings)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/update", handler.UpdateRequest{Action: "preview", Datasets: "driver-standings"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeAdmin(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SNAPSHOT_NOT_SAVED", resp.Error.Code)
	require.NotNil(t, resp.Data)
}

func TestUpdateActions(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/update", handler.UpdateRequest{Action: "preview", Datasets: "driver-standings"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeAdmin(t, rec).Success)
	keys, _ := s.store.Keys(context.Background())
	assert.Equal(t, []string{"driver-standings"}, keys, "live preview results are persisted")

	rec = s.do(t, http.MethodPost, "/api/v1/admin/update", handler.UpdateRequest{Action: "save"})
	require.Equal(t, http.StatusOK, rec.Code)
	keys, _ = s.store.Keys(context.Background())
	assert.ElementsMatch(t, []string{"driver-standings", "constructor-standings", "recent-race"}, keys)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/update", handler.UpdateRequest{Action: "publish"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeAdmin(t, rec).Success)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/update?datasets=driver-standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeAdmin(t, rec)
	assert.Equal(t, resolver.OriginStored, resp.Data.Meta[dataset.DriverStandings].Origin)
}

// --------------------------------------------------------------------------
// Health and middleware
// --------------------------------------------------------------------------

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, newFileStore(t), nil)

	for _, path := range []string{"/health", "/health/store", "/health/cache", "/"} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	}
	s := newTestServer(t, newFileStore(t), cfg)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil).Code)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
