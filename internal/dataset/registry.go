package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/bbc"
	"github.com/albapepper/scoracle-feeds/internal/provider/ergast"
	"github.com/albapepper/scoracle-feeds/internal/provider/espn"
	"github.com/albapepper/scoracle-feeds/internal/provider/fallback"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
	"github.com/albapepper/scoracle-feeds/internal/provider/transfermarkt"
	"github.com/albapepper/scoracle-feeds/internal/provider/wikipedia"
)

// Result is one resolved dataset in document form.
type Result struct {
	Kind     Kind
	Document json.RawMessage
	Source   string
	Attempts int
	Fallback bool
	Duration time.Duration
}

// Resolvable is a fallback chain with its element type erased to JSON
// documents, so callers can handle every kind uniformly.
type Resolvable interface {
	Kind() Kind
	Sources() []string
	Resolve(ctx context.Context) (Result, error)
	// Fallback returns the static tail's document without network access.
	Fallback() (json.RawMessage, error)
	// Validate reports whether doc decodes into this kind's canonical shape.
	Validate(doc json.RawMessage) error
}

// ErrInvalidDocument is returned by Validate.
var ErrInvalidDocument = errors.New("invalid dataset document")

type typed[T any] struct {
	kind    Kind
	chain   *provider.Chain[T]
	isEmpty func(T) bool
	check   func(T) error
}

// New wraps a typed chain. check, when non-nil, adds kind-specific
// validation for manually saved documents.
func New[T any](kind Kind, isEmpty func(T) bool, check func(T) error, logger *slog.Logger, adapters ...provider.Adapter[T]) (Resolvable, error) {
	chain, err := provider.NewChain(string(kind), isEmpty, logger, adapters...)
	if err != nil {
		return nil, err
	}
	return &typed[T]{kind: kind, chain: chain, isEmpty: isEmpty, check: check}, nil
}

func (t *typed[T]) Kind() Kind        { return t.kind }
func (t *typed[T]) Sources() []string { return t.chain.Sources() }

func (t *typed[T]) Resolve(ctx context.Context) (Result, error) {
	res := t.chain.Resolve(ctx)
	doc, err := json.Marshal(res.Value)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", t.kind, err)
	}
	return Result{
		Kind:     t.kind,
		Document: doc,
		Source:   res.Source,
		Attempts: res.Attempts,
		Fallback: res.Fallback,
		Duration: res.Duration,
	}, nil
}

func (t *typed[T]) Fallback() (json.RawMessage, error) {
	doc, err := json.Marshal(t.chain.Fallback())
	if err != nil {
		return nil, fmt.Errorf("encode %s fallback: %w", t.kind, err)
	}
	return doc, nil
}

func (t *typed[T]) Validate(doc json.RawMessage) error {
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("%s: %w: %v", t.kind, ErrInvalidDocument, err)
	}
	if t.isEmpty(v) {
		return fmt.Errorf("%s: %w: document is empty", t.kind, ErrInvalidDocument)
	}
	if t.check != nil {
		if err := t.check(v); err != nil {
			return fmt.Errorf("%s: %w: %v", t.kind, ErrInvalidDocument, err)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Emptiness and validation per kind
// ----------------------------------------------------------------------------

func raceWeekendEmpty(r provider.RaceWeekend) bool {
	return r.RaceName == "" || len(r.DriverResults) == 0
}

func teamProfileEmpty(p provider.TeamProfile) bool { return p.Name == "" }

// checkRaceWeekend rejects lap times stored next to special positions.
func checkRaceWeekend(r provider.RaceWeekend) error {
	for driver, results := range r.DriverResults {
		for _, key := range provider.SessionKeys {
			s := results.Get(key)
			if s.Position.IsSpecial() && s.LapTime != "" {
				return fmt.Errorf("%s %s: lap_time must be empty for position %s", driver, key, s.Position)
			}
		}
	}
	if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD", r.Date)
	}
	return nil
}

func checkDriverStandings(rows []provider.DriverStanding) error {
	for i, r := range rows {
		if r.Position <= 0 || r.DriverName == "" || r.Points < 0 {
			return fmt.Errorf("row %d: position, driver_name and non-negative points are required", i)
		}
	}
	return nil
}

func checkConstructorStandings(rows []provider.ConstructorStanding) error {
	for i, r := range rows {
		if r.Position <= 0 || r.Team == "" || r.Points < 0 || r.Wins < 0 {
			return fmt.Errorf("row %d: position, team and non-negative points/wins are required", i)
		}
	}
	return nil
}

func checkMatches(rows []provider.Match) error {
	for i, m := range rows {
		if m.HomeTeam == "" || m.AwayTeam == "" {
			return fmt.Errorf("match %d: homeTeam and awayTeam are required", i)
		}
		if m.Status != provider.StatusFinished && (m.HomeScore != nil || m.AwayScore != nil) {
			return fmt.Errorf("match %d: scores are only allowed on %s matches", i, provider.StatusFinished)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Registry
// ----------------------------------------------------------------------------

// Registry maps every kind to its Resolvable.
type Registry struct {
	byKind map[Kind]Resolvable
}

// NewRegistryFrom builds a registry from prebuilt resolvables.
func NewRegistryFrom(rs ...Resolvable) *Registry {
	r := &Registry{byKind: make(map[Kind]Resolvable, len(rs))}
	for _, res := range rs {
		r.byKind[res.Kind()] = res
	}
	return r
}

// Get returns the resolvable for k.
func (r *Registry) Get(k Kind) (Resolvable, error) {
	res, ok := r.byKind[k]
	if !ok {
		return nil, fmt.Errorf("%q: %w", k, ErrUnknownKind)
	}
	return res, nil
}

// Kinds lists registered kinds in canonical order.
func (r *Registry) Kinds() []Kind {
	var out []Kind
	for _, k := range All() {
		if _, ok := r.byKind[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Deps are the collaborators NewRegistry wires into the chains.
type Deps struct {
	Client  *fetch.Client
	Sources Sources
	Now     func() time.Time
	Logger  *slog.Logger
}

// NewRegistry builds the production chain for every kind.
func NewRegistry(d Deps) (*Registry, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	f1, fb := d.Sources.F1, d.Sources.Football

	erg := ergast.NewHandler(d.Client, f1.ErgastBaseURL, logger)
	f1Wiki := wikipedia.NewHandler(d.Client, f1.WikipediaBaseURL, d.Now, logger)
	fbWiki := wikipedia.NewHandler(d.Client, fb.WikipediaBaseURL, d.Now, logger)
	prior := strconv.Itoa(f1.Season - 1)
	club := bbc.Options{Club: fb.Club, Aliases: fb.Aliases, Competition: fb.Competition}

	builders := []func() (Resolvable, error){
		func() (Resolvable, error) {
			return New(DriverStandings, provider.IsEmptySlice[provider.DriverStanding], checkDriverStandings, logger,
				erg.DriverStandings(ergast.SeasonCurrent),
				erg.DriverStandings(prior),
				f1Wiki.DriverStandings(f1.SeasonPage),
				provider.Adapter[[]provider.DriverStanding](fallback.DriverStandingsAdapter()))
		},
		func() (Resolvable, error) {
			return New(ConstructorStandings, provider.IsEmptySlice[provider.ConstructorStanding], checkConstructorStandings, logger,
				erg.ConstructorStandings(ergast.SeasonCurrent),
				erg.ConstructorStandings(prior),
				f1Wiki.ConstructorStandings(f1.SeasonPage),
				provider.Adapter[[]provider.ConstructorStanding](fallback.ConstructorStandingsAdapter()))
		},
		func() (Resolvable, error) {
			return New(RecentRace, raceWeekendEmpty, checkRaceWeekend, logger,
				f1Wiki.RecentRace(f1.SeasonPage, f1.TrackedDrivers),
				provider.Adapter[provider.RaceWeekend](fallback.RecentRaceAdapter()))
		},
		func() (Resolvable, error) {
			return New(Squad, provider.IsEmptySlice[provider.SquadMember], nil, logger,
				transfermarkt.Squad(d.Client, fb.TransfermarktURL, logger),
				espn.Squad(d.Client, fb.ESPNSquadURL, logger),
				provider.Adapter[[]provider.SquadMember](fallback.SquadAdapter()))
		},
		func() (Resolvable, error) {
			return New(LeagueTable, provider.IsEmptySlice[provider.LeagueStanding], nil, logger,
				fbWiki.LeagueTable(fb.LeaguePage),
				provider.Adapter[[]provider.LeagueStanding](fallback.LeagueTableAdapter()))
		},
		func() (Resolvable, error) {
			return New(RecentResults, provider.IsEmptySlice[provider.Match], checkMatches, logger,
				bbc.Results(d.Client, fb.BBCResultsURL, club, logger),
				provider.Adapter[[]provider.Match](fallback.RecentResultsAdapter()))
		},
		func() (Resolvable, error) {
			return New(UpcomingFixtures, provider.IsEmptySlice[provider.Match], checkMatches, logger,
				bbc.Fixtures(d.Client, fb.BBCFixturesURL, club, logger),
				provider.Adapter[[]provider.Match](fallback.UpcomingFixturesAdapter()))
		},
		func() (Resolvable, error) {
			return New(TeamInfo, teamProfileEmpty, nil, logger,
				fbWiki.TeamProfile(fb.ClubPage, fallback.TeamProfile),
				provider.Adapter[provider.TeamProfile](fallback.TeamProfileAdapter()))
		},
	}

	rs := make([]Resolvable, 0, len(builders))
	for _, build := range builders {
		res, err := build()
		if err != nil {
			return nil, fmt.Errorf("build chain: %w", err)
		}
		rs = append(rs, res)
	}
	return NewRegistryFrom(rs...), nil
}
