// Package ergast provides adapters for the Ergast-compatible F1 standings
// API (https://api.jolpi.ca/ergast/f1 mirrors the retired ergast.com schema).
//
// Standings sit under MRData.StandingsTable.StandingsLists[0]; every numeric
// field is a JSON string.
package ergast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

// DefaultBaseURL is the Ergast-compatible endpoint used when none is configured.
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

// SeasonCurrent selects the running season.
const SeasonCurrent = "current"

// Handler builds standings adapters for one API base URL.
type Handler struct {
	client  *fetch.Client
	baseURL string
	logger  *slog.Logger
}

// NewHandler creates an Ergast handler.
func NewHandler(client *fetch.Client, baseURL string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Handler{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// --------------------------------------------------------------------------
// Raw response shapes
// --------------------------------------------------------------------------

type standingsResponse struct {
	MRData *struct {
		StandingsTable *struct {
			Season         string          `json:"season"`
			StandingsLists []standingsList `json:"StandingsLists"`
		} `json:"StandingsTable"`
	} `json:"MRData"`
}

type standingsList struct {
	Season               string                   `json:"season"`
	Round                string                   `json:"round"`
	DriverStandings      []RawDriverStanding      `json:"DriverStandings"`
	ConstructorStandings []RawConstructorStanding `json:"ConstructorStandings"`
}

// RawDriverStanding is one entry of DriverStandings as the API returns it.
type RawDriverStanding struct {
	Position string `json:"position"`
	Points   string `json:"points"`
	Wins     string `json:"wins"`
	Driver   struct {
		DriverID        string `json:"driverId"`
		PermanentNumber string `json:"permanentNumber"`
		Code            string `json:"code"`
		GivenName       string `json:"givenName"`
		FamilyName      string `json:"familyName"`
		Nationality     string `json:"nationality"`
	} `json:"Driver"`
	Constructors []struct {
		Name string `json:"name"`
	} `json:"Constructors"`
}

// RawConstructorStanding is one entry of ConstructorStandings.
type RawConstructorStanding struct {
	Position    string `json:"position"`
	Points      string `json:"points"`
	Wins        string `json:"wins"`
	Constructor struct {
		ConstructorID string `json:"constructorId"`
		Name          string `json:"name"`
		Nationality   string `json:"nationality"`
	} `json:"Constructor"`
}

// firstList returns the first standings list, or ErrStructureMissing when
// the nested path is absent.
func (r *standingsResponse) firstList() (*standingsList, error) {
	if r.MRData == nil || r.MRData.StandingsTable == nil {
		return nil, fmt.Errorf("MRData.StandingsTable: %w", provider.ErrStructureMissing)
	}
	lists := r.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 {
		return nil, fmt.Errorf("season %q has no standings lists: %w",
			r.MRData.StandingsTable.Season, provider.ErrNoRecords)
	}
	return &lists[0], nil
}

// --------------------------------------------------------------------------
// Normalizers
// --------------------------------------------------------------------------

// NormalizeDriverStanding maps an API entry to a DriverStanding. ok is false
// when the entry has no valid position or no driver name.
func NormalizeDriverStanding(raw RawDriverStanding) (provider.DriverStanding, bool) {
	pos, ok := provider.ParseInt(raw.Position)
	name := strings.TrimSpace(raw.Driver.GivenName + " " + raw.Driver.FamilyName)
	if !ok || pos <= 0 || name == "" {
		return provider.DriverStanding{}, false
	}

	team := provider.UnknownTeam
	if len(raw.Constructors) > 0 && strings.TrimSpace(raw.Constructors[0].Name) != "" {
		team = strings.TrimSpace(raw.Constructors[0].Name)
	}
	points, _ := provider.ExtractValue(raw.Points)
	if points < 0 {
		points = 0
	}

	return provider.DriverStanding{
		Position:     pos,
		DriverName:   name,
		Team:         team,
		Points:       points,
		DriverNumber: provider.NonNegative(provider.IntOr(raw.Driver.PermanentNumber, 0)),
		CountryCode:  raw.Driver.Nationality,
	}, true
}

// NormalizeConstructorStanding maps an API entry to a ConstructorStanding.
func NormalizeConstructorStanding(raw RawConstructorStanding) (provider.ConstructorStanding, bool) {
	pos, ok := provider.ParseInt(raw.Position)
	team := strings.TrimSpace(raw.Constructor.Name)
	if !ok || pos <= 0 || team == "" {
		return provider.ConstructorStanding{}, false
	}
	points, _ := provider.ExtractValue(raw.Points)
	if points < 0 {
		points = 0
	}
	return provider.ConstructorStanding{
		Position: pos,
		Team:     team,
		Points:   points,
		Wins:     provider.NonNegative(provider.IntOr(raw.Wins, 0)),
	}, true
}

// --------------------------------------------------------------------------
// Adapters
// --------------------------------------------------------------------------

// DriverStandings returns an adapter for the drivers' championship of season
// ("current" or a year).
func (h *Handler) DriverStandings(season string) provider.Adapter[[]provider.DriverStanding] {
	return provider.NewAdapter("ergast/"+season+"/drivers", func(ctx context.Context) ([]provider.DriverStanding, error) {
		list, err := h.fetchStandings(ctx, season, "driverStandings")
		if err != nil {
			return nil, err
		}
		out := make([]provider.DriverStanding, 0, len(list.DriverStandings))
		for _, raw := range list.DriverStandings {
			if ds, ok := NormalizeDriverStanding(raw); ok {
				out = append(out, ds)
			}
		}
		return out, nil
	}, h.logger)
}

// ConstructorStandings returns an adapter for the constructors' championship.
func (h *Handler) ConstructorStandings(season string) provider.Adapter[[]provider.ConstructorStanding] {
	return provider.NewAdapter("ergast/"+season+"/constructors", func(ctx context.Context) ([]provider.ConstructorStanding, error) {
		list, err := h.fetchStandings(ctx, season, "constructorStandings")
		if err != nil {
			return nil, err
		}
		out := make([]provider.ConstructorStanding, 0, len(list.ConstructorStandings))
		for _, raw := range list.ConstructorStandings {
			if cs, ok := NormalizeConstructorStanding(raw); ok {
				out = append(out, cs)
			}
		}
		return out, nil
	}, h.logger)
}

func (h *Handler) fetchStandings(ctx context.Context, season, resource string) (*standingsList, error) {
	var resp standingsResponse
	u := fmt.Sprintf("%s/%s/%s.json", h.baseURL, season, resource)
	if err := h.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	return resp.firstList()
}
