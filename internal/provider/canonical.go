// Package provider defines canonical data types that all source adapters
// normalize into. These structs are the contract between adapters and the
// resolver: adapters output these and the resolver persists them as snapshot
// documents.
//
// Adding a new provider means implementing an Adapter that returns these
// types. The fallback chains and the snapshot documents never change.
package provider

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Formula 1
// --------------------------------------------------------------------------

// DriverStanding is one row of the drivers' championship.
type DriverStanding struct {
	Position     int     `json:"position"`
	DriverName   string  `json:"driver_name"`
	Team         string  `json:"team"`
	Points       float64 `json:"points"`
	DriverNumber int     `json:"driver_number"`
	CountryCode  string  `json:"country_code"`
}

// ConstructorStanding is one row of the constructors' championship.
type ConstructorStanding struct {
	Position int     `json:"position"`
	Team     string  `json:"team"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
}

// SessionKey identifies one session of a race weekend.
type SessionKey string

const (
	SessionFP1              SessionKey = "fp1"
	SessionFP2              SessionKey = "fp2"
	SessionFP3              SessionKey = "fp3"
	SessionSprintQualifying SessionKey = "sprint_qualifying"
	SessionSprint           SessionKey = "sprint"
	SessionQualifying       SessionKey = "qualifying"
	SessionRace             SessionKey = "race"
)

// SessionKeys lists every session key in weekend order.
var SessionKeys = []SessionKey{
	SessionFP1, SessionFP2, SessionFP3,
	SessionSprintQualifying, SessionSprint,
	SessionQualifying, SessionRace,
}

// WeekendType selects which sessions are meaningful for display.
type WeekendType string

const (
	WeekendNormal WeekendType = "normal"
	WeekendSprint WeekendType = "sprint"
)

// Sessions returns the session keys that are run on this kind of weekend.
// Sprint weekends have a single practice session.
func (w WeekendType) Sessions() []SessionKey {
	if w == WeekendSprint {
		return []SessionKey{SessionFP1, SessionSprintQualifying, SessionSprint, SessionQualifying, SessionRace}
	}
	return []SessionKey{SessionFP1, SessionFP2, SessionFP3, SessionQualifying, SessionRace}
}

// Position is either a classified rank or one of the special tokens
// (DNS, N/A, DNF, DSQ, RET, DNSP). Ranks encode as JSON numbers and
// tokens as JSON strings.
type Position struct {
	Rank  int
	Token string
}

// IsSpecial reports whether the position is a special token.
func (p Position) IsSpecial() bool { return p.Token != "" || p.Rank <= 0 }

func (p Position) String() string {
	if p.Token != "" {
		return p.Token
	}
	if p.Rank <= 0 {
		return TokenNotAvailable
	}
	return fmt.Sprintf("%d", p.Rank)
}

func (p Position) MarshalJSON() ([]byte, error) {
	if p.IsSpecial() {
		return json.Marshal(p.String())
	}
	return json.Marshal(p.Rank)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 {
			return fmt.Errorf("position %d: numeric ranks start at 1, use %q for unclassified", n, TokenNotAvailable)
		}
		*p = Position{Rank: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("position must be a number or a string: %w", err)
	}
	*p = ParsePosition(s)
	return nil
}

// SessionResult is one tracked driver's outcome in one session.
type SessionResult struct {
	Position Position `json:"position"`
	LapTime  string   `json:"lap_time"`
}

// DriverResults holds all seven sessions for one tracked driver. Every key
// is always present even when the weekend type does not run that session.
type DriverResults struct {
	FP1              SessionResult `json:"fp1"`
	FP2              SessionResult `json:"fp2"`
	FP3              SessionResult `json:"fp3"`
	SprintQualifying SessionResult `json:"sprint_qualifying"`
	Sprint           SessionResult `json:"sprint"`
	Qualifying       SessionResult `json:"qualifying"`
	Race             SessionResult `json:"race"`
}

// NewDriverResults returns results with every session marked N/A.
func NewDriverResults() DriverResults {
	na := NotAvailable()
	return DriverResults{
		FP1: na, FP2: na, FP3: na,
		SprintQualifying: na, Sprint: na,
		Qualifying: na, Race: na,
	}
}

func (d *DriverResults) session(key SessionKey) *SessionResult {
	switch key {
	case SessionFP1:
		return &d.FP1
	case SessionFP2:
		return &d.FP2
	case SessionFP3:
		return &d.FP3
	case SessionSprintQualifying:
		return &d.SprintQualifying
	case SessionSprint:
		return &d.Sprint
	case SessionQualifying:
		return &d.Qualifying
	case SessionRace:
		return &d.Race
	}
	return nil
}

// Get returns the result for a session key.
func (d DriverResults) Get(key SessionKey) SessionResult {
	if s := d.session(key); s != nil {
		return *s
	}
	return NotAvailable()
}

// Set stores the result for a session key. Unknown keys are ignored.
func (d *DriverResults) Set(key SessionKey, r SessionResult) {
	if s := d.session(key); s != nil {
		*s = r
	}
}

// RaceWeekend is the most recent race weekend for the tracked drivers.
type RaceWeekend struct {
	RaceName      string                   `json:"race_name"`
	CircuitName   string                   `json:"circuit_name"`
	Date          string                   `json:"date"` // "YYYY-MM-DD"
	WeekendType   WeekendType              `json:"weekend_type"`
	DriverResults map[string]DriverResults `json:"driver_results"`
}

// UnmarshalJSON also accepts the results under "mclaren_results", the key
// used by documents saved from the admin editing form. Encoding always uses
// "driver_results".
func (r *RaceWeekend) UnmarshalJSON(data []byte) error {
	type plain RaceWeekend
	var v struct {
		plain
		Legacy map[string]DriverResults `json:"mclaren_results"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = RaceWeekend(v.plain)
	if len(r.DriverResults) == 0 {
		r.DriverResults = v.Legacy
	}
	return nil
}

// --------------------------------------------------------------------------
// Football
// --------------------------------------------------------------------------

// SquadMember is one player of the tracked club's first-team squad.
type SquadMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	Nationality string `json:"nationality"`
	Age         int    `json:"age"`
	ShirtNumber *int   `json:"shirtNumber,omitempty"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
}

// Match statuses.
const (
	StatusScheduled = "SCHEDULED"
	StatusFinished  = "FINISHED"
)

// Match is a played or scheduled fixture involving the tracked club.
// Scores are only present for finished matches.
type Match struct {
	ID          int    `json:"id"`
	HomeTeam    string `json:"homeTeam"`
	AwayTeam    string `json:"awayTeam"`
	HomeScore   *int   `json:"homeScore,omitempty"`
	AwayScore   *int   `json:"awayScore,omitempty"`
	Date        string `json:"date"`
	Competition string `json:"competition"`
	Status      string `json:"status"`
}

// LeagueStanding is one row of the domestic league table.
type LeagueStanding struct {
	Position     int      `json:"position"`
	Team         string   `json:"team"`
	Played       int      `json:"played"`
	Won          int      `json:"won"`
	Drawn        int      `json:"drawn"`
	Lost         int      `json:"lost"`
	GoalsFor     int      `json:"goalsFor"`
	GoalsAgainst int      `json:"goalsAgainst"`
	Points       int      `json:"points"`
	Form         []string `json:"form,omitempty"`
}

// TeamProfile describes the tracked club.
type TeamProfile struct {
	Name            string         `json:"name"`
	Founded         int            `json:"founded"`
	Stadium         string         `json:"stadium"`
	Capacity        int            `json:"capacity"`
	Manager         string         `json:"manager"`
	League          string         `json:"league"`
	CurrentPosition int            `json:"currentPosition"`
	Description     string         `json:"description"`
	Trophies        map[string]int `json:"trophies"`
}
