package provider

import (
	"regexp"
	"strings"
)

// Special position tokens. Matching is case-insensitive; the source text is
// kept verbatim.
const (
	TokenDNS          = "DNS"
	TokenNotAvailable = "N/A"
	TokenDNF          = "DNF"
	TokenDSQ          = "DSQ"
	TokenRET          = "RET"
	TokenDNSP         = "DNSP"
)

var specialTokens = map[string]bool{
	TokenDNS: true, TokenNotAvailable: true, TokenDNF: true,
	TokenDSQ: true, TokenRET: true, TokenDNSP: true,
}

// UnknownTeam is the placeholder used when a source row has no team.
const UnknownTeam = "Unknown Team"

// IsSpecialToken reports whether s is one of the special position tokens.
func IsSpecialToken(s string) bool {
	return specialTokens[strings.ToUpper(strings.TrimSpace(s))]
}

// ParsePosition turns session position text into a Position. Special tokens
// are preserved as written, numeric text becomes a rank, and anything else
// (including empty text) is N/A.
func ParsePosition(s string) Position {
	s = CleanText(s)
	if IsSpecialToken(s) {
		return Position{Token: s}
	}
	if n, ok := ParseInt(s); ok && n > 0 {
		return Position{Rank: n}
	}
	return Position{Token: TokenNotAvailable}
}

// NotAvailable is the result for a session that was not run or not found.
func NotAvailable() SessionResult {
	return SessionResult{Position: Position{Token: TokenNotAvailable}}
}

// NewSessionResult normalizes a scraped session row. A special position
// always carries an empty lap time, whatever the source says.
func NewSessionResult(position, lapTime string) SessionResult {
	pos := ParsePosition(position)
	if pos.IsSpecial() {
		return SessionResult{Position: pos}
	}
	return SessionResult{Position: pos, LapTime: CleanText(lapTime)}
}

// Normalized reapplies the special-position rule to an existing result.
func (r SessionResult) Normalized() SessionResult {
	if r.Position.IsSpecial() {
		r.LapTime = ""
	}
	return r
}

// --------------------------------------------------------------------------
// Table rows: cell text as scraped, one struct per dataset kind
// --------------------------------------------------------------------------

// DriverRow is the cell text of one driver standings row.
type DriverRow struct {
	Position    string
	Name        string
	Nationality string
	Team        string
	Points      string
}

var driverNumber = regexp.MustCompile(`#(\d+)`)

// NormalizeDriverRow maps a scraped row to a DriverStanding. ok is false when
// the position or driver name is missing.
func NormalizeDriverRow(r DriverRow) (DriverStanding, bool) {
	pos, ok := ParseInt(r.Position)
	name := CleanText(r.Name)
	if !ok || pos <= 0 || name == "" {
		return DriverStanding{}, false
	}

	number := 0
	if m := driverNumber.FindStringSubmatch(name); m != nil {
		number = IntOr(m[1], 0)
		name = CleanText(driverNumber.ReplaceAllString(name, ""))
	}

	team := CleanText(r.Team)
	if team == "" {
		team = UnknownTeam
	}
	points, _ := ExtractValue(r.Points)

	return DriverStanding{
		Position:     pos,
		DriverName:   name,
		Team:         team,
		Points:       nonNegativeFloat(points),
		DriverNumber: number,
		CountryCode:  CleanText(r.Nationality),
	}, true
}

// ConstructorRow is the cell text of one constructor standings row.
type ConstructorRow struct {
	Position string
	Team     string
	Points   string
	Wins     string
}

// NormalizeConstructorRow maps a scraped row to a ConstructorStanding.
func NormalizeConstructorRow(r ConstructorRow) (ConstructorStanding, bool) {
	pos, ok := ParseInt(r.Position)
	team := CleanText(r.Team)
	if !ok || pos <= 0 || team == "" {
		return ConstructorStanding{}, false
	}
	points, _ := ExtractValue(r.Points)
	return ConstructorStanding{
		Position: pos,
		Team:     team,
		Points:   nonNegativeFloat(points),
		Wins:     NonNegative(IntOr(r.Wins, 0)),
	}, true
}

// SquadRow is the cell text of one squad row.
type SquadRow struct {
	Name        string
	Position    string
	Nationality string
	Age         string
	ShirtNumber string
}

// NormalizeSquadRow maps a scraped row to a SquadMember with the given id.
// Goals and assists default to 0 since squad pages carry no stats; the
// shirt number is omitted when absent.
func NormalizeSquadRow(id int, r SquadRow) (SquadMember, bool) {
	name := CleanText(r.Name)
	position := CleanText(r.Position)
	if name == "" || position == "" {
		return SquadMember{}, false
	}
	return SquadMember{
		ID:          id,
		Name:        name,
		Position:    position,
		Nationality: CleanText(r.Nationality),
		Age:         NonNegative(IntOr(r.Age, 0)),
		ShirtNumber: OptionalInt(r.ShirtNumber),
	}, true
}

// LeagueRow is the cell text of one league table row.
type LeagueRow struct {
	Position     string
	Team         string
	Played       string
	Won          string
	Drawn        string
	Lost         string
	GoalsFor     string
	GoalsAgainst string
	Points       string
}

// NormalizeLeagueRow maps a scraped row to a LeagueStanding.
func NormalizeLeagueRow(r LeagueRow) (LeagueStanding, bool) {
	pos, ok := ParseInt(r.Position)
	team := CleanText(r.Team)
	if !ok || pos <= 0 || team == "" {
		return LeagueStanding{}, false
	}
	return LeagueStanding{
		Position:     pos,
		Team:         team,
		Played:       NonNegative(IntOr(r.Played, 0)),
		Won:          NonNegative(IntOr(r.Won, 0)),
		Drawn:        NonNegative(IntOr(r.Drawn, 0)),
		Lost:         NonNegative(IntOr(r.Lost, 0)),
		GoalsFor:     NonNegative(IntOr(r.GoalsFor, 0)),
		GoalsAgainst: NonNegative(IntOr(r.GoalsAgainst, 0)),
		Points:       IntOr(r.Points, 0),
	}, true
}

// NormalizeMatch upper-cases the status and drops scores unless the match
// is finished.
func NormalizeMatch(m Match) Match {
	m.HomeTeam = CleanText(m.HomeTeam)
	m.AwayTeam = CleanText(m.AwayTeam)
	m.Status = strings.ToUpper(strings.TrimSpace(m.Status))
	if m.Status == "" {
		m.Status = StatusScheduled
	}
	if m.Status != StatusFinished {
		m.HomeScore = nil
		m.AwayScore = nil
	}
	return m
}

func nonNegativeFloat(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
