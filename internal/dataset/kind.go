// Package dataset names the dataset kinds, groups them, and binds each kind
// to its fallback chain behind a kind-erased Resolvable.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one dataset. It doubles as the snapshot store key.
type Kind string

const (
	DriverStandings      Kind = "driver-standings"
	ConstructorStandings Kind = "constructor-standings"
	RecentRace           Kind = "recent-race"
	Squad                Kind = "squad"
	LeagueTable          Kind = "league-table"
	RecentResults        Kind = "recent-results"
	UpcomingFixtures     Kind = "upcoming-fixtures"
	TeamInfo             Kind = "team-info"
)

// ErrUnknownKind is returned for kind or group names that are not defined.
var ErrUnknownKind = errors.New("unknown dataset kind")

// Group names accepted wherever a list of kinds is expected.
const (
	GroupF1       = "f1"
	GroupFootball = "football"
	GroupAll      = "all"
)

var (
	f1Kinds       = []Kind{DriverStandings, ConstructorStandings, RecentRace}
	footballKinds = []Kind{Squad, LeagueTable, RecentResults, UpcomingFixtures, TeamInfo}
)

// All returns every kind, F1 first.
func All() []Kind {
	return append(append([]Kind{}, f1Kinds...), footballKinds...)
}

// Group returns the kinds in a named group.
func Group(name string) ([]Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case GroupF1:
		return append([]Kind{}, f1Kinds...), nil
	case GroupFootball:
		return append([]Kind{}, footballKinds...), nil
	case GroupAll:
		return All(), nil
	}
	return nil, fmt.Errorf("group %q: %w", name, ErrUnknownKind)
}

// ParseKind validates a single kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// ParseList parses a comma-separated list of kinds and group names into a
// de-duplicated list in first-seen order. An empty list means the F1 group.
func ParseList(s string) ([]Kind, error) {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if len(names) == 0 {
		return Group(GroupF1)
	}

	seen := make(map[Kind]bool)
	var kinds []Kind
	add := func(k Kind) {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	for _, name := range names {
		if group, err := Group(name); err == nil {
			for _, k := range group {
				add(k)
			}
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		add(k)
	}
	return kinds, nil
}

// Strings converts kinds to plain strings, e.g. for store keys or logs.
func Strings(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// legacyKeys maps the camelCase field names posted by the admin editing form.
var legacyKeys = map[string]Kind{
	"driverstandings":      DriverStandings,
	"constructorstandings": ConstructorStandings,
	"recentrace":           RecentRace,
	"leaguetable":          LeagueTable,
	"recentresults":        RecentResults,
	"upcomingfixtures":     UpcomingFixtures,
	"upcominggames":        UpcomingFixtures,
	"teaminfo":             TeamInfo,
}

// ParseDocuments turns a manual save body into documents by kind. Keys may
// be kind names or their camelCase form; null entries are skipped.
func ParseDocuments(body map[string]json.RawMessage) (map[Kind]json.RawMessage, error) {
	out := make(map[Kind]json.RawMessage, len(body))
	for key, doc := range body {
		if len(doc) == 0 || string(doc) == "null" {
			continue
		}
		k, err := ParseKind(key)
		if err != nil {
			legacy, ok := legacyKeys[strings.ToLower(key)]
			if !ok {
				return nil, err
			}
			k = legacy
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("dataset %s given twice", k)
		}
		if k == RecentRace {
			if doc, err = renameLegacyRaceResults(doc); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		out[k] = doc
	}
	return out, nil
}

// renameLegacyRaceResults rewrites a race weekend posted with
// "mclaren_results" so the stored document uses "driver_results".
// Documents without the legacy key are returned unchanged.
func renameLegacyRaceResults(doc json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		// Not an object; validation reports the shape error.
		return doc, nil
	}
	legacy, ok := fields["mclaren_results"]
	if !ok {
		return doc, nil
	}
	delete(fields, "mclaren_results")
	if _, ok := fields["driver_results"]; !ok {
		fields["driver_results"] = legacy
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("rewrite race results: %w", err)
	}
	return out, nil
}
