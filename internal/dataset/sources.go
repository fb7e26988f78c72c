package dataset

import (
	"fmt"
	"os"
	"strconv"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/albapepper/scoracle-feeds/internal/provider/ergast"
	"github.com/albapepper/scoracle-feeds/internal/provider/wikipedia"
)

// Sources holds the upstream endpoints and tracked entities for every chain.
// It is loaded from an optional YAML file; missing fields take defaults.
type Sources struct {
	F1       F1Sources       `yaml:"f1"`
	Football FootballSources `yaml:"football"`
}

// F1Sources configures the Formula 1 chains.
type F1Sources struct {
	ErgastBaseURL    string                    `yaml:"ergast_base_url"`
	WikipediaBaseURL string                    `yaml:"wikipedia_base_url"`
	Season           int                       `yaml:"season"`
	SeasonPage       string                    `yaml:"season_page"`
	TrackedDrivers   []wikipedia.TrackedDriver `yaml:"tracked_drivers"`
}

// FootballSources configures the club chains.
type FootballSources struct {
	Club             string   `yaml:"club"`
	Aliases          []string `yaml:"aliases"`
	Competition      string   `yaml:"competition"`
	WikipediaBaseURL string   `yaml:"wikipedia_base_url"`
	ClubPage         string   `yaml:"club_page"`
	LeaguePage       string   `yaml:"league_page"`
	TransfermarktURL string   `yaml:"transfermarkt_squad_url"`
	ESPNSquadURL     string   `yaml:"espn_squad_url"`
	BBCResultsURL    string   `yaml:"bbc_results_url"`
	BBCFixturesURL   string   `yaml:"bbc_fixtures_url"`
}

// DefaultSources returns the built-in source configuration for a season.
func DefaultSources(season int) Sources {
	return Sources{
		F1: F1Sources{
			ErgastBaseURL:    ergast.DefaultBaseURL,
			WikipediaBaseURL: wikipedia.DefaultBaseURL,
			Season:           season,
			SeasonPage:       strconv.Itoa(season) + "_Formula_One_World_Championship",
			TrackedDrivers: []wikipedia.TrackedDriver{
				{Key: "lando_norris", Name: "Lando Norris"},
				{Key: "oscar_piastri", Name: "Oscar Piastri"},
			},
		},
		Football: FootballSources{
			Club:             "Real Madrid",
			Aliases:          []string{"Real Madrid CF"},
			Competition:      "La Liga",
			WikipediaBaseURL: wikipedia.DefaultBaseURL,
			ClubPage:         "Real_Madrid_CF",
			LeaguePage:       "2024–25_La_Liga",
			TransfermarktURL: "https://www.transfermarkt.com/real-madrid/kader/verein/418",
			ESPNSquadURL:     "https://www.espn.com/soccer/team/squad/_/name/real-madrid",
			BBCResultsURL:    "https://www.bbc.com/sport/football/teams/real-madrid/results",
			BBCFixturesURL:   "https://www.bbc.com/sport/football/teams/real-madrid/fixtures",
		},
	}
}

// LoadSources reads path (when non-empty) and fills every field the file
// leaves unset from DefaultSources(season). A season set in the file wins
// over the season argument.
func LoadSources(path string, season int) (Sources, error) {
	var s Sources
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Sources{}, fmt.Errorf("read sources file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return Sources{}, fmt.Errorf("parse sources file %s: %w", path, err)
		}
	}
	if s.F1.Season != 0 {
		season = s.F1.Season
	}
	if err := mergo.Merge(&s, DefaultSources(season)); err != nil {
		return Sources{}, fmt.Errorf("apply source defaults: %w", err)
	}
	if err := s.validate(); err != nil {
		return Sources{}, err
	}
	return s, nil
}

func (s Sources) validate() error {
	for _, d := range s.F1.TrackedDrivers {
		if d.Key == "" || d.Name == "" {
			return fmt.Errorf("tracked driver needs both key and name: %+v", d)
		}
	}
	if s.F1.Season < 1950 {
		return fmt.Errorf("f1 season %d out of range", s.F1.Season)
	}
	return nil
}
