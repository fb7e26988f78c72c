package bbc

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-feeds/internal/provider"
)

var realMadrid = Options{Club: "Real Madrid", Competition: "La Liga"}

func promo(title, datetime string) string {
	return `<div class="gs-c-promo"><h3 class="gs-c-promo-heading__title">` + title +
		`</h3><time datetime="` + datetime + `"></time></div>`
}

func doc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return d
}

func TestParseTitle(t *testing.T) {
	p, ok := ParseTitle("Real Madrid 3-2 Barcelona")
	require.True(t, ok)
	assert.Equal(t, "Real Madrid", p.Home)
	assert.Equal(t, "Barcelona", p.Away)
	assert.Equal(t, 3, *p.HomeScore)
	assert.Equal(t, 2, *p.AwayScore)

	p, ok = ParseTitle("Athletic Bilbao v Real Madrid")
	require.True(t, ok)
	assert.Equal(t, "Athletic Bilbao", p.Home)
	assert.Equal(t, "Real Madrid", p.Away)
	assert.Nil(t, p.HomeScore)

	p, ok = ParseTitle("Manchester City 1 – 1 Real Madrid")
	require.True(t, ok)
	assert.Equal(t, "Manchester City", p.Home)

	_, ok = ParseTitle("Ancelotti praises squad depth")
	assert.False(t, ok)
}

func TestParseResults(t *testing.T) {
	d := doc(t,
		promo("Real Madrid 3-2 Barcelona", "2025-04-28T19:00:00Z")+
			promo("Sevilla 0-3 Real Madrid", "2025-04-01")+
			promo("Girona 2-0 Valencia", "2025-04-01")+
			promo("Real Madrid v Getafe", "2025-06-30"))

	got, err := ParseMatches(d, realMadrid, true)
	require.NoError(t, err)
	require.Len(t, got, 2, "other clubs and unplayed fixtures are skipped")

	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "2025-04-28", got[0].Date)
	assert.Equal(t, provider.StatusFinished, got[0].Status)
	assert.Equal(t, "La Liga", got[0].Competition)
	assert.Equal(t, 3, *got[1].AwayScore)
}

func TestParseFixtures(t *testing.T) {
	d := doc(t,
		promo("Real Madrid v Villarreal", "2025-05-05T14:00:00+02:00")+
			promo("Real Madrid 3-2 Barcelona", "2025-04-28"))

	got, err := ParseMatches(d, realMadrid, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, provider.StatusScheduled, got[0].Status)
	assert.Nil(t, got[0].HomeScore)
	assert.Equal(t, "2025-05-05", got[0].Date)
}

func TestParseMatchesSkipsUndatedCards(t *testing.T) {
	d := doc(t,
		`<div class="gs-c-promo"><h3 class="gs-c-promo-heading__title">Real Madrid v Osasuna</h3></div>`+
			promo("Real Madrid v Mallorca", "soon")+
			promo("Real Madrid v Villarreal", "2025-05-05T14:00:00+02:00"))

	got, err := ParseMatches(d, realMadrid, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Villarreal", got[0].AwayTeam)
	assert.Equal(t, 1, got[0].ID)

	_, err = ParseMatches(doc(t, promo("Real Madrid v Mallorca", "")), realMadrid, false)
	assert.ErrorIs(t, err, provider.ErrNoRecords)
}

func TestParseMatchesCapsAtMax(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxMatches+5; i++ {
		b.WriteString(promo("Real Madrid v Getafe", "2025-06-30"))
	}
	got, err := ParseMatches(doc(t, b.String()), realMadrid, false)
	require.NoError(t, err)
	assert.Len(t, got, MaxMatches)
}

func TestParseMatchesErrors(t *testing.T) {
	_, err := ParseMatches(doc(t, `<div class="fixture-list"></div>`), realMadrid, true)
	assert.ErrorIs(t, err, provider.ErrStructureMissing)

	_, err = ParseMatches(doc(t, promo("Girona 2-0 Valencia", "2025-04-01")), realMadrid, true)
	assert.ErrorIs(t, err, provider.ErrNoRecords)
}

func TestAliasesMatch(t *testing.T) {
	opts := Options{Club: "Real Madrid", Aliases: []string{"R Madrid"}}
	_, err := ParseMatches(doc(t, promo("R Madrid 1-0 Alavés", "2025-03-01")), opts, true)
	assert.NoError(t, err)
}
