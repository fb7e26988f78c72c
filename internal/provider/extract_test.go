package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"numeric string", "155", 155, true},
		{"decimal string", "12.5", 12.5, true},
		{"string with suffix", "216 pts", 216, true},
		{"footnoted cell", "201[b]", 201, true},
		{"non numeric", "—", 0, false},
		{"nested total", map[string]interface{}{"total": "42"}, 42, true},
		{"nested missing", map[string]interface{}{"other": 1}, 0, false},
		{"unsupported", []int{1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Santiago Bernabéu", CleanText("  Santiago Bernabéu[1]\n"))
	assert.Equal(t, "Red Bull Ring", CleanText("Red  Bull\tRing"))
}

func TestParseIntHelpers(t *testing.T) {
	n, ok := ParseInt("12 pts")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ParseInt("Pos")
	assert.False(t, ok)

	assert.Equal(t, 9, IntOr("x", 9))
	assert.Equal(t, 0, NonNegative(-4))
	assert.Nil(t, OptionalInt(""))
	assert.Nil(t, OptionalInt("0"))
	assert.Equal(t, 14, *OptionalInt("14"))
}
