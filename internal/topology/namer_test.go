package topology

import (
	"strings"
	"testing"

	"github.com/damniamgood/backstabbr-bot/internal/powers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomNames(t *testing.T) {
	tcases := []struct {
		name     string
		matchup  string
		gameId   string
		expected []string
	}{
		{
			name:     "two powers",
			matchup:  "ENG-GER",
			gameId:   "42",
			expected: []string{"ENG-GER 42", "GER-ENG 42"},
		},
		{
			name:     "input order does not matter",
			matchup:  "GER-ENG",
			gameId:   "42",
			expected: []string{"ENG-GER 42", "GER-ENG 42"},
		},
		{
			name:     "three powers",
			matchup:  "TUR-AUS-RUS",
			gameId:   "7",
			expected: []string{"AUS-RUS-TUR 7", "RUS-AUS-TUR 7", "TUR-AUS-RUS 7"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := powers.Default().ParseMatchup(tc.matchup)
			require.NoError(t, err)

			var titles []string
			for _, n := range RoomNames(m, tc.gameId) {
				titles = append(titles, n.Title)
			}
			assert.Equal(t, tc.expected, titles)
		})
	}
}

// every subset of the catalog with at least two powers
func allMatchups(codes []powers.Code) []powers.Matchup {
	var out []powers.Matchup
	for mask := 0; mask < 1<<len(codes); mask++ {
		var m powers.Matchup
		for i, c := range codes {
			if mask&(1<<i) != 0 {
				m = append(m, c)
			}
		}
		if len(m) >= 2 {
			out = append(out, m)
		}
	}
	return out
}

func TestRoomNames_SelfConsistent(t *testing.T) {
	for _, m := range allMatchups(powers.Default().Codes()) {
		names := RoomNames(m, "1901")
		require.Len(t, names, len(m), "matchup %s", m)

		for i, n := range names {
			assert.Equal(t, m[i], n.Power, "expected names in canonical order for %s", m)
			assert.Equal(t, string(n.Power), Label(n.Title), "expected title %q to lead with its owner", n.Title)
			assert.True(t, strings.HasSuffix(n.Title, " 1901"))

			rest := strings.TrimSuffix(strings.TrimPrefix(n.Title, string(n.Power)+"-"), " 1901")
			assert.Equal(t, powers.Join(m.Others(i)), rest, "expected the other powers in sorted order")
		}
	}
}

func TestLabel(t *testing.T) {
	tcases := []struct {
		title    string
		expected string
	}{
		{title: "ENG-GER 42", expected: "ENG"},
		{title: "AUS-RUS-TUR 7", expected: "AUS"},
		{title: "  FRA-ITA   9", expected: "FRA"},
		{title: "Lobby", expected: "Lobby"},
		{title: "", expected: ""},
	}

	for _, tc := range tcases {
		assert.Equal(t, tc.expected, Label(tc.title), "title %q", tc.title)
	}
}
