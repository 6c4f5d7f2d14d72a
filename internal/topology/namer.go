package topology

import (
	"strings"

	"github.com/damniamgood/backstabbr-bot/internal/powers"
)

// RoomName is the title of one room of a matchup, owned by Power.
type RoomName struct {
	Title string      `json:"title"`
	Power powers.Code `json:"power"`
}

// RoomNames returns one room per power of the matchup, in the matchup's
// canonical order. Each title is "<power>-<others joined by '-'> <gameId>",
// e.g. "ENG-GER 42" and "GER-ENG 42" for ENG-GER in game 42.
func RoomNames(m powers.Matchup, gameId string) []RoomName {
	names := make([]RoomName, len(m))
	for i, p := range m {
		names[i] = RoomName{
			Title: string(p) + "-" + powers.Join(m.Others(i)) + " " + gameId,
			Power: p,
		}
	}
	return names
}

// Label is the owning power of a room title: the first whitespace field,
// cut at the first '-'.
func Label(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	label, _, _ := strings.Cut(fields[0], "-")
	return label
}
