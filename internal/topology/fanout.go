package topology

import "github.com/damniamgood/backstabbr-bot/internal/spark"

// RelayLink is one directed relay: messages posted in SourceRoom are
// re-posted into TargetRoom prefixed with Title.
type RelayLink struct {
	SourceRoom string `json:"sourceRoom"`
	Title      string `json:"title"`
	TargetRoom string `json:"targetRoom"`
}

// PlanFanout links every room to every other room. For n rooms it returns
// n*(n-1) links, ordered by source then target in input order.
func PlanFanout(rooms []spark.Room) []RelayLink {
	if len(rooms) < 2 {
		return []RelayLink{}
	}

	links := make([]RelayLink, 0, len(rooms)*(len(rooms)-1))
	for i, src := range rooms {
		label := Label(src.Title)
		for j, dst := range rooms {
			if i == j {
				continue
			}
			links = append(links, RelayLink{
				SourceRoom: src.Id,
				Title:      label,
				TargetRoom: dst.Id,
			})
		}
	}
	return links
}
