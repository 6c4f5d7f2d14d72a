package topology

import (
	"context"
	"errors"
	"strings"

	"github.com/damniamgood/backstabbr-bot/internal/powers"
	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"go.uber.org/zap"
)

type TeardownResult struct {
	Rooms    Batch[spark.Room] `json:"rooms"`
	Webhooks Batch[string]     `json:"webhooks"`
}

// Teardown removes every room whose title contains one of the matchup's
// room titles as whole words, so rooms renamed by hand (e.g. "old ENG-GER 42")
// are caught while larger matchups ending in the same powers are not.
func (e *Engine) Teardown(ctx context.Context, p Platform, m powers.Matchup, gameId string) TeardownResult {
	names := RoomNames(m, gameId)
	return e.removeRooms(ctx, p, func(title string) bool {
		for _, n := range names {
			if containsTitle(title, n.Title) {
				return true
			}
		}
		return false
	})
}

func containsTitle(title, name string) bool {
	for off := 0; off <= len(title)-len(name); {
		i := strings.Index(title[off:], name)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(name)
		if (start == 0 || title[start-1] == ' ') && (end == len(title) || title[end] == ' ') {
			return true
		}
		off = start + 1
	}
	return false
}

// GameRooms lists the rooms that belong to gameId.
func (e *Engine) GameRooms(ctx context.Context, p Platform, gameId string) ([]spark.Room, error) {
	rooms, err := p.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]spark.Room, 0)
	for _, r := range rooms {
		if inGame(r.Title, gameId) {
			out = append(out, r)
		}
	}
	return out, nil
}

// TeardownGame removes every room of gameId.
func (e *Engine) TeardownGame(ctx context.Context, p Platform, gameId string) TeardownResult {
	return e.removeRooms(ctx, p, func(title string) bool { return inGame(title, gameId) })
}

func inGame(title, gameId string) bool {
	return gameId != "" && strings.HasSuffix(title, " "+gameId)
}

func (e *Engine) removeRooms(ctx context.Context, p Platform, match func(title string) bool) TeardownResult {
	res := TeardownResult{
		Rooms:    Batch[spark.Room]{Succeeded: []spark.Room{}, Failed: []Failure{}},
		Webhooks: Batch[string]{Succeeded: []string{}, Failed: []Failure{}},
	}

	rooms, err := p.ListRooms(ctx)
	if err != nil {
		e.log.Warn("list rooms for teardown", zap.Error(err))
		res.Rooms.fail("list rooms", err)
		return res
	}

	var doomed []spark.Room
	for _, r := range rooms {
		if match(r.Title) {
			doomed = append(doomed, r)
		}
	}

	res.Rooms = fanOut(ctx, doomed,
		func(r spark.Room) string { return r.Id },
		func(ctx context.Context, r spark.Room) (spark.Room, error) {
			if err := p.DeleteRoom(ctx, r.Id); err != nil {
				return spark.Room{}, err
			}
			e.stats.Incr(metricRoomsRemoved)
			return r, nil
		},
	)
	for _, f := range res.Rooms.Failed {
		e.log.Warn("room not removed", zap.String("room_id", f.Item), zap.Error(f.Err))
	}

	res.Webhooks = e.removeWebhooks(ctx, p, res.Rooms.Succeeded)
	return res
}

// removeWebhooks deletes the webhooks that fire on, or relay into, one of
// the removed rooms and forgets their registrations.
func (e *Engine) removeWebhooks(ctx context.Context, p Platform, removed []spark.Room) Batch[string] {
	if len(removed) == 0 {
		return Batch[string]{Succeeded: []string{}, Failed: []Failure{}}
	}

	hooks, err := p.ListWebhooks(ctx)
	if err != nil {
		e.log.Warn("list webhooks for teardown", zap.Error(err))
		b := Batch[string]{Succeeded: []string{}}
		b.fail("list webhooks", err)
		return b
	}

	gone := make(map[string]struct{}, len(removed)*2)
	for _, r := range removed {
		gone["roomId="+r.Id] = struct{}{}
		gone[e.TargetURL(r.Id)] = struct{}{}
	}

	var stale []spark.Webhook
	for _, wh := range hooks {
		_, bySource := gone[wh.Filter]
		_, byTarget := gone[wh.TargetUrl]
		if bySource || byTarget {
			stale = append(stale, wh)
		}
	}

	b := fanOut(ctx, stale,
		func(wh spark.Webhook) string { return wh.Id },
		func(ctx context.Context, wh spark.Webhook) (string, error) {
			// the platform may already have dropped hooks of a deleted room
			if err := p.DeleteWebhook(ctx, wh.Id); err != nil && !errors.Is(err, spark.ErrNotFound) {
				return "", err
			}
			e.stats.Incr(metricWebhooksRemoved)
			if err := e.registry.Forget(ctx, wh.Id); err != nil {
				e.log.Warn("forget webhook registration", zap.String("webhook_id", wh.Id), zap.Error(err))
			}
			return wh.Id, nil
		},
	)
	for _, f := range b.Failed {
		e.log.Warn("webhook not removed", zap.String("webhook_id", f.Item), zap.Error(f.Err))
	}
	return b
}
