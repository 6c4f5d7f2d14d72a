// Package topology derives the rooms of a matchup, provisions them on the
// chat platform, wires every room to relay into every other room, and tears
// the whole arrangement down again.
package topology

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/damniamgood/backstabbr-bot/internal/powers"
	"github.com/damniamgood/backstabbr-bot/internal/relay"
	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"github.com/damniamgood/backstabbr-bot/internal/stats"
	"go.uber.org/zap"
)

const (
	metricRoomsCreated    = "RoomsCreated"
	metricRoomsRemoved    = "RoomsRemoved"
	metricWebhooksCreated = "WebhooksCreated"
	metricWebhooksRemoved = "WebhooksRemoved"
)

var ErrVerification = errors.New("verification failed")

// Platform is the subset of the chat platform the engine drives. Callers
// pass the identity-bound client per request.
type Platform interface {
	ListRooms(ctx context.Context) ([]spark.Room, error)
	CreateRoom(ctx context.Context, title string) (spark.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context) ([]spark.Webhook, error)
	CreateWebhook(ctx context.Context, params spark.CreateWebhookParams) (spark.Webhook, error)
	DeleteWebhook(ctx context.Context, id string) error
}

type Engine struct {
	log      *zap.Logger
	catalog  *powers.Catalog
	registry relay.Registry
	stats    stats.StatsProvider

	serviceURL    string
	webhookSecret string
}

func NewEngine(logger *zap.Logger, catalog *powers.Catalog, registry relay.Registry, su stats.StatsProvider, serviceURL, webhookSecret string) *Engine {
	su.RegisterMetric(metricRoomsCreated)
	su.RegisterMetric(metricRoomsRemoved)
	su.RegisterMetric(metricWebhooksCreated)
	su.RegisterMetric(metricWebhooksRemoved)

	return &Engine{
		log:           logger,
		catalog:       catalog,
		registry:      registry,
		stats:         su,
		serviceURL:    strings.TrimRight(serviceURL, "/"),
		webhookSecret: webhookSecret,
	}
}

// ParseMatchup validates raw matchup input against the engine's catalog.
func (e *Engine) ParseMatchup(raw string) (powers.Matchup, error) {
	return e.catalog.ParseMatchup(raw)
}

type ProvisionResult struct {
	Matchup  string               `json:"matchup"`
	GameId   string               `json:"gameId"`
	Rooms    Batch[spark.Room]    `json:"rooms"`
	Links    []RelayLink          `json:"links"`
	Webhooks Batch[spark.Webhook] `json:"webhooks"`
}

// Provision creates the rooms of a matchup and installs the full relay
// fanout between the rooms that were created.
func (e *Engine) Provision(ctx context.Context, p Platform, m powers.Matchup, gameId string) ProvisionResult {
	rooms := e.CreateRooms(ctx, p, RoomNames(m, gameId))
	links := PlanFanout(rooms.Succeeded)
	hooks := e.InstallWebhooks(ctx, p, links)

	e.log.Info("matchup provisioned",
		zap.String("matchup", m.String()),
		zap.String("game_id", gameId),
		zap.Int("rooms", len(rooms.Succeeded)),
		zap.Int("webhooks", len(hooks.Succeeded)),
		zap.Int("failures", len(rooms.Failed)+len(hooks.Failed)),
	)

	return ProvisionResult{
		Matchup:  m.String(),
		GameId:   gameId,
		Rooms:    rooms,
		Links:    links,
		Webhooks: hooks,
	}
}

// ProvisionGame provisions every two-power matchup of the catalog for
// gameId, followed by one matchup of all powers.
func (e *Engine) ProvisionGame(ctx context.Context, p Platform, gameId string) []ProvisionResult {
	matchups := e.catalog.Pairs()
	if all := e.catalog.All(); len(all) > 2 {
		matchups = append(matchups, all)
	}

	results := make([]ProvisionResult, 0, len(matchups))
	for _, m := range matchups {
		if err := ctx.Err(); err != nil {
			e.log.Warn("game provisioning interrupted", zap.String("game_id", gameId), zap.Error(err))
			break
		}
		results = append(results, e.Provision(ctx, p, m, gameId))
	}
	return results
}

// CreateRooms creates one room per name concurrently. Rooms the platform
// answers without id, title or creation time are reported as failures.
func (e *Engine) CreateRooms(ctx context.Context, p Platform, names []RoomName) Batch[spark.Room] {
	b := fanOut(ctx, names,
		func(n RoomName) string { return n.Title },
		func(ctx context.Context, n RoomName) (spark.Room, error) {
			room, err := p.CreateRoom(ctx, n.Title)
			if err != nil {
				return spark.Room{}, err
			}
			if err := verifyRoom(room); err != nil {
				return spark.Room{}, err
			}
			e.stats.Incr(metricRoomsCreated)
			return room, nil
		},
	)

	for _, f := range b.Failed {
		e.log.Warn("room not created", zap.String("title", f.Item), zap.Error(f.Err))
	}
	return b
}

// InstallWebhooks registers one "messages created" webhook per link and
// records the link's target so deliveries can be routed.
func (e *Engine) InstallWebhooks(ctx context.Context, p Platform, links []RelayLink) Batch[spark.Webhook] {
	b := fanOut(ctx, links,
		func(l RelayLink) string { return l.SourceRoom + "->" + l.TargetRoom },
		func(ctx context.Context, l RelayLink) (spark.Webhook, error) {
			wh, err := p.CreateWebhook(ctx, spark.CreateWebhookParams{
				Resource:  "messages",
				Event:     "created",
				Filter:    "roomId=" + l.SourceRoom,
				TargetUrl: e.TargetURL(l.TargetRoom),
				Name:      l.Title,
				Secret:    e.webhookSecret,
			})
			if err != nil {
				return spark.Webhook{}, err
			}
			e.stats.Incr(metricWebhooksCreated)

			reg := relay.Registration{
				WebhookId:    wh.Id,
				SourceRoomId: l.SourceRoom,
				TargetRoomId: l.TargetRoom,
				Label:        l.Title,
			}
			if err := e.registry.Register(ctx, reg); err != nil {
				// deliveries still route through the callback URL
				e.log.Warn("webhook registration not recorded", zap.String("webhook_id", wh.Id), zap.Error(err))
			}
			return wh, nil
		},
	)

	for _, f := range b.Failed {
		e.log.Warn("webhook not created", zap.String("link", f.Item), zap.Error(f.Err))
	}
	return b
}

// TargetURL is the callback a webhook relaying into targetRoom posts to.
func (e *Engine) TargetURL(targetRoom string) string {
	return e.serviceURL + "/webhook/" + url.PathEscape(targetRoom)
}

func verifyRoom(r spark.Room) error {
	switch {
	case r.Id == "":
		return fmt.Errorf("%w: room has no id", ErrVerification)
	case r.Title == "":
		return fmt.Errorf("%w: room %s has no title", ErrVerification, r.Id)
	case r.Created.IsZero():
		return fmt.Errorf("%w: room %s has no created time", ErrVerification, r.Id)
	}
	return nil
}

// Catalog is the power catalog matchups are validated against.
func (e *Engine) Catalog() *powers.Catalog {
	return e.catalog
}
