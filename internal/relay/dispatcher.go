// Package relay forwards messages posted in one matchup room into its paired
// rooms, and records which target room each installed webhook feeds.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"github.com/damniamgood/backstabbr-bot/internal/stats"
	"go.uber.org/zap"
)

type State string

const (
	StateReceived        State = "received"
	StateAuthorResolved  State = "author_resolved"
	StateMessageResolved State = "message_resolved"
	StatePosted          State = "posted"
	StateSkipped         State = "skipped"
	StateFailed          State = "failed"
)

const (
	metricPosted  = "RelaysPosted"
	metricSkipped = "RelaysSkipped"
	metricFailed  = "RelaysFailed"
)

var ErrVerification = errors.New("verification failed")

// Platform is the subset of the chat platform the dispatcher talks to.
type Platform interface {
	GetMessage(ctx context.Context, id string) (spark.Message, error)
	GetPerson(ctx context.Context, id string) (spark.Person, error)
	CreateMessage(ctx context.Context, params spark.CreateMessageParams) (spark.Message, error)
}

// Result is reported back to the platform as the delivery response body.
type Result struct {
	State        State  `json:"state"`
	TargetRoomId string `json:"targetRoomId,omitempty"`
	MessageId    string `json:"messageId,omitempty"`
	Verified     bool   `json:"verified,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type Dispatcher struct {
	log      *zap.Logger
	platform Platform
	registry Registry
	stats    stats.StatsProvider
	// selfId is the platform person id of the bot; its own posts are never relayed.
	selfId string
}

func NewDispatcher(logger *zap.Logger, platform Platform, registry Registry, su stats.StatsProvider, selfId string) *Dispatcher {
	su.RegisterMetric(metricPosted)
	su.RegisterMetric(metricSkipped)
	su.RegisterMetric(metricFailed)

	return &Dispatcher{
		log:      logger,
		platform: platform,
		registry: registry,
		stats:    su,
		selfId:   selfId,
	}
}

// Relay handles one "message created" delivery for a matchup webhook and
// re-posts the message, prefixed with the registered label, into the target
// room. targetRoomId comes from the callback URL and is used when the
// webhook has no registration record.
func (d *Dispatcher) Relay(ctx context.Context, evt spark.WebhookEvent, targetRoomId string) Result {
	log := d.log.With(
		zap.String("webhook_id", evt.Id),
		zap.String("message_id", evt.Data.Id),
		zap.String("source_room_id", evt.Data.RoomId),
	)

	if res, skip := d.guard(evt); skip {
		log.Debug("relay skipped", zap.String("reason", res.Reason))
		return d.finish(res)
	}

	target, label := d.route(ctx, log, evt, targetRoomId)
	if target == "" {
		log.Warn("relay has no target room")
		return d.finish(Result{State: StateFailed, Reason: "no target room for webhook " + evt.Id})
	}

	author, err := d.platform.GetPerson(ctx, evt.Data.PersonId)
	if err != nil {
		log.Warn("resolve author", zap.Error(err))
		return d.finish(Result{State: StateFailed, TargetRoomId: target, Reason: err.Error()})
	}
	log = log.With(zap.String("author", author.DisplayName))

	msg, err := d.platform.GetMessage(ctx, evt.Data.Id)
	if err != nil {
		log.Warn("resolve message", zap.Error(err))
		return d.finish(Result{State: StateFailed, TargetRoomId: target, Reason: err.Error()})
	}
	if msg.PersonId != "" && msg.PersonId == d.selfId {
		return d.finish(Result{State: StateSkipped, TargetRoomId: target, Reason: "message authored by bot"})
	}

	var prefix string
	if label != "" {
		prefix = label + ": "
	}

	posted, err := d.platform.CreateMessage(ctx, spark.CreateMessageParams{
		RoomId: target,
		Text:   prefix + msg.Text,
	})
	if err != nil {
		log.Warn("post relayed message", zap.String("target_room_id", target), zap.Error(err))
		return d.finish(Result{State: StateFailed, TargetRoomId: target, Reason: err.Error()})
	}

	res := Result{State: StatePosted, TargetRoomId: target, MessageId: posted.Id, Verified: true}
	if err := verifyMessage(posted); err != nil {
		log.Warn("relayed message", zap.String("target_room_id", target), zap.Error(err))
		res.Verified = false
	}

	log.Info("message relayed", zap.String("target_room_id", target), zap.String("label", label))
	return d.finish(res)
}

// Echo answers a message in its own room with "<author> said <text>". It is
// the handler behind the generic, non-matchup webhook.
func (d *Dispatcher) Echo(ctx context.Context, evt spark.WebhookEvent) Result {
	if res, skip := d.guard(evt); skip {
		return d.finish(res)
	}

	author, err := d.platform.GetPerson(ctx, evt.Data.PersonId)
	if err != nil {
		d.log.Warn("failed to respond to webhook", zap.String("webhook_id", evt.Id), zap.Error(err))
		return d.finish(Result{State: StateFailed, Reason: err.Error()})
	}

	msg, err := d.platform.GetMessage(ctx, evt.Data.Id)
	if err != nil {
		d.log.Warn("failed to respond to webhook", zap.String("webhook_id", evt.Id), zap.Error(err))
		return d.finish(Result{State: StateFailed, Reason: err.Error()})
	}

	posted, err := d.platform.CreateMessage(ctx, spark.CreateMessageParams{
		RoomId: evt.Data.RoomId,
		Text:   fmt.Sprintf("%s said %s", author.DisplayName, msg.Text),
	})
	if err != nil {
		d.log.Warn("failed to respond to webhook", zap.String("webhook_id", evt.Id), zap.Error(err))
		return d.finish(Result{State: StateFailed, TargetRoomId: evt.Data.RoomId, Reason: err.Error()})
	}

	res := Result{State: StatePosted, TargetRoomId: evt.Data.RoomId, MessageId: posted.Id, Verified: true}
	if err := verifyMessage(posted); err != nil {
		d.log.Warn("echoed message", zap.Error(err))
		res.Verified = false
	}
	return d.finish(res)
}

func (d *Dispatcher) guard(evt spark.WebhookEvent) (Result, bool) {
	if evt.Resource != "" && evt.Resource != "messages" {
		return Result{State: StateSkipped, Reason: "unsupported resource " + evt.Resource}, true
	}
	if evt.Event != "" && evt.Event != "created" {
		return Result{State: StateSkipped, Reason: "unsupported event " + evt.Event}, true
	}
	if evt.Data.Id == "" {
		return Result{State: StateFailed, Reason: "delivery carries no message id"}, true
	}
	if d.selfId != "" && evt.Data.PersonId == d.selfId {
		return Result{State: StateSkipped, Reason: "message authored by bot"}, true
	}
	return Result{State: StateReceived}, false
}

// route prefers the registration record over the callback URL.
func (d *Dispatcher) route(ctx context.Context, log *zap.Logger, evt spark.WebhookEvent, targetRoomId string) (string, string) {
	if evt.Id == "" {
		return targetRoomId, evt.Name
	}

	reg, err := d.registry.Lookup(ctx, evt.Id)
	switch {
	case errors.Is(err, ErrNotRegistered):
		return targetRoomId, evt.Name
	case err != nil:
		log.Warn("registry lookup", zap.Error(err))
		return targetRoomId, evt.Name
	}

	if targetRoomId != "" && targetRoomId != reg.TargetRoomId {
		log.Warn("callback target disagrees with registration",
			zap.String("callback_target", targetRoomId),
			zap.String("registered_target", reg.TargetRoomId),
		)
	}
	return reg.TargetRoomId, reg.Label
}

func (d *Dispatcher) finish(res Result) Result {
	switch res.State {
	case StatePosted:
		d.stats.Incr(metricPosted)
	case StateSkipped:
		d.stats.Incr(metricSkipped)
	case StateFailed:
		d.stats.Incr(metricFailed)
	}
	return res
}

func verifyMessage(m spark.Message) error {
	switch {
	case m.Id == "":
		return fmt.Errorf("%w: message has no id", ErrVerification)
	case m.PersonId == "":
		return fmt.Errorf("%w: message %s has no personId", ErrVerification, m.Id)
	case m.PersonEmail == "":
		return fmt.Errorf("%w: message %s has no personEmail", ErrVerification, m.Id)
	case m.RoomId == "":
		return fmt.Errorf("%w: message %s has no roomId", ErrVerification, m.Id)
	case m.Created.IsZero():
		return fmt.Errorf("%w: message %s has no created time", ErrVerification, m.Id)
	}
	return nil
}
