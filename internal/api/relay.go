package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/damniamgood/backstabbr-bot/internal/relay"
	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"go.uber.org/zap"
)

const maxDeliveryBytes = 1 << 20

// readDelivery reads and authenticates an inbound platform delivery. It
// writes the response itself when the delivery is rejected.
func (s *App) readDelivery(w http.ResponseWriter, r *http.Request) (spark.WebhookEvent, bool) {
	var evt spark.WebhookEvent

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeliveryBytes))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return evt, false
	}

	if s.webhookSecret != "" && !spark.VerifySignature(s.webhookSecret, body, r.Header.Get(spark.SignatureHeader)) {
		s.log.Warn("delivery signature mismatch", zap.String("path", r.URL.Path))
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return evt, false
	}

	if err := json.Unmarshal(body, &evt); err != nil {
		// answered with 200 so the platform does not retry a payload it will never fix
		s.log.Warn("undecodable delivery", zap.Error(err))
		s.writeJson(w, http.StatusOK, relay.Result{State: relay.StateFailed, Reason: "undecodable payload"})
		return evt, false
	}

	return evt, true
}

func (s *App) relayWebhook(w http.ResponseWriter, r *http.Request) {
	evt, ok := s.readDelivery(w, r)
	if !ok {
		return
	}

	res := s.dispatcher.Relay(r.Context(), evt, r.PathValue("targetRoomId"))
	s.writeJson(w, http.StatusOK, res)
}

// echoWebhook acknowledges the delivery at once and replies in the source
// room in the background.
func (s *App) echoWebhook(w http.ResponseWriter, r *http.Request) {
	evt, ok := s.readDelivery(w, r)
	if !ok {
		return
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.echoTimeout)
		defer cancel()
		s.dispatcher.Echo(ctx, evt)
	}()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
