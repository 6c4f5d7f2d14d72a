package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/damniamgood/backstabbr-bot/internal/types"
	"go.uber.org/zap"
)

var errGameId = errors.New("game id must be non-empty and contain no whitespace")

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("json encode", zap.Error(err))
	}
}

func (s *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.log.Error("health check", zap.Error(err))
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *App) restricted(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]string{
		"text":          "You used a Token! Bully for you!",
		"authorization": r.Header.Get("Authorization"),
	})
}

func (s *App) me(w http.ResponseWriter, r *http.Request) {
	p, ok := s.sessionPlatform(w, r)
	if !ok {
		return
	}

	person, err := p.Me(r.Context())
	if err != nil {
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, person)
}

func (s *App) listRooms(w http.ResponseWriter, r *http.Request) {
	p, ok := s.sessionPlatform(w, r)
	if !ok {
		return
	}

	rooms, err := p.ListRooms(r.Context())
	if err != nil {
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func (s *App) createRoom(w http.ResponseWriter, r *http.Request) {
	var req types.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	p, ok := s.sessionPlatform(w, r)
	if !ok {
		return
	}

	room, err := p.CreateRoom(r.Context(), req.Title)
	if err != nil {
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, room)
}

func (s *App) deleteRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := s.sessionPlatform(w, r)
	if !ok {
		return
	}

	if err := p.DeleteRoom(r.Context(), r.PathValue("id")); err != nil {
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *App) listWebhooks(w http.ResponseWriter, r *http.Request) {
	p, ok := s.sessionPlatform(w, r)
	if !ok {
		return
	}

	hooks, err := p.ListWebhooks(r.Context())
	if err != nil {
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, hooks)
}

func validGameId(id string) bool {
	return id != "" && !strings.ContainsAny(id, " \t\r\n")
}

// provisionMatchup creates the rooms of a matchup and relays every room
// into every other one. Rooms are owned by the bot, not the caller.
func (s *App) provisionMatchup(w http.ResponseWriter, r *http.Request) {
	gameId := r.PathValue("gameId")
	if !validGameId(gameId) {
		errResp := NewValidationError(errGameId)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	m, err := s.engine.ParseMatchup(r.PathValue("matchup"))
	if err != nil {
		errResp := NewValidationError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.engine.Provision(r.Context(), s.bot, m, gameId))
}

func (s *App) teardownMatchup(w http.ResponseWriter, r *http.Request) {
	gameId := r.PathValue("gameId")
	if !validGameId(gameId) {
		errResp := NewValidationError(errGameId)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	m, err := s.engine.ParseMatchup(r.PathValue("matchup"))
	if err != nil {
		errResp := NewValidationError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.engine.Teardown(r.Context(), s.bot, m, gameId))
}

func (s *App) provisionGame(w http.ResponseWriter, r *http.Request) {
	gameId := r.PathValue("gameId")
	if !validGameId(gameId) {
		errResp := NewValidationError(errGameId)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.engine.ProvisionGame(r.Context(), s.bot, gameId))
}

func (s *App) gameRooms(w http.ResponseWriter, r *http.Request) {
	gameId := r.PathValue("gameId")
	if !validGameId(gameId) {
		errResp := NewValidationError(errGameId)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms, err := s.engine.GameRooms(r.Context(), s.bot, gameId)
	if err != nil {
		errResp := remoteError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func (s *App) teardownGame(w http.ResponseWriter, r *http.Request) {
	gameId := r.PathValue("gameId")
	if !validGameId(gameId) {
		errResp := NewValidationError(errGameId)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.engine.TeardownGame(r.Context(), s.bot, gameId))
}
