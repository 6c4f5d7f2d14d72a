package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/damniamgood/backstabbr-bot/internal/database"
	"github.com/damniamgood/backstabbr-bot/internal/powers"
	"github.com/damniamgood/backstabbr-bot/internal/types"
)

// dbError maps a repository error onto a response.
func dbError(err error) *ApiError {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return NewNotFoundError()
	case errors.Is(err, database.ErrConflict):
		return NewConflictError()
	default:
		return NewInternalServerError(err)
	}
}

func (s *App) toGame(g database.Game) types.Game {
	out := types.Game{
		Id:        g.ExternalId,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
	for _, gp := range g.Players {
		out.Players = append(out.Players, s.toGamePlayer(gp))
	}
	return out
}

func (s *App) toGamePlayer(gp database.GamePlayer) types.GamePlayer {
	name := s.engine.Catalog().Name(powers.Code(gp.Power))
	return types.GamePlayer{
		GameId:    gp.GameId,
		PlayerId:  gp.PlayerId,
		Name:      gp.PlayerName,
		Power:     gp.Power,
		PowerName: name,
		CreatedAt: gp.CreatedAt,
	}
}

func toPlayer(p database.Player) types.Player {
	return types.Player{
		Id:        p.Id,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

func (s *App) createGame(w http.ResponseWriter, r *http.Request) {
	var req types.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	id := req.Id
	if id == "" {
		var err error
		id, err = s.generateShortId()
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}
	if !validGameId(id) {
		errResp := NewValidationError(errGameId)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	game, err := s.db.CreateGame(r.Context(), database.CreateGameParams{
		ExternalId: id,
		Name:       req.Name,
	})
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, s.toGame(game))
}

func (s *App) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.db.ListGames(r.Context())
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.Game, 0, len(games))
	for _, g := range games {
		out = append(out, s.toGame(g))
	}
	s.writeJson(w, http.StatusOK, out)
}

func (s *App) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.db.GetGame(r.Context(), r.PathValue("gameId"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.toGame(game))
}

func (s *App) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteGame(r.Context(), r.PathValue("gameId")); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *App) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	player, err := s.db.CreatePlayer(r.Context(), database.CreatePlayerParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, toPlayer(player))
}

func (s *App) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.db.ListPlayers(r.Context())
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.Player, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayer(p))
	}
	s.writeJson(w, http.StatusOK, out)
}

// addPlayerToGame assigns one of the catalog's powers to a player.
func (s *App) addPlayerToGame(w http.ResponseWriter, r *http.Request) {
	var req types.AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	power := powers.Code(strings.ToUpper(strings.TrimSpace(req.Power)))
	if strings.TrimSpace(req.Name) == "" || !s.engine.Catalog().Valid(power) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	gp, err := s.db.AddPlayerToGame(r.Context(), database.AddPlayerParams{
		GameId:     r.PathValue("gameId"),
		PlayerName: req.Name,
		Power:      string(power),
	})
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, s.toGamePlayer(gp))
}
