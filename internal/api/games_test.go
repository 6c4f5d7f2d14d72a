package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/damniamgood/backstabbr-bot/internal/database"
	"github.com/damniamgood/backstabbr-bot/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_createGame(t *testing.T) {
	mockGame := database.Game{Id: 1, ExternalId: "EoGKUXPHgz", Name: "Spring 1901", CreatedAt: created}

	tcases := []struct {
		name        string
		body        any
		externalId  string
		mockGame    *database.Game
		mockErr     error
		shortIdErr  error
		expectedErr *ApiError
	}{
		{
			name:       "creates a game with a generated id",
			body:       types.CreateGameRequest{Name: "Spring 1901"},
			externalId: "EoGKUXPHgz",
			mockGame:   &mockGame,
		},
		{
			name:       "creates a game with an explicit id",
			body:       types.CreateGameRequest{Id: "42", Name: "Spring 1901"},
			externalId: "42",
			mockGame:   &database.Game{Id: 2, ExternalId: "42", Name: "Spring 1901", CreatedAt: created},
		},
		{
			name:        "fails with invalid json body",
			body:        "invalid json",
			expectedErr: NewBadRequestError(),
		},
		{
			name:        "missing name",
			body:        types.CreateGameRequest{Id: "42"},
			expectedErr: NewBadRequestError(),
		},
		{
			name:        "id with whitespace",
			body:        types.CreateGameRequest{Id: "4 2", Name: "Spring 1901"},
			expectedErr: NewValidationError(errGameId),
		},
		{
			name:        "fails to generate short id",
			body:        types.CreateGameRequest{Name: "Spring 1901"},
			shortIdErr:  errors.New("failed to generate short id"),
			expectedErr: NewInternalServerError(nil),
		},
		{
			name:        "id already taken",
			body:        types.CreateGameRequest{Id: "42", Name: "Spring 1901"},
			externalId:  "42",
			mockGame:    &database.Game{},
			mockErr:     database.ErrConflict,
			expectedErr: NewConflictError(),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, true)
			ta.app.generateShortId = func() (string, error) {
				if tc.shortIdErr != nil {
					return "", tc.shortIdErr
				}
				return mockGame.ExternalId, nil
			}

			if tc.mockGame != nil {
				ta.db.On("CreateGame", mock.Anything, database.CreateGameParams{
					ExternalId: tc.externalId,
					Name:       "Spring 1901",
				}).Return(*tc.mockGame, tc.mockErr).Once()
			}

			rr := ta.do(t, http.MethodPost, "/games", tc.body, ta.sessionToken(t))

			if tc.expectedErr != nil {
				assert.Equal(t, tc.expectedErr.StatusCode, rr.Code, "expected status code to match")
				apiErr := decodeApiError(t, rr)
				assert.Equal(t, tc.expectedErr.Message, apiErr.Message, "expected ApiError response")
				return
			}

			assert.Equal(t, http.StatusCreated, rr.Code)
			var game types.Game
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&game))
			assert.Equal(t, tc.externalId, game.Id, "expected the external id to be exposed")
			assert.Equal(t, "Spring 1901", game.Name)
		})
	}
}

func Test_listGames(t *testing.T) {
	ta := newTestApp(t, true)
	ta.db.On("ListGames", mock.Anything).Return([]database.Game{
		{Id: 1, ExternalId: "42", Name: "a"},
		{Id: 2, ExternalId: "43", Name: "b"},
	}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/games", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var games []types.Game
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&games))
	require.Len(t, games, 2)
	assert.Equal(t, "43", games[1].Id)
}

func Test_getGame(t *testing.T) {
	tcases := []struct {
		name     string
		mockGame database.Game
		mockErr  error
		expected int
	}{
		{
			name: "game with players",
			mockGame: database.Game{Id: 1, ExternalId: "42", Name: "a", Players: []database.GamePlayer{
				{GameId: "42", PlayerId: 7, PlayerName: "otto", Power: "GER"},
			}},
			expected: http.StatusOK,
		},
		{
			name:     "game not found",
			mockErr:  database.ErrNotFound,
			expected: http.StatusNotFound,
		},
		{
			name:     "db error",
			mockErr:  errors.New("db error"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, true)
			ta.db.On("GetGame", mock.Anything, "42").Return(tc.mockGame, tc.mockErr).Once()

			rr := ta.do(t, http.MethodGet, "/games/42", nil, ta.sessionToken(t))

			require.Equal(t, tc.expected, rr.Code)
			if tc.mockErr != nil {
				return
			}
			var game types.Game
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&game))
			require.Len(t, game.Players, 1)
			assert.Equal(t, "otto", game.Players[0].Name)
			assert.Equal(t, "Germany", game.Players[0].PowerName)
		})
	}
}

func Test_deleteGame(t *testing.T) {
	tcases := []struct {
		name     string
		mockErr  error
		expected int
	}{
		{name: "deletes game", expected: http.StatusNoContent},
		{name: "game not found", mockErr: database.ErrNotFound, expected: http.StatusNotFound},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, true)
			ta.db.On("DeleteGame", mock.Anything, "42").Return(tc.mockErr).Once()

			rr := ta.do(t, http.MethodDelete, "/games/42", nil, ta.sessionToken(t))
			assert.Equal(t, tc.expected, rr.Code)
		})
	}
}

func Test_createPlayer(t *testing.T) {
	tcases := []struct {
		name     string
		body     any
		mock     bool
		mockErr  error
		expected int
	}{
		{name: "creates player", body: types.CreatePlayerRequest{Name: "otto", Email: "otto@example.com"}, mock: true, expected: http.StatusCreated},
		{name: "missing name", body: types.CreatePlayerRequest{Email: "otto@example.com"}, expected: http.StatusBadRequest},
		{name: "invalid json", body: "nope", expected: http.StatusBadRequest},
		{name: "duplicate name", body: types.CreatePlayerRequest{Name: "otto", Email: "otto@example.com"}, mock: true, mockErr: database.ErrConflict, expected: http.StatusConflict},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, true)
			if tc.mock {
				ta.db.On("CreatePlayer", mock.Anything, database.CreatePlayerParams{Name: "otto", Email: "otto@example.com"}).
					Return(database.Player{Id: 7, Name: "otto", Email: "otto@example.com", CreatedAt: created}, tc.mockErr).Once()
			}

			rr := ta.do(t, http.MethodPost, "/player", tc.body, ta.sessionToken(t))

			require.Equal(t, tc.expected, rr.Code)
			if tc.expected == http.StatusCreated {
				var p types.Player
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
				assert.Equal(t, 7, p.Id)
			}
		})
	}
}

func Test_listPlayers(t *testing.T) {
	ta := newTestApp(t, true)
	ta.db.On("ListPlayers", mock.Anything).Return([]database.Player{{Id: 7, Name: "otto"}}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/players", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var players []types.Player
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&players))
	assert.Equal(t, []types.Player{{Id: 7, Name: "otto"}}, players)
}

func Test_addPlayerToGame(t *testing.T) {
	tcases := []struct {
		name     string
		body     any
		mock     bool
		mockErr  error
		expected int
	}{
		{name: "assigns power", body: types.AddPlayerRequest{Name: "otto", Power: " ger "}, mock: true, expected: http.StatusCreated},
		{name: "unknown power", body: types.AddPlayerRequest{Name: "otto", Power: "PRU"}, expected: http.StatusBadRequest},
		{name: "missing name", body: types.AddPlayerRequest{Power: "GER"}, expected: http.StatusBadRequest},
		{name: "unknown game or player", body: types.AddPlayerRequest{Name: "otto", Power: "GER"}, mock: true, mockErr: database.ErrNotFound, expected: http.StatusNotFound},
		{name: "power taken", body: types.AddPlayerRequest{Name: "otto", Power: "GER"}, mock: true, mockErr: database.ErrConflict, expected: http.StatusConflict},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, true)
			if tc.mock {
				ta.db.On("AddPlayerToGame", mock.Anything, database.AddPlayerParams{GameId: "42", PlayerName: "otto", Power: "GER"}).
					Return(database.GamePlayer{GameId: "42", PlayerId: 7, PlayerName: "otto", Power: "GER", CreatedAt: created}, tc.mockErr).Once()
			}

			rr := ta.do(t, http.MethodPost, "/game/42/player", tc.body, ta.sessionToken(t))

			require.Equal(t, tc.expected, rr.Code)
			if tc.expected == http.StatusCreated {
				var gp types.GamePlayer
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&gp))
				assert.Equal(t, "GER", gp.Power)
				assert.Equal(t, "Germany", gp.PowerName)
			}
		})
	}
}

func TestGameRoutes_WithoutDatabase(t *testing.T) {
	ta := newTestApp(t, false)

	rr := ta.do(t, http.MethodGet, "/games", nil, ta.sessionToken(t))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, *NewServiceUnavailableError(), decodeApiError(t, rr))
}
