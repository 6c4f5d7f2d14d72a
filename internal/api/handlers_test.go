package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/damniamgood/backstabbr-bot/internal/relay"
	"github.com/damniamgood/backstabbr-bot/internal/spark"
	"github.com/damniamgood/backstabbr-bot/internal/topology"
	"github.com/damniamgood/backstabbr-bot/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var created = time.Date(1901, 1, 1, 0, 0, 0, 0, time.UTC)

func Test_healthCheck(t *testing.T) {
	tcases := []struct {
		name    string
		withDB  bool
		mockErr error
	}{
		{
			name:   "no database configured",
			withDB: false,
		},
		{
			name:   "successful health check",
			withDB: true,
		},
		{
			name:    "failed health check",
			withDB:  true,
			mockErr: errors.New("db error"),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, tc.withDB)
			if tc.withDB {
				ta.db.On("Ping", mock.Anything).Return(tc.mockErr).Once()
			}

			rr := ta.do(t, http.MethodGet, "/healthz", nil, "")

			if tc.mockErr != nil {
				assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status code to be 500")
			} else {
				assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
				assert.Equal(t, "OK", rr.Body.String(), "expected response body to be 'OK'")
			}
		})
	}
}

func Test_restricted(t *testing.T) {
	ta := newTestApp(t, false)
	token := ta.sessionToken(t)

	rr := ta.do(t, http.MethodGet, "/restricted", nil, token)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "You used a Token! Bully for you!", body["text"])
	assert.Equal(t, "Bearer "+token, body["authorization"])
}

func Test_me(t *testing.T) {
	ta := newTestApp(t, false)
	ta.platform.On("Me", mock.Anything).Return(spark.Person{Id: "user-person", DisplayName: "Kaiser"}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/me", nil, ta.sessionToken(t))

	assert.Equal(t, http.StatusOK, rr.Code)
	var p spark.Person
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	assert.Equal(t, "Kaiser", p.DisplayName)
	assert.Equal(t, []string{userAccess}, ta.usedTokens(), "expected the caller's token to be used")
}

func Test_listRooms(t *testing.T) {
	tcases := []struct {
		name     string
		rooms    []spark.Room
		mockErr  error
		expected int
	}{
		{
			name:     "lists rooms",
			rooms:    []spark.Room{{Id: "a", Title: "ENG-GER 42"}, {Id: "b", Title: "GER-ENG 42"}},
			expected: http.StatusOK,
		},
		{
			name:     "token rejected by platform",
			mockErr:  &spark.APIError{StatusCode: http.StatusUnauthorized},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "platform error",
			mockErr:  &spark.APIError{StatusCode: http.StatusBadGateway},
			expected: http.StatusBadGateway,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, false)
			ta.platform.On("ListRooms", mock.Anything).Return(tc.rooms, tc.mockErr).Once()

			rr := ta.do(t, http.MethodGet, "/rooms", nil, ta.sessionToken(t))

			assert.Equal(t, tc.expected, rr.Code)
			if tc.mockErr == nil {
				var rooms []spark.Room
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&rooms))
				assert.Len(t, rooms, len(tc.rooms))
			}
		})
	}
}

func Test_createRoom(t *testing.T) {
	room := spark.Room{Id: "r1", Title: "Lobby", Created: created}

	tcases := []struct {
		name        string
		body        any
		mockRoom    *spark.Room
		mockErr     error
		expectedErr *ApiError
	}{
		{
			name:     "successfully creates a room",
			body:     types.CreateRoomRequest{Title: "Lobby"},
			mockRoom: &room,
		},
		{
			name:        "fails with invalid json body",
			body:        "invalid json",
			expectedErr: NewBadRequestError(),
		},
		{
			name:        "missing title",
			body:        types.CreateRoomRequest{Title: "  "},
			expectedErr: NewBadRequestError(),
		},
		{
			name:        "fails with platform error",
			body:        types.CreateRoomRequest{Title: "Lobby"},
			mockRoom:    &spark.Room{},
			mockErr:     errors.New("timeout"),
			expectedErr: NewBadGatewayError(nil),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, false)
			if tc.mockRoom != nil {
				ta.platform.On("CreateRoom", mock.Anything, "Lobby").Return(*tc.mockRoom, tc.mockErr).Once()
			}

			rr := ta.do(t, http.MethodPost, "/room", tc.body, ta.sessionToken(t))

			if tc.expectedErr != nil {
				assert.Equal(t, tc.expectedErr.StatusCode, rr.Code, "expected status code to match")
				assert.Equal(t, *tc.expectedErr, decodeApiError(t, rr), "expected ApiError response")
				return
			}
			assert.Equal(t, http.StatusCreated, rr.Code)
			var got spark.Room
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.Equal(t, room.Id, got.Id)
		})
	}
}

func Test_deleteRoom(t *testing.T) {
	tcases := []struct {
		name     string
		mockErr  error
		expected int
	}{
		{name: "deletes room", expected: http.StatusNoContent},
		{name: "room not found", mockErr: &spark.APIError{StatusCode: http.StatusNotFound}, expected: http.StatusNotFound},
		{name: "caller not a moderator", mockErr: &spark.APIError{StatusCode: http.StatusForbidden}, expected: http.StatusForbidden},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, false)
			ta.platform.On("DeleteRoom", mock.Anything, "r1").Return(tc.mockErr).Once()

			rr := ta.do(t, http.MethodDelete, "/room/r1", nil, ta.sessionToken(t))
			assert.Equal(t, tc.expected, rr.Code)
		})
	}
}

func Test_listWebhooks(t *testing.T) {
	ta := newTestApp(t, false)
	ta.platform.On("ListWebhooks", mock.Anything).Return([]spark.Webhook{{Id: "w1", Name: "ENG"}}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/webhooks", nil, ta.sessionToken(t))

	assert.Equal(t, http.StatusOK, rr.Code)
	var hooks []spark.Webhook
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&hooks))
	require.Len(t, hooks, 1)
	assert.Equal(t, "w1", hooks[0].Id)
}

func Test_provisionMatchup(t *testing.T) {
	ta := newTestApp(t, false)
	ta.bot.On("CreateRoom", mock.Anything, "ENG-GER 42").Return(spark.Room{Id: "eng", Title: "ENG-GER 42", Created: created}, nil).Once()
	ta.bot.On("CreateRoom", mock.Anything, "GER-ENG 42").Return(spark.Room{Id: "ger", Title: "GER-ENG 42", Created: created}, nil).Once()
	ta.bot.On("CreateWebhook", mock.Anything, spark.CreateWebhookParams{
		Name: "ENG", TargetUrl: testServiceURL + "/webhook/ger", Resource: "messages", Event: "created", Filter: "roomId=eng",
	}).Return(spark.Webhook{Id: "w-eng", Name: "ENG"}, nil).Once()
	ta.bot.On("CreateWebhook", mock.Anything, spark.CreateWebhookParams{
		Name: "GER", TargetUrl: testServiceURL + "/webhook/eng", Resource: "messages", Event: "created", Filter: "roomId=ger",
	}).Return(spark.Webhook{}, errors.New("quota exceeded")).Once()

	rr := ta.do(t, http.MethodPost, "/rooms/42/ger-eng", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var res topology.ProvisionResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "ENG-GER", res.Matchup)
	assert.Equal(t, "42", res.GameId)
	assert.Len(t, res.Rooms.Succeeded, 2)
	assert.Len(t, res.Links, 2)
	require.Len(t, res.Webhooks.Succeeded, 1)
	assert.Equal(t, "w-eng", res.Webhooks.Succeeded[0].Id)
	require.Len(t, res.Webhooks.Failed, 1)
	assert.Equal(t, "ger->eng", res.Webhooks.Failed[0].Item)
	assert.Equal(t, "quota exceeded", res.Webhooks.Failed[0].Reason)

	assert.Empty(t, ta.usedTokens(), "expected matchup rooms to be created by the relaying identity")

	reg, err := ta.registry.Lookup(t.Context(), "w-eng")
	require.NoError(t, err)
	assert.Equal(t, relay.Registration{WebhookId: "w-eng", SourceRoomId: "eng", TargetRoomId: "ger", Label: "ENG"}, reg)
}

func Test_provisionMatchup_Rejected(t *testing.T) {
	tcases := []struct {
		name string
		path string
	}{
		{name: "unknown power", path: "/rooms/42/ENG-XYZ"},
		{name: "duplicate power", path: "/rooms/42/ENG-ENG"},
		{name: "single power", path: "/rooms/42/ENG"},
		{name: "blank game id", path: "/rooms/%20/ENG-GER"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, false)

			rr := ta.do(t, http.MethodPost, tc.path, nil, ta.sessionToken(t))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, decodeApiError(t, rr).Message)
			assert.Empty(t, ta.usedTokens(), "expected no platform call for rejected input")
			assert.Empty(t, ta.bot.Calls)
		})
	}
}

func Test_teardownMatchup(t *testing.T) {
	ta := newTestApp(t, false)
	ta.bot.On("ListRooms", mock.Anything).Return([]spark.Room{
		{Id: "eng", Title: "ENG-GER 42"},
		{Id: "ger", Title: "GER-ENG 42"},
		{Id: "fra", Title: "FRA-ITA 42"},
	}, nil).Once()
	ta.bot.On("DeleteRoom", mock.Anything, "eng").Return(nil).Once()
	ta.bot.On("DeleteRoom", mock.Anything, "ger").Return(errors.New("forbidden")).Once()
	ta.bot.On("ListWebhooks", mock.Anything).Return([]spark.Webhook{}, nil).Once()

	rr := ta.do(t, http.MethodDelete, "/rooms/42/ENG-GER", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var res topology.TeardownResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	require.Len(t, res.Rooms.Succeeded, 1)
	assert.Equal(t, "eng", res.Rooms.Succeeded[0].Id)
	require.Len(t, res.Rooms.Failed, 1)
	assert.Equal(t, "ger", res.Rooms.Failed[0].Item)
	assert.Empty(t, ta.usedTokens())
}

func Test_gameRooms(t *testing.T) {
	ta := newTestApp(t, false)
	ta.bot.On("ListRooms", mock.Anything).Return([]spark.Room{
		{Id: "eng", Title: "ENG-GER 42"},
		{Id: "other", Title: "ENG-GER 7"},
	}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/games/42/rooms", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var rooms []spark.Room
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "eng", rooms[0].Id)
}

func Test_provisionGame(t *testing.T) {
	ta := newTestApp(t, false)
	ta.bot.On("CreateRoom", mock.Anything, mock.Anything).Return(spark.Room{Id: "r", Title: "r", Created: created}, nil).Times(49)
	ta.bot.On("CreateWebhook", mock.Anything, mock.Anything).Return(spark.Webhook{Id: "w"}, nil).Times(84)

	rr := ta.do(t, http.MethodPost, "/games/42/rooms", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var res []topology.ProvisionResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	require.Len(t, res, 22, "expected every pair plus the all-powers matchup")
	assert.Equal(t, "AUS-ENG-FRA-GER-ITA-RUS-TUR", res[21].Matchup)
	assert.Empty(t, ta.usedTokens())
}

func Test_teardownGame(t *testing.T) {
	ta := newTestApp(t, false)
	ta.bot.On("ListRooms", mock.Anything).Return([]spark.Room{
		{Id: "eng", Title: "ENG-GER 42"},
		{Id: "fra", Title: "FRA-ITA 42"},
		{Id: "other", Title: "FRA-ITA 43"},
	}, nil).Once()
	ta.bot.On("DeleteRoom", mock.Anything, "eng").Return(nil).Once()
	ta.bot.On("DeleteRoom", mock.Anything, "fra").Return(nil).Once()
	ta.bot.On("ListWebhooks", mock.Anything).Return([]spark.Webhook{
		{Id: "w1", Filter: "roomId=eng", TargetUrl: testServiceURL + "/webhook/fra"},
	}, nil).Once()
	ta.bot.On("DeleteWebhook", mock.Anything, "w1").Return(nil).Once()

	rr := ta.do(t, http.MethodDelete, "/games/42/rooms", nil, ta.sessionToken(t))

	require.Equal(t, http.StatusOK, rr.Code)
	var res topology.TeardownResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Len(t, res.Rooms.Succeeded, 2)
	assert.Equal(t, []string{"w1"}, res.Webhooks.Succeeded)
}
