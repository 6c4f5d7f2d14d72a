package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockGameRepository) CreateGame(ctx context.Context, params CreateGameParams) (Game, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Game), args.Error(1)
}
func (m *MockGameRepository) GetGame(ctx context.Context, externalId string) (Game, error) {
	args := m.Called(ctx, externalId)
	return args.Get(0).(Game), args.Error(1)
}
func (m *MockGameRepository) ListGames(ctx context.Context) ([]Game, error) {
	args := m.Called(ctx)
	games, _ := args.Get(0).([]Game)
	return games, args.Error(1)
}
func (m *MockGameRepository) DeleteGame(ctx context.Context, externalId string) error {
	args := m.Called(ctx, externalId)
	return args.Error(0)
}
func (m *MockGameRepository) CreatePlayer(ctx context.Context, params CreatePlayerParams) (Player, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Player), args.Error(1)
}
func (m *MockGameRepository) ListPlayers(ctx context.Context) ([]Player, error) {
	args := m.Called(ctx)
	players, _ := args.Get(0).([]Player)
	return players, args.Error(1)
}
func (m *MockGameRepository) AddPlayerToGame(ctx context.Context, params AddPlayerParams) (GamePlayer, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(GamePlayer), args.Error(1)
}
