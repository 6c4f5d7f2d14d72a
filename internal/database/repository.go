package database

import "context"

// GameRepository stores games, players and the power each player holds in a game.
type GameRepository interface {
	Ping(ctx context.Context) error
	CreateGame(ctx context.Context, params CreateGameParams) (Game, error)
	GetGame(ctx context.Context, externalId string) (Game, error)
	ListGames(ctx context.Context) ([]Game, error)
	DeleteGame(ctx context.Context, externalId string) error
	CreatePlayer(ctx context.Context, params CreatePlayerParams) (Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	AddPlayerToGame(ctx context.Context, params AddPlayerParams) (GamePlayer, error)
}
