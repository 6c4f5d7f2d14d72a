package database

import "time"

type Game struct {
	Id         int
	ExternalId string
	Name       string
	CreatedAt  time.Time
	Players    []GamePlayer
}

type Player struct {
	Id        int
	Name      string
	Email     string
	CreatedAt time.Time
}

type GamePlayer struct {
	GameId     string
	PlayerId   int
	PlayerName string
	Power      string
	CreatedAt  time.Time
}

type CreateGameParams struct {
	ExternalId string
	Name       string
}

type CreatePlayerParams struct {
	Name  string
	Email string
}

type AddPlayerParams struct {
	GameId     string
	PlayerName string
	Power      string
}
