package types

import (
	"time"
)

type Game struct {
	Id        string       `json:"id"`
	Name      string       `json:"name"`
	Players   []GamePlayer `json:"players,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

type Player struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type GamePlayer struct {
	GameId    string    `json:"game_id"`
	PlayerId  int       `json:"player_id"`
	Name      string    `json:"name"`
	Power     string    `json:"power"`
	PowerName string    `json:"power_name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type CreateGameRequest struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CreatePlayerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AddPlayerRequest struct {
	Name  string `json:"name"`
	Power string `json:"power"`
}

type CreateRoomRequest struct {
	Title string `json:"title"`
}
