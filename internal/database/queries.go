package database

import (
	"context"
	"database/sql"
)

func (db *PgGameRepository) CreateGame(ctx context.Context, params CreateGameParams) (Game, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO games (external_id, name) VALUES ($1, $2) "+
			"RETURNING id, external_id, name, created_at",
		params.ExternalId,
		params.Name,
	)

	var g Game
	err := res.Scan(&g.Id, &g.ExternalId, &g.Name, &g.CreatedAt)
	return g, mapError(err)
}

func (db *PgGameRepository) GetGame(ctx context.Context, externalId string) (Game, error) {
	var g Game
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, external_id, name, created_at FROM games WHERE external_id = $1",
		externalId,
	).Scan(&g.Id, &g.ExternalId, &g.Name, &g.CreatedAt)
	if err != nil {
		return Game{}, mapError(err)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT p.id, p.name, gp.power, gp.created_at FROM game_players gp "+
			"JOIN players p ON p.id = gp.player_id WHERE gp.game_id = $1 ORDER BY gp.power",
		g.Id,
	)
	if err != nil {
		return Game{}, err
	}
	defer rows.Close()

	g.Players = []GamePlayer{}
	for rows.Next() {
		gp := GamePlayer{GameId: g.ExternalId}
		if err := rows.Scan(&gp.PlayerId, &gp.PlayerName, &gp.Power, &gp.CreatedAt); err != nil {
			return Game{}, err
		}
		g.Players = append(g.Players, gp)
	}
	return g, rows.Err()
}

func (db *PgGameRepository) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, external_id, name, created_at FROM games ORDER BY created_at, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.Id, &g.ExternalId, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (db *PgGameRepository) DeleteGame(ctx context.Context, externalId string) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var id int
	if err = tx.QueryRowContext(ctx, "SELECT id FROM games WHERE external_id = $1", externalId).Scan(&id); err != nil {
		return mapError(err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM game_players WHERE game_id = $1", id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM games WHERE id = $1", id); err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgGameRepository) CreatePlayer(ctx context.Context, params CreatePlayerParams) (Player, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO players (name, email) VALUES ($1, $2) RETURNING id, name, email, created_at",
		params.Name,
		params.Email,
	)

	var p Player
	err := res.Scan(&p.Id, &p.Name, &p.Email, &p.CreatedAt)
	return p, mapError(err)
}

func (db *PgGameRepository) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT id, name, email, created_at FROM players ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.Id, &p.Name, &p.Email, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// AddPlayerToGame assigns a power to an existing player in an existing
// game. A power can be held by one player per game.
func (db *PgGameRepository) AddPlayerToGame(ctx context.Context, params AddPlayerParams) (GamePlayer, error) {
	gp := GamePlayer{GameId: params.GameId, PlayerName: params.PlayerName, Power: params.Power}
	err := db.conn.QueryRowContext(ctx,
		"INSERT INTO game_players (game_id, player_id, power) "+
			"SELECT g.id, p.id, $3 FROM games g, players p WHERE g.external_id = $1 AND p.name = $2 "+
			"RETURNING player_id, created_at",
		params.GameId,
		params.PlayerName,
		params.Power,
	).Scan(&gp.PlayerId, &gp.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return GamePlayer{}, ErrNotFound
		}
		return GamePlayer{}, mapError(err)
	}
	return gp, nil
}
