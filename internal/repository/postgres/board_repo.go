package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// BoardRepo persists the normalized board tables for a game: participants,
// units, cities, tiles, city_resources, and territory_links.
type BoardRepo struct {
	db *sql.DB
}

// NewBoardRepo creates a BoardRepo.
func NewBoardRepo(db *sql.DB) *BoardRepo {
	return &BoardRepo{db: db}
}

// LoadState reads the full board for a game. Returns nil when the game does
// not exist.
func (r *BoardRepo) LoadState(ctx context.Context, gameID string) (*skirmish.GameState, error) {
	gs := &skirmish.GameState{
		Territory:  make(map[int64][]int64),
		Stockpiles: make(map[int64]map[skirmish.Resource]int),
		UnitTypes:  skirmish.DefaultUnitTypes(),
	}

	var status string
	var winner sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT width, height, turn, seed, status, active_participant, winner_participant
		 FROM games WHERE id = $1`, gameID,
	).Scan(&gs.Width, &gs.Height, &gs.Turn, &gs.Seed, &status, &gs.ActiveID, &winner)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game row: %w", err)
	}
	gs.Status = skirmish.GameStatus(status)
	gs.WinnerID = winner.Int64

	if err := r.loadParticipants(ctx, gameID, gs); err != nil {
		return nil, err
	}
	if err := r.loadUnits(ctx, gameID, gs); err != nil {
		return nil, err
	}
	if err := r.loadCities(ctx, gameID, gs); err != nil {
		return nil, err
	}
	if err := r.loadTiles(ctx, gameID, gs); err != nil {
		return nil, err
	}
	if err := r.loadCityResources(ctx, gameID, gs); err != nil {
		return nil, err
	}
	if err := r.loadTerritory(ctx, gameID, gs); err != nil {
		return nil, err
	}

	gs.NextID = maxEntityID(gs) + 1
	return gs, nil
}

// SaveState replaces the board tables for a game in one transaction.
func (r *BoardRepo) SaveState(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeState(ctx, tx, gameID, gs); err != nil {
		return err
	}
	return tx.Commit()
}

// RestoreState rewinds a game to a snapshot. It writes the board and
// deletes turn records at or past the snapshot's turn in the same
// transaction; those numbers get reissued when play resumes, and the
// turns table keeps (game_id, number) unique.
func (r *BoardRepo) RestoreState(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeState(ctx, tx, gameID, gs); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM turns WHERE game_id = $1 AND number >= $2`, gameID, gs.Turn)
	if err != nil {
		return fmt.Errorf("trim turns: %w", err)
	}
	return tx.Commit()
}

// CommitTurn writes the post-resolution board, the game-row mirror fields,
// and the turn record atomically, clearing turn_in_progress on the way out.
func (r *BoardRepo) CommitTurn(ctx context.Context, gameID string, gs *skirmish.GameState, turn *model.Turn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeState(ctx, tx, gameID, gs); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE games SET turn_in_progress = false WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("clear turn flag: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO turns (id, game_id, number, participant_id, duration_ms, summary)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		turn.ID, turn.GameID, turn.Number, turn.ParticipantID, turn.DurationMS, turn.Summary,
	).Scan(&turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	return tx.Commit()
}

// writeState deletes and reinserts a game's board rows and refreshes the
// game-row mirror fields inside the caller's transaction.
func writeState(ctx context.Context, tx *sql.Tx, gameID string, gs *skirmish.GameState) error {
	var winner any
	if gs.WinnerID != 0 {
		winner = gs.WinnerID
	}
	finish := ""
	if gs.Status == skirmish.StatusFinished {
		finish = ", finished_at = COALESCE(finished_at, now())"
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE games SET turn = $1, status = $2, active_participant = $3,
		        winner_participant = $4, updated_at = now()`+finish+`
		 WHERE id = $5`,
		gs.Turn, string(gs.Status), gs.ActiveID, winner, gameID)
	if err != nil {
		return fmt.Errorf("update game row: %w", err)
	}

	for _, table := range []string{"territory_links", "city_resources", "units", "cities", "tiles", "participants"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE game_id = $1`, gameID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i := range gs.Participants {
		p := &gs.Participants[i]
		var userID any
		if p.UserID != "" {
			userID = p.UserID
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participants (game_id, id, kind, user_id, name, eliminated)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			gameID, p.ID, string(p.Kind), userID, p.Name, p.Eliminated)
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	for i := range gs.Tiles {
		t := &gs.Tiles[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tiles (game_id, id, row, col, terrain, resource, stock)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			gameID, t.ID, t.Pos.Row, t.Pos.Col, string(t.Terrain), string(t.Resource), t.Stock)
		if err != nil {
			return fmt.Errorf("insert tile: %w", err)
		}
	}

	for i := range gs.Cities {
		c := &gs.Cities[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cities (game_id, id, owner_id, row, col, hp, max_hp, acted)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			gameID, c.ID, c.OwnerID, c.Pos.Row, c.Pos.Col, c.HP, c.MaxHP, c.Acted)
		if err != nil {
			return fmt.Errorf("insert city: %w", err)
		}
	}

	for i := range gs.Units {
		u := &gs.Units[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO units (game_id, id, owner_id, unit_type, row, col, hp, acted)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			gameID, u.ID, u.OwnerID, u.Type, u.Pos.Row, u.Pos.Col, u.HP, u.Acted)
		if err != nil {
			return fmt.Errorf("insert unit: %w", err)
		}
	}

	for cityID, byRes := range gs.Stockpiles {
		for res, amt := range byRes {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO city_resources (game_id, city_id, resource, amount)
				 VALUES ($1, $2, $3, $4)`,
				gameID, cityID, string(res), amt)
			if err != nil {
				return fmt.Errorf("insert city resource: %w", err)
			}
		}
	}

	for cityID, tiles := range gs.Territory {
		for _, tileID := range tiles {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO territory_links (game_id, city_id, tile_id) VALUES ($1, $2, $3)`,
				gameID, cityID, tileID)
			if err != nil {
				return fmt.Errorf("insert territory link: %w", err)
			}
		}
	}

	return nil
}

func (r *BoardRepo) loadParticipants(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, user_id, name, eliminated FROM participants WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p skirmish.Participant
		var kind string
		var userID sql.NullString
		if err := rows.Scan(&p.ID, &kind, &userID, &p.Name, &p.Eliminated); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		p.Kind = skirmish.ParticipantKind(kind)
		p.UserID = userID.String
		gs.Participants = append(gs.Participants, p)
	}
	return rows.Err()
}

func (r *BoardRepo) loadUnits(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, unit_type, row, col, hp, acted FROM units WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return fmt.Errorf("load units: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u skirmish.Unit
		if err := rows.Scan(&u.ID, &u.OwnerID, &u.Type, &u.Pos.Row, &u.Pos.Col, &u.HP, &u.Acted); err != nil {
			return fmt.Errorf("scan unit: %w", err)
		}
		gs.Units = append(gs.Units, u)
	}
	return rows.Err()
}

func (r *BoardRepo) loadCities(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, row, col, hp, max_hp, acted FROM cities WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return fmt.Errorf("load cities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c skirmish.City
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Pos.Row, &c.Pos.Col, &c.HP, &c.MaxHP, &c.Acted); err != nil {
			return fmt.Errorf("scan city: %w", err)
		}
		gs.Cities = append(gs.Cities, c)
	}
	return rows.Err()
}

func (r *BoardRepo) loadTiles(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, row, col, terrain, resource, stock FROM tiles
		 WHERE game_id = $1 ORDER BY row, col`, gameID)
	if err != nil {
		return fmt.Errorf("load tiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t skirmish.Tile
		var terrain, resource string
		if err := rows.Scan(&t.ID, &t.Pos.Row, &t.Pos.Col, &terrain, &resource, &t.Stock); err != nil {
			return fmt.Errorf("scan tile: %w", err)
		}
		t.Terrain = skirmish.Terrain(terrain)
		t.Resource = skirmish.Resource(resource)
		gs.Tiles = append(gs.Tiles, t)
	}
	return rows.Err()
}

func (r *BoardRepo) loadCityResources(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT city_id, resource, amount FROM city_resources WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("load city resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cityID int64
		var res string
		var amt int
		if err := rows.Scan(&cityID, &res, &amt); err != nil {
			return fmt.Errorf("scan city resource: %w", err)
		}
		if gs.Stockpiles[cityID] == nil {
			gs.Stockpiles[cityID] = make(map[skirmish.Resource]int)
		}
		gs.Stockpiles[cityID][skirmish.Resource(res)] = amt
	}
	return rows.Err()
}

func (r *BoardRepo) loadTerritory(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT city_id, tile_id FROM territory_links WHERE game_id = $1 ORDER BY city_id, tile_id`, gameID)
	if err != nil {
		return fmt.Errorf("load territory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cityID, tileID int64
		if err := rows.Scan(&cityID, &tileID); err != nil {
			return fmt.Errorf("scan territory link: %w", err)
		}
		gs.Territory[cityID] = append(gs.Territory[cityID], tileID)
	}
	return rows.Err()
}

// maxEntityID finds the highest ID across all board entities so loaded
// states keep allocating IDs above everything already persisted.
func maxEntityID(gs *skirmish.GameState) int64 {
	var max int64
	for i := range gs.Tiles {
		if gs.Tiles[i].ID > max {
			max = gs.Tiles[i].ID
		}
	}
	for i := range gs.Cities {
		if gs.Cities[i].ID > max {
			max = gs.Cities[i].ID
		}
	}
	for i := range gs.Units {
		if gs.Units[i].ID > max {
			max = gs.Units[i].ID
		}
	}
	return max
}
