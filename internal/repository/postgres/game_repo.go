package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ironholdgame/server/internal/model"
)

// GameRepo handles games-table database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create inserts a new game row.
func (r *GameRepo) Create(ctx context.Context, g *model.Game) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (id, owner_id, name, status, turn, seed, width, height, active_participant)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		g.ID, g.OwnerID, g.Name, g.Status, g.Turn, g.Seed, g.Width, g.Height, g.ActiveID,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// FindByID returns a game row by ID, or nil when absent.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	var winner sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, status, turn, seed, width, height, active_participant,
		        winner_participant, turn_in_progress, created_at, updated_at, finished_at
		 FROM games WHERE id = $1`, id,
	).Scan(&g.ID, &g.OwnerID, &g.Name, &g.Status, &g.Turn, &g.Seed, &g.Width, &g.Height, &g.ActiveID,
		&winner, &g.TurnInProgress, &g.CreatedAt, &g.UpdatedAt, &g.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g.WinnerID = winner.Int64
	return &g, nil
}

// ListByOwner returns a user's games, most recent first.
func (r *GameRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, status, turn, seed, width, height, active_participant,
		        winner_participant, turn_in_progress, created_at, updated_at, finished_at
		 FROM games WHERE owner_id = $1 ORDER BY created_at DESC LIMIT 50`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		var winner sql.NullInt64
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Status, &g.Turn, &g.Seed, &g.Width, &g.Height, &g.ActiveID,
			&winner, &g.TurnInProgress, &g.CreatedAt, &g.UpdatedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.WinnerID = winner.Int64
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListActive returns every game still in active status.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, status, turn, seed, width, height, active_participant,
		        winner_participant, turn_in_progress, created_at, updated_at, finished_at
		 FROM games WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		var winner sql.NullInt64
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Status, &g.Turn, &g.Seed, &g.Width, &g.Height, &g.ActiveID,
			&winner, &g.TurnInProgress, &g.CreatedAt, &g.UpdatedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.WinnerID = winner.Int64
		games = append(games, g)
	}
	return games, rows.Err()
}

// BeginTurn flips turn_in_progress from false to true. The compare-and-set
// makes concurrent resolutions of the same game lose the race cleanly.
func (r *GameRepo) BeginTurn(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET turn_in_progress = true, updated_at = now()
		 WHERE id = $1 AND turn_in_progress = false`, id)
	if err != nil {
		return false, fmt.Errorf("begin turn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("begin turn rows: %w", err)
	}
	return n == 1, nil
}

// EndTurn clears the turn_in_progress flag.
func (r *GameRepo) EndTurn(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET turn_in_progress = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("end turn: %w", err)
	}
	return nil
}

// Delete removes a game and all associated data (cascades to the board
// tables, turns, and saves).
func (r *GameRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
