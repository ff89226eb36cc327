package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ironholdgame/server/internal/model"
)

// TurnRepo handles turn-history database operations. Turn rows are inserted
// by BoardRepo.CommitTurn as part of the resolution transaction; this repo
// only reads them.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// ListByGame returns a game's turn records, most recent first.
func (r *TurnRepo) ListByGame(ctx context.Context, gameID string, limit int) ([]model.Turn, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, number, participant_id, duration_ms, summary, created_at
		 FROM turns WHERE game_id = $1 ORDER BY number DESC LIMIT $2`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		if err := rows.Scan(&t.ID, &t.GameID, &t.Number, &t.ParticipantID, &t.DurationMS, &t.Summary, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// FindByNumber returns one turn record, or nil when absent.
func (r *TurnRepo) FindByNumber(ctx context.Context, gameID string, number int) (*model.Turn, error) {
	var t model.Turn
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, number, participant_id, duration_ms, summary, created_at
		 FROM turns WHERE game_id = $1 AND number = $2`, gameID, number,
	).Scan(&t.ID, &t.GameID, &t.Number, &t.ParticipantID, &t.DurationMS, &t.Summary, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find turn: %w", err)
	}
	return &t, nil
}
