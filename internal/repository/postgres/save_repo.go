package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ironholdgame/server/internal/model"
)

// SaveRepo handles stored-snapshot database operations. The snapshot body
// is the serialized board, kept as jsonb.
type SaveRepo struct {
	db *sql.DB
}

// NewSaveRepo creates a SaveRepo.
func NewSaveRepo(db *sql.DB) *SaveRepo {
	return &SaveRepo{db: db}
}

// Insert stores a snapshot.
func (r *SaveRepo) Insert(ctx context.Context, s *model.Save) error {
	var slot any
	if s.Kind == model.SaveManual {
		slot = s.Slot
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO saves (id, game_id, kind, slot, label, turn_number, state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		s.ID, s.GameID, s.Kind, slot, s.Label, s.TurnNumber, s.State,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert save: %w", err)
	}
	return nil
}

// FindByID returns one snapshot with its state body, or nil when absent.
func (r *SaveRepo) FindByID(ctx context.Context, id string) (*model.Save, error) {
	var s model.Save
	var slot sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, kind, slot, label, turn_number, state, created_at
		 FROM saves WHERE id = $1`, id,
	).Scan(&s.ID, &s.GameID, &s.Kind, &slot, &s.Label, &s.TurnNumber, &s.State, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find save: %w", err)
	}
	s.Slot = int(slot.Int64)
	return &s, nil
}

// FindSlot returns the manual save occupying a slot, or nil when the slot
// is free.
func (r *SaveRepo) FindSlot(ctx context.Context, gameID string, slot int) (*model.Save, error) {
	var s model.Save
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, kind, slot, label, turn_number, state, created_at
		 FROM saves WHERE game_id = $1 AND kind = 'manual' AND slot = $2`, gameID, slot,
	).Scan(&s.ID, &s.GameID, &s.Kind, &s.Slot, &s.Label, &s.TurnNumber, &s.State, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return &s, nil
}

// ListByGame returns a game's snapshots without their state bodies, newest
// first.
func (r *SaveRepo) ListByGame(ctx context.Context, gameID string) ([]model.Save, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, kind, slot, label, turn_number, created_at
		 FROM saves WHERE game_id = $1 ORDER BY created_at DESC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()
	return scanSaves(rows)
}

// ListAutosaves returns a game's autosaves ordered by creation time, oldest
// first, without state bodies, so the caller can evict from the front of
// the ring. Turn numbers repeat after a rewind, so they cannot order it.
func (r *SaveRepo) ListAutosaves(ctx context.Context, gameID string) ([]model.Save, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, kind, slot, label, turn_number, created_at
		 FROM saves WHERE game_id = $1 AND kind = 'auto' ORDER BY created_at ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list autosaves: %w", err)
	}
	defer rows.Close()
	return scanSaves(rows)
}

// Delete removes one snapshot.
func (r *SaveRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

// DeleteByGame removes all of a game's snapshots.
func (r *SaveRepo) DeleteByGame(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game saves: %w", err)
	}
	return nil
}

func scanSaves(rows *sql.Rows) ([]model.Save, error) {
	var saves []model.Save
	for rows.Next() {
		var s model.Save
		var slot sql.NullInt64
		var label sql.NullString
		if err := rows.Scan(&s.ID, &s.GameID, &s.Kind, &slot, &label, &s.TurnNumber, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		s.Slot = int(slot.Int64)
		s.Label = label.String
		saves = append(saves, s)
	}
	return saves, rows.Err()
}
