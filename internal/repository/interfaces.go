package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game-row data operations.
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	Delete(ctx context.Context, id string) error

	// BeginTurn flips the turn_in_progress flag from false to true and
	// reports whether this caller won the flip. A false return with a nil
	// error means another resolution is already running.
	BeginTurn(ctx context.Context, id string) (bool, error)
	EndTurn(ctx context.Context, id string) error
}

// BoardRepository persists the full board for a game.
type BoardRepository interface {
	LoadState(ctx context.Context, gameID string) (*skirmish.GameState, error)
	SaveState(ctx context.Context, gameID string, gs *skirmish.GameState) error

	// RestoreState rewinds a game to a snapshot: the board write and the
	// removal of turn records at or past the snapshot's turn happen in
	// one transaction, so later commits can reuse those turn numbers.
	RestoreState(ctx context.Context, gameID string, gs *skirmish.GameState) error

	// CommitTurn writes the post-resolution board, the game-row updates,
	// and the turn record in a single transaction.
	CommitTurn(ctx context.Context, gameID string, gs *skirmish.GameState, turn *model.Turn) error
}

// TurnRepository defines turn-history data operations.
type TurnRepository interface {
	ListByGame(ctx context.Context, gameID string, limit int) ([]model.Turn, error)
	FindByNumber(ctx context.Context, gameID string, number int) (*model.Turn, error)
}

// SaveRepository defines stored-snapshot data operations.
type SaveRepository interface {
	Insert(ctx context.Context, save *model.Save) error
	FindByID(ctx context.Context, id string) (*model.Save, error)
	FindSlot(ctx context.Context, gameID string, slot int) (*model.Save, error)
	ListByGame(ctx context.Context, gameID string) ([]model.Save, error)
	// ListAutosaves returns a game's autosaves ordered by creation time,
	// oldest first.
	ListAutosaves(ctx context.Context, gameID string) ([]model.Save, error)
	Delete(ctx context.Context, id string) error
	DeleteByGame(ctx context.Context, gameID string) error
}

// GameCache defines live board caching (Redis).
type GameCache interface {
	SetState(ctx context.Context, gameID string, state json.RawMessage) error
	GetState(ctx context.Context, gameID string) (json.RawMessage, error)
	DeleteState(ctx context.Context, gameID string) error
}

// ActionCache stores resolved action results keyed by client idempotency
// key, so replayed requests return the original outcome without re-running.
type ActionCache interface {
	GetResult(ctx context.Context, key string) (json.RawMessage, error)
	StoreResult(ctx context.Context, key string, result json.RawMessage, ttl time.Duration) error
}
