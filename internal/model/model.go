package model

import (
	"encoding/json"
	"time"

	"github.com/ironholdgame/server/pkg/skirmish"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game is the games-table row: ownership and lifecycle metadata. The board
// itself lives in the board tables and is loaded as a skirmish.GameState.
type Game struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"` // active, finished
	Turn           int        `json:"turn"`
	Seed           int64      `json:"seed"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	ActiveID       int64      `json:"active_id"`
	WinnerID       int64      `json:"winner_id,omitempty"`
	TurnInProgress bool       `json:"turn_in_progress"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// Turn is one resolved end-turn record, with the pipeline summary kept as
// raw JSON for replay in the client.
type Turn struct {
	ID            string          `json:"id"`
	GameID        string          `json:"game_id"`
	Number        int             `json:"number"`
	ParticipantID int64           `json:"participant_id"`
	DurationMS    int64           `json:"duration_ms"`
	Summary       json.RawMessage `json:"summary"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Save kinds.
const (
	SaveAuto   = "auto"
	SaveManual = "manual"
)

// Save is a stored board snapshot. Autosaves form a ring buffer per game;
// manual saves occupy numbered slots.
type Save struct {
	ID         string          `json:"id"`
	GameID     string          `json:"game_id"`
	Kind       string          `json:"kind"`
	Slot       int             `json:"slot,omitempty"` // manual saves only
	Label      string          `json:"label,omitempty"`
	TurnNumber int             `json:"turn_number"`
	State      json.RawMessage `json:"state,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// GameSnapshot bundles a game row with its live board for API responses.
type GameSnapshot struct {
	Game  *Game               `json:"game"`
	State *skirmish.GameState `json:"state"`
}
