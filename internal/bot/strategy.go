package bot

import (
	"github.com/ironholdgame/server/pkg/skirmish"
)

// ActionKind enumerates the commands a strategy can plan.
type ActionKind string

const (
	ActMove       ActionKind = "move"
	ActAttackUnit ActionKind = "attack_unit"
	ActAttackCity ActionKind = "attack_city"
	ActSpawn      ActionKind = "spawn"
	ActExpand     ActionKind = "expand"
)

// Action is one planned command for the scripted participant. Fields beyond
// Kind are populated per the kind: unit actions carry UnitID, city actions
// carry CityID, and so on.
type Action struct {
	Kind     ActionKind     `json:"kind"`
	UnitID   int64          `json:"unit_id,omitempty"`
	CityID   int64          `json:"city_id,omitempty"`
	TargetID int64          `json:"target_id,omitempty"`
	TileID   int64          `json:"tile_id,omitempty"`
	Target   skirmish.Coord `json:"target,omitempty"`
	UnitType string         `json:"unit_type,omitempty"`
}

// Strategy plans a full turn for a scripted participant. Implementations
// must be deterministic: the same state always yields the same plan.
type Strategy interface {
	Name() string
	PlanTurn(gs *skirmish.GameState, r skirmish.Rules, participantID int64) []Action
}

// ForName returns the strategy registered under the given name, defaulting
// to the scripted aggressor.
func ForName(name string) Strategy {
	switch name {
	case "passive":
		return Passive{}
	default:
		return &Scripted{}
	}
}

// Passive plans nothing. Useful for tests and sandbox games.
type Passive struct{}

func (Passive) Name() string { return "passive" }

func (Passive) PlanTurn(*skirmish.GameState, skirmish.Rules, int64) []Action { return nil }
