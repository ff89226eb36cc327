package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/internal/repository"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// MoveCommand relocates one unit.
type MoveCommand struct {
	UnitID    int64 `json:"unit_id"`
	TargetRow int   `json:"target_row"`
	TargetCol int   `json:"target_col"`
}

// AttackUnitCommand attacks an enemy unit.
type AttackUnitCommand struct {
	UnitID   int64 `json:"unit_id"`
	TargetID int64 `json:"target_id"`
}

// AttackCityCommand attacks an enemy city.
type AttackCityCommand struct {
	UnitID int64 `json:"unit_id"`
	CityID int64 `json:"city_id"`
}

// SpawnCommand trains a unit at a city.
type SpawnCommand struct {
	CityID   int64  `json:"city_id"`
	UnitType string `json:"unit_type"`
}

// ExpandCommand claims a tile into a city's territory.
type ExpandCommand struct {
	CityID int64 `json:"city_id"`
	TileID int64 `json:"tile_id"`
}

// ActionResult is the response for every gameplay action: the per-action
// outcome plus the full post-action snapshot. The same bytes come back on an
// idempotent replay.
type ActionResult struct {
	Action     string                      `json:"action"`
	Move       *skirmish.MoveResult        `json:"move,omitempty"`
	UnitAttack *skirmish.UnitAttackOutcome `json:"unit_attack,omitempty"`
	CityAttack *skirmish.CityAttackOutcome `json:"city_attack,omitempty"`
	Spawned    *skirmish.Unit              `json:"spawned,omitempty"`
	Expansion  *skirmish.ExpandResult      `json:"expansion,omitempty"`
	Snapshot   *model.GameSnapshot         `json:"snapshot"`
}

// ActionService validates and applies gameplay commands for the human
// participant.
type ActionService struct {
	gameRepo    repository.GameRepository
	boardRepo   repository.BoardRepository
	cache       repository.GameCache
	actions     repository.ActionCache
	broadcaster Broadcaster
	locks       *GameLocks
	rules       skirmish.Rules
}

// NewActionService creates an ActionService.
func NewActionService(
	gameRepo repository.GameRepository,
	boardRepo repository.BoardRepository,
	cache repository.GameCache,
	actions repository.ActionCache,
	broadcaster Broadcaster,
	locks *GameLocks,
	rules skirmish.Rules,
) *ActionService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &ActionService{
		gameRepo:    gameRepo,
		boardRepo:   boardRepo,
		cache:       cache,
		actions:     actions,
		broadcaster: broadcaster,
		locks:       locks,
		rules:       rules,
	}
}

// Move relocates one of the caller's units.
func (s *ActionService) Move(ctx context.Context, gameID, userID, clientKey string, cmd MoveCommand) (*ActionResult, error) {
	return s.apply(ctx, gameID, userID, clientKey, "move", func(gs *skirmish.GameState, actorID int64, out *ActionResult) error {
		res, err := skirmish.ApplyMove(gs, actorID, cmd.UnitID, skirmish.Coord{Row: cmd.TargetRow, Col: cmd.TargetCol})
		if err != nil {
			return err
		}
		out.Move = res
		return nil
	})
}

// AttackUnit resolves an attack against an enemy unit, counterattack
// included.
func (s *ActionService) AttackUnit(ctx context.Context, gameID, userID, clientKey string, cmd AttackUnitCommand) (*ActionResult, error) {
	return s.apply(ctx, gameID, userID, clientKey, "attack_unit", func(gs *skirmish.GameState, actorID int64, out *ActionResult) error {
		res, err := skirmish.ApplyAttackUnit(gs, actorID, cmd.UnitID, cmd.TargetID)
		if err != nil {
			return err
		}
		out.UnitAttack = res
		return nil
	})
}

// AttackCity resolves an attack against an enemy city, possibly capturing
// it and ending the game.
func (s *ActionService) AttackCity(ctx context.Context, gameID, userID, clientKey string, cmd AttackCityCommand) (*ActionResult, error) {
	return s.apply(ctx, gameID, userID, clientKey, "attack_city", func(gs *skirmish.GameState, actorID int64, out *ActionResult) error {
		res, err := skirmish.ApplyAttackCity(gs, actorID, cmd.UnitID, cmd.CityID)
		if err != nil {
			return err
		}
		out.CityAttack = res
		return nil
	})
}

// SpawnUnit trains a unit at one of the caller's cities.
func (s *ActionService) SpawnUnit(ctx context.Context, gameID, userID, clientKey string, cmd SpawnCommand) (*ActionResult, error) {
	return s.apply(ctx, gameID, userID, clientKey, "spawn_unit", func(gs *skirmish.GameState, actorID int64, out *ActionResult) error {
		unit, err := skirmish.ApplySpawnUnit(gs, actorID, cmd.CityID, cmd.UnitType)
		if err != nil {
			return err
		}
		out.Spawned = unit
		return nil
	})
}

// ExpandTerritory claims an adjacent tile for one of the caller's cities.
func (s *ActionService) ExpandTerritory(ctx context.Context, gameID, userID, clientKey string, cmd ExpandCommand) (*ActionResult, error) {
	return s.apply(ctx, gameID, userID, clientKey, "expand_territory", func(gs *skirmish.GameState, actorID int64, out *ActionResult) error {
		res, err := skirmish.ApplyExpandTerritory(gs, s.rules, actorID, cmd.CityID, cmd.TileID)
		if err != nil {
			return err
		}
		out.Expansion = res
		return nil
	})
}

// apply runs the shared precondition chain, the rule check, and the persist
// path for one command. Order matters: ownership, then game over, then
// turn-in-progress, then active participant. Rule rejections leave the
// state untouched and are never cached for replay.
func (s *ActionService) apply(
	ctx context.Context,
	gameID, userID, clientKey, action string,
	fn func(gs *skirmish.GameState, actorID int64, out *ActionResult) error,
) (*ActionResult, error) {
	idemKey := resultKey(action, gameID, clientKey)
	if replayed := s.replay(ctx, idemKey); replayed != nil {
		log.Debug().Str("gameId", gameID).Str("action", action).Msg("Replayed idempotent action")
		return replayed, nil
	}

	mu := s.locks.Get(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := findOwnedGame(ctx, s.gameRepo, gameID, userID)
	if err != nil {
		return nil, err
	}
	if game.Status != string(skirmish.StatusActive) {
		return nil, ErrGameFinished
	}
	if game.TurnInProgress {
		return nil, ErrTurnBusy
	}

	gs, err := loadBoard(ctx, s.cache, s.boardRepo, gameID)
	if err != nil {
		return nil, err
	}
	actor := gs.ParticipantByUser(userID)
	if actor == nil || actor.ID != gs.ActiveID {
		return nil, ErrNotYourTurn
	}

	out := &ActionResult{Action: action}
	if err := fn(gs, actor.ID, out); err != nil {
		return nil, err
	}

	if err := s.boardRepo.SaveState(ctx, gameID, gs); err != nil {
		return nil, fmt.Errorf("save board: %w", err)
	}
	cacheBoard(ctx, s.cache, gameID, gs)

	mirrorGame(game, gs)
	out.Snapshot = &model.GameSnapshot{Game: game, State: gs}

	storeResult(ctx, s.actions, idemKey, out, actionResultTTL)

	s.broadcaster.BroadcastGameEvent(gameID, "action_applied", map[string]any{
		"action": action,
		"turn":   gs.Turn,
	})
	if gs.Status == skirmish.StatusFinished {
		log.Info().Str("gameId", gameID).Int64("winner", gs.WinnerID).Msg("Game won by capture")
		s.broadcaster.BroadcastGameEvent(gameID, "game_ended", map[string]any{
			"winner_participant": gs.WinnerID,
		})
	}
	return out, nil
}

// replay returns the cached result for the idempotency key, or nil.
func (s *ActionService) replay(ctx context.Context, key string) *ActionResult {
	if key == "" {
		return nil
	}
	cached, err := s.actions.GetResult(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Idempotency cache read failed")
		return nil
	}
	if cached == nil {
		return nil
	}
	var out ActionResult
	if err := json.Unmarshal(cached, &out); err != nil {
		return nil
	}
	return &out
}
