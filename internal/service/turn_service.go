package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ironholdgame/server/internal/bot"
	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/internal/repository"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// TurnSummary records what one end-turn resolution did. It is stored as the
// turn record's summary and returned to the caller.
type TurnSummary struct {
	Number        int                     `json:"number"`
	ParticipantID int64                   `json:"participant_id"`
	Regen         []skirmish.RegenEntry   `json:"regen,omitempty"`
	Harvest       *skirmish.HarvestReport `json:"harvest,omitempty"`
	Produced      []skirmish.ProducedUnit `json:"produced,omitempty"`
	// Actions lists the scripted participant's executed commands; empty for
	// human turns, whose actions were already applied one by one.
	Actions []bot.Action `json:"actions,omitempty"`
}

// TurnResult is the EndTurn response: every turn resolved by the call (the
// human's, plus the scripted opponent's that follows) and the final board.
type TurnResult struct {
	Turns    []TurnSummary       `json:"turns"`
	Snapshot *model.GameSnapshot `json:"snapshot"`
}

// TurnService runs the end-turn pipeline: upkeep for the incoming
// participant, the turn record, the autosave, and the handover, looping
// through the scripted opponent's turn until control returns to the human.
type TurnService struct {
	gameRepo    repository.GameRepository
	boardRepo   repository.BoardRepository
	cache       repository.GameCache
	actions     repository.ActionCache
	saves       *SaveService
	broadcaster Broadcaster
	locks       *GameLocks
	strategy    bot.Strategy
	rules       skirmish.Rules
}

// NewTurnService creates a TurnService.
func NewTurnService(
	gameRepo repository.GameRepository,
	boardRepo repository.BoardRepository,
	cache repository.GameCache,
	actions repository.ActionCache,
	saves *SaveService,
	broadcaster Broadcaster,
	locks *GameLocks,
	strategy bot.Strategy,
	rules skirmish.Rules,
) *TurnService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if strategy == nil {
		strategy = &bot.Scripted{}
	}
	return &TurnService{
		gameRepo:    gameRepo,
		boardRepo:   boardRepo,
		cache:       cache,
		actions:     actions,
		saves:       saves,
		broadcaster: broadcaster,
		locks:       locks,
		strategy:    strategy,
		rules:       rules,
	}
}

// EndTurn resolves the caller's end of turn. The turn_in_progress flag is
// taken with a compare-and-set before any mutation and cleared by the commit
// transaction, so a concurrent EndTurn loses cleanly with ErrTurnBusy.
func (s *TurnService) EndTurn(ctx context.Context, gameID, userID, clientKey string) (*TurnResult, error) {
	idemKey := resultKey("end_turn", gameID, clientKey)
	if replayed := s.replay(ctx, idemKey); replayed != nil {
		log.Debug().Str("gameId", gameID).Msg("Replayed idempotent end turn")
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

	won, err := s.gameRepo.BeginTurn(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrTurnBusy
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := s.gameRepo.EndTurn(ctx, gameID); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Failed to clear turn flag after aborted resolution")
		}
	}()

	gs, err := loadBoard(ctx, s.cache, s.boardRepo, gameID)
	if err != nil {
		return nil, err
	}
	actor := gs.ParticipantByUser(userID)
	if actor == nil || actor.ID != gs.ActiveID {
		return nil, ErrNotYourTurn
	}

	result := &TurnResult{}
	actingID := actor.ID
	var scriptedActions []bot.Action

	for {
		summary, err := s.resolveOne(ctx, gameID, gs, actingID, scriptedActions)
		if err != nil {
			return nil, err
		}
		result.Turns = append(result.Turns, *summary)
		scriptedActions = nil

		if gs.Status != skirmish.StatusActive {
			break
		}
		next := gs.ParticipantByID(gs.ActiveID)
		if next == nil || next.Kind != skirmish.ScriptedAI {
			break
		}

		// The commit cleared the flag; retake it for the scripted turn.
		won, err := s.gameRepo.BeginTurn(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, ErrTurnBusy
		}
		actingID = next.ID
		scriptedActions = s.runScripted(gameID, gs, next.ID)
	}
	committed = true

	cacheBoard(ctx, s.cache, gameID, gs)

	mirrorGame(game, gs)
	game.TurnInProgress = false
	result.Snapshot = &model.GameSnapshot{Game: game, State: gs}

	storeResult(ctx, s.actions, idemKey, result, actionResultTTL)

	s.broadcaster.BroadcastGameEvent(gameID, "turn_resolved", map[string]any{
		"turn":               gs.Turn,
		"active_participant": gs.ActiveID,
	})
	if gs.Status == skirmish.StatusFinished {
		log.Info().Str("gameId", gameID).Int64("winner", gs.WinnerID).Msg("Game ended during turn resolution")
		s.broadcaster.BroadcastGameEvent(gameID, "game_ended", map[string]any{
			"winner_participant": gs.WinnerID,
		})
	}

	log.Info().Str("gameId", gameID).Int("turnsResolved", len(result.Turns)).
		Int("turn", gs.Turn).Msg("Turn resolved")
	return result, nil
}

// resolveOne runs one end-turn pipeline for the acting participant: upkeep
// for the incoming side, handover, and the atomic commit of board plus turn
// record. The autosave lands right after the commit.
func (s *TurnService) resolveOne(ctx context.Context, gameID string, gs *skirmish.GameState, actingID int64, actions []bot.Action) (*TurnSummary, error) {
	started := time.Now()
	summary := TurnSummary{Number: gs.Turn, ParticipantID: actingID, Actions: actions}

	if gs.Status == skirmish.StatusActive {
		next := gs.Opponent(actingID)
		if next != nil {
			skirmish.ResetActed(gs, next.ID)
			summary.Regen = skirmish.RegenerateCities(gs, s.rules, next.ID)
			summary.Harvest = skirmish.HarvestAll(gs, s.rules)
			summary.Produced = skirmish.AutoProduce(gs, next.ID)

			gs.Turn++
			gs.ActiveID = next.ID
		}
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal turn summary: %w", err)
	}
	turn := &model.Turn{
		ID:            uuid.NewString(),
		GameID:        gameID,
		Number:        summary.Number,
		ParticipantID: actingID,
		DurationMS:    time.Since(started).Milliseconds(),
		Summary:       summaryJSON,
	}
	if err := s.boardRepo.CommitTurn(ctx, gameID, gs, turn); err != nil {
		return nil, fmt.Errorf("commit turn: %w", err)
	}

	if err := s.saves.Autosave(ctx, gameID, gs); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Int("turn", gs.Turn).Msg("Autosave failed")
	}

	return &summary, nil
}

// runScripted plans and executes the scripted participant's commands
// directly against the live board. Rejected commands are dropped; execution
// stops the moment the game finishes.
func (s *TurnService) runScripted(gameID string, gs *skirmish.GameState, participantID int64) []bot.Action {
	plan := s.strategy.PlanTurn(gs, s.rules, participantID)
	var applied []bot.Action
	for _, act := range plan {
		if err := bot.Apply(gs, s.rules, participantID, act); err != nil {
			log.Debug().Err(err).Str("gameId", gameID).Str("kind", string(act.Kind)).Msg("Scripted action rejected")
			continue
		}
		applied = append(applied, act)
		if gs.Status != skirmish.StatusActive {
			break
		}
	}
	log.Debug().Str("gameId", gameID).Str("strategy", s.strategy.Name()).
		Int("planned", len(plan)).Int("applied", len(applied)).Msg("Scripted turn executed")
	return applied
}

// replay returns the cached result for the idempotency key, or nil.
func (s *TurnService) replay(ctx context.Context, key string) *TurnResult {
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
	var res TurnResult
	if err := json.Unmarshal(cached, &res); err != nil {
		return nil
	}
	return &res
}
