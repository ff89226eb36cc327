package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/internal/repository"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// Result cache lifetimes for replayed requests: lifecycle operations keep
// their result for a day, gameplay actions for an hour.
const (
	lifecycleResultTTL = 24 * time.Hour
	actionResultTTL    = time.Hour
)

const (
	humanParticipantID    = 1
	scriptedParticipantID = 2
)

// GameService handles game lifecycle operations: creation, lookup, deletion,
// and turn history.
type GameService struct {
	gameRepo  repository.GameRepository
	boardRepo repository.BoardRepository
	turnRepo  repository.TurnRepository
	cache     repository.GameCache
	actions   repository.ActionCache
	rules     skirmish.Rules
}

// NewGameService creates a GameService.
func NewGameService(
	gameRepo repository.GameRepository,
	boardRepo repository.BoardRepository,
	turnRepo repository.TurnRepository,
	cache repository.GameCache,
	actions repository.ActionCache,
	rules skirmish.Rules,
) *GameService {
	return &GameService{
		gameRepo:  gameRepo,
		boardRepo: boardRepo,
		turnRepo:  turnRepo,
		cache:     cache,
		actions:   actions,
		rules:     rules,
	}
}

// CreateGame seeds a fresh board and persists it. A zero seed picks one from
// the clock. The client key makes retried creates return the original game
// instead of minting another.
func (s *GameService) CreateGame(ctx context.Context, ownerID, name string, seed int64, clientKey string) (*model.GameSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	idemKey := resultKey("create_game", ownerID, clientKey)
	if snap := replaySnapshot(ctx, s.actions, idemKey); snap != nil {
		return snap, nil
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	human := skirmish.Participant{ID: humanParticipantID, Kind: skirmish.Human, UserID: ownerID, Name: "Player"}
	opponent := skirmish.Participant{ID: scriptedParticipantID, Kind: skirmish.ScriptedAI, Name: "Warlord"}
	gs := skirmish.NewGameState(s.rules, seed, skirmish.DefaultWidth, skirmish.DefaultHeight, human, opponent)

	game := &model.Game{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		Status:   string(gs.Status),
		Turn:     gs.Turn,
		Seed:     seed,
		Width:    gs.Width,
		Height:   gs.Height,
		ActiveID: gs.ActiveID,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}
	if err := s.boardRepo.SaveState(ctx, game.ID, gs); err != nil {
		return nil, err
	}
	cacheBoard(ctx, s.cache, game.ID, gs)

	snap := &model.GameSnapshot{Game: game, State: gs}
	storeResult(ctx, s.actions, idemKey, snap, lifecycleResultTTL)

	log.Info().Str("gameId", game.ID).Str("ownerId", ownerID).Int64("seed", seed).Msg("Game created")
	return snap, nil
}

// GetGame returns a game with its live board. Only the owner may read it.
func (s *GameService) GetGame(ctx context.Context, gameID, userID string) (*model.GameSnapshot, error) {
	game, err := findOwnedGame(ctx, s.gameRepo, gameID, userID)
	if err != nil {
		return nil, err
	}
	gs, err := loadBoard(ctx, s.cache, s.boardRepo, gameID)
	if err != nil {
		return nil, err
	}
	return &model.GameSnapshot{Game: game, State: gs}, nil
}

// ListGames returns the user's games, most recent first.
func (s *GameService) ListGames(ctx context.Context, userID string) ([]model.Game, error) {
	return s.gameRepo.ListByOwner(ctx, userID)
}

// DeleteGame removes a game and everything attached to it. Replayed deletes
// succeed without touching anything.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID, clientKey string) error {
	idemKey := resultKey("delete_game", gameID, clientKey)
	if clientKey != "" {
		if cached, err := s.actions.GetResult(ctx, idemKey); err == nil && cached != nil {
			return nil
		}
	}

	if _, err := findOwnedGame(ctx, s.gameRepo, gameID, userID); err != nil {
		return err
	}
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return err
	}
	if err := s.cache.DeleteState(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to drop cached board after delete")
	}

	storeResult(ctx, s.actions, idemKey, map[string]bool{"deleted": true}, lifecycleResultTTL)
	log.Info().Str("gameId", gameID).Msg("Game deleted")
	return nil
}

// TurnHistory returns a game's resolved turn records, most recent first.
func (s *GameService) TurnHistory(ctx context.Context, gameID, userID string, limit int) ([]model.Turn, error) {
	if _, err := findOwnedGame(ctx, s.gameRepo, gameID, userID); err != nil {
		return nil, err
	}
	return s.turnRepo.ListByGame(ctx, gameID, limit)
}

// RecoverActiveGames reprimes the board cache for all active games from
// Postgres. Called on server startup so the first request after a restart
// does not eat a cache miss per game.
func (s *GameService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}

	log.Info().Int("count", len(games)).Msg("Recovering active games after restart")
	for _, game := range games {
		gs, err := s.boardRepo.LoadState(ctx, game.ID)
		if err != nil || gs == nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to load board during recovery")
			continue
		}
		cacheBoard(ctx, s.cache, game.ID, gs)
	}
	return nil
}

// resultKey builds the idempotency cache key, or "" when no client key was
// supplied.
func resultKey(action, scope, clientKey string) string {
	if clientKey == "" {
		return ""
	}
	return action + ":" + scope + ":" + clientKey
}

// replaySnapshot returns a previously stored snapshot result, or nil.
func replaySnapshot(ctx context.Context, actions repository.ActionCache, key string) *model.GameSnapshot {
	if key == "" {
		return nil
	}
	cached, err := actions.GetResult(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Idempotency cache read failed")
		return nil
	}
	if cached == nil {
		return nil
	}
	var snap model.GameSnapshot
	if err := json.Unmarshal(cached, &snap); err != nil {
		return nil
	}
	return &snap
}

// storeResult caches a successful result under the idempotency key. Failures
// only cost replay protection, so they are logged and swallowed.
func storeResult(ctx context.Context, actions repository.ActionCache, key string, result any, ttl time.Duration) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to marshal result for idempotency cache")
		return
	}
	if err := actions.StoreResult(ctx, key, raw, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to store idempotent result")
	}
}
