package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/internal/repository"
	"github.com/ironholdgame/server/pkg/skirmish"
)

// SaveService manages stored board snapshots: the per-game autosave ring
// and the numbered manual slots, plus restoring a game from either.
type SaveService struct {
	gameRepo    repository.GameRepository
	boardRepo   repository.BoardRepository
	saveRepo    repository.SaveRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	locks       *GameLocks
	rules       skirmish.Rules
}

// NewSaveService creates a SaveService.
func NewSaveService(
	gameRepo repository.GameRepository,
	boardRepo repository.BoardRepository,
	saveRepo repository.SaveRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
	locks *GameLocks,
	rules skirmish.Rules,
) *SaveService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &SaveService{
		gameRepo:    gameRepo,
		boardRepo:   boardRepo,
		saveRepo:    saveRepo,
		cache:       cache,
		broadcaster: broadcaster,
		locks:       locks,
		rules:       rules,
	}
}

// Autosave stores the board in the autosave ring and evicts the oldest
// entries beyond the ring capacity. Called by the turn pipeline after each
// commit; callers that already hold the game lock stay deadlock-free
// because Autosave takes none.
func (s *SaveService) Autosave(ctx context.Context, gameID string, gs *skirmish.GameState) error {
	raw, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshal board for autosave: %w", err)
	}
	save := &model.Save{
		ID:         uuid.NewString(),
		GameID:     gameID,
		Kind:       model.SaveAuto,
		TurnNumber: gs.Turn,
		State:      raw,
	}
	if err := s.saveRepo.Insert(ctx, save); err != nil {
		return fmt.Errorf("insert autosave: %w", err)
	}

	autos, err := s.saveRepo.ListAutosaves(ctx, gameID)
	if err != nil {
		return fmt.Errorf("list autosaves: %w", err)
	}
	for len(autos) > s.rules.AutosaveLimit {
		if err := s.saveRepo.Delete(ctx, autos[0].ID); err != nil {
			return fmt.Errorf("evict autosave: %w", err)
		}
		log.Debug().Str("gameId", gameID).Int("turn", autos[0].TurnNumber).Msg("Evicted oldest autosave")
		autos = autos[1:]
	}
	return nil
}

// ManualSave writes the current board into a numbered slot, replacing
// whatever the slot held.
func (s *SaveService) ManualSave(ctx context.Context, gameID, userID string, slot int, label string) (*model.Save, error) {
	if slot < 1 || slot > s.rules.ManualSaveSlots {
		return nil, ErrInvalidSlot
	}

	mu := s.locks.Get(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := findOwnedGame(ctx, s.gameRepo, gameID, userID)
	if err != nil {
		return nil, err
	}
	if game.TurnInProgress {
		return nil, ErrTurnBusy
	}

	gs, err := loadBoard(ctx, s.cache, s.boardRepo, gameID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("marshal board for save: %w", err)
	}

	if existing, err := s.saveRepo.FindSlot(ctx, gameID, slot); err != nil {
		return nil, err
	} else if existing != nil {
		if err := s.saveRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("replace slot %d: %w", slot, err)
		}
	}

	save := &model.Save{
		ID:         uuid.NewString(),
		GameID:     gameID,
		Kind:       model.SaveManual,
		Slot:       slot,
		Label:      strings.TrimSpace(label),
		TurnNumber: gs.Turn,
		State:      raw,
	}
	if err := s.saveRepo.Insert(ctx, save); err != nil {
		return nil, fmt.Errorf("insert save: %w", err)
	}

	log.Info().Str("gameId", gameID).Int("slot", slot).Int("turn", gs.Turn).Msg("Manual save written")
	save.State = nil // listing shape; the body stays in storage
	return save, nil
}

// ListSaves returns a game's saves, newest first, without the state bodies.
func (s *SaveService) ListSaves(ctx context.Context, gameID, userID string) ([]model.Save, error) {
	if _, err := findOwnedGame(ctx, s.gameRepo, gameID, userID); err != nil {
		return nil, err
	}
	return s.saveRepo.ListByGame(ctx, gameID)
}

// LoadSave restores a game's board from a stored snapshot. The restored
// board replaces the live one in Postgres and the cache, and turn records
// from the discarded timeline are dropped with it.
func (s *SaveService) LoadSave(ctx context.Context, gameID, userID, saveID string) (*model.GameSnapshot, error) {
	mu := s.locks.Get(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := findOwnedGame(ctx, s.gameRepo, gameID, userID)
	if err != nil {
		return nil, err
	}
	if game.TurnInProgress {
		return nil, ErrTurnBusy
	}

	save, err := s.saveRepo.FindByID(ctx, saveID)
	if err != nil {
		return nil, err
	}
	if save == nil || save.GameID != gameID {
		return nil, ErrSaveNotFound
	}

	var gs skirmish.GameState
	if err := json.Unmarshal(save.State, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal saved board: %w", err)
	}

	if err := s.boardRepo.RestoreState(ctx, gameID, &gs); err != nil {
		return nil, fmt.Errorf("restore board: %w", err)
	}
	cacheBoard(ctx, s.cache, gameID, &gs)

	mirrorGame(game, &gs)

	log.Info().Str("gameId", gameID).Str("saveId", saveID).Int("turn", gs.Turn).Msg("Board restored from save")
	s.broadcaster.BroadcastGameEvent(gameID, "save_loaded", map[string]any{
		"save_id": saveID,
		"turn":    gs.Turn,
	})
	return &model.GameSnapshot{Game: game, State: &gs}, nil
}

// DeleteSave removes a manual save. Autosaves are managed by the ring and
// cannot be deleted by hand.
func (s *SaveService) DeleteSave(ctx context.Context, gameID, userID, saveID string) error {
	if _, err := findOwnedGame(ctx, s.gameRepo, gameID, userID); err != nil {
		return err
	}
	save, err := s.saveRepo.FindByID(ctx, saveID)
	if err != nil {
		return err
	}
	if save == nil || save.GameID != gameID || save.Kind != model.SaveManual {
		return ErrSaveNotFound
	}
	return s.saveRepo.Delete(ctx, saveID)
}
