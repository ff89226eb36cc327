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

// loadBoard returns a game's live board, preferring the Redis cache and
// falling back to Postgres, re-priming the cache on a miss.
func loadBoard(ctx context.Context, cache repository.GameCache, boards repository.BoardRepository, gameID string) (*skirmish.GameState, error) {
	raw, err := cache.GetState(ctx, gameID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Board cache read failed, falling back to Postgres")
	} else if raw != nil {
		var gs skirmish.GameState
		if err := json.Unmarshal(raw, &gs); err == nil {
			return &gs, nil
		}
		log.Warn().Err(err).Str("gameId", gameID).Msg("Cached board is corrupt, falling back to Postgres")
	}

	gs, err := boards.LoadState(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	if gs == nil {
		return nil, ErrGameNotFound
	}
	cacheBoard(ctx, cache, gameID, gs)
	return gs, nil
}

// cacheBoard writes the board to the live-state cache. Cache failures are
// logged, never fatal; Postgres stays the source of truth.
func cacheBoard(ctx context.Context, cache repository.GameCache, gameID string, gs *skirmish.GameState) {
	raw, err := json.Marshal(gs)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to marshal board for cache")
		return
	}
	if err := cache.SetState(ctx, gameID, raw); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to cache board")
	}
}

// findOwnedGame loads a game row and checks the caller owns it.
func findOwnedGame(ctx context.Context, games repository.GameRepository, gameID, userID string) (*model.Game, error) {
	game, err := games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.OwnerID != userID {
		return nil, ErrNotYourGame
	}
	return game, nil
}

// mirrorGame refreshes the game row's board-derived fields for a response
// envelope after the board has changed.
func mirrorGame(game *model.Game, gs *skirmish.GameState) {
	game.Turn = gs.Turn
	game.Status = string(gs.Status)
	game.ActiveID = gs.ActiveID
	game.WinnerID = gs.WinnerID
}
