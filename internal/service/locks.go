package service

import "sync"

// GameLocks serializes mutating work per game. Actions, end-turn resolution,
// and save restores all share one lock per game ID so they never interleave
// inside a single process; the turn_in_progress flag covers the rest.
type GameLocks struct {
	locks sync.Map
}

// NewGameLocks creates an empty lock table.
func NewGameLocks() *GameLocks {
	return &GameLocks{}
}

// Get returns the mutex for a given game ID.
func (l *GameLocks) Get(gameID string) *sync.Mutex {
	v, _ := l.locks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
