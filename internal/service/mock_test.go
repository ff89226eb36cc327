package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/pkg/skirmish"
)

type mockGameRepo struct {
	games map[string]*model.Game
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{games: make(map[string]*model.Game)}
}

func (m *mockGameRepo) Create(_ context.Context, g *model.Game) error {
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	cp := *g
	m.games[g.ID] = &cp
	return nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *mockGameRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.OwnerID == ownerID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) Delete(_ context.Context, id string) error {
	delete(m.games, id)
	return nil
}

func (m *mockGameRepo) BeginTurn(_ context.Context, id string) (bool, error) {
	g, ok := m.games[id]
	if !ok || g.TurnInProgress {
		return false, nil
	}
	g.TurnInProgress = true
	return true, nil
}

func (m *mockGameRepo) EndTurn(_ context.Context, id string) error {
	if g, ok := m.games[id]; ok {
		g.TurnInProgress = false
	}
	return nil
}

type mockBoardRepo struct {
	games     *mockGameRepo
	states    map[string]*skirmish.GameState
	turns     []model.Turn
	saveCalls int
}

func newMockBoardRepo(games *mockGameRepo) *mockBoardRepo {
	return &mockBoardRepo{games: games, states: make(map[string]*skirmish.GameState)}
}

func (m *mockBoardRepo) LoadState(_ context.Context, gameID string) (*skirmish.GameState, error) {
	gs, ok := m.states[gameID]
	if !ok {
		return nil, nil
	}
	return gs.Clone(), nil
}

func (m *mockBoardRepo) SaveState(_ context.Context, gameID string, gs *skirmish.GameState) error {
	m.saveCalls++
	m.states[gameID] = gs.Clone()
	m.mirror(gameID, gs)
	return nil
}

func (m *mockBoardRepo) RestoreState(_ context.Context, gameID string, gs *skirmish.GameState) error {
	m.states[gameID] = gs.Clone()
	m.mirror(gameID, gs)
	kept := m.turns[:0]
	for _, t := range m.turns {
		if t.GameID != gameID || t.Number < gs.Turn {
			kept = append(kept, t)
		}
	}
	m.turns = kept
	return nil
}

func (m *mockBoardRepo) CommitTurn(_ context.Context, gameID string, gs *skirmish.GameState, turn *model.Turn) error {
	// The turns table keeps (game_id, number) unique.
	for _, t := range m.turns {
		if t.GameID == turn.GameID && t.Number == turn.Number {
			return fmt.Errorf("insert turn: duplicate turn %d for game %s", turn.Number, turn.GameID)
		}
	}
	m.states[gameID] = gs.Clone()
	m.mirror(gameID, gs)
	if g, ok := m.games.games[gameID]; ok {
		g.TurnInProgress = false
	}
	turn.CreatedAt = time.Now()
	m.turns = append(m.turns, *turn)
	return nil
}

func (m *mockBoardRepo) mirror(gameID string, gs *skirmish.GameState) {
	if g, ok := m.games.games[gameID]; ok {
		g.Turn = gs.Turn
		g.Status = string(gs.Status)
		g.ActiveID = gs.ActiveID
		g.WinnerID = gs.WinnerID
	}
}

type mockSaveRepo struct {
	saves []*model.Save
}

func (m *mockSaveRepo) Insert(_ context.Context, save *model.Save) error {
	save.CreatedAt = time.Now()
	cp := *save
	m.saves = append(m.saves, &cp)
	return nil
}

func (m *mockSaveRepo) FindByID(_ context.Context, id string) (*model.Save, error) {
	for _, s := range m.saves {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockSaveRepo) FindSlot(_ context.Context, gameID string, slot int) (*model.Save, error) {
	for _, s := range m.saves {
		if s.GameID == gameID && s.Kind == model.SaveManual && s.Slot == slot {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockSaveRepo) ListByGame(_ context.Context, gameID string) ([]model.Save, error) {
	var result []model.Save
	for i := len(m.saves) - 1; i >= 0; i-- {
		if m.saves[i].GameID == gameID {
			cp := *m.saves[i]
			cp.State = nil
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockSaveRepo) ListAutosaves(_ context.Context, gameID string) ([]model.Save, error) {
	var result []model.Save
	for _, s := range m.saves {
		if s.GameID == gameID && s.Kind == model.SaveAuto {
			cp := *s
			cp.State = nil
			result = append(result, cp)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockSaveRepo) Delete(_ context.Context, id string) error {
	for i, s := range m.saves {
		if s.ID == id {
			m.saves = append(m.saves[:i], m.saves[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockSaveRepo) DeleteByGame(_ context.Context, gameID string) error {
	var kept []*model.Save
	for _, s := range m.saves {
		if s.GameID != gameID {
			kept = append(kept, s)
		}
	}
	m.saves = kept
	return nil
}

type mockTurnRepo struct {
	boards *mockBoardRepo
}

func (m *mockTurnRepo) ListByGame(_ context.Context, gameID string, limit int) ([]model.Turn, error) {
	var result []model.Turn
	for i := len(m.boards.turns) - 1; i >= 0; i-- {
		if m.boards.turns[i].GameID == gameID {
			result = append(result, m.boards.turns[i])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockTurnRepo) FindByNumber(_ context.Context, gameID string, number int) (*model.Turn, error) {
	for i := range m.boards.turns {
		if m.boards.turns[i].GameID == gameID && m.boards.turns[i].Number == number {
			cp := m.boards.turns[i]
			return &cp, nil
		}
	}
	return nil, nil
}

type mockGameCache struct {
	states map[string]json.RawMessage
}

func newMockGameCache() *mockGameCache {
	return &mockGameCache{states: make(map[string]json.RawMessage)}
}

func (m *mockGameCache) SetState(_ context.Context, gameID string, state json.RawMessage) error {
	m.states[gameID] = append(json.RawMessage(nil), state...)
	return nil
}

func (m *mockGameCache) GetState(_ context.Context, gameID string) (json.RawMessage, error) {
	return m.states[gameID], nil
}

func (m *mockGameCache) DeleteState(_ context.Context, gameID string) error {
	delete(m.states, gameID)
	return nil
}

type mockActionCache struct {
	results map[string]json.RawMessage
	stores  int
}

func newMockActionCache() *mockActionCache {
	return &mockActionCache{results: make(map[string]json.RawMessage)}
}

func (m *mockActionCache) GetResult(_ context.Context, key string) (json.RawMessage, error) {
	return m.results[key], nil
}

func (m *mockActionCache) StoreResult(_ context.Context, key string, result json.RawMessage, _ time.Duration) error {
	m.stores++
	m.results[key] = append(json.RawMessage(nil), result...)
	return nil
}

type recordedEvent struct {
	GameID string
	Type   string
	Data   any
}

type recordingBroadcaster struct {
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastGameEvent(gameID string, eventType string, data any) {
	b.events = append(b.events, recordedEvent{GameID: gameID, Type: eventType, Data: data})
}

func (b *recordingBroadcaster) has(eventType string) bool {
	for _, e := range b.events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}
