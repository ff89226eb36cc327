package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ironholdgame/server/internal/bot"
	"github.com/ironholdgame/server/internal/model"
	"github.com/ironholdgame/server/pkg/skirmish"
)

func TestEndTurnResolvesBothSides(t *testing.T) {
	f := newFixture(bot.Passive{})
	gs := standardBoard()
	gs.CityByID(101).HP = 40
	gs.CityByID(100).HP = 90
	wheatTile := gs.TileAt(skirmish.Coord{Row: 2, Col: 2})
	wheatTile.Resource = skirmish.Wheat
	wheatTile.Stock = 10
	f.seed(t, gs)
	ctx := context.Background()

	res, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", "")
	if err != nil {
		t.Fatal(err)
	}

	// The human's turn resolves, then the scripted opponent's, then control
	// comes back.
	if len(res.Turns) != 2 {
		t.Fatalf("expected 2 resolved turns, got %d", len(res.Turns))
	}
	if res.Turns[0].Number != 1 || res.Turns[0].ParticipantID != 1 {
		t.Errorf("bad first summary: %+v", res.Turns[0])
	}
	if res.Turns[1].Number != 2 || res.Turns[1].ParticipantID != 2 {
		t.Errorf("bad second summary: %+v", res.Turns[1])
	}

	final := res.Snapshot.State
	if final.Turn != 3 || final.ActiveID != 1 {
		t.Errorf("expected turn 3 back with the human, got turn=%d active=%d", final.Turn, final.ActiveID)
	}

	// Upkeep ran for the incoming side each time: the scripted city healed
	// during the human's resolution and vice versa.
	if got := regenFor(res.Turns[0].Regen, 101); got != 5 {
		t.Errorf("scripted city regen = %d, want 5", got)
	}
	if got := regenFor(res.Turns[1].Regen, 100); got != 5 {
		t.Errorf("human city regen = %d, want 5", got)
	}

	// Harvest runs for every city in every resolution.
	if got := res.Turns[0].Harvest.Gained[100][skirmish.Wheat]; got != 1 {
		t.Errorf("first harvest gained %d wheat, want 1", got)
	}
	if got := final.Stockpile(100, skirmish.Wheat); got != 2 {
		t.Errorf("wheat stockpile after both harvests = %d, want 2", got)
	}

	if len(f.boards.turns) != 2 {
		t.Errorf("expected 2 turn records, got %d", len(f.boards.turns))
	}
	if f.games.games["game-1"].TurnInProgress {
		t.Error("turn flag still set after resolution")
	}
	autos, _ := f.saveRepo.ListAutosaves(ctx, "game-1")
	if len(autos) != 2 {
		t.Errorf("expected 2 autosaves, got %d", len(autos))
	}
	if !f.events.has("turn_resolved") {
		t.Error("no turn_resolved broadcast")
	}
}

func regenFor(entries []skirmish.RegenEntry, cityID int64) int {
	for _, e := range entries {
		if e.CityID == cityID {
			return e.Amount
		}
	}
	return 0
}

func TestEndTurnPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong owner", func(t *testing.T) {
		f := newFixture(bot.Passive{})
		f.seed(t, standardBoard())
		if _, err := f.turnSvc.EndTurn(ctx, "game-1", "someone-else", ""); !errors.Is(err, ErrNotYourGame) {
			t.Errorf("expected ErrNotYourGame, got %v", err)
		}
	})

	t.Run("finished game", func(t *testing.T) {
		f := newFixture(bot.Passive{})
		f.seed(t, standardBoard())
		f.games.games["game-1"].Status = "finished"
		if _, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", ""); !errors.Is(err, ErrGameFinished) {
			t.Errorf("expected ErrGameFinished, got %v", err)
		}
	})

	t.Run("resolution in flight", func(t *testing.T) {
		f := newFixture(bot.Passive{})
		f.seed(t, standardBoard())
		f.games.games["game-1"].TurnInProgress = true
		if _, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", ""); !errors.Is(err, ErrTurnBusy) {
			t.Errorf("expected ErrTurnBusy, got %v", err)
		}
	})

	t.Run("not the active participant", func(t *testing.T) {
		f := newFixture(bot.Passive{})
		gs := standardBoard()
		gs.ActiveID = 2
		f.seed(t, gs)
		if _, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", ""); !errors.Is(err, ErrNotYourTurn) {
			t.Errorf("expected ErrNotYourTurn, got %v", err)
		}
		// The CAS was taken before the check, so the abort must release it.
		if f.games.games["game-1"].TurnInProgress {
			t.Error("turn flag leaked after rejected end turn")
		}
	})
}

func TestEndTurnIdempotentReplay(t *testing.T) {
	f := newFixture(bot.Passive{})
	f.seed(t, standardBoard())
	ctx := context.Background()

	first, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", "ck-turn")
	if err != nil {
		t.Fatal(err)
	}
	records := len(f.boards.turns)

	second, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", "ck-turn")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.boards.turns) != records {
		t.Error("replay resolved the turn again")
	}

	fj, _ := json.Marshal(first)
	sj, _ := json.Marshal(second)
	if string(fj) != string(sj) {
		t.Errorf("replay result differs:\n%s\n%s", fj, sj)
	}
}

func TestAutosaveRingKeepsNewest(t *testing.T) {
	f := newFixture(bot.Passive{})
	f.seed(t, standardBoard())
	ctx := context.Background()

	// Three full resolutions write six autosaves into a five-slot ring.
	for i := 0; i < 3; i++ {
		if _, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", ""); err != nil {
			t.Fatal(err)
		}
	}

	autos, err := f.saveRepo.ListAutosaves(ctx, "game-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(autos) != f.rules.AutosaveLimit {
		t.Fatalf("expected %d autosaves, got %d", f.rules.AutosaveLimit, len(autos))
	}
	if autos[0].TurnNumber != 3 || autos[len(autos)-1].TurnNumber != 7 {
		t.Errorf("ring kept turns %d..%d, want 3..7", autos[0].TurnNumber, autos[len(autos)-1].TurnNumber)
	}
	for _, a := range autos {
		if a.Kind != model.SaveAuto {
			t.Errorf("unexpected save kind %q in ring", a.Kind)
		}
	}
}

func TestScriptedOpponentActs(t *testing.T) {
	f := newFixture(&bot.Scripted{})
	gs := standardBoard()
	gs.UnitByID(201).Pos = skirmish.Coord{Row: 2, Col: 4} // adjacent to the human warrior
	f.seed(t, gs)
	ctx := context.Background()

	res, err := f.turnSvc.EndTurn(ctx, "game-1", "user-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Turns) != 2 {
		t.Fatalf("expected 2 resolved turns, got %d", len(res.Turns))
	}
	if len(res.Turns[0].Actions) != 0 {
		t.Error("human summary should carry no scripted actions")
	}
	if len(res.Turns[1].Actions) == 0 {
		t.Fatal("scripted summary carries no actions")
	}
	if res.Turns[1].Actions[0].Kind != bot.ActAttackUnit {
		t.Errorf("expected attack_unit first, got %+v", res.Turns[1].Actions[0])
	}

	final := res.Snapshot.State
	if hp := final.UnitByID(200).HP; hp != 80 {
		t.Errorf("human warrior hp = %d, want 80 after the scripted attack", hp)
	}
	if hp := final.UnitByID(201).HP; hp != 84 {
		t.Errorf("scripted warrior hp = %d, want 84 after the counter", hp)
	}
}
