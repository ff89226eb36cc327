package skirmish

import "testing"

func TestResetActedScopedToParticipant(t *testing.T) {
	gs := testState()
	mine := addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	theirs := addUnit(gs, 11, 2, "warrior", Coord{Row: 5, Col: 5})
	mine.Acted = true
	theirs.Acted = true
	city := addCity(gs, 20, 1, Coord{Row: 0, Col: 0}, 100)
	city.Acted = true

	ResetActed(gs, 1)
	if mine.Acted || city.Acted {
		t.Error("participant 1's pieces should be reset")
	}
	if !theirs.Acted {
		t.Error("participant 2's pieces must be left alone")
	}
}

func TestRegenerateCities(t *testing.T) {
	gs := testState()
	wounded := addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 40)
	full := addCity(gs, 21, 1, Coord{Row: 6, Col: 6}, 100)
	nearFull := addCity(gs, 22, 1, Coord{Row: 0, Col: 6}, 98)

	entries := RegenerateCities(gs, DefaultRules(), 1)
	if wounded.HP != 45 {
		t.Errorf("wounded city hp = %d, want 45", wounded.HP)
	}
	if full.HP != 100 {
		t.Errorf("full city hp = %d, want 100", full.HP)
	}
	if nearFull.HP != 100 {
		t.Errorf("near-full city hp = %d, want clamped at 100", nearFull.HP)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2 (full city regens nothing)", len(entries))
	}
}

func TestRegenerateUnderSiege(t *testing.T) {
	gs := testState()
	besieged := addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 40)
	addUnit(gs, 10, 2, "warrior", Coord{Row: 3, Col: 4})
	garrisoned := addCity(gs, 21, 1, Coord{Row: 6, Col: 2}, 40)
	addUnit(gs, 11, 1, "warrior", Coord{Row: 6, Col: 3})

	entries := RegenerateCities(gs, DefaultRules(), 1)
	if besieged.HP != 41 {
		t.Errorf("besieged city hp = %d, want 41", besieged.HP)
	}
	if garrisoned.HP != 45 {
		t.Errorf("garrisoned city hp = %d, want 45 (own units are not a siege)", garrisoned.HP)
	}
	for _, e := range entries {
		if e.CityID == 20 && !e.UnderSiege {
			t.Error("city 20 should be flagged under siege")
		}
		if e.CityID == 21 && e.UnderSiege {
			t.Error("city 21 is not under siege")
		}
	}
}

func TestRegenScopedToParticipant(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 40)
	enemy := addCity(gs, 21, 2, Coord{Row: 6, Col: 6}, 40)

	RegenerateCities(gs, DefaultRules(), 1)
	if enemy.HP != 40 {
		t.Errorf("enemy city hp = %d, regen must only touch the given participant", enemy.HP)
	}
}

func TestAutoProducePicksPriciestAffordable(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	gs.Stockpiles[20] = map[Resource]int{Wood: 25, Stone: 5, Iron: 15, Wheat: 0}

	produced := AutoProduce(gs, 1)
	if len(produced) != 1 {
		t.Fatalf("produced %d units, want 1", len(produced))
	}
	got := produced[0].UnitType
	want := pickExpected(gs, 20)
	if got != want {
		t.Errorf("produced %s, want %s", got, want)
	}
	if unit := gs.UnitByID(produced[0].UnitID); unit == nil {
		t.Fatal("produced unit missing from the board")
	}
}

// pickExpected re-derives the expected choice from the type table so the
// test tracks the roster, not hard-coded assumptions.
func pickExpected(gs *GameState, cityID int64) string {
	best := bestAffordableType(gs, cityID)
	if best == nil {
		return ""
	}
	return best.Code
}

func TestAutoProduceSkipsActedAndPoorCities(t *testing.T) {
	gs := testState()
	acted := addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	acted.Acted = true
	gs.Stockpiles[20] = map[Resource]int{Wood: 99, Iron: 99}
	addCity(gs, 21, 1, Coord{Row: 6, Col: 6}, 100)
	gs.Stockpiles[21] = map[Resource]int{Wood: 1}

	produced := AutoProduce(gs, 1)
	if len(produced) != 0 {
		t.Errorf("produced %d units, want 0", len(produced))
	}
}

func TestAutoProduceSurroundedCity(t *testing.T) {
	gs := testState()
	city := addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	gs.Stockpiles[20] = map[Resource]int{Wood: 99, Iron: 99, Stone: 99, Wheat: 99}
	addUnit(gs, 10, 1, "warrior", city.Pos)
	nextID := int64(30)
	for _, n := range Neighbors(city.Pos, gs.Width, gs.Height) {
		addUnit(gs, nextID, 2, "warrior", n)
		nextID++
	}

	produced := AutoProduce(gs, 1)
	if len(produced) != 0 {
		t.Errorf("produced %d units with no free tile, want 0", len(produced))
	}
	if city.Acted {
		t.Error("blocked production must not consume the city action")
	}
}

func TestBestAffordableTie(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	// Warrior and spearman both total 30; archer needs stone and is out.
	gs.Stockpiles[20] = map[Resource]int{Wood: 20, Iron: 15}

	best := bestAffordableType(gs, 20)
	if best == nil {
		t.Fatal("both melee types are affordable")
	}
	if best.Code != "spearman" {
		t.Errorf("tie at total cost 30 should pick %q first by code, got %q", "spearman", best.Code)
	}
}
