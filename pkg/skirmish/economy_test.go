package skirmish

import "testing"

// claimTile puts a tile into a city's territory directly, bypassing the
// expansion action, for fixture setup.
func claimTile(gs *GameState, cityID int64, pos Coord, res Resource, stock int) *Tile {
	tile := gs.TileAt(pos)
	tile.Resource = res
	tile.Stock = stock
	gs.Territory[cityID] = append(gs.Territory[cityID], tile.ID)
	return tile
}

func TestHarvestBasics(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	wood := claimTile(gs, 20, Coord{Row: 3, Col: 4}, Wood, 10)
	claimTile(gs, 20, Coord{Row: 2, Col: 3}, Wheat, 10)
	claimTile(gs, 20, Coord{Row: 4, Col: 3}, "", 0) // bare tile yields nothing

	report := HarvestAll(gs, DefaultRules())
	if got := gs.Stockpile(20, Wood); got != 1 {
		t.Errorf("wood = %d, want 1", got)
	}
	if got := gs.Stockpile(20, Wheat); got != 1 {
		t.Errorf("wheat = %d, want 1", got)
	}
	if wood.Stock != 9 {
		t.Errorf("tile stock = %d, want 9", wood.Stock)
	}
	if report.Gained[20][Wood] != 1 || report.Gained[20][Wheat] != 1 {
		t.Errorf("report gained = %v", report.Gained[20])
	}
}

func TestHarvestDepletedTile(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	tile := claimTile(gs, 20, Coord{Row: 3, Col: 4}, Iron, 0)

	HarvestAll(gs, DefaultRules())
	if got := gs.Stockpile(20, Iron); got != 0 {
		t.Errorf("iron = %d, want 0 from an exhausted tile", got)
	}
	if tile.Stock != 0 {
		t.Errorf("tile stock = %d, want 0", tile.Stock)
	}
}

func TestHarvestCapOverflow(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	gs.Stockpiles[20][Wood] = 99
	// Tiles harvest in ascending tile ID order, so (2,3) goes first.
	later := claimTile(gs, 20, Coord{Row: 3, Col: 4}, Wood, 10)
	earlier := claimTile(gs, 20, Coord{Row: 2, Col: 3}, Wood, 10)

	report := HarvestAll(gs, DefaultRules())
	if got := gs.Stockpile(20, Wood); got != 100 {
		t.Errorf("wood = %d, want capped at 100", got)
	}
	if earlier.Stock != 9 {
		t.Errorf("earlier tile stock = %d, want 9", earlier.Stock)
	}
	if later.Stock != 10 {
		t.Errorf("later tile stock = %d, want untouched 10", later.Stock)
	}
	if report.Overflow[20][Wood] != 1 {
		t.Errorf("overflow = %v, want 1 skipped wood harvest", report.Overflow[20])
	}
}

func TestHarvestOverflowCountsEverySkip(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	r := DefaultRules()
	gs.Stockpiles[20][Wood] = r.StorageCap
	tiles := []*Tile{
		claimTile(gs, 20, Coord{Row: 2, Col: 3}, Wood, 10),
		claimTile(gs, 20, Coord{Row: 3, Col: 4}, Wood, 10),
		claimTile(gs, 20, Coord{Row: 4, Col: 4}, Wood, 10),
	}

	report := HarvestAll(gs, r)
	if report.Overflow[20][Wood] != 3 {
		t.Errorf("overflow = %v, want all 3 skipped wood harvests", report.Overflow[20])
	}
	if got := gs.Stockpile(20, Wood); got != r.StorageCap {
		t.Errorf("wood = %d, want held at the cap", got)
	}
	for _, tile := range tiles {
		if tile.Stock != 10 {
			t.Errorf("tile %d stock = %d, want untouched 10", tile.ID, tile.Stock)
		}
	}
}

func TestHarvestCapPerResource(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	gs.Stockpiles[20][Wood] = 100
	claimTile(gs, 20, Coord{Row: 3, Col: 4}, Wood, 10)
	claimTile(gs, 20, Coord{Row: 2, Col: 3}, Stone, 10)

	HarvestAll(gs, DefaultRules())
	if got := gs.Stockpile(20, Stone); got != 1 {
		t.Errorf("stone = %d, want 1 (wood cap must not stop stone)", got)
	}
}

func TestHarvestSkipsEnemyOccupiedTiles(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	tile := claimTile(gs, 20, Coord{Row: 3, Col: 4}, Wood, 10)
	addUnit(gs, 10, 2, "warrior", tile.Pos)
	friendly := claimTile(gs, 20, Coord{Row: 2, Col: 3}, Stone, 10)
	addUnit(gs, 11, 1, "warrior", friendly.Pos)

	HarvestAll(gs, DefaultRules())
	if got := gs.Stockpile(20, Wood); got != 0 {
		t.Errorf("wood = %d, enemy-held tile must not yield", got)
	}
	if tile.Stock != 10 {
		t.Errorf("enemy-held tile stock = %d, want untouched 10", tile.Stock)
	}
	if got := gs.Stockpile(20, Stone); got != 1 {
		t.Errorf("stone = %d, friendly unit must not block harvest", got)
	}
}

func TestHarvestRunsForAllParticipants(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	addCity(gs, 21, 2, Coord{Row: 6, Col: 6}, 100)
	claimTile(gs, 20, Coord{Row: 3, Col: 4}, Wood, 5)
	claimTile(gs, 21, Coord{Row: 6, Col: 5}, Iron, 5)

	HarvestAll(gs, DefaultRules())
	if gs.Stockpile(20, Wood) != 1 || gs.Stockpile(21, Iron) != 1 {
		t.Error("harvest must run for every city regardless of whose turn ended")
	}
}

func TestCanAffordAndDebit(t *testing.T) {
	gs := testState()
	addCity(gs, 20, 1, Coord{Row: 3, Col: 3}, 100)
	gs.Stockpiles[20] = map[Resource]int{Wood: 20, Iron: 10}

	cost := map[Resource]int{Wood: 20, Iron: 10}
	if !CanAfford(gs, 20, cost) {
		t.Fatal("exact stockpile should afford the cost")
	}
	debit(gs, 20, cost)
	if gs.Stockpile(20, Wood) != 0 || gs.Stockpile(20, Iron) != 0 {
		t.Error("debit should empty the stockpile")
	}
	if CanAfford(gs, 20, cost) {
		t.Error("empty stockpile should not afford the cost")
	}
}
