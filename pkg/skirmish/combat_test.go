package skirmish

import "testing"

// testState builds a small handcrafted board: two participants, one city
// each, units placed by the caller. No water, no resources unless set.
func testState() *GameState {
	gs := &GameState{
		Width:      8,
		Height:     8,
		Turn:       1,
		Status:     StatusActive,
		ActiveID:   1,
		Territory:  make(map[int64][]int64),
		Stockpiles: make(map[int64]map[Resource]int),
		UnitTypes:  DefaultUnitTypes(),
		NextID:     1000,
		Participants: []Participant{
			{ID: 1, Kind: Human, UserID: "user-1", Name: "Player"},
			{ID: 2, Kind: ScriptedAI, Name: "Warlord"},
		},
	}
	for row := 0; row < gs.Height; row++ {
		for col := 0; col < gs.Width; col++ {
			gs.Tiles = append(gs.Tiles, Tile{
				ID:      int64(row*gs.Width + col + 1),
				Pos:     Coord{Row: row, Col: col},
				Terrain: Plains,
			})
		}
	}
	return gs
}

func addCity(gs *GameState, id, ownerID int64, pos Coord, hp int) *City {
	gs.Cities = append(gs.Cities, City{ID: id, OwnerID: ownerID, Pos: pos, HP: hp, MaxHP: 100})
	gs.Territory[id] = []int64{gs.TileAt(pos).ID}
	gs.Stockpiles[id] = map[Resource]int{Wood: 0, Stone: 0, Wheat: 0, Iron: 0}
	return &gs.Cities[len(gs.Cities)-1]
}

func addUnit(gs *GameState, id, ownerID int64, typeCode string, pos Coord) *Unit {
	def := gs.UnitTypeByCode(typeCode)
	gs.Units = append(gs.Units, Unit{ID: id, OwnerID: ownerID, Type: typeCode, Pos: pos, HP: def.MaxHP})
	return &gs.Units[len(gs.Units)-1]
}

func TestDamageFormula(t *testing.T) {
	tests := []struct {
		attack, defence, want int
	}{
		{20, 10, 20},
		{15, 10, 11}, // 225/20 floors to 11
		{14, 14, 7},
		{15, 8, 14}, // 225/16 floors to 14
		{1, 20, 0},
	}
	for _, tt := range tests {
		if got := Damage(tt.attack, tt.defence); got != tt.want {
			t.Errorf("Damage(%d, %d) = %d, want %d", tt.attack, tt.defence, got, tt.want)
		}
	}
}

func TestMeleeAttackWithCounter(t *testing.T) {
	gs := testState()
	attacker := addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	defender := addUnit(gs, 11, 2, "warrior", Coord{Row: 3, Col: 4})

	out, err := ApplyAttackUnit(gs, 1, 10, 11)
	if err != nil {
		t.Fatalf("ApplyAttackUnit: %v", err)
	}
	if out.Damage != 20 {
		t.Errorf("damage = %d, want 20", out.Damage)
	}
	if defender.HP != 80 {
		t.Errorf("defender hp = %d, want 80", defender.HP)
	}
	// Raw counter 20, scaled by 80/100 remaining ratio, floored.
	if out.CounterDamage != 16 {
		t.Errorf("counter damage = %d, want 16", out.CounterDamage)
	}
	if attacker.HP != 84 {
		t.Errorf("attacker hp = %d, want 84", attacker.HP)
	}
	if !attacker.Acted {
		t.Error("attacker should be marked acted")
	}
}

func TestRangedAttackNoCounter(t *testing.T) {
	gs := testState()
	attacker := addUnit(gs, 10, 1, "archer", Coord{Row: 3, Col: 2})
	defender := addUnit(gs, 11, 2, "warrior", Coord{Row: 3, Col: 4})

	if d := Distance(attacker.Pos, defender.Pos); d != 2 {
		t.Fatalf("fixture distance = %d, want 2", d)
	}

	out, err := ApplyAttackUnit(gs, 1, 10, 11)
	if err != nil {
		t.Fatalf("ApplyAttackUnit: %v", err)
	}
	if out.Damage != 11 {
		t.Errorf("damage = %d, want 11", out.Damage)
	}
	if defender.HP != 89 {
		t.Errorf("defender hp = %d, want 89", defender.HP)
	}
	if out.CounterDamage != 0 || attacker.HP != gs.UnitTypeByCode("archer").MaxHP {
		t.Errorf("ranged attacker must not take a counter (got %d damage)", out.CounterDamage)
	}
}

func TestRangedAdjacentNoCounter(t *testing.T) {
	gs := testState()
	addUnit(gs, 10, 1, "archer", Coord{Row: 3, Col: 3})
	addUnit(gs, 11, 2, "warrior", Coord{Row: 3, Col: 4})

	out, err := ApplyAttackUnit(gs, 1, 10, 11)
	if err != nil {
		t.Fatalf("ApplyAttackUnit: %v", err)
	}
	if out.CounterDamage != 0 {
		t.Errorf("ranged attacker countered at distance 1: %d", out.CounterDamage)
	}
}

func TestCounterScalesWithWounds(t *testing.T) {
	gs := testState()
	attacker := addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	defender := addUnit(gs, 11, 2, "warrior", Coord{Row: 3, Col: 4})
	defender.HP = 30 // already wounded: survives at 10, counters weakly

	out, err := ApplyAttackUnit(gs, 1, 10, 11)
	if err != nil {
		t.Fatalf("ApplyAttackUnit: %v", err)
	}
	if defender.HP != 10 {
		t.Fatalf("defender hp = %d, want 10", defender.HP)
	}
	// Raw 20, scaled by 10/100 and floored.
	if out.CounterDamage != 2 {
		t.Errorf("counter damage = %d, want 2", out.CounterDamage)
	}
	if attacker.HP != 98 {
		t.Errorf("attacker hp = %d, want 98", attacker.HP)
	}
}

func TestDefenderDiesNoCounter(t *testing.T) {
	gs := testState()
	attacker := addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	defender := addUnit(gs, 11, 2, "warrior", Coord{Row: 3, Col: 4})
	defender.HP = 15

	out, err := ApplyAttackUnit(gs, 1, 10, 11)
	if err != nil {
		t.Fatalf("ApplyAttackUnit: %v", err)
	}
	if !out.DefenderKilled {
		t.Error("defender at 15 hp should die to 20 damage")
	}
	if gs.UnitByID(11) != nil {
		t.Error("dead unit should be removed from the board")
	}
	if out.CounterDamage != 0 || attacker.HP != 100 {
		t.Error("dead defender must not counter")
	}
}

func TestAttackRangeChecks(t *testing.T) {
	gs := testState()
	addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	addUnit(gs, 11, 2, "warrior", Coord{Row: 3, Col: 5}) // distance 2
	addUnit(gs, 12, 1, "archer", Coord{Row: 0, Col: 0})
	addUnit(gs, 13, 2, "warrior", Coord{Row: 5, Col: 5}) // far away

	if _, err := ApplyAttackUnit(gs, 1, 10, 11); ruleCode(err) != CodeOutOfRange {
		t.Errorf("melee at distance 2: got %v, want %s", err, CodeOutOfRange)
	}
	if _, err := ApplyAttackUnit(gs, 1, 12, 13); ruleCode(err) != CodeOutOfRange {
		t.Errorf("archer beyond max range: got %v, want %s", err, CodeOutOfRange)
	}
}

func TestAttackFriendlyRejected(t *testing.T) {
	gs := testState()
	addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	addUnit(gs, 11, 1, "warrior", Coord{Row: 3, Col: 4})

	if _, err := ApplyAttackUnit(gs, 1, 10, 11); ruleCode(err) != CodeFriendlyTarget {
		t.Errorf("got %v, want %s", err, CodeFriendlyTarget)
	}
}

func TestCityAttackWhittles(t *testing.T) {
	gs := testState()
	addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	city := addCity(gs, 20, 2, Coord{Row: 3, Col: 4}, 100)

	out, err := ApplyAttackCity(gs, 1, 10, 20)
	if err != nil {
		t.Fatalf("ApplyAttackCity: %v", err)
	}
	if out.Captured {
		t.Error("city at 100 hp should not be captured by one hit")
	}
	if city.HP != 80 {
		t.Errorf("city hp = %d, want 80", city.HP)
	}
	if city.HP < 1 {
		t.Error("existing city hp must never drop below 1")
	}
}

func TestCityNeverAtZero(t *testing.T) {
	gs := testState()
	addUnit(gs, 10, 1, "warrior", Coord{Row: 3, Col: 3})
	city := addCity(gs, 20, 2, Coord{Row: 3, Col: 4}, 21)
	addCity(gs, 21, 2, Coord{Row: 6, Col: 6}, 100) // keeps owner alive

	out, err := ApplyAttackCity(gs, 1, 10, 20)
	if err != nil {
		t.Fatalf("ApplyAttackCity: %v", err)
	}
	if out.Captured {
		t.Fatalf("21 hp city survives 20 damage")
	}
	if city.HP != 1 {
		t.Errorf("city hp = %d, want 1", city.HP)
	}
}

func ruleCode(err error) string {
	if re := IsRuleError(err); re != nil {
		return re.Code
	}
	return ""
}
