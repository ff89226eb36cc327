package skirmish

// Pure command appliers. Each validates the full rule set for one command
// and either mutates the state or returns a *RuleError with no mutation at
// all. Shared turn-machine preconditions (caller owns the game, game not
// finished, turn not busy, actor is active) are the caller's business; only
// board rules live here.

// MoveResult reports a completed move.
type MoveResult struct {
	UnitID int64 `json:"unit_id"`
	From   Coord `json:"from"`
	To     Coord `json:"to"`
	Cost   int   `json:"cost"`
}

// ApplyMove relocates a unit of the acting participant and marks it acted.
// The destination must be an empty, in-bounds land tile reachable within the
// unit's move points; occupied tiles and water block the path.
func ApplyMove(gs *GameState, actorID, unitID int64, target Coord) (*MoveResult, error) {
	unit := gs.UnitByID(unitID)
	if unit == nil {
		return nil, ruleErrf(CodeNotFound, "unit %d does not exist", unitID)
	}
	if unit.OwnerID != actorID {
		return nil, ruleErrf(CodeNotOwned, "unit %d is not yours", unitID)
	}
	if unit.Acted {
		return nil, ruleErrf(CodeAlreadyActed, "unit %d has already acted this turn", unitID)
	}
	if !target.InBounds(gs.Width, gs.Height) {
		return nil, ruleErrf(CodeOutOfBounds, "(%d,%d) is outside the map", target.Row, target.Col)
	}
	if gs.UnitAt(target) != nil {
		return nil, ruleErrf(CodeTileOccupied, "(%d,%d) is occupied", target.Row, target.Col)
	}
	if city := gs.CityAt(target); city != nil && city.OwnerID != actorID {
		return nil, ruleErrf(CodeEnemyTile, "(%d,%d) holds an enemy city", target.Row, target.Col)
	}
	if tile := gs.TileAt(target); tile == nil || tile.Terrain == Water {
		return nil, ruleErrf(CodeWaterTile, "(%d,%d) is water", target.Row, target.Col)
	}

	def := gs.UnitTypeByCode(unit.Type)
	reach := Reachable(unit.Pos, def.MovePoints, gs.Width, gs.Height, gs.moveBlocked(actorID))
	cost, ok := reach[target]
	if !ok {
		return nil, ruleErrf(CodeUnreachable, "(%d,%d) is out of reach for unit %d", target.Row, target.Col, unitID)
	}

	res := &MoveResult{UnitID: unitID, From: unit.Pos, To: target, Cost: cost}
	unit.Pos = target
	unit.Acted = true
	return res, nil
}

// moveBlocked returns the predicate Reachable uses for movement: water,
// any occupied tile, and enemy city tiles block traversal.
func (gs *GameState) moveBlocked(actorID int64) func(Coord) bool {
	return func(c Coord) bool {
		tile := gs.TileAt(c)
		if tile == nil || tile.Terrain == Water {
			return true
		}
		if gs.UnitAt(c) != nil {
			return true
		}
		if city := gs.CityAt(c); city != nil && city.OwnerID != actorID {
			return true
		}
		return false
	}
}

// ApplyAttackUnit resolves an attack between two units. The attacker is
// marked acted whether or not the defender survives.
func ApplyAttackUnit(gs *GameState, actorID, attackerID, targetID int64) (*UnitAttackOutcome, error) {
	attacker := gs.UnitByID(attackerID)
	if attacker == nil {
		return nil, ruleErrf(CodeNotFound, "unit %d does not exist", attackerID)
	}
	if attacker.OwnerID != actorID {
		return nil, ruleErrf(CodeNotOwned, "unit %d is not yours", attackerID)
	}
	if attacker.Acted {
		return nil, ruleErrf(CodeAlreadyActed, "unit %d has already acted this turn", attackerID)
	}
	defender := gs.UnitByID(targetID)
	if defender == nil {
		return nil, ruleErrf(CodeNotFound, "target unit %d does not exist", targetID)
	}
	if defender.OwnerID == actorID {
		return nil, ruleErrf(CodeFriendlyTarget, "unit %d is friendly", targetID)
	}

	atkDef := gs.UnitTypeByCode(attacker.Type)
	defDef := gs.UnitTypeByCode(defender.Type)
	if err := checkRange(atkDef, attacker.Pos, defender.Pos); err != nil {
		return nil, err
	}

	outcome := resolveUnitAttack(gs, attacker, defender, atkDef, defDef)
	if !outcome.AttackerKilled {
		attacker.Acted = true
	}
	return &outcome, nil
}

// ApplyAttackCity resolves an attack against a city, possibly capturing it.
// The attacker is marked acted regardless of outcome.
func ApplyAttackCity(gs *GameState, actorID, attackerID, targetCityID int64) (*CityAttackOutcome, error) {
	attacker := gs.UnitByID(attackerID)
	if attacker == nil {
		return nil, ruleErrf(CodeNotFound, "unit %d does not exist", attackerID)
	}
	if attacker.OwnerID != actorID {
		return nil, ruleErrf(CodeNotOwned, "unit %d is not yours", attackerID)
	}
	if attacker.Acted {
		return nil, ruleErrf(CodeAlreadyActed, "unit %d has already acted this turn", attackerID)
	}
	city := gs.CityByID(targetCityID)
	if city == nil {
		return nil, ruleErrf(CodeNotFound, "city %d does not exist", targetCityID)
	}
	if city.OwnerID == actorID {
		return nil, ruleErrf(CodeFriendlyTarget, "city %d is friendly", targetCityID)
	}

	atkDef := gs.UnitTypeByCode(attacker.Type)
	if err := checkRange(atkDef, attacker.Pos, city.Pos); err != nil {
		return nil, err
	}

	outcome := resolveCityAttack(gs, attacker, city, atkDef)
	attacker.Acted = true
	return &outcome, nil
}

// checkRange enforces the attack range rule: melee requires hex distance 1,
// ranged requires distance within [min, max].
func checkRange(def *UnitTypeDef, from, to Coord) error {
	d := Distance(from, to)
	if !def.Ranged {
		if d != 1 {
			return ruleErrf(CodeOutOfRange, "melee attack requires adjacency, target is %d away", d)
		}
		return nil
	}
	if d < def.MinRange || d > def.MaxRange {
		return ruleErrf(CodeOutOfRange, "target at distance %d, range is %d-%d", d, def.MinRange, def.MaxRange)
	}
	return nil
}

// ApplySpawnUnit creates a unit of the given type at the city (preferring
// the city tile, else any empty neighboring land tile), debits the cost,
// and consumes the city's action for the turn.
func ApplySpawnUnit(gs *GameState, actorID, cityID int64, typeCode string) (*Unit, error) {
	city := gs.CityByID(cityID)
	if city == nil {
		return nil, ruleErrf(CodeNotFound, "city %d does not exist", cityID)
	}
	if city.OwnerID != actorID {
		return nil, ruleErrf(CodeNotOwned, "city %d is not yours", cityID)
	}
	if city.Acted {
		return nil, ruleErrf(CodeAlreadyActed, "city %d has already acted this turn", cityID)
	}
	def := gs.UnitTypeByCode(typeCode)
	if def == nil {
		return nil, ruleErrf(CodeInvalidTarget, "unknown unit type %q", typeCode)
	}
	if !CanAfford(gs, cityID, def.Cost) {
		return nil, ruleErrf(CodeInsufficientResources, "city %d cannot afford a %s", cityID, typeCode)
	}
	pos, ok := spawnTile(gs, city)
	if !ok {
		return nil, ruleErrf(CodeSpawnBlocked, "no free tile around city %d", cityID)
	}

	debit(gs, cityID, def.Cost)
	gs.Units = append(gs.Units, Unit{
		ID:      gs.allocID(),
		OwnerID: actorID,
		Type:    typeCode,
		Pos:     pos,
		HP:      def.MaxHP,
	})
	city.Acted = true
	return &gs.Units[len(gs.Units)-1], nil
}

// spawnTile picks the placement tile for a new unit: the city tile itself if
// free, else the first empty neighboring land tile in neighbor order.
func spawnTile(gs *GameState, city *City) (Coord, bool) {
	if gs.UnitAt(city.Pos) == nil {
		return city.Pos, true
	}
	for _, n := range Neighbors(city.Pos, gs.Width, gs.Height) {
		tile := gs.TileAt(n)
		if tile == nil || tile.Terrain == Water {
			continue
		}
		if gs.UnitAt(n) != nil || gs.CityAt(n) != nil {
			continue
		}
		return n, true
	}
	return Coord{}, false
}

// ExpandResult reports a completed territory expansion.
type ExpandResult struct {
	CityID    int64 `json:"city_id"`
	TileID    int64 `json:"tile_id"`
	WheatCost int   `json:"wheat_cost"`
	NewSize   int   `json:"new_size"`
}

// ApplyExpandTerritory adds a tile to a city's territory for an escalating
// wheat cost and consumes the city's action for the turn.
func ApplyExpandTerritory(gs *GameState, r Rules, actorID, cityID, tileID int64) (*ExpandResult, error) {
	city := gs.CityByID(cityID)
	if city == nil {
		return nil, ruleErrf(CodeNotFound, "city %d does not exist", cityID)
	}
	if city.OwnerID != actorID {
		return nil, ruleErrf(CodeNotOwned, "city %d is not yours", cityID)
	}
	if city.Acted {
		return nil, ruleErrf(CodeAlreadyActed, "city %d has already acted this turn", cityID)
	}
	tile := gs.TileByID(tileID)
	if tile == nil {
		return nil, ruleErrf(CodeNotFound, "tile %d does not exist", tileID)
	}
	if owner := gs.TerritoryOwner(tileID); owner != 0 {
		if ownerCity := gs.CityByID(owner); ownerCity != nil && ownerCity.OwnerID != actorID {
			return nil, ruleErrf(CodeEnemyTile, "tile %d belongs to an enemy city", tileID)
		}
		return nil, ruleErrf(CodeInvalidTarget, "tile %d is already claimed", tileID)
	}
	if tile.Terrain == Water {
		return nil, ruleErrf(CodeWaterTile, "tile %d is water", tileID)
	}
	if occ := gs.UnitAt(tile.Pos); occ != nil && occ.OwnerID != actorID {
		return nil, ruleErrf(CodeEnemyTile, "tile %d is held by an enemy unit", tileID)
	}
	if !tileAdjacentToTerritory(gs, cityID, tile.Pos) {
		return nil, ruleErrf(CodeNotAdjacent, "tile %d does not border city %d's territory", tileID, cityID)
	}

	size := len(gs.Territory[cityID])
	cost := r.ExpandCost(size)
	if gs.Stockpile(cityID, Wheat) < cost {
		return nil, ruleErrf(CodeInsufficientResources, "expansion costs %d wheat, city %d has %d", cost, cityID, gs.Stockpile(cityID, Wheat))
	}

	debit(gs, cityID, map[Resource]int{Wheat: cost})
	gs.Territory[cityID] = append(gs.Territory[cityID], tileID)
	city.Acted = true
	return &ExpandResult{CityID: cityID, TileID: tileID, WheatCost: cost, NewSize: size + 1}, nil
}

// tileAdjacentToTerritory reports whether pos borders at least one tile the
// city already owns.
func tileAdjacentToTerritory(gs *GameState, cityID int64, pos Coord) bool {
	for _, owned := range gs.Territory[cityID] {
		tile := gs.TileByID(owned)
		if tile != nil && Adjacent(tile.Pos, pos) {
			return true
		}
	}
	return false
}
