package bot

import (
	"fmt"
	"sort"

	"github.com/ironholdgame/server/pkg/skirmish"
)

// Scripted is the built-in opponent. It plays a fixed aggressive script:
// every unit attacks the weakest target in range, preferring cities, and
// otherwise marches toward the nearest enemy city; idle cities expand toward
// resource tiles when they can pay for it. All choices break ties by lowest
// ID, so a given state always produces the same plan.
type Scripted struct{}

func (s *Scripted) Name() string { return "scripted" }

// PlanTurn builds the full action list for the participant's turn. Planning
// runs against a clone so each decision sees the effects of the previous
// ones without touching the caller's state.
func (s *Scripted) PlanTurn(gs *skirmish.GameState, r skirmish.Rules, participantID int64) []Action {
	sim := gs.Clone()
	var plan []Action

	for _, unitID := range sim.UnitsOf(participantID) {
		unit := sim.UnitByID(unitID)
		if unit == nil || unit.Acted {
			continue
		}
		act, ok := s.planUnit(sim, unit)
		if !ok {
			continue
		}
		if applySim(sim, r, participantID, act) {
			plan = append(plan, act)
		}
	}

	for _, cityID := range sim.CitiesOf(participantID) {
		city := sim.CityByID(cityID)
		if city == nil || city.Acted {
			continue
		}
		act, ok := s.planCity(sim, r, city)
		if !ok {
			continue
		}
		if applySim(sim, r, participantID, act) {
			plan = append(plan, act)
		}
	}

	return plan
}

// planUnit picks one action for a unit: attack the weakest city in range,
// else the weakest unit in range, else step toward the nearest enemy city.
func (s *Scripted) planUnit(sim *skirmish.GameState, unit *skirmish.Unit) (Action, bool) {
	def := sim.UnitTypeByCode(unit.Type)
	if def == nil {
		return Action{}, false
	}

	if cityID, ok := weakestCityInRange(sim, unit, def); ok {
		return Action{Kind: ActAttackCity, UnitID: unit.ID, TargetID: cityID}, true
	}
	if targetID, ok := weakestUnitInRange(sim, unit, def); ok {
		return Action{Kind: ActAttackUnit, UnitID: unit.ID, TargetID: targetID}, true
	}

	goal, ok := nearestEnemyCity(sim, unit)
	if !ok {
		return Action{}, false
	}
	step, ok := stepToward(sim, unit, def, goal)
	if !ok {
		return Action{}, false
	}
	return Action{Kind: ActMove, UnitID: unit.ID, Target: step}, true
}

// planCity expands toward the best unclaimed tile when the city can pay,
// else spawns the priciest affordable unit.
func (s *Scripted) planCity(sim *skirmish.GameState, r skirmish.Rules, city *skirmish.City) (Action, bool) {
	if tileID, ok := bestExpansionTile(sim, r, city); ok {
		return Action{Kind: ActExpand, CityID: city.ID, TileID: tileID}, true
	}
	if code, ok := priciestAffordable(sim, city.ID); ok {
		return Action{Kind: ActSpawn, CityID: city.ID, UnitType: code}, true
	}
	return Action{}, false
}

// Apply executes one planned action against the given state through the
// engine's rule-checked appliers.
func Apply(gs *skirmish.GameState, r skirmish.Rules, actorID int64, act Action) error {
	var err error
	switch act.Kind {
	case ActMove:
		_, err = skirmish.ApplyMove(gs, actorID, act.UnitID, act.Target)
	case ActAttackUnit:
		_, err = skirmish.ApplyAttackUnit(gs, actorID, act.UnitID, act.TargetID)
	case ActAttackCity:
		_, err = skirmish.ApplyAttackCity(gs, actorID, act.UnitID, act.TargetID)
	case ActSpawn:
		_, err = skirmish.ApplySpawnUnit(gs, actorID, act.CityID, act.UnitType)
	case ActExpand:
		_, err = skirmish.ApplyExpandTerritory(gs, r, actorID, act.CityID, act.TileID)
	default:
		err = fmt.Errorf("unknown action kind %q", act.Kind)
	}
	return err
}

// applySim runs the planned action against the planning clone. Actions the
// engine rejects are dropped from the plan.
func applySim(sim *skirmish.GameState, r skirmish.Rules, actorID int64, act Action) bool {
	return Apply(sim, r, actorID, act) == nil
}

func inAttackRange(def *skirmish.UnitTypeDef, from, to skirmish.Coord) bool {
	d := skirmish.Distance(from, to)
	if !def.Ranged {
		return d == 1
	}
	return d >= def.MinRange && d <= def.MaxRange
}

// weakestCityInRange returns the enemy city in attack range with the lowest
// hp, ties broken by lowest ID.
func weakestCityInRange(sim *skirmish.GameState, unit *skirmish.Unit, def *skirmish.UnitTypeDef) (int64, bool) {
	var best *skirmish.City
	for i := range sim.Cities {
		c := &sim.Cities[i]
		if c.OwnerID == unit.OwnerID || !inAttackRange(def, unit.Pos, c.Pos) {
			continue
		}
		if best == nil || c.HP < best.HP || (c.HP == best.HP && c.ID < best.ID) {
			best = c
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID, true
}

// weakestUnitInRange returns the enemy unit in attack range with the lowest
// hp, ties broken by lowest ID.
func weakestUnitInRange(sim *skirmish.GameState, unit *skirmish.Unit, def *skirmish.UnitTypeDef) (int64, bool) {
	var best *skirmish.Unit
	for i := range sim.Units {
		u := &sim.Units[i]
		if u.OwnerID == unit.OwnerID || !inAttackRange(def, unit.Pos, u.Pos) {
			continue
		}
		if best == nil || u.HP < best.HP || (u.HP == best.HP && u.ID < best.ID) {
			best = u
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID, true
}

// nearestEnemyCity returns the position of the closest enemy city, ties
// broken by lowest city ID.
func nearestEnemyCity(sim *skirmish.GameState, unit *skirmish.Unit) (skirmish.Coord, bool) {
	var best *skirmish.City
	bestDist := 0
	for i := range sim.Cities {
		c := &sim.Cities[i]
		if c.OwnerID == unit.OwnerID {
			continue
		}
		d := skirmish.Distance(unit.Pos, c.Pos)
		if best == nil || d < bestDist || (d == bestDist && c.ID < best.ID) {
			best = c
			bestDist = d
		}
	}
	if best == nil {
		return skirmish.Coord{}, false
	}
	return best.Pos, true
}

// stepToward picks the reachable tile that brings the unit strictly closer
// to the goal. Candidates are ordered by remaining distance, then move cost,
// then row, then col.
func stepToward(sim *skirmish.GameState, unit *skirmish.Unit, def *skirmish.UnitTypeDef, goal skirmish.Coord) (skirmish.Coord, bool) {
	blocked := func(c skirmish.Coord) bool {
		tile := sim.TileAt(c)
		if tile == nil || tile.Terrain == skirmish.Water {
			return true
		}
		if sim.UnitAt(c) != nil {
			return true
		}
		if city := sim.CityAt(c); city != nil && city.OwnerID != unit.OwnerID {
			return true
		}
		return false
	}
	reach := skirmish.Reachable(unit.Pos, def.MovePoints, sim.Width, sim.Height, blocked)

	type candidate struct {
		pos  skirmish.Coord
		dist int
		cost int
	}
	var cands []candidate
	for pos, cost := range reach {
		if pos == unit.Pos || sim.UnitAt(pos) != nil {
			continue
		}
		if tile := sim.TileAt(pos); tile == nil || tile.Terrain == skirmish.Water {
			continue
		}
		if city := sim.CityAt(pos); city != nil && city.OwnerID != unit.OwnerID {
			continue
		}
		cands = append(cands, candidate{pos: pos, dist: skirmish.Distance(pos, goal), cost: cost})
	}
	if len(cands) == 0 {
		return skirmish.Coord{}, false
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		if a.pos.Row != b.pos.Row {
			return a.pos.Row < b.pos.Row
		}
		return a.pos.Col < b.pos.Col
	})
	best := cands[0]
	if best.dist >= skirmish.Distance(unit.Pos, goal) {
		return skirmish.Coord{}, false
	}
	return best.pos, true
}

// bestExpansionTile finds an affordable unclaimed land tile bordering the
// city's territory, preferring resource tiles with the most stock, ties
// broken by lowest tile ID.
func bestExpansionTile(sim *skirmish.GameState, r skirmish.Rules, city *skirmish.City) (int64, bool) {
	cost := r.ExpandCost(len(sim.Territory[city.ID]))
	if sim.Stockpile(city.ID, skirmish.Wheat) < cost {
		return 0, false
	}

	seen := make(map[int64]bool)
	var best *skirmish.Tile
	for _, ownedID := range sim.Territory[city.ID] {
		owned := sim.TileByID(ownedID)
		if owned == nil {
			continue
		}
		for _, n := range skirmish.Neighbors(owned.Pos, sim.Width, sim.Height) {
			tile := sim.TileAt(n)
			if tile == nil || seen[tile.ID] {
				continue
			}
			seen[tile.ID] = true
			if tile.Terrain == skirmish.Water || sim.TerritoryOwner(tile.ID) != 0 {
				continue
			}
			if occ := sim.UnitAt(tile.Pos); occ != nil && occ.OwnerID != city.OwnerID {
				continue
			}
			if better(tile, best) {
				best = tile
			}
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID, true
}

// better ranks expansion candidates: resource tiles beat bare ones, more
// stock beats less, lower ID breaks ties.
func better(tile, best *skirmish.Tile) bool {
	if best == nil {
		return true
	}
	tileRes := tile.Resource != "" && tile.Stock > 0
	bestRes := best.Resource != "" && best.Stock > 0
	if tileRes != bestRes {
		return tileRes
	}
	if tile.Stock != best.Stock {
		return tile.Stock > best.Stock
	}
	return tile.ID < best.ID
}

// priciestAffordable returns the most expensive unit type the city can pay
// for, ties broken by type code.
func priciestAffordable(sim *skirmish.GameState, cityID int64) (string, bool) {
	var best *skirmish.UnitTypeDef
	for i := range sim.UnitTypes {
		def := &sim.UnitTypes[i]
		if !skirmish.CanAfford(sim, cityID, def.Cost) {
			continue
		}
		if best == nil || def.TotalCost() > best.TotalCost() ||
			(def.TotalCost() == best.TotalCost() && def.Code < best.Code) {
			best = def
		}
	}
	if best == nil {
		return "", false
	}
	return best.Code, true
}
