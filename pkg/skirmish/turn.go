package skirmish

// Per-turn state transforms invoked by the turn orchestrator, in pipeline
// order. All iterate in ascending ID order so runs are reproducible.

// ResetActed clears the has-acted flag on every unit and city owned by the
// participant whose turn is starting.
func ResetActed(gs *GameState, participantID int64) {
	for i := range gs.Units {
		if gs.Units[i].OwnerID == participantID {
			gs.Units[i].Acted = false
		}
	}
	for i := range gs.Cities {
		if gs.Cities[i].OwnerID == participantID {
			gs.Cities[i].Acted = false
		}
	}
}

// RegenEntry records one city's hp regeneration for the turn summary.
type RegenEntry struct {
	CityID     int64 `json:"city_id"`
	Amount     int   `json:"amount"`
	UnderSiege bool  `json:"under_siege"`
}

// RegenerateCities heals the participant's cities by the per-turn regen
// amount, reduced to the siege rate while an enemy unit stands adjacent.
func RegenerateCities(gs *GameState, r Rules, participantID int64) []RegenEntry {
	var entries []RegenEntry
	for _, cityID := range gs.CitiesOf(participantID) {
		city := gs.CityByID(cityID)
		if city.HP >= city.MaxHP {
			continue
		}
		siege := underSiege(gs, city)
		amount := r.CityRegen
		if siege {
			amount = r.SiegeRegen
		}
		if city.HP+amount > city.MaxHP {
			amount = city.MaxHP - city.HP
		}
		city.HP += amount
		entries = append(entries, RegenEntry{CityID: cityID, Amount: amount, UnderSiege: siege})
	}
	return entries
}

// underSiege reports whether an enemy unit occupies any tile adjacent to the
// city.
func underSiege(gs *GameState, city *City) bool {
	for _, n := range Neighbors(city.Pos, gs.Width, gs.Height) {
		if u := gs.UnitAt(n); u != nil && u.OwnerID != city.OwnerID {
			return true
		}
	}
	return false
}

// ProducedUnit records one auto-produced unit for the turn summary.
type ProducedUnit struct {
	CityID   int64  `json:"city_id"`
	UnitID   int64  `json:"unit_id"`
	UnitType string `json:"unit_type"`
}

// AutoProduce attempts automatic production for each of the participant's
// cities that has not acted: the most expensive affordable unit type is
// spawned (ties broken by type code) if a free tile exists. Cities that
// produce are marked acted for the starting turn.
func AutoProduce(gs *GameState, participantID int64) []ProducedUnit {
	var produced []ProducedUnit
	for _, cityID := range gs.CitiesOf(participantID) {
		city := gs.CityByID(cityID)
		if city.Acted {
			continue
		}
		def := bestAffordableType(gs, cityID)
		if def == nil {
			continue
		}
		unit, err := ApplySpawnUnit(gs, participantID, cityID, def.Code)
		if err != nil {
			continue // spawn blocked; the city keeps its action
		}
		produced = append(produced, ProducedUnit{CityID: cityID, UnitID: unit.ID, UnitType: def.Code})
	}
	return produced
}

// bestAffordableType picks the affordable unit type with the highest total
// cost, ties broken by code, or nil when nothing is affordable.
func bestAffordableType(gs *GameState, cityID int64) *UnitTypeDef {
	var best *UnitTypeDef
	for i := range gs.UnitTypes {
		def := &gs.UnitTypes[i]
		if !CanAfford(gs, cityID, def.Cost) {
			continue
		}
		if best == nil || def.TotalCost() > best.TotalCost() ||
			(def.TotalCost() == best.TotalCost() && def.Code < best.Code) {
			best = def
		}
	}
	return best
}
