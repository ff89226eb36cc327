package skirmish

// HarvestReport summarizes one harvest pass for the turn record.
type HarvestReport struct {
	// Gained maps city ID -> resource -> units harvested.
	Gained map[int64]map[Resource]int `json:"gained,omitempty"`
	// Overflow maps city ID -> resource -> harvest attempts skipped because
	// the stockpile was at cap. Tile stock is untouched for these.
	Overflow map[int64]map[Resource]int `json:"overflow,omitempty"`
}

// Totals sums gained amounts across all cities.
func (h *HarvestReport) Totals() map[Resource]int {
	totals := make(map[Resource]int)
	for _, byRes := range h.Gained {
		for res, amt := range byRes {
			totals[res] += amt
		}
	}
	return totals
}

// HarvestAll runs the per-turn harvest for every city: each territory tile
// with a resource and positive stock yields 1 unit into the city stockpile,
// skipping tiles occupied by an enemy unit. Hitting the storage cap stops
// further harvest of that resource type for that city this turn; every
// capped attempt counts as overflow and leaves tile stock unchanged.
func HarvestAll(gs *GameState, r Rules) *HarvestReport {
	report := &HarvestReport{
		Gained:   make(map[int64]map[Resource]int),
		Overflow: make(map[int64]map[Resource]int),
	}

	for _, cityID := range allCityIDs(gs) {
		city := gs.CityByID(cityID)

		for _, tileID := range territoryInOrder(gs, cityID) {
			tile := gs.TileByID(tileID)
			if tile == nil || tile.Resource == "" || tile.Stock <= 0 {
				continue
			}
			if occ := gs.UnitAt(tile.Pos); occ != nil && occ.OwnerID != city.OwnerID {
				continue
			}

			sp := gs.Stockpiles[cityID]
			if sp == nil {
				sp = make(map[Resource]int)
				gs.Stockpiles[cityID] = sp
			}
			if sp[tile.Resource] >= r.StorageCap {
				bump(report.Overflow, cityID, tile.Resource)
				continue
			}

			sp[tile.Resource]++
			tile.Stock--
			bump(report.Gained, cityID, tile.Resource)
		}
	}
	return report
}

// CanAfford reports whether a city's stockpiles cover the given cost.
func CanAfford(gs *GameState, cityID int64, cost map[Resource]int) bool {
	for res, amt := range cost {
		if gs.Stockpile(cityID, res) < amt {
			return false
		}
	}
	return true
}

// debit subtracts a cost from a city's stockpiles. The caller must have
// checked affordability; debit never drives an amount below zero.
func debit(gs *GameState, cityID int64, cost map[Resource]int) {
	sp := gs.Stockpiles[cityID]
	for res, amt := range cost {
		sp[res] -= amt
		if sp[res] < 0 {
			sp[res] = 0
		}
	}
}

// allCityIDs returns every city ID in ascending order for deterministic
// iteration.
func allCityIDs(gs *GameState) []int64 {
	ids := make([]int64, 0, len(gs.Cities))
	for i := range gs.Cities {
		ids = append(ids, gs.Cities[i].ID)
	}
	sortInt64s(ids)
	return ids
}

// territoryInOrder returns a city's territory tile IDs in ascending order.
func territoryInOrder(gs *GameState, cityID int64) []int64 {
	tiles := append([]int64(nil), gs.Territory[cityID]...)
	sortInt64s(tiles)
	return tiles
}

func bump(m map[int64]map[Resource]int, cityID int64, res Resource) {
	if m[cityID] == nil {
		m[cityID] = make(map[Resource]int)
	}
	m[cityID][res]++
}
