package skirmish

// Rules is the immutable rule configuration threaded through every engine
// entry point. Nothing in the engine reads ambient/global configuration.
type Rules struct {
	StorageCap        int // max stockpile per resource type per city
	CityMaxHP         int
	CityRegen         int // hp regained per turn
	SiegeRegen        int // hp regained per turn while an enemy unit is adjacent
	ExpandBaseCost    int // wheat cost of the first expansion
	ExpandCostStep    int // extra wheat per tile beyond the starting territory
	StartingTiles     int // territory size a fresh city starts with
	AutosaveLimit     int // autosave ring buffer capacity
	ManualSaveSlots   int
	InitialStockWood  int
	InitialStockWheat int
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		StorageCap:        100,
		CityMaxHP:         100,
		CityRegen:         5,
		SiegeRegen:        1,
		ExpandBaseCost:    20,
		ExpandCostStep:    10,
		StartingTiles:     7,
		AutosaveLimit:     5,
		ManualSaveSlots:   3,
		InitialStockWood:  30,
		InitialStockWheat: 50,
	}
}

// ExpandCost returns the wheat cost of adding one tile to a territory of the
// given size. Cost grows with territory but never drops below the base.
func (r Rules) ExpandCost(territorySize int) int {
	cost := r.ExpandBaseCost + r.ExpandCostStep*(territorySize-r.StartingTiles)
	if cost < r.ExpandBaseCost {
		return r.ExpandBaseCost
	}
	return cost
}
