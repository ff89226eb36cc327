package skirmish

// Resource is a harvestable resource type.
type Resource string

const (
	Wood  Resource = "wood"
	Stone Resource = "stone"
	Wheat Resource = "wheat"
	Iron  Resource = "iron"
)

// Resources lists all resource types in a stable order.
var Resources = []Resource{Wood, Stone, Wheat, Iron}

// UnitTypeDef is immutable reference data describing a unit type.
// Melee units have MinRange == MaxRange == 0 and attack at distance 1.
type UnitTypeDef struct {
	Code       string           `json:"code"`
	Ranged     bool             `json:"ranged"`
	Attack     int              `json:"attack"`
	Defence    int              `json:"defence"`
	MinRange   int              `json:"min_range"`
	MaxRange   int              `json:"max_range"`
	MovePoints int              `json:"move_points"`
	MaxHP      int              `json:"max_hp"`
	Cost       map[Resource]int `json:"cost"`
}

// TotalCost returns the summed resource cost, used for production priority.
func (d *UnitTypeDef) TotalCost() int {
	total := 0
	for _, amt := range d.Cost {
		total += amt
	}
	return total
}

// DefaultUnitTypes returns the built-in unit roster. Like the map data in
// similar engines, this is compiled-in reference data rather than a table.
func DefaultUnitTypes() []UnitTypeDef {
	return []UnitTypeDef{
		{
			Code: "warrior", Attack: 20, Defence: 10, MovePoints: 2, MaxHP: 100,
			Cost: map[Resource]int{Wood: 20, Iron: 10},
		},
		{
			Code: "archer", Ranged: true, Attack: 15, Defence: 8,
			MinRange: 1, MaxRange: 2, MovePoints: 2, MaxHP: 80,
			Cost: map[Resource]int{Wood: 25, Stone: 5},
		},
		{
			Code: "spearman", Attack: 14, Defence: 14, MovePoints: 2, MaxHP: 110,
			Cost: map[Resource]int{Wood: 15, Iron: 15},
		},
	}
}
