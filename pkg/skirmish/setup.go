package skirmish

import "math/rand"

// Board dimensions and placement constants for new games.
const (
	DefaultWidth  = 16
	DefaultHeight = 12
)

// NewGameState seeds a fresh two-participant board: terrain and tile
// resources generated deterministically from the seed, one city per
// participant with a starting territory ring, one warrior each, and the
// initial stockpiles. Identical seeds produce identical boards.
func NewGameState(r Rules, seed int64, width, height int, human Participant, opponent Participant) *GameState {
	rng := rand.New(rand.NewSource(seed))

	gs := &GameState{
		Width:        width,
		Height:       height,
		Turn:         1,
		Seed:         seed,
		Status:       StatusActive,
		ActiveID:     human.ID,
		Participants: []Participant{human, opponent},
		Territory:    make(map[int64][]int64),
		Stockpiles:   make(map[int64]map[Resource]int),
		UnitTypes:    DefaultUnitTypes(),
		NextID:       1,
	}

	gs.Tiles = generateTiles(gs, rng)

	// Cities sit in opposite corners, pulled in from the edge so the
	// starting ring is never clipped to nothing.
	humanPos := Coord{Row: 2, Col: 2}
	oppPos := Coord{Row: height - 3, Col: width - 3}
	placeStartingCity(gs, r, human.ID, humanPos)
	placeStartingCity(gs, r, opponent.ID, oppPos)

	return gs
}

// generateTiles lays out terrain row-major: mostly plains with forest and
// hill patches and a few lakes, plus scattered tile resources with stock.
func generateTiles(gs *GameState, rng *rand.Rand) []Tile {
	tiles := make([]Tile, 0, gs.Width*gs.Height)
	for row := 0; row < gs.Height; row++ {
		for col := 0; col < gs.Width; col++ {
			t := Tile{
				ID:      gs.allocID(),
				Pos:     Coord{Row: row, Col: col},
				Terrain: rollTerrain(rng, row, col, gs.Width, gs.Height),
			}
			if t.Terrain != Water {
				if res, stock := rollResource(rng, t.Terrain); res != "" {
					t.Resource = res
					t.Stock = stock
				}
			}
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// rollTerrain keeps the starting corners clear so cities always land on
// plains.
func rollTerrain(rng *rand.Rand, row, col, width, height int) Terrain {
	corner := (row < 4 && col < 4) || (row >= height-4 && col >= width-4)
	roll := rng.Float64()
	if corner {
		if roll < 0.15 {
			return Forest
		}
		return Plains
	}
	switch {
	case roll < 0.08:
		return Water
	case roll < 0.28:
		return Forest
	case roll < 0.40:
		return Hills
	default:
		return Plains
	}
}

// rollResource assigns a tile resource biased by terrain.
func rollResource(rng *rand.Rand, terrain Terrain) (Resource, int) {
	roll := rng.Float64()
	stock := 20 + rng.Intn(31)
	switch terrain {
	case Forest:
		if roll < 0.6 {
			return Wood, stock
		}
	case Hills:
		if roll < 0.35 {
			return Stone, stock
		}
		if roll < 0.6 {
			return Iron, stock
		}
	default:
		if roll < 0.3 {
			return Wheat, stock
		}
		if roll < 0.4 {
			return Wood, stock
		}
	}
	return "", 0
}

// placeStartingCity drops a city with its starting territory (the city tile
// plus its neighbors, edge-clipped), a garrison warrior on a neighboring
// tile, and the opening stockpile.
func placeStartingCity(gs *GameState, r Rules, ownerID int64, pos Coord) {
	// Starting tiles must be passable.
	if t := gs.TileAt(pos); t != nil && t.Terrain == Water {
		t.Terrain = Plains
	}

	city := City{
		ID:      gs.allocID(),
		OwnerID: ownerID,
		Pos:     pos,
		HP:      r.CityMaxHP,
		MaxHP:   r.CityMaxHP,
	}
	gs.Cities = append(gs.Cities, city)

	territory := []int64{gs.TileAt(pos).ID}
	for _, n := range Neighbors(pos, gs.Width, gs.Height) {
		tile := gs.TileAt(n)
		if tile.Terrain == Water {
			tile.Terrain = Plains
		}
		territory = append(territory, tile.ID)
	}
	gs.Territory[city.ID] = territory

	gs.Stockpiles[city.ID] = map[Resource]int{
		Wood:  r.InitialStockWood,
		Stone: 0,
		Wheat: r.InitialStockWheat,
		Iron:  0,
	}

	// Garrison next to the city so the city tile stays free for spawning.
	for _, n := range Neighbors(pos, gs.Width, gs.Height) {
		if gs.UnitAt(n) == nil && gs.CityAt(n) == nil {
			def := gs.UnitTypeByCode("warrior")
			gs.Units = append(gs.Units, Unit{
				ID:      gs.allocID(),
				OwnerID: ownerID,
				Type:    def.Code,
				Pos:     n,
				HP:      def.MaxHP,
			})
			break
		}
	}
}
