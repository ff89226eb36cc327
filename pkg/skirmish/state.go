package skirmish

import "sort"

// ParticipantKind distinguishes human players from the scripted opponent.
type ParticipantKind string

const (
	Human      ParticipantKind = "human"
	ScriptedAI ParticipantKind = "scripted_ai"
)

// GameStatus represents the overall game status.
type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"
)

// Terrain is a tile terrain type.
type Terrain string

const (
	Plains Terrain = "plains"
	Forest Terrain = "forest"
	Hills  Terrain = "hills"
	Water  Terrain = "water"
)

// Participant is a player slot in a game.
type Participant struct {
	ID         int64           `json:"id"`
	Kind       ParticipantKind `json:"kind"`
	UserID     string          `json:"user_id,omitempty"` // human participants only
	Name       string          `json:"name"`
	Eliminated bool            `json:"eliminated"`
}

// Unit occupies exactly one tile and belongs to exactly one participant.
type Unit struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Type    string `json:"type"`
	Pos     Coord  `json:"pos"`
	HP      int    `json:"hp"`
	Acted   bool   `json:"acted"`
}

// City occupies one tile. Cities are captured, never destroyed, so HP stays
// at or above 1 for as long as the city exists.
type City struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"owner_id"`
	Pos     Coord `json:"pos"`
	HP      int   `json:"hp"`
	MaxHP   int   `json:"max_hp"`
	Acted   bool  `json:"acted"` // territory/production action taken this turn
}

// Tile is a map cell plus its per-game mutable resource overlay.
type Tile struct {
	ID       int64    `json:"id"`
	Pos      Coord    `json:"pos"`
	Terrain  Terrain  `json:"terrain"`
	Resource Resource `json:"resource,omitempty"` // empty = no resource
	Stock    int      `json:"stock"`              // remaining harvestable units
}

// GameState is a complete snapshot of one game's board. Relationships are
// kept as flat tables keyed by integer IDs with explicit lookup helpers
// rather than mutual object references; the whole value serializes to JSON
// for saves and the live-state cache.
type GameState struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Turn   int   `json:"turn"`
	Seed   int64 `json:"seed"`

	Status   GameStatus `json:"status"`
	ActiveID int64      `json:"active_id"` // 0 once finished
	WinnerID int64      `json:"winner_id,omitempty"`

	Participants []Participant `json:"participants"`
	Units        []Unit        `json:"units"`
	Cities       []City        `json:"cities"`
	Tiles        []Tile        `json:"tiles"`

	// Territory maps city ID to the IDs of tiles it owns. A tile belongs to
	// at most one city across all participants.
	Territory map[int64][]int64 `json:"territory"`

	// Stockpiles maps city ID to per-resource amounts, each in [0, cap].
	Stockpiles map[int64]map[Resource]int `json:"stockpiles"`

	UnitTypes []UnitTypeDef `json:"unit_types"`

	// NextID is the next unassigned entity ID for units spawned mid-game.
	NextID int64 `json:"next_id"`
}

// allocID hands out the next entity ID.
func (gs *GameState) allocID() int64 {
	id := gs.NextID
	gs.NextID++
	return id
}

// ParticipantByID returns the participant with the given ID, or nil.
func (gs *GameState) ParticipantByID(id int64) *Participant {
	for i := range gs.Participants {
		if gs.Participants[i].ID == id {
			return &gs.Participants[i]
		}
	}
	return nil
}

// ParticipantByUser returns the human participant owned by userID, or nil.
func (gs *GameState) ParticipantByUser(userID string) *Participant {
	for i := range gs.Participants {
		if gs.Participants[i].Kind == Human && gs.Participants[i].UserID == userID {
			return &gs.Participants[i]
		}
	}
	return nil
}

// UnitByID returns the unit with the given ID, or nil.
func (gs *GameState) UnitByID(id int64) *Unit {
	for i := range gs.Units {
		if gs.Units[i].ID == id {
			return &gs.Units[i]
		}
	}
	return nil
}

// UnitAt returns the unit occupying the given coordinate, or nil.
func (gs *GameState) UnitAt(pos Coord) *Unit {
	for i := range gs.Units {
		if gs.Units[i].Pos == pos {
			return &gs.Units[i]
		}
	}
	return nil
}

// UnitsOf returns the IDs of all units owned by a participant, in ID order.
func (gs *GameState) UnitsOf(ownerID int64) []int64 {
	var ids []int64
	for i := range gs.Units {
		if gs.Units[i].OwnerID == ownerID {
			ids = append(ids, gs.Units[i].ID)
		}
	}
	sortInt64s(ids)
	return ids
}

// CityByID returns the city with the given ID, or nil.
func (gs *GameState) CityByID(id int64) *City {
	for i := range gs.Cities {
		if gs.Cities[i].ID == id {
			return &gs.Cities[i]
		}
	}
	return nil
}

// CityAt returns the city on the given coordinate, or nil.
func (gs *GameState) CityAt(pos Coord) *City {
	for i := range gs.Cities {
		if gs.Cities[i].Pos == pos {
			return &gs.Cities[i]
		}
	}
	return nil
}

// CitiesOf returns the IDs of all cities owned by a participant, in ID order.
func (gs *GameState) CitiesOf(ownerID int64) []int64 {
	var ids []int64
	for i := range gs.Cities {
		if gs.Cities[i].OwnerID == ownerID {
			ids = append(ids, gs.Cities[i].ID)
		}
	}
	sortInt64s(ids)
	return ids
}

// TileByID returns the tile with the given ID, or nil.
func (gs *GameState) TileByID(id int64) *Tile {
	for i := range gs.Tiles {
		if gs.Tiles[i].ID == id {
			return &gs.Tiles[i]
		}
	}
	return nil
}

// TileAt returns the tile at the given coordinate, or nil if out of bounds.
func (gs *GameState) TileAt(pos Coord) *Tile {
	if !pos.InBounds(gs.Width, gs.Height) {
		return nil
	}
	// Tiles are laid out row-major at game creation.
	idx := pos.Row*gs.Width + pos.Col
	if idx < len(gs.Tiles) && gs.Tiles[idx].Pos == pos {
		return &gs.Tiles[idx]
	}
	for i := range gs.Tiles {
		if gs.Tiles[i].Pos == pos {
			return &gs.Tiles[i]
		}
	}
	return nil
}

// TerritoryOwner returns the ID of the city owning the given tile, or 0.
func (gs *GameState) TerritoryOwner(tileID int64) int64 {
	for cityID, tiles := range gs.Territory {
		for _, tid := range tiles {
			if tid == tileID {
				return cityID
			}
		}
	}
	return 0
}

// Stockpile returns a city's stockpile for one resource type.
func (gs *GameState) Stockpile(cityID int64, res Resource) int {
	if sp, ok := gs.Stockpiles[cityID]; ok {
		return sp[res]
	}
	return 0
}

// UnitTypeByCode returns the unit type definition, or nil.
func (gs *GameState) UnitTypeByCode(code string) *UnitTypeDef {
	for i := range gs.UnitTypes {
		if gs.UnitTypes[i].Code == code {
			return &gs.UnitTypes[i]
		}
	}
	return nil
}

// removeUnit deletes a unit from the flat table.
func (gs *GameState) removeUnit(id int64) {
	for i := range gs.Units {
		if gs.Units[i].ID == id {
			gs.Units = append(gs.Units[:i], gs.Units[i+1:]...)
			return
		}
	}
}

// Opponent returns the other non-eliminated participant, or nil.
func (gs *GameState) Opponent(participantID int64) *Participant {
	for i := range gs.Participants {
		if gs.Participants[i].ID != participantID && !gs.Participants[i].Eliminated {
			return &gs.Participants[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the state. Mutations to the clone do not
// affect the original; the scripted AI plans against clones.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Participants = append([]Participant(nil), gs.Participants...)
	c.Units = append([]Unit(nil), gs.Units...)
	c.Cities = append([]City(nil), gs.Cities...)
	c.Tiles = append([]Tile(nil), gs.Tiles...)
	c.UnitTypes = append([]UnitTypeDef(nil), gs.UnitTypes...)
	c.Territory = make(map[int64][]int64, len(gs.Territory))
	for k, v := range gs.Territory {
		c.Territory[k] = append([]int64(nil), v...)
	}
	c.Stockpiles = make(map[int64]map[Resource]int, len(gs.Stockpiles))
	for k, v := range gs.Stockpiles {
		sp := make(map[Resource]int, len(v))
		for res, amt := range v {
			sp[res] = amt
		}
		c.Stockpiles[k] = sp
	}
	return &c
}

func sortInt64s(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
