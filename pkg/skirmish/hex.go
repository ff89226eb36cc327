package skirmish

// Coord is an offset-row hex coordinate (odd-r layout: odd rows are
// shifted half a hex to the right).
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Offset neighbor deltas as (dCol, dRow) pairs, one table per row parity.
var (
	evenRowDeltas = [6][2]int{{1, 0}, {-1, 0}, {0, -1}, {-1, -1}, {0, 1}, {-1, 1}}
	oddRowDeltas  = [6][2]int{{1, 0}, {-1, 0}, {1, -1}, {0, -1}, {1, 1}, {0, 1}}
)

// cube converts an offset coordinate to cube coordinates for distance math.
func (c Coord) cube() (x, y, z int) {
	x = c.Col - (c.Row-(c.Row&1))/2
	z = c.Row
	y = -x - z
	return x, y, z
}

// InBounds reports whether c lies within a width x height map.
func (c Coord) InBounds(width, height int) bool {
	return c.Row >= 0 && c.Row < height && c.Col >= 0 && c.Col < width
}

// Neighbors returns the up-to-6 adjacent coordinates, clipped at map edges.
func Neighbors(c Coord, width, height int) []Coord {
	deltas := &evenRowDeltas
	if c.Row&1 == 1 {
		deltas = &oddRowDeltas
	}
	out := make([]Coord, 0, 6)
	for _, d := range deltas {
		n := Coord{Row: c.Row + d[1], Col: c.Col + d[0]}
		if n.InBounds(width, height) {
			out = append(out, n)
		}
	}
	return out
}

// Distance returns the hex distance between two offset coordinates.
func Distance(a, b Coord) int {
	ax, ay, az := a.cube()
	bx, by, bz := b.cube()
	return (abs(ax-bx) + abs(ay-by) + abs(az-bz)) / 2
}

// Adjacent reports whether a and b are exactly one hex apart.
func Adjacent(a, b Coord) bool {
	return Distance(a, b) == 1
}

// Reachable performs a budgeted breadth-first search from origin and returns
// every coordinate reachable within movePoints steps, mapped to its path
// cost. Blocked tiles are included as endpoints when adjacent to the search
// frontier but are never traversed, so a path cannot pass through them.
// The origin itself is not included.
func Reachable(origin Coord, movePoints, width, height int, blocked func(Coord) bool) map[Coord]int {
	reached := make(map[Coord]int)
	if movePoints <= 0 || !origin.InBounds(width, height) {
		return reached
	}

	frontier := []Coord{origin}
	visited := map[Coord]bool{origin: true}

	for cost := 1; cost <= movePoints && len(frontier) > 0; cost++ {
		var next []Coord
		for _, cur := range frontier {
			for _, n := range Neighbors(cur, width, height) {
				if visited[n] {
					continue
				}
				visited[n] = true
				reached[n] = cost
				if !blocked(n) {
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return reached
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
