package world

// Coordinate is a grid cell position. Z is the elevation layer.
// South is increasing Y; east is increasing X; up is increasing Z.
type Coordinate struct {
	X int
	Y int
	Z int
}

// Add returns c + other.
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{X: c.X + other.X, Y: c.Y + other.Y, Z: c.Z + other.Z}
}

// Sub returns c - other.
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{X: c.X - other.X, Y: c.Y - other.Y, Z: c.Z - other.Z}
}

// IsNull reports whether the coordinate is the origin.
func (c Coordinate) IsNull() bool { return c == Coordinate{} }

// Distance returns the Manhattan distance between two coordinates.
func (c Coordinate) Distance(other Coordinate) int {
	return absInt(c.X-other.X) + absInt(c.Y-other.Y) + absInt(c.Z-other.Z)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var exitOffsets = [NumExits]Coordinate{
	North: {Y: -1},
	South: {Y: 1},
	East:  {X: 1},
	West:  {X: -1},
	Up:    {Z: 1},
	Down:  {Z: -1},
	// DirUnknown stays at the origin.
}

// ExitOffset returns the unit coordinate offset of moving in the given
// direction. DirUnknown and DirNone yield the zero offset.
func ExitOffset(dir Direction) Coordinate {
	if int(dir) < len(exitOffsets) {
		return exitOffsets[dir]
	}
	return Coordinate{}
}
