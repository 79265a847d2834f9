package world

// Direction indexes a room's exit slots. The first six values are the
// compass and vertical directions; DirUnknown is the catch-all slot for
// exits whose direction the game never revealed.
type Direction uint8

// Exit directions in storage order.
const (
	North Direction = iota
	South
	East
	West
	Up
	Down
	DirUnknown
	DirNone
)

// NumExits is the number of exit slots a room owns (NESWUD plus the
// unknown bucket).
const NumExits = 7

// NESWUD lists the six real directions in storage order.
var NESWUD = [...]Direction{North, South, East, West, Up, Down}

// AllExits7 lists every exit slot including the unknown bucket.
var AllExits7 = [...]Direction{North, South, East, West, Up, Down, DirUnknown}

// Opposite returns the reverse of a real direction. For DirUnknown and
// DirNone it returns the input unchanged.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	default:
		return d
	}
}

var directionNames = [...]string{"north", "south", "east", "west", "up", "down", "unknown", "none"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

// DirectionByName resolves a lowercase direction name.
//
// Postcondition: Returns (direction, true) for the six real directions
// and "unknown", or (DirNone, false) otherwise.
func DirectionByName(name string) (Direction, bool) {
	for i, n := range directionNames {
		if n == name && Direction(i) != DirNone {
			return Direction(i), true
		}
	}
	return DirNone, false
}
