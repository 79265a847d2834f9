package pathmachine

import "github.com/mume/mapcore/internal/mapper/world"

// Crossover extends every current path with every received candidate.
// It is used when the move direction is known, so candidates come from
// a single lookup shared by all paths.
type Crossover struct {
	experimenting
}

// NewCrossover builds the strategy over the current path generation.
func NewCrossover(paths []*Path, dirCode world.Direction, params Parameters) *Crossover {
	return &Crossover{experimenting: newExperimenting(paths, dirCode, params)}
}

// ReceiveRoom forks every current path into the candidate.
func (c *Crossover) ReceiveRoom(admin RoomAdmin, room world.RoomHandle) {
	if !room.IsValid() {
		return
	}
	for _, path := range c.shortPaths {
		c.augmentPath(path, admin, room, c)
	}
}

// Evaluate prunes and returns the next path generation.
func (c *Crossover) Evaluate() []*Path { return c.evaluate() }
