package pathmachine

import "github.com/mume/mapcore/internal/mapper/world"

// invalidDirection marks a root path that was not entered through any
// exit and therefore holds no room.
const invalidDirection = world.Direction(0xff)

// Path is one node in the tree of plausible positions. Each node has
// one room, one parent and any number of forks; its probability is
// relative to its siblings, derived from the parent's.
type Path struct {
	parent   *Path
	children map[*Path]struct{}
	prob     float64
	room     world.RoomHandle
	signaler *SignalHandler
	dir      world.Direction
}

// NewRootPath builds a parentless path that holds no room.
func NewRootPath(room world.RoomHandle, signaler *SignalHandler) *Path {
	return newPath(room, nil, nil, signaler, invalidDirection)
}

func newPath(room world.RoomHandle, owner RoomAdmin, locker PathProcessor, signaler *SignalHandler, dir world.Direction) *Path {
	p := &Path{
		children: map[*Path]struct{}{},
		prob:     1.0,
		room:     room,
		signaler: signaler,
		dir:      dir,
	}
	if dir != invalidDirection {
		signaler.Hold(room.ID(), owner, locker)
	}
	return p
}

// Room returns the path's room; invalid for a bare root.
func (p *Path) Room() world.RoomHandle { return p.room }

// Prob returns the path's probability.
func (p *Path) Prob() float64 { return p.prob }

// HasChildren reports whether any forks are still alive.
func (p *Path) HasChildren() bool { return len(p.children) > 0 }

// Fork extends the path into room via dir. The child's probability is
// the parent's scaled by how plausible the step is: distance from the
// expected coordinate, whether an exit already leads there, how many
// paths share the room, and whether the room is freshly created.
func (p *Path) Fork(room world.RoomHandle, expected world.Coordinate, owner RoomAdmin,
	params Parameters, locker PathProcessor, dir world.Direction) *Path {
	ret := newPath(room, owner, locker, p.signaler, dir)
	ret.parent = p
	p.children[ret] = struct{}{}

	dist := float64(expected.Distance(room.Position()))
	if dist < 0.5 {
		dist = 1.0 / params.CorrectPositionBonus
	} else if int(dir) < world.NumExits && p.room.IsValid() {
		e := p.room.Raw().Exit(dir)
		oid := room.ID()
		if e.ContainsOut(oid) {
			dist = 1.0 / params.CorrectPositionBonus
		} else if !e.Outgoing.IsEmpty() || oid == p.room.ID() {
			dist *= params.MultipleConnectionsPenalty
		} else if !room.Raw().Exit(dir.Opposite()).Incoming.IsEmpty() {
			dist *= params.MultipleConnectionsPenalty
		}
	} else if p.room.IsValid() {
		// unknown direction: any existing connection to the candidate
		// counts as being in the right place
		for _, d := range world.AllExits7 {
			if p.room.Raw().Exit(d).ContainsOut(room.ID()) {
				dist = 1.0 / params.CorrectPositionBonus
				break
			}
		}
	}
	if n := p.signaler.NumLockers(room.ID()); n > 1 {
		dist /= float64(n)
	}
	if room.Raw().IsTemporary() {
		dist *= params.NewRoomPenalty
	}
	ret.prob = p.prob / dist
	return ret
}

// Approve commits the whole chain from the root to this path: every
// room on it is kept and the exits along it are scheduled. Children of
// the approved node are detached to become the next roots.
func (p *Path) Approve() {
	if p.parent != nil {
		parentID := world.InvalidRoomID
		if p.parent.room.IsValid() {
			parentID = p.parent.room.ID()
		}
		p.signaler.Keep(p.room.ID(), p.dir, parentID)
		delete(p.parent.children, p)
		p.parent.Approve()
	}
	for c := range p.children {
		c.parent = nil
	}
	p.children = nil
}

// Deny discards this path and every childless ancestor up to the next
// branch, releasing their rooms. A path that still has live forks
// stays.
func (p *Path) Deny() {
	if len(p.children) > 0 {
		return
	}
	if p.dir != invalidDirection {
		p.signaler.Release(p.room.ID())
	}
	if p.parent != nil {
		delete(p.parent.children, p)
		p.parent.Deny()
	}
}

func (p *Path) setParent(parent *Path) {
	p.parent = parent
}

func (p *Path) insertChild(c *Path) {
	p.children[c] = struct{}{}
}
