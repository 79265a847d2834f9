package pathmachine

import "github.com/mume/mapcore/internal/mapper/world"

// Syncing starts paths from scratch: with no known position, every
// room matching the event becomes the root of its own path. A shared
// invisible parent ties them into one tree.
type Syncing struct {
	signaler *SignalHandler
	params   Parameters
	paths    []*Path
	parent   *Path
	numPaths int
}

// NewSyncing builds the strategy over the (normally empty) current
// path generation.
func NewSyncing(params Parameters, paths []*Path, signaler *SignalHandler) *Syncing {
	return &Syncing{
		signaler: signaler,
		params:   params,
		paths:    paths,
		parent:   NewRootPath(world.RoomHandle{}, signaler),
	}
}

// ReceiveRoom adds the candidate as a fresh path. Past MaxPaths the
// sync is hopeless and every path is dropped.
func (s *Syncing) ReceiveRoom(admin RoomAdmin, room world.RoomHandle) {
	if !room.IsValid() {
		return
	}
	s.numPaths++
	if s.numPaths > s.params.MaxPaths {
		if len(s.paths) > 0 {
			for _, p := range s.paths {
				p.Deny()
			}
			s.paths = nil
			s.parent = nil
		}
		admin.ReleaseRoom(s, room.ID())
		return
	}
	p := newPath(room, admin, s, s.signaler, world.DirNone)
	p.setParent(s.parent)
	s.parent.insertChild(p)
	s.paths = append(s.paths, p)
}

// Evaluate returns the collected paths.
func (s *Syncing) Evaluate() []*Path { return s.paths }

// Close drops the invisible parent when no path attached to it.
func (s *Syncing) Close() {
	if s.parent != nil {
		s.parent.Deny()
		s.parent = nil
	}
}
