package pathmachine

import "github.com/mume/mapcore/internal/mapper/world"

// experimenting is the shared core of the strategies that extend an
// existing path tree: it forks candidate continuations and then prunes
// the tree down to the plausible ones.
type experimenting struct {
	offset     world.Coordinate
	dirCode    world.Direction
	shortPaths []*Path
	paths      []*Path
	best       *Path
	second     *Path
	params     Parameters
	numPaths   int
}

func newExperimenting(shortPaths []*Path, dirCode world.Direction, params Parameters) experimenting {
	return experimenting{
		offset:     world.ExitOffset(dirCode),
		dirCode:    dirCode,
		shortPaths: shortPaths,
		params:     params,
	}
}

// augmentPath forks path into room, tracking the two most probable
// continuations seen so far.
func (e *experimenting) augmentPath(path *Path, admin RoomAdmin, room world.RoomHandle, locker PathProcessor) {
	expected := path.Room().Position().Add(e.offset)
	working := path.Fork(room, expected, admin, e.params, locker, e.dirCode)
	switch {
	case e.best == nil:
		e.best = working
	case working.Prob() > e.best.Prob():
		e.paths = append(e.paths, e.best)
		e.second = e.best
		e.best = working
	default:
		if e.second == nil || working.Prob() > e.second.Prob() {
			e.second = working
		}
		e.paths = append(e.paths, working)
	}
	e.numPaths++
}

// evaluate denies the dead ends among the previous generation, then
// prunes the new one: an outstanding best path wins outright; a narrow
// lead keeps every path that is still distinguishable and not
// hopelessly unlikely.
func (e *experimenting) evaluate() []*Path {
	for _, working := range e.shortPaths {
		if !working.HasChildren() {
			working.Deny()
		}
	}
	e.shortPaths = nil

	if e.best != nil {
		if e.second == nil ||
			e.best.Prob() > e.second.Prob()*e.params.AcceptBestRelative ||
			e.best.Prob() > e.second.Prob()+e.params.AcceptBestAbsolute {
			for _, p := range e.paths {
				p.Deny()
			}
			e.paths = []*Path{e.best}
		} else {
			e.paths = append(e.paths, e.best)
			for e.paths[0] != e.best {
				working := e.paths[0]
				e.paths = e.paths[1:]
				// drop paths whose probability is negligible next to
				// the best, and duplicates of the best room with equal
				// probability: a unique front-runner must emerge
				// eventually
				if e.best.Prob() > working.Prob()*e.params.maxPathsFactor(e.numPaths) ||
					(e.best.Prob() <= working.Prob() && e.best.Room().ID() == working.Room().ID()) {
					working.Deny()
				} else {
					e.paths = append(e.paths, working)
				}
			}
		}
	}
	e.second = nil
	e.best = nil
	return e.paths
}

func (p Parameters) maxPathsFactor(numPaths int) float64 {
	if numPaths <= 0 {
		return float64(p.MaxPaths)
	}
	return float64(p.MaxPaths) / float64(numPaths)
}
