package pathmachine

import (
	"go.uber.org/zap"

	"github.com/mume/mapcore/internal/mapper/world"
)

// SignalHandler reference-counts rooms shared between path candidates. A
// room held by several paths must survive until the last of them gives
// it up; only then does the handler settle custody with the admin on
// behalf of every locker.
type SignalHandler struct {
	log      *zap.Logger
	schedule func(world.Change)

	owners    map[world.RoomID]RoomAdmin
	lockers   map[world.RoomID]map[PathProcessor]struct{}
	holdCount map[world.RoomID]int
}

// NewSignalHandler builds a handler. schedule receives the exit
// changes emitted when a path is kept; it must not be nil.
func NewSignalHandler(log *zap.Logger, schedule func(world.Change)) *SignalHandler {
	return &SignalHandler{
		log:       log,
		schedule:  schedule,
		owners:    map[world.RoomID]RoomAdmin{},
		lockers:   map[world.RoomID]map[PathProcessor]struct{}{},
		holdCount: map[world.RoomID]int{},
	}
}

// Hold registers another path keeping the room alive. Overrides any
// earlier release.
func (s *SignalHandler) Hold(id world.RoomID, owner RoomAdmin, locker PathProcessor) {
	s.owners[id] = owner
	set, ok := s.lockers[id]
	if !ok || len(set) == 0 {
		set = map[PathProcessor]struct{}{}
		s.lockers[id] = set
		s.holdCount[id] = 0
	}
	if locker != nil {
		set[locker] = struct{}{}
	}
	s.holdCount[id]++
}

// Release gives up one hold. When the last hold drops, every locker
// releases the room back to its owner.
func (s *SignalHandler) Release(id world.RoomID) {
	if s.holdCount[id] <= 0 {
		s.log.Error("release without hold", zap.Uint32("room", uint32(id)))
		return
	}
	s.holdCount[id]--
	if s.holdCount[id] > 0 {
		return
	}
	owner := s.owners[id]
	if owner == nil {
		s.log.Error("released room has no owner", zap.Uint32("room", uint32(id)))
	} else {
		for locker := range s.lockers[id] {
			owner.ReleaseRoom(locker, id)
		}
	}
	delete(s.lockers, id)
	delete(s.owners, id)
	delete(s.holdCount, id)
}

// Keep settles the room as genuinely reached: schedules the exit that
// led into it, keeps it with the admin on behalf of one locker, then
// drops this hold. Overrides both hold and release.
func (s *SignalHandler) Keep(id world.RoomID, dir world.Direction, fromID world.RoomID) {
	if s.holdCount[id] <= 0 {
		s.log.Error("keep without hold", zap.Uint32("room", uint32(id)))
		return
	}
	if int(dir) < world.NumExits && fromID.Valid() {
		s.schedule(world.ModifyExitConnection{
			Op:   world.OpAdd,
			Room: fromID,
			Dir:  dir,
			To:   id,
			Ways: world.OneWay,
		})
	}
	if owner := s.owners[id]; owner != nil {
		for locker := range s.lockers[id] {
			owner.KeepRoom(locker, id)
			delete(s.lockers[id], locker)
			break
		}
	}
	s.Release(id)
}

// NumLockers reports how many paths currently share the room.
func (s *SignalHandler) NumLockers(id world.RoomID) int {
	return len(s.lockers[id])
}
