// Package frontend owns the live map on behalf of the path machine:
// it answers candidate lookups, creates temporary rooms for
// exploration, applies scheduled changes, and keeps the custody ledger
// that decides when a temporary room is promoted or discarded.
package frontend

import (
	"go.uber.org/zap"

	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/pathmachine"
	"github.com/mume/mapcore/internal/mapper/world"
)

// Frontend is the map layer the path machine talks to. It is not safe
// for concurrent use; the machine and frontend run on one goroutine.
type Frontend struct {
	log *zap.Logger
	m   world.Map

	// rooms currently on loan to processors
	locks map[world.RoomID]map[pathmachine.PathProcessor]struct{}

	// every change applied since the last Drain, for persistence
	applied world.ChangeList
}

// New builds a frontend over a map snapshot.
func New(log *zap.Logger, m world.Map) *Frontend {
	return &Frontend{
		log:   log,
		m:     m,
		locks: map[world.RoomID]map[pathmachine.PathProcessor]struct{}{},
	}
}

// Snapshot returns the current map.
func (f *Frontend) Snapshot() world.Map { return f.m }

// Drain returns and clears the log of changes applied so far.
func (f *Frontend) Drain() world.ChangeList {
	out := f.applied
	f.applied = world.ChangeList{}
	return out
}

// ScheduleChange applies one change to the live map immediately so the
// rest of the current event cycle sees it. Integrity violations are
// logged and the change is dropped; the map never moves to a corrupt
// state.
func (f *Frontend) ScheduleChange(ch world.Change) {
	var list world.ChangeList
	list.Add(ch)
	res, err := f.m.Apply(nil, list)
	if err != nil {
		f.log.Error("change rejected", zap.Error(err))
		return
	}
	f.m = res.Map
	f.applied.Add(ch)
}

func (f *Frontend) lock(recipient pathmachine.PathProcessor, id world.RoomID) {
	set, ok := f.locks[id]
	if !ok {
		set = map[pathmachine.PathProcessor]struct{}{}
		f.locks[id] = set
	}
	set[recipient] = struct{}{}
}

func (f *Frontend) unlock(recipient pathmachine.PathProcessor, id world.RoomID) {
	if set, ok := f.locks[id]; ok {
		delete(set, recipient)
		if len(set) == 0 {
			delete(f.locks, id)
		}
	}
}

func (f *Frontend) stream(recipient pathmachine.PathProcessor, room world.RoomHandle) {
	if !room.IsValid() {
		return
	}
	f.lock(recipient, room.ID())
	recipient.ReceiveRoom(f, room)
}

// LookingForRoomsByEvent streams every room matching the event's
// identity: the server id when both sides know it, otherwise every
// room sharing the event's name and description.
func (f *Frontend) LookingForRoomsByEvent(recipient pathmachine.PathProcessor, ev *event.ParseEvent) {
	if ev.HasServerID() {
		if room := f.m.FindRoomByServerID(ev.ServerID()); room.IsValid() {
			f.stream(recipient, room)
			return
		}
	}
	for _, id := range f.m.FindRoomsByNameDesc(ev.Name(), ev.Desc()) {
		f.stream(recipient, f.m.FindRoomHandle(id))
	}
}

// LookingForRoomsByID streams the room with the given id, if any.
func (f *Frontend) LookingForRoomsByID(recipient pathmachine.PathProcessor, id world.RoomID) {
	f.stream(recipient, f.m.FindRoomHandle(id))
}

// LookingForRoomsAt streams the room at the coordinate, if any.
func (f *Frontend) LookingForRoomsAt(recipient pathmachine.PathProcessor, c world.Coordinate) {
	f.stream(recipient, f.m.FindRoomAt(c))
}

// CreateRoom makes a temporary room from the event at the coordinate.
// Nothing happens when the cell is occupied or the event is too thin
// to seed a room.
func (f *Frontend) CreateRoom(ev *event.ParseEvent, c world.Coordinate) {
	if !ev.CanCreateNewRoom() {
		return
	}
	if f.m.FindRoomAt(c).IsValid() {
		return
	}
	f.ScheduleChange(world.AddRoomFromEvent{
		Position: c,
		Content:  ev.Content(),
		Status:   world.StatusTemporary,
	})
}

// KeepRoom promotes a loaned room to permanent and closes the loan.
func (f *Frontend) KeepRoom(recipient pathmachine.PathProcessor, id world.RoomID) {
	f.unlock(recipient, id)
	room := f.m.FindRoomHandle(id)
	if !room.IsValid() {
		f.log.Warn("keep of unknown room", zap.Uint32("room", uint32(id)))
		return
	}
	if room.Raw().IsTemporary() {
		f.ScheduleChange(world.MakePermanent{Room: id})
	}
}

// ReleaseRoom closes the loan; a temporary room nobody else holds is
// removed from the map.
func (f *Frontend) ReleaseRoom(recipient pathmachine.PathProcessor, id world.RoomID) {
	f.unlock(recipient, id)
	if _, stillHeld := f.locks[id]; stillHeld {
		return
	}
	room := f.m.FindRoomHandle(id)
	if room.IsValid() && room.Raw().IsTemporary() {
		f.ScheduleChange(world.RemoveRoom{Room: id})
	}
}
