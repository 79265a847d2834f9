package pathmachine

import (
	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/world"
)

// Forced accepts the first room it receives unconditionally. It is
// used when the position is dictated rather than deduced, e.g. the
// user pins the player to a specific room.
type Forced struct {
	event   *event.ParseEvent
	matched world.RoomHandle
	owner   RoomAdmin
	update  bool
}

// NewForced builds a forced move. update requests a force-sync of the
// room's content from the event regardless of match quality. Panics if
// ev is nil.
func NewForced(ev *event.ParseEvent, update bool) *Forced {
	if ev == nil {
		panic("pathmachine: Forced requires an event")
	}
	return &Forced{event: ev, update: update}
}

// ReceiveRoom accepts the first room without comparison and releases
// every subsequent one.
func (f *Forced) ReceiveRoom(admin RoomAdmin, room world.RoomHandle) {
	if !room.IsValid() {
		return
	}
	if f.matched.IsValid() {
		if f.matched.ID() != room.ID() {
			admin.ReleaseRoom(f, room.ID())
		}
		return
	}
	f.matched = room
	f.owner = admin
}

// OneMatch returns the accepted room, or an invalid handle.
func (f *Forced) OneMatch() world.RoomHandle { return f.matched }

// NeedsUpdate reports whether the caller asked for a force-sync.
func (f *Forced) NeedsUpdate() bool { return f.update }

// Close keeps the accepted room. Must be called exactly once; further
// calls are no-ops.
func (f *Forced) Close() {
	if f.owner == nil || !f.matched.IsValid() {
		return
	}
	f.owner.KeepRoom(f, f.matched.ID())
	f.matched = world.RoomHandle{}
	f.owner = nil
}
