package pathmachine

import (
	"github.com/mume/mapcore/internal/mapper/compare"
	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/world"
)

// OneByOne extends paths individually: the machine adds one path, runs
// the lookups around that path's room, then moves to the next. Used
// when the move direction is uncertain (flee, scout) and each path
// needs its own neighborhood searched.
type OneByOne struct {
	experimenting
	event   *event.ParseEvent
	handler *SignalHandler
}

// NewOneByOne builds the strategy for one event.
func NewOneByOne(ev *event.ParseEvent, params Parameters, handler *SignalHandler) *OneByOne {
	dirCode := ev.Command().Direction()
	if !ev.Command().IsDirection7() {
		dirCode = world.DirUnknown
	}
	return &OneByOne{
		experimenting: newExperimenting(nil, dirCode, params),
		event:         ev,
		handler:       handler,
	}
}

// AddPath makes path the one candidates are matched against until the
// next AddPath.
func (o *OneByOne) AddPath(path *Path) {
	o.shortPaths = append(o.shortPaths, path)
}

// ReceiveRoom forks the current path into the candidate when it
// matches the event exactly; anything else is bounced straight back.
func (o *OneByOne) ReceiveRoom(admin RoomAdmin, room world.RoomHandle) {
	if !room.IsValid() || len(o.shortPaths) == 0 {
		return
	}
	if compare.Compare(room.Raw(), o.event, o.params.MatchingTolerance) == compare.Equal {
		o.augmentPath(o.shortPaths[len(o.shortPaths)-1], admin, room, o)
		return
	}
	// hold then release so a room still held by some path is not
	// destroyed by the admin
	o.handler.Hold(room.ID(), admin, o)
	o.handler.Release(room.ID())
}

// Evaluate prunes and returns the next path generation.
func (o *OneByOne) Evaluate() []*Path { return o.evaluate() }
