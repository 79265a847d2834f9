package pathmachine

import (
	"go.uber.org/zap"

	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/world"
)

// State is the machine's confidence in the player's position.
type State uint8

// Machine states.
const (
	// StateApproved means the position is known: one room.
	StateApproved State = iota
	// StateExperimenting means several paths are still plausible.
	StateExperimenting
	// StateSyncing means the position is unknown and every room
	// matching the next event is a candidate.
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateApproved:
		return "approved"
	case StateExperimenting:
		return "experimenting"
	case StateSyncing:
		return "syncing"
	}
	return "invalid"
}

// MapFrontend is everything the machine needs from the map layer:
// candidate lookups, room creation, change scheduling and the custody
// ledger for streamed rooms.
type MapFrontend interface {
	RoomAdmin

	// LookingForRoomsByEvent streams every room matching the event's
	// identity (server id, then name and description).
	LookingForRoomsByEvent(recipient PathProcessor, ev *event.ParseEvent)
	// LookingForRoomsByID streams the room with the given id, if any.
	LookingForRoomsByID(recipient PathProcessor, id world.RoomID)
	// LookingForRoomsAt streams the room at the coordinate, if any.
	LookingForRoomsAt(recipient PathProcessor, c world.Coordinate)
	// CreateRoom makes a temporary room from the event at the
	// coordinate, unless one is already there.
	CreateRoom(ev *event.ParseEvent, c world.Coordinate)
	// ScheduleChange queues a map change for the next apply.
	ScheduleChange(ch world.Change)
	// Snapshot returns the current map.
	Snapshot() world.Map
}

// Machine relates incoming move events to rooms: it decides whether
// the player moved where the map says they should be, creates rooms
// where the map has none, and reports every position fix through the
// optional observer.
type Machine struct {
	log      *zap.Logger
	frontend MapFrontend
	params   Parameters
	signaler *SignalHandler

	state          State
	pathRoot       world.RoomHandle
	mostLikelyRoom world.RoomHandle
	lastEvent      *event.ParseEvent
	paths          []*Path

	onPosition func(world.RoomHandle)
}

// NewMachine builds a machine in the syncing state. onPosition may be
// nil.
func NewMachine(log *zap.Logger, frontend MapFrontend, params Parameters, onPosition func(world.RoomHandle)) *Machine {
	m := &Machine{
		log:        log,
		frontend:   frontend,
		params:     params,
		state:      StateSyncing,
		onPosition: onPosition,
	}
	m.signaler = NewSignalHandler(log, frontend.ScheduleChange)
	return m
}

// State returns the current confidence state.
func (m *Machine) State() State { return m.state }

// MostLikelyRoom returns the best current position fix; invalid while
// syncing.
func (m *Machine) MostLikelyRoom() world.RoomHandle { return m.mostLikelyRoom }

// ProcessEvent advances the machine by one observed room.
func (m *Machine) ProcessEvent(ev *event.ParseEvent) {
	if ev == nil {
		return
	}
	m.lastEvent = ev
	m.log.Debug("processing event",
		zap.Stringer("state", m.state),
		zap.Stringer("event", ev))

	switch m.state {
	case StateApproved:
		m.approved(ev)
	case StateExperimenting:
		m.experimenting(ev)
	case StateSyncing:
		m.syncing(ev)
	}
}

// SetCurrentRoom pins the player to a specific room, bypassing
// disambiguation. update force-syncs the room's content from the last
// event.
func (m *Machine) SetCurrentRoom(id world.RoomID, update bool) {
	ev := m.lastEvent
	if ev == nil {
		ev = event.New(event.Params{Command: event.CmdNone})
	}
	forced := NewForced(ev, update)
	m.frontend.LookingForRoomsByID(forced, id)
	m.ReleaseAllPaths()
	if room := forced.OneMatch(); room.IsValid() {
		if forced.NeedsUpdate() {
			m.frontend.ScheduleChange(world.UpdateRoomFromEvent{
				Room:    room.ID(),
				Content: ev.Content(),
				Mode:    world.UpdateForce,
			})
		}
		m.mostLikelyRoom = room
		m.state = StateApproved
		m.notifyPosition()
	}
	forced.Close()
}

// ReleaseAllPaths denies every live path and drops back to syncing.
func (m *Machine) ReleaseAllPaths() {
	for _, p := range m.paths {
		p.Deny()
	}
	m.paths = nil
	m.state = StateSyncing
}

func (m *Machine) notifyPosition() {
	if m.onPosition != nil && m.mostLikelyRoom.IsValid() {
		m.onPosition(m.mostLikelyRoom)
	}
}

// tryExit streams every room on one side of an exit.
func (m *Machine) tryExit(e *world.Exit, recipient PathProcessor, out bool) {
	set := e.Outgoing
	if !out {
		set = e.Incoming
	}
	for _, id := range set.Sorted() {
		m.frontend.LookingForRoomsByID(recipient, id)
	}
}

// tryExits streams candidates reachable from room according to the
// event's move: the moved direction's exit for a plain move, the room
// itself for a look, every exit for flee and scout.
func (m *Machine) tryExits(room world.RoomHandle, recipient PathProcessor, ev *event.ParseEvent, out bool) {
	if !room.IsValid() {
		return
	}
	move := ev.Command()
	if move.IsDirection7() {
		m.tryExit(room.Raw().Exit(move.Direction()), recipient, out)
		return
	}
	m.frontend.LookingForRoomsByID(recipient, room.ID())
	if move >= event.CmdFlee {
		for _, dir := range world.AllExits7 {
			m.tryExit(room.Raw().Exit(dir), recipient, out)
		}
	}
}

// tryCoordinate streams candidates by expected position: one cell for
// a known direction, the whole neighborhood for flee and scout.
func (m *Machine) tryCoordinate(room world.RoomHandle, recipient PathProcessor, ev *event.ParseEvent) {
	if !room.IsValid() {
		return
	}
	move := ev.Command()
	if move < event.CmdFlee {
		offset := world.ExitOffset(move.Direction())
		m.frontend.LookingForRoomsAt(recipient, room.Position().Add(offset))
		return
	}
	pos := room.Position()
	for _, dir := range world.AllExits7 {
		m.frontend.LookingForRoomsAt(recipient, pos.Add(world.ExitOffset(dir)))
	}
}

// approved handles an event while the position is known: the new room
// should be right behind the moved exit. Failing that, the search
// widens over reverse exits, the expected coordinate, and the layers
// directly below and above it before giving up and experimenting.
func (m *Machine) approved(ev *event.ParseEvent) {
	appr := NewApproved(m.frontend.Snapshot(), ev, m.params.MatchingTolerance)
	defer appr.Close()

	if ev.Command() == event.CmdLook {
		m.frontend.LookingForRoomsByID(appr, m.mostLikelyRoom.ID())
	} else {
		m.tryExits(m.mostLikelyRoom, appr, ev, true)
	}
	perhaps := appr.OneMatch()

	if !perhaps.IsValid() {
		appr.ReleaseMatch()
		m.tryExits(m.mostLikelyRoom, appr, ev, false)
		perhaps = appr.OneMatch()
	}
	if !perhaps.IsValid() {
		appr.ReleaseMatch()
		m.tryCoordinate(m.mostLikelyRoom, appr, ev)
		perhaps = appr.OneMatch()
	}
	if !perhaps.IsValid() && m.mostLikelyRoom.IsValid() {
		// desperate: the layer below, then the layer above
		eDir := world.ExitOffset(ev.Command().Direction())
		if eDir.Z == 0 {
			appr.ReleaseMatch()
			c := m.mostLikelyRoom.Position().Add(eDir)
			c.Z--
			m.frontend.LookingForRoomsAt(appr, c)
			perhaps = appr.OneMatch()
			if !perhaps.IsValid() {
				appr.ReleaseMatch()
				c.Z += 2
				m.frontend.LookingForRoomsAt(appr, c)
				perhaps = appr.OneMatch()
			}
		}
	}

	if !perhaps.IsValid() {
		m.log.Debug("no approved match, experimenting")
		m.state = StateExperimenting
		m.pathRoot = m.mostLikelyRoom
		root := NewRootPath(m.pathRoot, m.signaler)
		m.paths = append([]*Path{root}, m.paths...)
		m.experimenting(ev)
		return
	}

	// connect the previous room to the matched one
	if move := ev.Command(); int(move) < world.NumExits && m.mostLikelyRoom.IsValid() {
		m.frontend.ScheduleChange(world.ModifyExitConnection{
			Op:   world.OpAdd,
			Room: m.mostLikelyRoom.ID(),
			Dir:  world.Direction(move),
			To:   perhaps.ID(),
			Ways: world.OneWay,
		})
	}
	m.mostLikelyRoom = perhaps

	// the rooms behind our exits just told us whether they see the sun
	if cf := ev.ConnectedRoomFlags(); cf.IsValid() {
		for _, dir := range world.NESWUD {
			e := perhaps.Raw().Exit(dir)
			if !e.OutIsUnique() {
				continue
			}
			to := e.OutFirst()
			switch cf.DirectSunlight(dir) {
			case event.SawDirectSunlight:
				m.frontend.ScheduleChange(world.ModifyRoomField{
					Room:  to,
					Field: world.FieldSundeath{Value: world.SundeathSundeath},
					Mode:  world.FlagAssign,
				})
			case event.SawNoDirectSunlight:
				m.frontend.ScheduleChange(world.ModifyRoomField{
					Room:  to,
					Field: world.FieldSundeath{Value: world.SundeathNoSundeath},
					Mode:  world.FlagAssign,
				})
			}
		}
	}

	if appr.NeedsUpdate() {
		m.frontend.ScheduleChange(world.UpdateRoomFromEvent{
			Room:    m.mostLikelyRoom.ID(),
			Content: ev.Content(),
			Mode:    world.UpdateMerge,
		})
	}
	m.notifyPosition()
}

// syncing handles an event with no known position.
func (m *Machine) syncing(ev *event.ParseEvent) {
	sync := NewSyncing(m.params, m.paths, m.signaler)
	if ev.NumSkipped() <= m.params.MaxSkipped {
		m.frontend.LookingForRoomsByEvent(sync, ev)
	}
	m.paths = sync.Evaluate()
	sync.Close()
	m.evaluatePaths()
}

// experimenting extends every live path by one step. With a clean
// directional move it creates missing rooms and crosses every path
// with every candidate; otherwise it searches each path's own
// neighborhood one path at a time.
func (m *Machine) experimenting(ev *event.ParseEvent) {
	moveCode := ev.Command()
	dir := moveCode.Direction()
	move := world.ExitOffset(dir)

	var next []*Path
	if ev.NumSkipped() == 0 && moveCode < event.CmdFlee && m.mostLikelyRoom.IsValid() && !move.IsNull() {
		exp := NewCrossover(m.paths, dir, m.params)
		seen := world.NewRoomIDSet()
		for _, p := range m.paths {
			r := p.Room()
			if !r.IsValid() || seen.Contains(r.ID()) {
				continue
			}
			m.frontend.CreateRoom(ev, r.Position().Add(move))
			seen[r.ID()] = struct{}{}
		}
		m.frontend.LookingForRoomsByEvent(exp, ev)
		next = exp.Evaluate()
	} else {
		oneByOne := NewOneByOne(ev, m.params, m.signaler)
		for _, p := range m.paths {
			r := p.Room()
			oneByOne.AddPath(p)
			m.tryExits(r, oneByOne, ev, true)
			m.tryExits(r, oneByOne, ev, false)
			m.tryCoordinate(r, oneByOne, ev)
		}
		next = oneByOne.Evaluate()
	}
	m.paths = next
	m.evaluatePaths()
}

// evaluatePaths collapses the tree when a unique best path remains.
func (m *Machine) evaluatePaths() {
	if len(m.paths) == 0 {
		m.state = StateSyncing
		return
	}
	m.mostLikelyRoom = m.paths[0].Room()
	if len(m.paths) == 1 {
		m.state = StateApproved
		m.paths[0].Approve()
		m.paths = nil
	} else {
		m.state = StateExperimenting
	}
	m.notifyPosition()
}
