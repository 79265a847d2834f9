package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/frontend"
	"github.com/mume/mapcore/internal/mapper/pathmachine"
	"github.com/mume/mapcore/internal/mapper/world"
)

// recorder collects every room streamed to it.
type recorder struct {
	received []world.RoomID
}

func (r *recorder) ReceiveRoom(admin pathmachine.RoomAdmin, room world.RoomHandle) {
	r.received = append(r.received, room.ID())
}

func testRoom(id world.RoomID, name, desc string, pos world.Coordinate, serverID world.ServerID) *world.RawRoom {
	r := &world.RawRoom{
		ID:         id,
		ExternalID: world.ExternalRoomID(id),
		ServerID:   serverID,
		Position:   pos,
		Status:     world.StatusPermanent,
	}
	r.Fields.Name = name
	r.Fields.Desc = desc
	r.Fields.Terrain = world.TerrainCavern
	return r
}

func newFrontend(t *testing.T, rooms ...*world.RawRoom) *frontend.Frontend {
	t.Helper()
	w, err := world.WorldFromRooms(rooms, nil)
	require.NoError(t, err, "test map must be consistent")
	return frontend.New(zap.NewNop(), world.MapFromWorld(w))
}

func caveEvent() *event.ParseEvent {
	var exits event.ExitsFlags
	exits = exits.WithValid()
	return event.New(event.Params{
		Command: event.CmdLook,
		Name:    "A dark cave",
		Desc:    "It is dark here.",
		Terrain: world.TerrainCavern,
		Exits:   exits,
	})
}

func TestLookingForRoomsByEvent_PrefersServerID(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 77),
		testRoom(2, "A dark cave", "It is dark here.", world.Coordinate{X: 5}, 0),
	)

	rec := &recorder{}
	fe.LookingForRoomsByEvent(rec, event.New(event.Params{
		Command:  event.CmdLook,
		ServerID: 77,
		Name:     "A dark cave",
		Desc:     "It is dark here.",
	}))

	assert.Equal(t, []world.RoomID{1}, rec.received,
		"a server id hit must short-circuit the name+desc scan")
}

func TestLookingForRoomsByEvent_FallsBackToNameDesc(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
		testRoom(2, "A dark cave", "It is dark here.", world.Coordinate{X: 5}, 0),
		testRoom(3, "A great hall", "Pillars hold the roof.", world.Coordinate{X: 9}, 0),
	)

	rec := &recorder{}
	fe.LookingForRoomsByEvent(rec, event.New(event.Params{
		Command:  event.CmdLook,
		ServerID: 999,
		Name:     "A dark cave",
		Desc:     "It is dark here.",
	}))

	assert.Equal(t, []world.RoomID{1, 2}, rec.received,
		"with no server id hit, every name+desc match streams in id order")
}

func TestLookingForRoomsByIDAndAt(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
	)

	rec := &recorder{}
	fe.LookingForRoomsByID(rec, 1)
	fe.LookingForRoomsByID(rec, 42)
	fe.LookingForRoomsAt(rec, world.Coordinate{})
	fe.LookingForRoomsAt(rec, world.Coordinate{X: 3})

	assert.Equal(t, []world.RoomID{1, 1}, rec.received,
		"unknown ids and empty cells must stream nothing")
}

func TestCreateRoom(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
	)

	fe.CreateRoom(caveEvent(), world.Coordinate{X: 1})
	created := fe.Snapshot().FindRoomAt(world.Coordinate{X: 1})
	require.True(t, created.IsValid(), "creatable event must seed a room")
	assert.True(t, created.Raw().IsTemporary(), "created rooms start temporary")
	assert.Equal(t, "A dark cave", created.Raw().Fields.Name)

	// Occupied cell: nothing happens.
	before := fe.Snapshot().RoomCount()
	fe.CreateRoom(caveEvent(), world.Coordinate{})
	assert.Equal(t, before, fe.Snapshot().RoomCount(), "occupied cell must not be overwritten")

	// An event with no exits info cannot seed a room.
	thin := event.New(event.Params{Command: event.CmdLook, Name: "x", Desc: "y"})
	fe.CreateRoom(thin, world.Coordinate{X: 2})
	assert.False(t, fe.Snapshot().FindRoomAt(world.Coordinate{X: 2}).IsValid(),
		"an event without valid exits must not seed a room")
}

func TestKeepRoom_PromotesTemporary(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
	)
	fe.CreateRoom(caveEvent(), world.Coordinate{X: 1})
	created := fe.Snapshot().FindRoomAt(world.Coordinate{X: 1})
	require.True(t, created.IsValid())

	rec := &recorder{}
	fe.LookingForRoomsByID(rec, created.ID())
	fe.KeepRoom(rec, created.ID())

	kept := fe.Snapshot().FindRoomHandle(created.ID())
	assert.True(t, kept.Raw().IsPermanent(), "keep must promote a temporary room")
}

func TestReleaseRoom_RemovesUnheldTemporary(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
	)
	fe.CreateRoom(caveEvent(), world.Coordinate{X: 1})
	created := fe.Snapshot().FindRoomAt(world.Coordinate{X: 1})
	require.True(t, created.IsValid())
	id := created.ID()

	first := &recorder{}
	second := &recorder{}
	fe.LookingForRoomsByID(first, id)
	fe.LookingForRoomsByID(second, id)

	fe.ReleaseRoom(first, id)
	assert.True(t, fe.Snapshot().FindRoomHandle(id).IsValid(),
		"a room still on loan elsewhere must survive a release")

	fe.ReleaseRoom(second, id)
	assert.False(t, fe.Snapshot().FindRoomHandle(id).IsValid(),
		"the last release of a temporary room must remove it")

	// Permanent rooms are never removed by release.
	fe.LookingForRoomsByID(first, 1)
	fe.ReleaseRoom(first, 1)
	assert.True(t, fe.Snapshot().FindRoomHandle(1).IsValid(),
		"release must never delete a permanent room")
}

func TestScheduleChange_DropsInvalidChange(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
	)
	before := fe.Snapshot()

	// A two-way self-connection violates map integrity.
	fe.ScheduleChange(world.ModifyExitConnection{
		Op:   world.OpAdd,
		Room: 1,
		Dir:  world.North,
		To:   1,
		Ways: world.TwoWay,
	})

	assert.Equal(t, before.RoomCount(), fe.Snapshot().RoomCount())
	assert.True(t, fe.Drain().IsEmpty(), "a rejected change must not be recorded as applied")
}

func TestDrain_ReturnsAndClearsAppliedChanges(t *testing.T) {
	fe := newFrontend(t,
		testRoom(1, "A dark cave", "It is dark here.", world.Coordinate{}, 0),
	)
	fe.CreateRoom(caveEvent(), world.Coordinate{X: 1})

	first := fe.Drain()
	assert.Equal(t, 1, first.Len(), "the applied change must be drained exactly once")
	assert.True(t, fe.Drain().IsEmpty(), "drain must clear the log")
}
