package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mume/mapcore/internal/mapper/world"
)

func room(id world.RoomID, name string, pos world.Coordinate) *world.RawRoom {
	r := &world.RawRoom{ID: id, Position: pos, Status: world.StatusPermanent}
	r.Fields.Name = name
	r.Fields.Desc = name + " desc"
	return r
}

func mapOf(t *testing.T, rooms ...*world.RawRoom) world.Map {
	t.Helper()
	w, err := world.WorldFromRooms(rooms, nil)
	require.NoError(t, err)
	return world.MapFromWorld(w)
}

func apply(t *testing.T, m world.Map, changes ...world.Change) world.Map {
	t.Helper()
	var list world.ChangeList
	for _, c := range changes {
		list.Add(c)
	}
	res, err := m.Apply(nil, list)
	require.NoError(t, err)
	return res.Map
}

// TestApply_CopyOnWrite: applying changes yields a new snapshot and
// leaves the original untouched.
func TestApply_CopyOnWrite(t *testing.T) {
	before := mapOf(t, room(1, "Origin", world.Coordinate{}))
	after := apply(t, before, world.ModifyRoomField{
		Room:  1,
		Field: world.FieldName{Value: "Renamed"},
		Mode:  world.FlagAssign,
	})

	assert.Equal(t, "Origin", before.FindRoomHandle(1).Raw().Fields.Name,
		"the old snapshot must not change")
	assert.Equal(t, "Renamed", after.FindRoomHandle(1).Raw().Fields.Name)
}

// TestApply_AddRoomOccupied: adding a room onto an occupied cell is an
// integrity violation, not a silent overwrite.
func TestApply_AddRoomOccupied(t *testing.T) {
	m := mapOf(t, room(1, "Origin", world.Coordinate{}))
	var list world.ChangeList
	list.Add(world.AddRoomFromEvent{Position: world.Coordinate{}, Status: world.StatusTemporary})
	_, err := m.Apply(nil, list)
	assert.Error(t, err)
}

// TestApply_ConnectTwoWay: a two-way connection maintains all four
// adjacency sets.
func TestApply_ConnectTwoWay(t *testing.T) {
	m := mapOf(t,
		room(1, "West side", world.Coordinate{}),
		room(2, "East side", world.Coordinate{X: 1}),
	)
	m = apply(t, m, world.ModifyExitConnection{
		Op: world.OpAdd, Room: 1, Dir: world.East, To: 2, Ways: world.TwoWay,
	})

	r1 := m.FindRoomHandle(1).Raw()
	r2 := m.FindRoomHandle(2).Raw()
	assert.True(t, r1.Exit(world.East).ContainsOut(2))
	assert.True(t, r1.Exit(world.East).ExitFlags.IsExit())
	assert.True(t, r2.Exit(world.West).ContainsOut(1))
	assert.True(t, r2.Exit(world.West).ContainsIn(1))
	assert.True(t, r1.Exit(world.East).ContainsIn(2))
	assert.True(t, r1.HasTwoWayConnection(world.East, r2))
}

// TestApply_RemoveRoomScrubsAdjacency: removing a room deletes every
// reference to it from its neighbors.
func TestApply_RemoveRoomScrubsAdjacency(t *testing.T) {
	m := mapOf(t,
		room(1, "West side", world.Coordinate{}),
		room(2, "East side", world.Coordinate{X: 1}),
	)
	m = apply(t, m, world.ModifyExitConnection{
		Op: world.OpAdd, Room: 1, Dir: world.East, To: 2, Ways: world.TwoWay,
	})
	m = apply(t, m, world.RemoveRoom{Room: 2})

	assert.False(t, m.FindRoomHandle(2).IsValid())
	r1 := m.FindRoomHandle(1).Raw()
	assert.False(t, r1.Exit(world.East).ContainsOut(2))
	assert.False(t, r1.Exit(world.East).ContainsIn(2))
}

// TestApply_MoveCollision: moving onto an occupied cell fails unless
// the occupant moves too.
func TestApply_MoveCollision(t *testing.T) {
	m := mapOf(t,
		room(1, "Mover", world.Coordinate{}),
		room(2, "Blocker", world.Coordinate{X: 1}),
	)
	var list world.ChangeList
	list.Add(world.MoveRelative{Room: 1, Offset: world.Coordinate{X: 1}})
	_, err := m.Apply(nil, list)
	require.Error(t, err)

	moved := apply(t, m, world.MoveRoomsRelative{
		Rooms:  world.NewRoomIDSet(1, 2),
		Offset: world.Coordinate{X: 1},
	})
	assert.Equal(t, world.Coordinate{X: 1}, moved.FindRoomHandle(1).Position())
	assert.Equal(t, world.Coordinate{X: 2}, moved.FindRoomHandle(2).Position())
}

// TestApply_MergeRelative: merging fills the occupant's empty fields
// and rewires the source's connections onto it.
func TestApply_MergeRelative(t *testing.T) {
	src := room(1, "Doomed", world.Coordinate{})
	src.Fields.Note = "important note"
	dst := room(2, "Survivor", world.Coordinate{X: 1})
	dst.Fields.Desc = ""
	other := room(3, "Neighbor", world.Coordinate{Y: 1})
	m := mapOf(t, src, dst, other)
	m = apply(t, m, world.ModifyExitConnection{
		Op: world.OpAdd, Room: 3, Dir: world.North, To: 1, Ways: world.TwoWay,
	})

	m = apply(t, m, world.MergeRelative{Room: 1, Offset: world.Coordinate{X: 1}})

	assert.False(t, m.FindRoomHandle(1).IsValid(), "the source must be gone")
	got := m.FindRoomHandle(2).Raw()
	assert.Equal(t, "Survivor", got.Fields.Name, "occupant fields win")
	assert.Equal(t, "Doomed desc", got.Fields.Desc, "empty occupant fields are filled")
	assert.Equal(t, "important note", got.Fields.Note)
	assert.True(t, m.FindRoomHandle(3).Raw().Exit(world.North).ContainsOut(2),
		"the neighbor's exit must follow the merge")
}

// TestApply_CompactRoomIDs renumbers external ids densely.
func TestApply_CompactRoomIDs(t *testing.T) {
	a := room(1, "First", world.Coordinate{})
	a.ExternalID = 17
	b := room(2, "Second", world.Coordinate{X: 1})
	b.ExternalID = 5
	m := mapOf(t, a, b)

	m = apply(t, m, world.CompactRoomIDs{FirstID: 1})

	assert.Equal(t, world.ExternalRoomID(2), m.FindRoomHandle(1).Raw().ExternalID,
		"higher old external id compacts second")
	assert.Equal(t, world.ExternalRoomID(1), m.FindRoomHandle(2).Raw().ExternalID)
	assert.Equal(t, world.RoomID(2), m.FindRoomByExternalID(1).ID())
}

// TestApply_UpdateMergeAndForce: merge only fills from carried fields
// and ORs exit flags; force overwrites.
func TestApply_UpdateMergeAndForce(t *testing.T) {
	r := room(1, "Old name", world.Coordinate{})
	r.Status = world.StatusTemporary
	r.Exit(world.North).ExitFlags = world.ExitFlagExit | world.ExitFlagDoor
	m := mapOf(t, r)

	content := world.RoomContent{
		Name:       "New name",
		Terrain:    world.TerrainCity,
		ExitsValid: true,
	}
	content.Exits[world.North] = world.ExitFlagExit

	merged := apply(t, m, world.UpdateRoomFromEvent{Room: 1, Content: content, Mode: world.UpdateMerge})
	got := merged.FindRoomHandle(1).Raw()
	assert.Equal(t, "New name", got.Fields.Name)
	assert.Equal(t, "Old name desc", got.Fields.Desc, "merge keeps fields the event lacks")
	assert.True(t, got.Exit(world.North).ExitFlags.IsDoor(), "merge ORs exit flags")
	assert.True(t, got.IsPermanent(), "a synced room becomes permanent")

	forced := apply(t, m, world.UpdateRoomFromEvent{Room: 1, Content: content, Mode: world.UpdateForce})
	got = forced.FindRoomHandle(1).Raw()
	assert.Empty(t, got.Fields.Desc, "force overwrites with event content")
	assert.False(t, got.Exit(world.North).ExitFlags.IsDoor(), "force assigns exit flags")
}

// TestApply_ServerIDConflict: two rooms cannot share a server id.
func TestApply_ServerIDConflict(t *testing.T) {
	a := room(1, "First", world.Coordinate{})
	a.ServerID = 7
	m := mapOf(t, a, room(2, "Second", world.Coordinate{X: 1}))

	var list world.ChangeList
	list.Add(world.SetServerID{Room: 2, ServerID: 7})
	_, err := m.Apply(nil, list)
	assert.Error(t, err)
}

// TestApply_Infomarks covers the annotation lifecycle.
func TestApply_Infomarks(t *testing.T) {
	m := mapOf(t, room(1, "Origin", world.Coordinate{}))
	m = apply(t, m, world.AddInfomark{Fields: world.RawInfomark{
		Type: world.InfomarkText,
		Text: "danger",
	}})
	require.Equal(t, 1, m.InfomarkCount())

	var id world.InfomarkID
	m.ForEachInfomark(func(mark *world.RawInfomark) { id = mark.ID })

	m = apply(t, m, world.UpdateInfomark{ID: id, Fields: world.RawInfomark{
		Type: world.InfomarkText,
		Text: "safe now",
	}})
	m = apply(t, m, world.RemoveInfomark{ID: id})
	assert.Zero(t, m.InfomarkCount())
}

// TestApply_NeverMutatesSource_Property: arbitrary successful change
// sequences leave the original snapshot byte-identical.
func TestApply_NeverMutatesSource_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := mapOf(t,
			room(1, "Origin", world.Coordinate{}),
			room(2, "East", world.Coordinate{X: 1}),
		)
		wantName := base.FindRoomHandle(1).Raw().Fields.Name
		wantCount := base.RoomCount()

		m := base
		n := rapid.IntRange(1, 8).Draw(rt, "ops")
		for i := 0; i < n; i++ {
			var list world.ChangeList
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				list.Add(world.ModifyRoomField{
					Room:  1,
					Field: world.FieldName{Value: rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "name")},
					Mode:  world.FlagAssign,
				})
			case 1:
				list.Add(world.ModifyExitConnection{
					Op: world.OpAdd, Room: 1, Dir: world.East, To: 2, Ways: world.TwoWay,
				})
			case 2:
				list.Add(world.AddRoomFromEvent{
					Position: world.Coordinate{X: rapid.IntRange(2, 20).Draw(rt, "x")},
					Status:   world.StatusTemporary,
				})
			}
			if res, err := m.Apply(nil, list); err == nil {
				m = res.Map
			}
		}

		assert.Equal(rt, wantName, base.FindRoomHandle(1).Raw().Fields.Name)
		assert.Equal(rt, wantCount, base.RoomCount())
	})
}
