package compare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mume/mapcore/internal/mapper/compare"
	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/world"
)

// TestCompareStrings_Boundaries verifies the documented edge behavior:
// empty event text is never a mismatch, and whitespace-only changes
// downgrade Equal to Tolerance.
func TestCompareStrings_Boundaries(t *testing.T) {
	assert.Equal(t, compare.Equal, compare.CompareStrings("", "", 0, true),
		"two empty strings must be Equal")
	assert.Equal(t, compare.Equal, compare.CompareStrings("a b", "", 0, true),
		"empty event text means no comparison is attempted")
	assert.Equal(t, compare.Different, compare.CompareStrings("hello world", "hello wrold", 0, true),
		"a letter swap must fail at zero tolerance")
	assert.Equal(t, compare.Tolerance, compare.CompareStrings("hello world", "hello wrold", 100, true),
		"a letter swap must be absorbed by a sufficient budget")
	assert.Equal(t, compare.Tolerance, compare.CompareStrings("a  b", "a b", 0, true),
		"whitespace-only difference is Tolerance, not Equal")
}

// TestCompareStrings_ShorterRoom verifies a stale room is allowed to be
// shorter than the event without being charged for the surplus.
func TestCompareStrings_ShorterRoom(t *testing.T) {
	room := "a winding path"
	ev := "a winding path through the trees"
	assert.Equal(t, compare.Different, compare.CompareStrings(room, ev, 0, true),
		"an up-to-date room is charged for the event surplus")
	got := compare.CompareStrings(room, ev, 0, false)
	assert.NotEqual(t, compare.Different, got,
		"a stale room is not charged for the event surplus")
}

func caveRoom() *world.RawRoom {
	r := &world.RawRoom{ID: 1, Status: world.StatusPermanent}
	r.Fields.Name = "A dark cave"
	r.Fields.Desc = "It is dark here."
	r.Fields.Terrain = world.TerrainCavern
	return r
}

func caveEvent(desc string) *event.ParseEvent {
	return event.New(event.Params{
		Command: event.CmdNorth,
		Name:    "A dark cave",
		Desc:    desc,
		Terrain: world.TerrainCavern,
	})
}

// TestCompare_ExactMatch runs the end-to-end scenario: identical name,
// description and terrain with no server id and no exit flags.
func TestCompare_ExactMatch(t *testing.T) {
	got := compare.Compare(caveRoom(), caveEvent("It is dark here."), 100)
	assert.Equal(t, compare.Equal, got)
}

// TestCompare_TypoTolerance verifies a one-letter swap in the
// description survives at full tolerance.
func TestCompare_TypoTolerance(t *testing.T) {
	got := compare.Compare(caveRoom(), caveEvent("It is drak here."), 100)
	assert.Equal(t, compare.Tolerance, got)
}

// TestCompare_ServerIDShortCircuit verifies differing server ids on
// both sides reject the room no matter how similar the content is.
func TestCompare_ServerIDShortCircuit(t *testing.T) {
	room := caveRoom()
	room.ServerID = 42
	ev := event.New(event.Params{
		Name:     "A dark cave",
		Desc:     "It is dark here.",
		Terrain:  world.TerrainCavern,
		ServerID: 43,
	})
	assert.Equal(t, compare.Different, compare.Compare(room, ev, 100))
}

// TestCompare_ServerIDMatchDowngrades verifies matching server ids
// downgrade a terrain mismatch to Tolerance instead of Different.
func TestCompare_ServerIDMatchDowngrades(t *testing.T) {
	room := caveRoom()
	room.ServerID = 42
	ev := event.New(event.Params{
		Name:     "Somewhere else entirely",
		Desc:     "Nothing matches.",
		Terrain:  world.TerrainField,
		ServerID: 42,
	})
	assert.Equal(t, compare.Tolerance, compare.Compare(room, ev, 0))
}

// TestCompare_MissingServerID verifies a content-equal room that lacks
// the event's server id is only Tolerance: correct but incomplete.
func TestCompare_MissingServerID(t *testing.T) {
	ev := event.New(event.Params{
		Name:     "A dark cave",
		Desc:     "It is dark here.",
		Terrain:  world.TerrainCavern,
		ServerID: 42,
	})
	assert.Equal(t, compare.Tolerance, compare.Compare(caveRoom(), ev, 100))
}

// TestCompareWeakProps_SecretDoor verifies a door seen where the map
// has no exit is tolerated once, and a second difference rejects.
func TestCompareWeakProps_SecretDoor(t *testing.T) {
	room := caveRoom()
	room.Exit(world.South).ExitFlags = world.ExitFlagExit

	exits := event.ExitsFlags(0).
		Set(world.South, world.ExitFlagExit).
		Set(world.North, world.ExitFlagExit|world.ExitFlagDoor).
		WithValid()
	ev := event.New(event.Params{Exits: exits})
	require.Equal(t, compare.Tolerance, compare.CompareWeakProps(room, ev),
		"one secret door must be tolerated")

	exits = exits.Set(world.East, world.ExitFlagExit|world.ExitFlagDoor)
	ev = event.New(event.Params{Exits: exits})
	assert.Equal(t, compare.Different, compare.CompareWeakProps(room, ev),
		"a second difference must reject the room")
}

// TestCompareWeakProps_HiddenDoor verifies a mapped hidden door that
// the event does not show costs nothing.
func TestCompareWeakProps_HiddenDoor(t *testing.T) {
	room := caveRoom()
	e := room.Exit(world.North)
	e.ExitFlags = world.ExitFlagExit | world.ExitFlagDoor
	e.DoorFlags = world.DoorFlagHidden

	exits := event.ExitsFlags(0).Set(world.North, world.ExitFlagExit).WithValid()
	ev := event.New(event.Params{Exits: exits})
	assert.Equal(t, compare.Equal, compare.CompareWeakProps(room, ev))
}

// TestCompareWeakProps_TrollSunlight verifies the prompt lighting
// override for sunlight-safe rooms in troll mode.
func TestCompareWeakProps_TrollSunlight(t *testing.T) {
	room := caveRoom()
	room.Fields.Light = world.LightDark
	room.Fields.Sundeath = world.SundeathNoSundeath

	ev := event.New(event.Params{
		Prompt:    event.PromptFlags(0).WithLit(),
		Connected: event.ConnectedRoomFlags(0).WithValid().WithTrollMode(),
	})
	assert.Equal(t, compare.Tolerance, compare.CompareWeakProps(room, ev))
}

// TestCompareWeakProps_DoorMasksClimb verifies a closed door hides a
// known climb without consuming tolerance.
func TestCompareWeakProps_DoorMasksClimb(t *testing.T) {
	room := caveRoom()
	room.Exit(world.Up).ExitFlags = world.ExitFlagExit | world.ExitFlagDoor | world.ExitFlagClimb

	exits := event.ExitsFlags(0).
		Set(world.Up, world.ExitFlagExit|world.ExitFlagDoor).
		WithValid()
	ev := event.New(event.Params{Exits: exits})
	assert.Equal(t, compare.Equal, compare.CompareWeakProps(room, ev))
}

// drawRoom and drawEvent build arbitrary but structurally sane inputs
// for the property tests.
func drawRoom(rt *rapid.T) *world.RawRoom {
	r := &world.RawRoom{ID: world.RoomID(rapid.Uint32Range(1, 1000).Draw(rt, "id"))}
	r.Fields.Name = rapid.StringMatching(`[a-z A-Z]{0,30}`).Draw(rt, "name")
	r.Fields.Desc = rapid.StringMatching(`[a-z .A-Z]{0,60}`).Draw(rt, "desc")
	r.Fields.Terrain = world.Terrain(rapid.IntRange(0, int(world.NumTerrainTypes)-1).Draw(rt, "terrain"))
	r.ServerID = world.ServerID(rapid.Uint32Range(0, 5).Draw(rt, "serverID"))
	for _, dir := range world.NESWUD {
		r.Exit(dir).ExitFlags = world.ExitFlags(rapid.Uint16Range(0, 0xf).Draw(rt, "exit-"+dir.String()))
	}
	return r
}

func drawEvent(rt *rapid.T) *event.ParseEvent {
	p := event.Params{
		Name:     rapid.StringMatching(`[a-z A-Z]{0,30}`).Draw(rt, "evName"),
		Desc:     rapid.StringMatching(`[a-z .A-Z]{0,60}`).Draw(rt, "evDesc"),
		Terrain:  world.Terrain(rapid.IntRange(0, int(world.NumTerrainTypes)-1).Draw(rt, "evTerrain")),
		ServerID: world.ServerID(rapid.Uint32Range(0, 5).Draw(rt, "evServerID")),
	}
	if rapid.Bool().Draw(rt, "exitsValid") {
		var exits event.ExitsFlags
		for _, dir := range world.NESWUD {
			exits = exits.Set(dir, world.ExitFlags(rapid.Uint16Range(0, 0xf).Draw(rt, "evExit-"+dir.String())))
		}
		p.Exits = exits.WithValid()
	}
	return event.New(p)
}

// TestCompare_ToleranceMonotonicity_Property: raising the tolerance
// budget never turns a non-Different verdict into Different.
func TestCompare_ToleranceMonotonicity_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		room := drawRoom(rt)
		ev := drawEvent(rt)
		t1 := rapid.IntRange(0, 100).Draw(rt, "t1")
		t2 := rapid.IntRange(t1, 200).Draw(rt, "t2")

		r1 := compare.Compare(room, ev, t1)
		r2 := compare.Compare(room, ev, t2)
		if r1 != compare.Different {
			assert.NotEqual(rt, compare.Different, r2,
				"raising tolerance from %d to %d must not reject", t1, t2)
		}
	})
}

// TestCompare_EqualIdempotence_Property: an Equal verdict stays Equal
// at any higher tolerance.
func TestCompare_EqualIdempotence_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		room := drawRoom(rt)
		ev := drawEvent(rt)
		t1 := rapid.IntRange(0, 100).Draw(rt, "t1")
		t2 := rapid.IntRange(t1, 200).Draw(rt, "t2")

		if compare.Compare(room, ev, t1) == compare.Equal {
			assert.Equal(rt, compare.Equal, compare.Compare(room, ev, t2))
		}
	})
}

// TestCompare_EmptyRoomAlwaysTolerance_Property: a user-created room
// with no name, description or terrain is never rejected and never an
// exact match.
func TestCompare_EmptyRoomAlwaysTolerance_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		room := &world.RawRoom{ID: 1}
		ev := drawEvent(rt)
		tol := rapid.IntRange(0, 200).Draw(rt, "tolerance")
		assert.Equal(rt, compare.Tolerance, compare.Compare(room, ev, tol))
	})
}

// TestCompareStrings_Total_Property: CompareStrings always returns one
// of the three verdicts for arbitrary inputs.
func TestCompareStrings_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roomText := rapid.String().Draw(rt, "room")
		evText := rapid.String().Draw(rt, "event")
		tol := rapid.IntRange(-10, 300).Draw(rt, "tolerance")
		upToDate := rapid.Bool().Draw(rt, "upToDate")

		got := compare.CompareStrings(roomText, evText, tol, upToDate)
		assert.Contains(rt, []compare.Result{compare.Different, compare.Tolerance, compare.Equal}, got)
	})
}
