package mapio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mume/mapcore/internal/mapio"
	"github.com/mume/mapcore/internal/mapper/world"
)

const twoRoomYAML = `
map:
  schema_version: 1
  rooms:
    - id: 10
      name: Cave Entrance
      description: A narrow opening in the rock.
      area: Blue Mountains
      position: {x: 0, y: 0, z: 0}
      terrain: cavern
      sundeath: no_sundeath
      exits:
        - direction: east
          exit_flags: [exit, door]
          door_flags: [hidden]
          door_name: boulder
          to: [20]
    - id: 20
      name: Dark Tunnel
      description: The tunnel slopes downward.
      position: {x: 1, y: 0, z: 0}
      terrain: tunnel
      exits:
        - direction: west
          exit_flags: [exit]
          to: [10]
  infomarks:
    - type: text
      class: comment
      text: watch for wargs
      position1: {x: 50, y: 0, z: 0}
`

func TestLoadMapFromBytes_TwoRooms(t *testing.T) {
	m, err := mapio.LoadMapFromBytes([]byte(twoRoomYAML))
	require.NoError(t, err, "well-formed map must load")

	assert.Equal(t, 2, m.RoomCount(), "both rooms must be present")

	entrance := m.FindRoomByExternalID(10)
	require.True(t, entrance.IsValid(), "room 10 must be indexed by external id")
	assert.Equal(t, "Cave Entrance", entrance.Raw().Fields.Name)
	assert.Equal(t, world.TerrainCavern, entrance.Raw().Fields.Terrain)
	assert.Equal(t, world.SundeathNoSundeath, entrance.Raw().Fields.Sundeath)
	assert.True(t, entrance.Raw().IsPermanent(), "loaded rooms are permanent")

	tunnel := m.FindRoomByExternalID(20)
	require.True(t, tunnel.IsValid())

	east := entrance.Raw().Exit(world.East)
	assert.True(t, east.ExitFlags.IsDoor(), "door flag must survive the load")
	assert.True(t, east.DoorFlags.IsHidden(), "hidden door flag must survive the load")
	assert.Equal(t, "boulder", east.DoorName)
	assert.True(t, east.ContainsOut(tunnel.ID()), "outgoing adjacency must be wired")
	assert.True(t, entrance.Raw().HasTwoWayConnection(world.East, tunnel.Raw()),
		"mutual exits must reconstruct a two-way connection")

	found := m.FindRoomAt(world.Coordinate{X: 1, Y: 0, Z: 0})
	assert.Equal(t, tunnel.ID(), found.ID(), "spatial index must cover loaded rooms")
}

func TestLoadMapFromBytes_DerivesIncoming(t *testing.T) {
	// A one-way exit: room 20 has no west exit back, yet its west slot
	// must still record room 10 as an incoming source.
	const oneWay = `
map:
  schema_version: 1
  rooms:
    - id: 10
      name: Ledge
      description: d
      position: {x: 0, y: 0, z: 0}
      exits:
        - direction: east
          to: [20]
    - id: 20
      name: Pit
      description: d
      position: {x: 1, y: 0, z: 0}
`
	m, err := mapio.LoadMapFromBytes([]byte(oneWay))
	require.NoError(t, err)

	pit := m.FindRoomByExternalID(20)
	ledge := m.FindRoomByExternalID(10)
	assert.True(t, pit.Raw().Exit(world.West).ContainsIn(ledge.ID()),
		"reverse adjacency must be derived from the outgoing list")
	assert.False(t, pit.Raw().Exit(world.West).ExitFlags.IsExit(),
		"deriving incoming must not invent an exit")
}

func TestLoadMapFromBytes_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "wrong schema version",
			yaml: "map:\n  schema_version: 99\n",
			want: "schema version",
		},
		{
			name: "duplicate room id",
			yaml: `
map:
  schema_version: 1
  rooms:
    - {id: 1, name: a, description: d, position: {x: 0, y: 0, z: 0}}
    - {id: 1, name: b, description: d, position: {x: 1, y: 0, z: 0}}
`,
			want: "duplicate room id",
		},
		{
			name: "unknown exit target",
			yaml: `
map:
  schema_version: 1
  rooms:
    - id: 1
      name: a
      description: d
      position: {x: 0, y: 0, z: 0}
      exits:
        - {direction: north, to: [99]}
`,
			want: "unknown room",
		},
		{
			name: "unknown terrain",
			yaml: `
map:
  schema_version: 1
  rooms:
    - {id: 1, name: a, description: d, position: {x: 0, y: 0, z: 0}, terrain: lava}
`,
			want: "unknown terrain",
		},
		{
			name: "unknown direction",
			yaml: `
map:
  schema_version: 1
  rooms:
    - id: 1
      name: a
      description: d
      position: {x: 0, y: 0, z: 0}
      exits:
        - {direction: sideways}
`,
			want: "unknown exit direction",
		},
		{
			name: "occupied position",
			yaml: `
map:
  schema_version: 1
  rooms:
    - {id: 1, name: a, description: d, position: {x: 0, y: 0, z: 0}}
    - {id: 2, name: b, description: d, position: {x: 0, y: 0, z: 0}}
`,
			want: "already occupied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapio.LoadMapFromBytes([]byte(tt.yaml))
			require.Error(t, err, "malformed map must be rejected")
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestSaveMap_RoundTrip(t *testing.T) {
	m, err := mapio.LoadMapFromBytes([]byte(twoRoomYAML))
	require.NoError(t, err)

	data, err := mapio.SaveMapToBytes(m)
	require.NoError(t, err, "loaded map must serialise")

	reloaded, err := mapio.LoadMapFromBytes(data)
	require.NoError(t, err, "saved map must load back")

	assert.Equal(t, m.RoomCount(), reloaded.RoomCount())
	orig := m.FindRoomByExternalID(10).Raw()
	back := reloaded.FindRoomByExternalID(10).Raw()
	assert.Equal(t, orig.Fields, back.Fields, "room fields must round-trip")
	assert.Equal(t, orig.Position, back.Position)
	for _, dir := range world.AllExits7 {
		assert.True(t, orig.Exit(dir).Equal(back.Exit(dir)),
			"exit %s must round-trip", dir)
	}

	mark := world.InvalidInfomarkID
	reloaded.ForEachInfomark(func(im *world.RawInfomark) { mark = im.ID })
	require.True(t, mark.Valid(), "infomark must round-trip")
}

func TestSaveMap_Deterministic(t *testing.T) {
	m, err := mapio.LoadMapFromBytes([]byte(twoRoomYAML))
	require.NoError(t, err)

	first, err := mapio.SaveMapToBytes(m)
	require.NoError(t, err)
	second, err := mapio.SaveMapToBytes(m)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "serialisation must be deterministic")
}

func TestSaveMapToFile(t *testing.T) {
	m, err := mapio.LoadMapFromBytes([]byte(twoRoomYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, mapio.SaveMapToFile(path, m))

	reloaded, err := mapio.LoadMapFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.RoomCount(), reloaded.RoomCount())
}
