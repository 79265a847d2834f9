package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mume/mapcore/internal/mapper/world"
	"github.com/mume/mapcore/internal/storage/postgres"
	"github.com/mume/mapcore/internal/testutil"
)

// caveMap builds a three-room test map: entrance east to tunnel, with
// a hidden door, and a one-way drop from tunnel down to pit.
func caveMap(t *testing.T) world.Map {
	t.Helper()

	entrance := &world.RawRoom{
		ID:         0,
		ExternalID: 10,
		ServerID:   501,
		Position:   world.Coordinate{X: 0, Y: 0, Z: 0},
		Status:     world.StatusPermanent,
	}
	entrance.Fields.Name = "Cave Entrance"
	entrance.Fields.Desc = "A narrow opening in the rock."
	entrance.Fields.Terrain = world.TerrainCavern
	entrance.Fields.Sundeath = world.SundeathNoSundeath

	tunnel := &world.RawRoom{
		ID:         1,
		ExternalID: 20,
		Position:   world.Coordinate{X: 1, Y: 0, Z: 0},
		Status:     world.StatusPermanent,
	}
	tunnel.Fields.Name = "Dark Tunnel"
	tunnel.Fields.Desc = "The tunnel slopes downward."
	tunnel.Fields.Terrain = world.TerrainTunnel

	pit := &world.RawRoom{
		ID:         2,
		ExternalID: 30,
		Position:   world.Coordinate{X: 1, Y: 0, Z: -1},
		Status:     world.StatusPermanent,
	}
	pit.Fields.Name = "Pit"
	pit.Fields.Desc = "Jagged rocks line the floor."

	east := entrance.Exit(world.East)
	east.ExitFlags = world.ExitFlagExit | world.ExitFlagDoor
	east.DoorFlags = world.DoorFlagHidden
	east.DoorName = "boulder"
	east.Outgoing = world.NewRoomIDSet(tunnel.ID)
	east.Incoming = world.NewRoomIDSet(tunnel.ID)

	west := tunnel.Exit(world.West)
	west.ExitFlags = world.ExitFlagExit
	west.Outgoing = world.NewRoomIDSet(entrance.ID)
	west.Incoming = world.NewRoomIDSet(entrance.ID)

	down := tunnel.Exit(world.Down)
	down.ExitFlags = world.ExitFlagExit | world.ExitFlagFall
	down.Outgoing = world.NewRoomIDSet(pit.ID)
	pit.Exit(world.Up).Incoming = world.NewRoomIDSet(tunnel.ID)

	marks := []*world.RawInfomark{{
		ID:        0,
		Type:      world.InfomarkText,
		Class:     world.InfomarkComment,
		Text:      "watch for wargs",
		Position1: world.Coordinate{X: 50, Y: 0, Z: 0},
	}}

	w, err := world.WorldFromRooms([]*world.RawRoom{entrance, tunnel, pit}, marks)
	require.NoError(t, err, "test map must be consistent")
	return world.MapFromWorld(w)
}

func TestMapRepository_SaveAndLoadSnapshot(t *testing.T) {
	repo := postgres.NewMapRepository(testutil.NewPool(t))
	ctx := context.Background()

	saved := caveMap(t)
	id, err := repo.SaveSnapshot(ctx, "caves", saved)
	require.NoError(t, err, "consistent map must save")
	require.NotEqual(t, uuid.Nil, id)

	loaded, err := repo.LoadSnapshot(ctx, id)
	require.NoError(t, err, "saved snapshot must load back")
	assert.Equal(t, saved.RoomCount(), loaded.RoomCount())

	entrance := loaded.FindRoomByExternalID(10)
	require.True(t, entrance.IsValid(), "external id index must survive the round trip")
	assert.Equal(t, "Cave Entrance", entrance.Raw().Fields.Name)
	assert.Equal(t, world.TerrainCavern, entrance.Raw().Fields.Terrain)
	assert.Equal(t, world.SundeathNoSundeath, entrance.Raw().Fields.Sundeath)

	byServer := loaded.FindRoomByServerID(501)
	assert.Equal(t, entrance.ID(), byServer.ID(), "server id index must survive the round trip")

	tunnel := loaded.FindRoomByExternalID(20)
	east := entrance.Raw().Exit(world.East)
	assert.Equal(t, "boulder", east.DoorName)
	assert.True(t, east.DoorFlags.IsHidden())
	assert.True(t, entrance.Raw().HasTwoWayConnection(world.East, tunnel.Raw()),
		"two-way connection must survive the round trip")

	pit := loaded.FindRoomByExternalID(30)
	assert.True(t, tunnel.Raw().Exit(world.Down).ContainsOut(pit.ID()),
		"one-way exit must survive the round trip")
	assert.True(t, pit.Raw().Exit(world.Up).ContainsIn(tunnel.ID()),
		"reverse adjacency of a one-way exit must be rederived")
	assert.False(t, pit.Raw().Exit(world.Up).ExitFlags.IsExit(),
		"loading must not invent a return exit")

	found := 0
	loaded.ForEachInfomark(func(mark *world.RawInfomark) {
		found++
		assert.Equal(t, "watch for wargs", mark.Text)
		assert.Equal(t, world.InfomarkComment, mark.Class)
	})
	assert.Equal(t, 1, found, "infomark must survive the round trip")
}

func TestMapRepository_LoadMissingSnapshot(t *testing.T) {
	repo := postgres.NewMapRepository(testutil.NewPool(t))

	_, err := repo.LoadSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrSnapshotNotFound)
}

func TestMapRepository_ListAndDelete(t *testing.T) {
	repo := postgres.NewMapRepository(testutil.NewPool(t))
	ctx := context.Background()

	m := caveMap(t)
	first, err := repo.SaveSnapshot(ctx, "first", m)
	require.NoError(t, err)
	second, err := repo.SaveSnapshot(ctx, "second", m)
	require.NoError(t, err)

	snaps, err := repo.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, m.RoomCount(), snaps[0].RoomCount)
	assert.False(t, snaps[0].CreatedAt.IsZero())

	require.NoError(t, repo.DeleteSnapshot(ctx, first))
	snaps, err = repo.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, second, snaps[0].ID)

	assert.ErrorIs(t, repo.DeleteSnapshot(ctx, first), postgres.ErrSnapshotNotFound,
		"double delete must report the missing snapshot")
}
