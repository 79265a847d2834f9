package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mume/mapcore/internal/mapper/world"
)

// ErrSnapshotNotFound is returned when a snapshot lookup yields no rows.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot describes one stored map snapshot.
type Snapshot struct {
	ID        uuid.UUID
	Name      string
	RoomCount int
	CreatedAt time.Time
}

// MapRepository persists immutable map snapshots. Rooms, exits, and
// infomarks are stored as rows keyed by the snapshot id; reverse
// adjacency is derived on load, mirroring the file format.
type MapRepository struct {
	db *pgxpool.Pool
}

// NewMapRepository creates a MapRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMapRepository(db *pgxpool.Pool) *MapRepository {
	return &MapRepository{db: db}
}

// SaveSnapshot stores the full snapshot under a fresh uuid.
//
// Precondition: m must be valid and every room must carry an external id.
// Postcondition: Returns the id of the stored snapshot; the write is
// atomic.
func (r *MapRepository) SaveSnapshot(ctx context.Context, name string, m world.Map) (uuid.UUID, error) {
	if !m.IsValid() {
		return uuid.Nil, fmt.Errorf("invalid map")
	}

	id := uuid.New()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO map_snapshots (id, name, room_count) VALUES ($1, $2, $3)`,
		id, name, m.RoomCount(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting snapshot row: %w", err)
	}

	batch := &pgx.Batch{}
	var batchErr error
	m.ForEachRoom(func(room *world.RawRoom) {
		if !room.ExternalID.Valid() {
			batchErr = fmt.Errorf("room %d has no external id", room.ID)
			return
		}
		batch.Queue(
			`INSERT INTO map_rooms
			   (snapshot_id, external_id, server_id, name, description,
			    contents, note, area, pos_x, pos_y, pos_z, terrain, align,
			    light, portable, ridable, sundeath, mob_flags, load_flags)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			         $13, $14, $15, $16, $17, $18, $19)`,
			id, int64(room.ExternalID), int64(room.ServerID),
			room.Fields.Name, room.Fields.Desc, room.Fields.Contents,
			room.Fields.Note, room.Fields.Area,
			room.Position.X, room.Position.Y, room.Position.Z,
			int16(room.Fields.Terrain), int16(room.Fields.Align),
			int16(room.Fields.Light), int16(room.Fields.Portable),
			int16(room.Fields.Ridable), int16(room.Fields.Sundeath),
			int64(room.Fields.MobFlags), int64(room.Fields.LoadFlags),
		)
		for _, dir := range world.AllExits7 {
			e := room.Exit(dir)
			if e.DoorName == "" && e.DoorFlags.IsEmpty() && e.ExitFlags.IsEmpty() && e.Outgoing.IsEmpty() {
				continue
			}
			targets := make([]int64, 0, e.Outgoing.Len())
			for _, to := range e.Outgoing.Sorted() {
				ext, ok := externalOf(m, to)
				if !ok {
					batchErr = fmt.Errorf("room %d: exit %s targets room %d with no external id",
						room.ID, dir, to)
					return
				}
				targets = append(targets, int64(ext))
			}
			batch.Queue(
				`INSERT INTO map_exits
				   (snapshot_id, room_external_id, direction, door_name,
				    door_flags, exit_flags, to_external_ids)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id, int64(room.ExternalID), int16(dir), e.DoorName,
				int32(e.DoorFlags), int32(e.ExitFlags), targets,
			)
		}
	})
	if batchErr != nil {
		return uuid.Nil, batchErr
	}

	m.ForEachInfomark(func(mark *world.RawInfomark) {
		batch.Queue(
			`INSERT INTO map_infomarks
			   (snapshot_id, mark_id, mark_type, mark_class, text,
			    pos1_x, pos1_y, pos1_z, pos2_x, pos2_y, pos2_z, rotation_angle)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			id, int64(mark.ID), int16(mark.Type), int16(mark.Class), mark.Text,
			mark.Position1.X, mark.Position1.Y, mark.Position1.Z,
			mark.Position2.X, mark.Position2.Y, mark.Position2.Z,
			mark.RotationAngle,
		)
	})

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return uuid.Nil, fmt.Errorf("inserting snapshot contents: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing snapshot: %w", err)
	}
	return id, nil
}

func externalOf(m world.Map, id world.RoomID) (world.ExternalRoomID, bool) {
	h := m.FindRoomHandle(id)
	if !h.IsValid() || !h.Raw().ExternalID.Valid() {
		return world.InvalidExternalRoomID, false
	}
	return h.Raw().ExternalID, true
}

// LoadSnapshot rebuilds the snapshot stored under id.
//
// Postcondition: Returns an indexed map equivalent to the one saved,
// or ErrSnapshotNotFound.
func (r *MapRepository) LoadSnapshot(ctx context.Context, id uuid.UUID) (world.Map, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM map_snapshots WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return world.Map{}, fmt.Errorf("checking snapshot: %w", err)
	}
	if !exists {
		return world.Map{}, ErrSnapshotNotFound
	}

	rooms, idByExternal, err := r.loadRooms(ctx, id)
	if err != nil {
		return world.Map{}, err
	}
	if err := r.loadExits(ctx, id, rooms, idByExternal); err != nil {
		return world.Map{}, err
	}
	marks, err := r.loadInfomarks(ctx, id)
	if err != nil {
		return world.Map{}, err
	}

	ordered := make([]*world.RawRoom, 0, len(rooms))
	for i := 0; i < len(rooms); i++ {
		ordered = append(ordered, rooms[world.RoomID(i)])
	}
	w, err := world.WorldFromRooms(ordered, marks)
	if err != nil {
		return world.Map{}, fmt.Errorf("rebuilding snapshot %s: %w", id, err)
	}
	return world.MapFromWorld(w), nil
}

func (r *MapRepository) loadRooms(ctx context.Context, id uuid.UUID) (map[world.RoomID]*world.RawRoom, map[world.ExternalRoomID]world.RoomID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT external_id, server_id, name, description, contents, note,
		        area, pos_x, pos_y, pos_z, terrain, align, light, portable,
		        ridable, sundeath, mob_flags, load_flags
		   FROM map_rooms
		  WHERE snapshot_id = $1
		  ORDER BY external_id`,
		id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	byID := make(map[world.RoomID]*world.RawRoom)
	idByExternal := make(map[world.ExternalRoomID]world.RoomID)
	next := world.RoomID(0)
	for rows.Next() {
		var ext, server, mobFlags, loadFlags int64
		var terrain, align, light, portable, ridable, sundeath int16
		var room world.RawRoom
		err := rows.Scan(&ext, &server, &room.Fields.Name, &room.Fields.Desc,
			&room.Fields.Contents, &room.Fields.Note, &room.Fields.Area,
			&room.Position.X, &room.Position.Y, &room.Position.Z,
			&terrain, &align, &light, &portable, &ridable, &sundeath,
			&mobFlags, &loadFlags)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning room: %w", err)
		}
		room.ID = next
		room.ExternalID = world.ExternalRoomID(ext)
		room.ServerID = world.ServerID(server)
		room.Status = world.StatusPermanent
		room.Fields.Terrain = world.Terrain(terrain)
		room.Fields.Align = world.Align(align)
		room.Fields.Light = world.Light(light)
		room.Fields.Portable = world.Portable(portable)
		room.Fields.Ridable = world.Ridable(ridable)
		room.Fields.Sundeath = world.Sundeath(sundeath)
		room.Fields.MobFlags = world.MobFlags(mobFlags)
		room.Fields.LoadFlags = world.LoadFlags(loadFlags)

		clone := room
		byID[clone.ID] = &clone
		idByExternal[clone.ExternalID] = clone.ID
		next++
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return byID, idByExternal, nil
}

func (r *MapRepository) loadExits(ctx context.Context, id uuid.UUID, rooms map[world.RoomID]*world.RawRoom, idByExternal map[world.ExternalRoomID]world.RoomID) error {
	rows, err := r.db.Query(ctx,
		`SELECT room_external_id, direction, door_name, door_flags,
		        exit_flags, to_external_ids
		   FROM map_exits
		  WHERE snapshot_id = $1
		  ORDER BY room_external_id, direction`,
		id,
	)
	if err != nil {
		return fmt.Errorf("querying exits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ext int64
		var dir int16
		var doorName string
		var doorFlags, exitFlags int32
		var targets []int64
		if err := rows.Scan(&ext, &dir, &doorName, &doorFlags, &exitFlags, &targets); err != nil {
			return fmt.Errorf("scanning exit: %w", err)
		}
		roomID, ok := idByExternal[world.ExternalRoomID(ext)]
		if !ok {
			return fmt.Errorf("exit references unknown room %d", ext)
		}
		room := rooms[roomID]
		direction := world.Direction(dir)
		if int(direction) >= world.NumExits {
			return fmt.Errorf("room %d: invalid exit direction %d", ext, dir)
		}

		e := room.Exit(direction)
		e.DoorName = doorName
		e.DoorFlags = world.DoorFlags(doorFlags)
		e.ExitFlags = world.ExitFlags(exitFlags)
		for _, to := range targets {
			targetID, ok := idByExternal[world.ExternalRoomID(to)]
			if !ok {
				return fmt.Errorf("room %d: exit %s targets unknown room %d", ext, direction, to)
			}
			if e.Outgoing == nil {
				e.Outgoing = world.NewRoomIDSet()
			}
			e.Outgoing[targetID] = struct{}{}
			back := rooms[targetID].Exit(direction.Opposite())
			if back.Incoming == nil {
				back.Incoming = world.NewRoomIDSet()
			}
			back.Incoming[roomID] = struct{}{}
		}
	}
	return rows.Err()
}

func (r *MapRepository) loadInfomarks(ctx context.Context, id uuid.UUID) ([]*world.RawInfomark, error) {
	rows, err := r.db.Query(ctx,
		`SELECT mark_id, mark_type, mark_class, text,
		        pos1_x, pos1_y, pos1_z, pos2_x, pos2_y, pos2_z, rotation_angle
		   FROM map_infomarks
		  WHERE snapshot_id = $1
		  ORDER BY mark_id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying infomarks: %w", err)
	}
	defer rows.Close()

	var marks []*world.RawInfomark
	for rows.Next() {
		var markID int64
		var typ, class int16
		var mark world.RawInfomark
		err := rows.Scan(&markID, &typ, &class, &mark.Text,
			&mark.Position1.X, &mark.Position1.Y, &mark.Position1.Z,
			&mark.Position2.X, &mark.Position2.Y, &mark.Position2.Z,
			&mark.RotationAngle)
		if err != nil {
			return nil, fmt.Errorf("scanning infomark: %w", err)
		}
		mark.ID = world.InfomarkID(markID)
		mark.Type = world.InfomarkType(typ)
		mark.Class = world.InfomarkClass(class)
		clone := mark
		marks = append(marks, &clone)
	}
	return marks, rows.Err()
}

// ListSnapshots returns all stored snapshots, newest first.
func (r *MapRepository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, room_count, created_at
		   FROM map_snapshots
		  ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Name, &s.RoomCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// DeleteSnapshot removes a snapshot and all its rows.
//
// Postcondition: Returns ErrSnapshotNotFound if no snapshot had the id.
func (r *MapRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM map_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
