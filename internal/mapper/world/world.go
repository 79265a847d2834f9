package world

import "fmt"

// Bounds is the axis-aligned bounding box of all room positions.
type Bounds struct {
	Min Coordinate
	Max Coordinate
}

// contains reports whether c lies inside the box.
func (b Bounds) contains(c Coordinate) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

func (b Bounds) grow(c Coordinate) Bounds {
	if c.X < b.Min.X {
		b.Min.X = c.X
	}
	if c.Y < b.Min.Y {
		b.Min.Y = c.Y
	}
	if c.Z < b.Min.Z {
		b.Min.Z = c.Z
	}
	if c.X > b.Max.X {
		b.Max.X = c.X
	}
	if c.Y > b.Max.Y {
		b.Max.Y = c.Y
	}
	if c.Z > b.Max.Z {
		b.Max.Z = c.Z
	}
	return b
}

// World is an immutable snapshot of the entire map: every room record
// plus the derived lookup indexes. Mutation never happens in place;
// Map.Apply clones the affected parts into a fresh snapshot, sharing
// every untouched room record with its predecessor.
type World struct {
	rooms      map[RoomID]*RawRoom
	byServer   map[ServerID]RoomID
	byCoord    map[Coordinate]RoomID
	byExternal map[ExternalRoomID]RoomID
	byNameDesc map[string]RoomIDSet
	infomarks  map[InfomarkID]*RawInfomark

	nextRoomID     RoomID
	nextExternalID ExternalRoomID
	nextInfomarkID InfomarkID
	bounds         Bounds
	hasBounds      bool
}

// nameDescKey is the identity index key used by event-driven lookups.
func nameDescKey(name, desc string) string { return name + "\x00" + desc }

// NewWorld returns an empty snapshot.
func NewWorld() *World {
	return &World{
		rooms:      map[RoomID]*RawRoom{},
		byServer:   map[ServerID]RoomID{},
		byCoord:    map[Coordinate]RoomID{},
		byExternal: map[ExternalRoomID]RoomID{},
		byNameDesc: map[string]RoomIDSet{},
		infomarks:  map[InfomarkID]*RawInfomark{},
	}
}

// WorldFromRooms builds a snapshot from pre-assembled room records.
//
// Precondition: rooms must have distinct ids; exit adjacency sets must
// reference rooms present in the slice.
// Postcondition: Returns a fully indexed snapshot or an error naming
// the first violation.
func WorldFromRooms(rooms []*RawRoom, infomarks []*RawInfomark) (*World, error) {
	w := NewWorld()
	for _, r := range rooms {
		if !r.ID.Valid() {
			return nil, fmt.Errorf("room with invalid id")
		}
		if _, dup := w.rooms[r.ID]; dup {
			return nil, fmt.Errorf("duplicate room id %d", r.ID)
		}
		w.indexRoom(r)
	}
	for _, r := range rooms {
		for _, dir := range AllExits7 {
			e := r.Exit(dir)
			for _, to := range e.Outgoing.Sorted() {
				if _, ok := w.rooms[to]; !ok {
					return nil, fmt.Errorf("room %d: exit %s targets unknown room %d", r.ID, dir, to)
				}
			}
			for _, from := range e.Incoming.Sorted() {
				if _, ok := w.rooms[from]; !ok {
					return nil, fmt.Errorf("room %d: exit %s claims unknown source %d", r.ID, dir, from)
				}
			}
		}
	}
	for _, m := range infomarks {
		if _, dup := w.infomarks[m.ID]; dup {
			return nil, fmt.Errorf("duplicate infomark id %d", m.ID)
		}
		w.infomarks[m.ID] = m
		if m.ID.Valid() && m.ID >= w.nextInfomarkID {
			w.nextInfomarkID = m.ID + 1
		}
	}
	return w, nil
}

// indexRoom inserts r into every index and advances the id cursors.
// Only for use while the snapshot is still private to its builder.
func (w *World) indexRoom(r *RawRoom) {
	w.rooms[r.ID] = r
	if r.ServerID.Valid() {
		w.byServer[r.ServerID] = r.ID
	}
	w.byCoord[r.Position] = r.ID
	if r.ExternalID.Valid() {
		w.byExternal[r.ExternalID] = r.ID
	}
	key := nameDescKey(r.Fields.Name, r.Fields.Desc)
	set, ok := w.byNameDesc[key]
	if !ok {
		set = NewRoomIDSet()
		w.byNameDesc[key] = set
	}
	set[r.ID] = struct{}{}
	if r.ID >= w.nextRoomID && r.ID.Valid() {
		w.nextRoomID = r.ID + 1
	}
	if r.ExternalID.Valid() && r.ExternalID >= w.nextExternalID {
		w.nextExternalID = r.ExternalID + 1
	}
	if !w.hasBounds {
		w.bounds = Bounds{Min: r.Position, Max: r.Position}
		w.hasBounds = true
	} else {
		w.bounds = w.bounds.grow(r.Position)
	}
}

// unindexRoom removes r from every index. Bounds are left as-is; they
// only ever grow within a snapshot's lifetime.
func (w *World) unindexRoom(r *RawRoom) {
	delete(w.rooms, r.ID)
	if r.ServerID.Valid() && w.byServer[r.ServerID] == r.ID {
		delete(w.byServer, r.ServerID)
	}
	if w.byCoord[r.Position] == r.ID {
		delete(w.byCoord, r.Position)
	}
	if r.ExternalID.Valid() {
		delete(w.byExternal, r.ExternalID)
	}
	key := nameDescKey(r.Fields.Name, r.Fields.Desc)
	if set, ok := w.byNameDesc[key]; ok {
		delete(set, r.ID)
		if set.IsEmpty() {
			delete(w.byNameDesc, key)
		}
	}
}

// RoomCount returns the number of rooms in the snapshot.
func (w *World) RoomCount() int { return len(w.rooms) }

// InfomarkCount returns the number of annotations in the snapshot.
func (w *World) InfomarkCount() int { return len(w.infomarks) }

// Bounds returns the bounding box of all room positions.
func (w *World) Bounds() Bounds { return w.bounds }

// room returns the record for id, or nil.
func (w *World) room(id RoomID) *RawRoom { return w.rooms[id] }

// copyForWrite returns a shallow clone whose maps can be mutated
// without disturbing the receiver. Room records are still shared; a
// change must Clone a room before touching it.
func (w *World) copyForWrite() *World {
	c := &World{
		rooms:          make(map[RoomID]*RawRoom, len(w.rooms)),
		byServer:       make(map[ServerID]RoomID, len(w.byServer)),
		byCoord:        make(map[Coordinate]RoomID, len(w.byCoord)),
		byExternal:     make(map[ExternalRoomID]RoomID, len(w.byExternal)),
		byNameDesc:     make(map[string]RoomIDSet, len(w.byNameDesc)),
		infomarks:      make(map[InfomarkID]*RawInfomark, len(w.infomarks)),
		nextRoomID:     w.nextRoomID,
		nextExternalID: w.nextExternalID,
		nextInfomarkID: w.nextInfomarkID,
		bounds:         w.bounds,
		hasBounds:      w.hasBounds,
	}
	for id, r := range w.rooms {
		c.rooms[id] = r
	}
	for sid, id := range w.byServer {
		c.byServer[sid] = id
	}
	for pos, id := range w.byCoord {
		c.byCoord[pos] = id
	}
	for xid, id := range w.byExternal {
		c.byExternal[xid] = id
	}
	for key, set := range w.byNameDesc {
		c.byNameDesc[key] = set.Clone()
	}
	for id, m := range w.infomarks {
		c.infomarks[id] = m
	}
	return c
}
