package world

// Map is a cheap value handle onto an immutable World snapshot. Copying
// a Map copies a pointer; holding an old Map keeps its snapshot alive
// and valid indefinitely.
type Map struct {
	world *World
}

// EmptyMap returns a map over a fresh empty snapshot.
func EmptyMap() Map { return Map{world: NewWorld()} }

// MapFromWorld wraps an already-built snapshot.
//
// Precondition: w must not be mutated after this call.
func MapFromWorld(w *World) Map { return Map{world: w} }

// IsValid reports whether the map wraps a snapshot at all.
func (m Map) IsValid() bool { return m.world != nil }

// RoomCount returns the number of rooms in the snapshot.
func (m Map) RoomCount() int {
	if m.world == nil {
		return 0
	}
	return m.world.RoomCount()
}

// InfomarkCount returns the number of annotations in the snapshot.
func (m Map) InfomarkCount() int {
	if m.world == nil {
		return 0
	}
	return m.world.InfomarkCount()
}

// Bounds returns the bounding box of all room positions.
func (m Map) Bounds() Bounds {
	if m.world == nil {
		return Bounds{}
	}
	return m.world.Bounds()
}

// FindRoomHandle resolves an internal room id.
//
// Postcondition: Returns an invalid handle when the id is unknown.
func (m Map) FindRoomHandle(id RoomID) RoomHandle {
	if m.world == nil || !id.Valid() {
		return RoomHandle{}
	}
	return makeHandle(m, m.world.room(id))
}

// FindRoomByServerID resolves a server-assigned room id.
func (m Map) FindRoomByServerID(id ServerID) RoomHandle {
	if m.world == nil || !id.Valid() {
		return RoomHandle{}
	}
	rid, ok := m.world.byServer[id]
	if !ok {
		return RoomHandle{}
	}
	return makeHandle(m, m.world.room(rid))
}

// FindRoomByExternalID resolves a persistent external room id.
func (m Map) FindRoomByExternalID(id ExternalRoomID) RoomHandle {
	if m.world == nil || !id.Valid() {
		return RoomHandle{}
	}
	rid, ok := m.world.byExternal[id]
	if !ok {
		return RoomHandle{}
	}
	return makeHandle(m, m.world.room(rid))
}

// FindRoomAt resolves the room occupying a grid cell.
func (m Map) FindRoomAt(c Coordinate) RoomHandle {
	if m.world == nil {
		return RoomHandle{}
	}
	rid, ok := m.world.byCoord[c]
	if !ok {
		return RoomHandle{}
	}
	return makeHandle(m, m.world.room(rid))
}

// FindRoomsByNameDesc returns the ids of every room whose name and
// description exactly match. Used as the event-identity lookup when no
// server id is available.
func (m Map) FindRoomsByNameDesc(name, desc string) []RoomID {
	if m.world == nil {
		return nil
	}
	set, ok := m.world.byNameDesc[nameDescKey(name, desc)]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// ForEachRoom visits every room in unspecified order. The visited
// records are shared snapshot data and must not be mutated.
func (m Map) ForEachRoom(visit func(*RawRoom)) {
	if m.world == nil {
		return
	}
	for _, r := range m.world.rooms {
		visit(r)
	}
}

// ForEachInfomark visits every annotation in unspecified order.
func (m Map) ForEachInfomark(visit func(*RawInfomark)) {
	if m.world == nil {
		return
	}
	for _, mark := range m.world.infomarks {
		visit(mark)
	}
}

// RoomHandle is a non-owning validated view of one room inside one Map.
// The zero value is the invalid handle.
type RoomHandle struct {
	m    Map
	room *RawRoom
}

func makeHandle(m Map, r *RawRoom) RoomHandle {
	if r == nil {
		return RoomHandle{}
	}
	return RoomHandle{m: m, room: r}
}

// IsValid reports whether the handle points at a room.
func (h RoomHandle) IsValid() bool { return h.room != nil }

// ID returns the room's internal id, or InvalidRoomID for an invalid
// handle.
func (h RoomHandle) ID() RoomID {
	if h.room == nil {
		return InvalidRoomID
	}
	return h.room.ID
}

// Raw returns the underlying immutable record.
//
// Precondition: the handle must be valid.
func (h RoomHandle) Raw() *RawRoom {
	if h.room == nil {
		panic("Raw called on invalid RoomHandle")
	}
	return h.room
}

// Map returns the snapshot the handle was derived from.
func (h RoomHandle) Map() Map { return h.m }

// Position returns the room's grid cell.
func (h RoomHandle) Position() Coordinate {
	if h.room == nil {
		return Coordinate{}
	}
	return h.room.Position
}
