package world

import (
	"fmt"
	"sort"

	"github.com/mume/mapcore/internal/progress"
)

// RoomUpdateFlags describes what an Apply invalidated for downstream
// consumers (renderers, persistence).
type RoomUpdateFlags uint8

// RoomUpdateFlags bits.
const (
	// UpdateFlagBoundsChanged is set when a room landed outside the
	// previous bounding box.
	UpdateFlagBoundsChanged RoomUpdateFlags = 1 << iota
	// UpdateFlagMeshDirty is set when any room or exit content changed.
	UpdateFlagMeshDirty
)

// IsEmpty reports whether nothing was invalidated.
func (f RoomUpdateFlags) IsEmpty() bool { return f == 0 }

// MapApplyResult is the outcome of Map.Apply: the successor snapshot
// plus invalidation flags.
type MapApplyResult struct {
	Map   Map
	Flags RoomUpdateFlags
}

// Apply executes the change list atomically against the snapshot and
// returns a new Map sharing every untouched room record. The receiver
// is never modified; on error no result map is produced.
//
// Precondition: every referenced room and infomark id must exist.
// Postcondition: Returns the successor map, or an error naming the
// first integrity violation.
func (m Map) Apply(pc *progress.Counter, changes ChangeList) (MapApplyResult, error) {
	if m.world == nil {
		return MapApplyResult{}, fmt.Errorf("apply on invalid map")
	}
	a := &applier{
		w:         m.world.copyForWrite(),
		cloned:    map[RoomID]bool{},
		oldBounds: m.world.bounds,
		hadBounds: m.world.hasBounds,
	}
	if pc != nil {
		pc.Increase(uint64(changes.Len()))
	}
	for _, c := range changes.Changes() {
		if err := a.apply(c); err != nil {
			return MapApplyResult{}, err
		}
		if pc != nil {
			pc.Step(1)
		}
	}
	return MapApplyResult{Map: Map{world: a.w}, Flags: a.flags}, nil
}

type applier struct {
	w         *World
	cloned    map[RoomID]bool
	flags     RoomUpdateFlags
	oldBounds Bounds
	hadBounds bool
}

func (a *applier) apply(c Change) error {
	switch ch := c.(type) {
	// world
	case RemoveAllDoorNames:
		return a.removeAllDoorNames()
	case CompactRoomIDs:
		return a.compactRoomIDs(ch.FirstID)

	// rooms
	case AddPermanentRoom:
		_, err := a.addRoom(ch.Position, RoomContent{}, StatusPermanent)
		return err
	case AddRoomFromEvent:
		_, err := a.addRoom(ch.Position, ch.Content, ch.Status)
		return err
	case RemoveRoom:
		return a.removeRoom(ch.Room)
	case MakePermanent:
		r, err := a.mutable(ch.Room)
		if err != nil {
			return err
		}
		r.Status = StatusPermanent
		a.touch()
		return nil
	case UpdateRoomFromEvent:
		return a.updateRoom(ch.Room, ch.Content, ch.Mode)
	case SetServerID:
		r, err := a.mutable(ch.Room)
		if err != nil {
			return err
		}
		return a.setServerID(r, ch.ServerID)
	case MoveRelative:
		return a.moveRooms(NewRoomIDSet(ch.Room), ch.Offset)
	case MoveRoomsRelative:
		return a.moveRooms(ch.Rooms, ch.Offset)
	case MergeRelative:
		return a.mergeRelative(ch.Room, ch.Offset)
	case ModifyRoomField:
		return a.modifyRoomField(ch.Room, ch.Field, ch.Mode)
	case TryMoveCloseTo:
		return a.tryMoveCloseTo(ch.Room, ch.Desired)

	// exits
	case ModifyExitConnection:
		return a.modifyConnection(ch)
	case NukeExit:
		return a.nukeExit(ch.Room, ch.Dir, ch.Ways)
	case SetExitFlags:
		return a.setExitFlags(ch)
	case SetDoorFlags:
		return a.setDoorFlags(ch)
	case SetDoorName:
		r, err := a.mutable(ch.Room)
		if err != nil {
			return err
		}
		r.Exit(ch.Dir).DoorName = ch.Name
		a.touch()
		return nil

	// infomarks
	case AddInfomark:
		mark := ch.Fields
		mark.ID = a.w.nextInfomarkID
		a.w.nextInfomarkID++
		a.w.infomarks[mark.ID] = &mark
		a.touch()
		return nil
	case UpdateInfomark:
		if _, ok := a.w.infomarks[ch.ID]; !ok {
			return fmt.Errorf("unknown infomark %d", ch.ID)
		}
		mark := ch.Fields
		mark.ID = ch.ID
		a.w.infomarks[ch.ID] = &mark
		a.touch()
		return nil
	case RemoveInfomark:
		if _, ok := a.w.infomarks[ch.ID]; !ok {
			return fmt.Errorf("unknown infomark %d", ch.ID)
		}
		delete(a.w.infomarks, ch.ID)
		a.touch()
		return nil
	}
	return fmt.Errorf("unhandled change %T", c)
}

func (a *applier) touch() { a.flags |= UpdateFlagMeshDirty }

func (a *applier) boundsCheck(c Coordinate) {
	if !a.hadBounds || !a.oldBounds.contains(c) {
		a.flags |= UpdateFlagBoundsChanged
	}
}

// mutable returns a room record this apply pass may write to, cloning
// it on first touch so prior snapshots stay intact.
func (a *applier) mutable(id RoomID) (*RawRoom, error) {
	r := a.w.room(id)
	if r == nil {
		return nil, fmt.Errorf("unknown room %d", id)
	}
	if a.cloned[id] {
		return r, nil
	}
	c := r.Clone()
	a.w.rooms[id] = c
	a.cloned[id] = true
	return c, nil
}

func ensureSet(s *RoomIDSet) RoomIDSet {
	if *s == nil {
		*s = NewRoomIDSet()
	}
	return *s
}

// reindexNameDesc moves the room between byNameDesc buckets after its
// name or description changed.
func (a *applier) reindexNameDesc(id RoomID, oldKey, newKey string) {
	if oldKey == newKey {
		return
	}
	if set, ok := a.w.byNameDesc[oldKey]; ok {
		delete(set, id)
		if set.IsEmpty() {
			delete(a.w.byNameDesc, oldKey)
		}
	}
	set, ok := a.w.byNameDesc[newKey]
	if !ok {
		set = NewRoomIDSet()
		a.w.byNameDesc[newKey] = set
	}
	set[id] = struct{}{}
}

func (a *applier) removeAllDoorNames() error {
	for id, r := range a.w.rooms {
		named := false
		for i := range r.Exits {
			if r.Exits[i].DoorName != "" {
				named = true
				break
			}
		}
		if !named {
			continue
		}
		mr, err := a.mutable(id)
		if err != nil {
			return err
		}
		for i := range mr.Exits {
			mr.Exits[i].DoorName = ""
		}
	}
	a.touch()
	return nil
}

func (a *applier) compactRoomIDs(first ExternalRoomID) error {
	ids := make([]RoomID, 0, len(a.w.rooms))
	for id := range a.w.rooms {
		ids = append(ids, id)
	}
	// stable ordering: current external id first, unassigned rooms last
	sort.Slice(ids, func(i, j int) bool {
		a1, a2 := a.w.rooms[ids[i]].ExternalID, a.w.rooms[ids[j]].ExternalID
		if a1 != a2 {
			return a1 < a2
		}
		return ids[i] < ids[j]
	})
	next := first
	a.w.byExternal = make(map[ExternalRoomID]RoomID, len(ids))
	for _, id := range ids {
		r, err := a.mutable(id)
		if err != nil {
			return err
		}
		r.ExternalID = next
		a.w.byExternal[next] = id
		next++
	}
	a.w.nextExternalID = next
	a.touch()
	return nil
}

func (a *applier) addRoom(pos Coordinate, content RoomContent, status RoomStatus) (RoomID, error) {
	if _, occupied := a.w.byCoord[pos]; occupied {
		return InvalidRoomID, fmt.Errorf("position %v already occupied", pos)
	}
	r := &RawRoom{
		ID:         a.w.nextRoomID,
		ExternalID: a.w.nextExternalID,
		Position:   pos,
		Status:     status,
	}
	a.applyContent(r, content, UpdateForce)
	if content.ServerID.Valid() {
		if other, taken := a.w.byServer[content.ServerID]; taken {
			return InvalidRoomID, fmt.Errorf("server id %d already mapped to room %d", content.ServerID, other)
		}
		r.ServerID = content.ServerID
	}
	a.w.indexRoom(r)
	a.cloned[r.ID] = true
	a.boundsCheck(pos)
	a.touch()
	return r.ID, nil
}

func (a *applier) removeRoom(id RoomID) error {
	r := a.w.room(id)
	if r == nil {
		return fmt.Errorf("unknown room %d", id)
	}
	// scrub adjacency from both sides before dropping the record
	for _, dir := range AllExits7 {
		e := r.Exit(dir)
		for _, to := range e.Outgoing.Sorted() {
			if to == id {
				continue
			}
			nr, err := a.mutable(to)
			if err != nil {
				return fmt.Errorf("room %d: dangling outgoing reference: %w", id, err)
			}
			delete(nr.Exit(dir.Opposite()).Incoming, id)
		}
		for _, from := range e.Incoming.Sorted() {
			if from == id {
				continue
			}
			nr, err := a.mutable(from)
			if err != nil {
				return fmt.Errorf("room %d: dangling incoming reference: %w", id, err)
			}
			delete(nr.Exit(dir.Opposite()).Outgoing, id)
		}
	}
	a.w.unindexRoom(r)
	delete(a.cloned, id)
	a.touch()
	return nil
}

// applyContent writes event content into the room record. The caller
// is responsible for index maintenance.
func (a *applier) applyContent(r *RawRoom, content RoomContent, mode UpdateMode) {
	if mode == UpdateForce {
		r.Fields.Name = content.Name
		r.Fields.Desc = content.Desc
		r.Fields.Contents = content.Contents
		if content.Area != "" {
			r.Fields.Area = content.Area
		}
		r.Fields.Terrain = content.Terrain
		if content.ExitsValid {
			for _, dir := range NESWUD {
				r.Exit(dir).ExitFlags = content.Exits[dir]
			}
		}
		return
	}
	if content.Name != "" {
		r.Fields.Name = content.Name
	}
	if content.Desc != "" {
		r.Fields.Desc = content.Desc
	}
	if content.Contents != "" {
		r.Fields.Contents = content.Contents
	}
	if content.Area != "" {
		r.Fields.Area = content.Area
	}
	if content.Terrain != TerrainUndefined {
		r.Fields.Terrain = content.Terrain
	}
	if content.ExitsValid {
		for _, dir := range NESWUD {
			r.Exit(dir).ExitFlags |= content.Exits[dir]
		}
	}
}

func (a *applier) updateRoom(id RoomID, content RoomContent, mode UpdateMode) error {
	r, err := a.mutable(id)
	if err != nil {
		return err
	}
	oldKey := nameDescKey(r.Fields.Name, r.Fields.Desc)
	a.applyContent(r, content, mode)
	if content.ServerID.Valid() {
		if err := a.setServerID(r, content.ServerID); err != nil {
			return err
		}
	}
	// a synced room is authoritative
	r.Status = StatusPermanent
	a.reindexNameDesc(id, oldKey, nameDescKey(r.Fields.Name, r.Fields.Desc))
	a.touch()
	return nil
}

func (a *applier) setServerID(r *RawRoom, sid ServerID) error {
	if r.ServerID == sid {
		return nil
	}
	if sid.Valid() {
		if other, taken := a.w.byServer[sid]; taken && other != r.ID {
			return fmt.Errorf("server id %d already mapped to room %d", sid, other)
		}
	}
	if r.ServerID.Valid() && a.w.byServer[r.ServerID] == r.ID {
		delete(a.w.byServer, r.ServerID)
	}
	r.ServerID = sid
	if sid.Valid() {
		a.w.byServer[sid] = r.ID
	}
	a.touch()
	return nil
}

func (a *applier) moveRooms(rooms RoomIDSet, offset Coordinate) error {
	if offset.IsNull() || rooms.IsEmpty() {
		return nil
	}
	moved := make([]*RawRoom, 0, rooms.Len())
	for _, id := range rooms.Sorted() {
		r, err := a.mutable(id)
		if err != nil {
			return err
		}
		moved = append(moved, r)
	}
	for _, r := range moved {
		target := r.Position.Add(offset)
		if occupant, occupied := a.w.byCoord[target]; occupied && !rooms.Contains(occupant) {
			return fmt.Errorf("move collides with room %d at %v", occupant, target)
		}
	}
	for _, r := range moved {
		if a.w.byCoord[r.Position] == r.ID {
			delete(a.w.byCoord, r.Position)
		}
	}
	for _, r := range moved {
		r.Position = r.Position.Add(offset)
		a.w.byCoord[r.Position] = r.ID
		a.w.bounds = a.w.bounds.grow(r.Position)
		a.boundsCheck(r.Position)
	}
	a.touch()
	return nil
}

func (a *applier) mergeRelative(id RoomID, offset Coordinate) error {
	r := a.w.room(id)
	if r == nil {
		return fmt.Errorf("unknown room %d", id)
	}
	target := r.Position.Add(offset)
	occupantID, occupied := a.w.byCoord[target]
	if !occupied || occupantID == id {
		return a.moveRooms(NewRoomIDSet(id), offset)
	}
	src, err := a.mutable(id)
	if err != nil {
		return err
	}
	dst, err := a.mutable(occupantID)
	if err != nil {
		return err
	}
	dstKey := nameDescKey(dst.Fields.Name, dst.Fields.Desc)
	mergeFields(&dst.Fields, &src.Fields)
	a.reindexNameDesc(occupantID, dstKey, nameDescKey(dst.Fields.Name, dst.Fields.Desc))
	if src.ServerID.Valid() && !dst.ServerID.Valid() {
		sid := src.ServerID
		if err := a.setServerID(src, InvalidServerID); err != nil {
			return err
		}
		if err := a.setServerID(dst, sid); err != nil {
			return err
		}
	}
	// rewire the source's connections onto the destination
	for _, dir := range AllExits7 {
		se := src.Exit(dir)
		de := dst.Exit(dir)
		de.ExitFlags |= se.ExitFlags
		de.DoorFlags |= se.DoorFlags
		if de.DoorName == "" {
			de.DoorName = se.DoorName
		}
		for _, to := range se.Outgoing.Sorted() {
			if to == id || to == occupantID {
				continue
			}
			nr, err := a.mutable(to)
			if err != nil {
				return err
			}
			in := ensureSet(&nr.Exit(dir.Opposite()).Incoming)
			delete(in, id)
			in[occupantID] = struct{}{}
			ensureSet(&de.Outgoing)[to] = struct{}{}
		}
		for _, from := range se.Incoming.Sorted() {
			if from == id || from == occupantID {
				continue
			}
			nr, err := a.mutable(from)
			if err != nil {
				return err
			}
			out := ensureSet(&nr.Exit(dir.Opposite()).Outgoing)
			delete(out, id)
			out[occupantID] = struct{}{}
			ensureSet(&de.Incoming)[from] = struct{}{}
		}
	}
	return a.removeRoom(id)
}

func mergeFields(dst, src *RoomFields) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Desc == "" {
		dst.Desc = src.Desc
	}
	if dst.Contents == "" {
		dst.Contents = src.Contents
	}
	if dst.Note == "" {
		dst.Note = src.Note
	}
	if dst.Area == "" {
		dst.Area = src.Area
	}
	if dst.Terrain == TerrainUndefined {
		dst.Terrain = src.Terrain
	}
	if dst.Align == AlignUndefined {
		dst.Align = src.Align
	}
	if dst.Light == LightUndefined {
		dst.Light = src.Light
	}
	if dst.Portable == PortableUndefined {
		dst.Portable = src.Portable
	}
	if dst.Ridable == RidableUndefined {
		dst.Ridable = src.Ridable
	}
	if dst.Sundeath == SundeathUndefined {
		dst.Sundeath = src.Sundeath
	}
	dst.MobFlags |= src.MobFlags
	dst.LoadFlags |= src.LoadFlags
}

func (a *applier) modifyRoomField(id RoomID, field RoomField, mode FlagMode) error {
	r, err := a.mutable(id)
	if err != nil {
		return err
	}
	oldKey := nameDescKey(r.Fields.Name, r.Fields.Desc)
	switch f := field.(type) {
	case FieldName:
		r.Fields.Name = scalarString(f.Value, mode)
	case FieldDesc:
		r.Fields.Desc = scalarString(f.Value, mode)
	case FieldContents:
		r.Fields.Contents = scalarString(f.Value, mode)
	case FieldNote:
		r.Fields.Note = scalarString(f.Value, mode)
	case FieldArea:
		r.Fields.Area = scalarString(f.Value, mode)
	case FieldTerrain:
		r.Fields.Terrain = f.Value
	case FieldAlign:
		r.Fields.Align = f.Value
	case FieldLight:
		r.Fields.Light = f.Value
	case FieldPortable:
		r.Fields.Portable = f.Value
	case FieldRidable:
		r.Fields.Ridable = f.Value
	case FieldSundeath:
		r.Fields.Sundeath = f.Value
	case FieldMobFlags:
		r.Fields.MobFlags = applyFlags(r.Fields.MobFlags, f.Value, mode)
	case FieldLoadFlags:
		r.Fields.LoadFlags = applyFlags(r.Fields.LoadFlags, f.Value, mode)
	default:
		return fmt.Errorf("unhandled room field %T", field)
	}
	a.reindexNameDesc(id, oldKey, nameDescKey(r.Fields.Name, r.Fields.Desc))
	a.touch()
	return nil
}

func scalarString(v string, mode FlagMode) string {
	if mode == FlagRemove {
		return ""
	}
	return v
}

func applyFlags[T ~uint32](current, v T, mode FlagMode) T {
	switch mode {
	case FlagInsert:
		return current | v
	case FlagRemove:
		return current &^ v
	default:
		return v
	}
}

func (a *applier) tryMoveCloseTo(id RoomID, desired Coordinate) error {
	r := a.w.room(id)
	if r == nil {
		return fmt.Errorf("unknown room %d", id)
	}
	const maxRadius = 8
	for radius := 0; radius <= maxRadius; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			dy := radius - absInt(dx)
			for _, sign := range []int{1, -1} {
				if dy == 0 && sign == -1 {
					continue
				}
				c := Coordinate{X: desired.X + dx, Y: desired.Y + sign*dy, Z: desired.Z}
				if _, occupied := a.w.byCoord[c]; !occupied {
					return a.moveRooms(NewRoomIDSet(id), c.Sub(r.Position))
				}
			}
		}
	}
	// best effort only; leaving the room in place is acceptable
	return nil
}

func (a *applier) modifyConnection(ch ModifyExitConnection) error {
	if ch.Room == ch.To && ch.Op == OpAdd && ch.Ways == TwoWay {
		return fmt.Errorf("room %d: two-way self connection", ch.Room)
	}
	var err error
	switch ch.Op {
	case OpAdd:
		err = a.addExit(ch.Room, ch.To, ch.Dir)
		if err == nil && ch.Ways == TwoWay {
			err = a.addExit(ch.To, ch.Room, ch.Dir.Opposite())
		}
	case OpRemove:
		err = a.removeExit(ch.Room, ch.To, ch.Dir)
		if err == nil && ch.Ways == TwoWay {
			err = a.removeExit(ch.To, ch.Room, ch.Dir.Opposite())
		}
	default:
		err = fmt.Errorf("unhandled connection op %d", ch.Op)
	}
	return err
}

func (a *applier) addExit(from, to RoomID, dir Direction) error {
	fr, err := a.mutable(from)
	if err != nil {
		return err
	}
	tr, err := a.mutable(to)
	if err != nil {
		return err
	}
	fe := fr.Exit(dir)
	ensureSet(&fe.Outgoing)[to] = struct{}{}
	fe.ExitFlags |= ExitFlagExit
	ensureSet(&tr.Exit(dir.Opposite()).Incoming)[from] = struct{}{}
	a.touch()
	return nil
}

func (a *applier) removeExit(from, to RoomID, dir Direction) error {
	fr, err := a.mutable(from)
	if err != nil {
		return err
	}
	tr, err := a.mutable(to)
	if err != nil {
		return err
	}
	delete(fr.Exit(dir).Outgoing, to)
	delete(tr.Exit(dir.Opposite()).Incoming, from)
	a.touch()
	return nil
}

func (a *applier) nukeExit(id RoomID, dir Direction, ways Ways) error {
	r, err := a.mutable(id)
	if err != nil {
		return err
	}
	e := r.Exit(dir)
	targets := e.Outgoing.Sorted()
	sources := e.Incoming.Sorted()
	for _, to := range targets {
		if to == id {
			continue
		}
		nr, err := a.mutable(to)
		if err != nil {
			return err
		}
		delete(nr.Exit(dir.Opposite()).Incoming, id)
		if ways == TwoWay {
			delete(nr.Exit(dir.Opposite()).Outgoing, id)
			delete(r.Exit(dir).Incoming, to)
		}
	}
	for _, from := range sources {
		if from == id {
			continue
		}
		nr, err := a.mutable(from)
		if err != nil {
			return err
		}
		delete(nr.Exit(dir.Opposite()).Outgoing, id)
	}
	*e = Exit{}
	a.touch()
	return nil
}

func (a *applier) setExitFlags(ch SetExitFlags) error {
	r, err := a.mutable(ch.Room)
	if err != nil {
		return err
	}
	e := r.Exit(ch.Dir)
	switch ch.Mode {
	case FlagInsert:
		e.ExitFlags |= ch.Flags
	case FlagRemove:
		e.ExitFlags &^= ch.Flags
	default:
		e.ExitFlags = ch.Flags
	}
	a.touch()
	return nil
}

func (a *applier) setDoorFlags(ch SetDoorFlags) error {
	r, err := a.mutable(ch.Room)
	if err != nil {
		return err
	}
	e := r.Exit(ch.Dir)
	switch ch.Mode {
	case FlagInsert:
		e.DoorFlags |= ch.Flags
	case FlagRemove:
		e.DoorFlags &^= ch.Flags
	default:
		e.DoorFlags = ch.Flags
	}
	a.touch()
	return nil
}
