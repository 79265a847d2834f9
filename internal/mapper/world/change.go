package world

// Change is one mutation instruction for Map.Apply. The set of
// implementations is closed; Apply dispatches over all of them grouped
// by category (world, room, exit, infomark).
type Change interface {
	isChange()
}

// ChangeList is the append-only ordered sequence of changes a decision
// produces. The matching core only ever appends; it never reads map
// state back out of a list.
type ChangeList struct {
	changes []Change
}

// Add appends one change.
func (cl *ChangeList) Add(c Change) { cl.changes = append(cl.changes, c) }

// Len returns the number of queued changes.
func (cl ChangeList) Len() int { return len(cl.changes) }

// IsEmpty reports whether nothing was queued.
func (cl ChangeList) IsEmpty() bool { return len(cl.changes) == 0 }

// Changes returns the queued changes in order.
func (cl ChangeList) Changes() []Change { return cl.changes }

// ChangeOp selects between adding and removing a connection.
type ChangeOp uint8

const (
	OpAdd ChangeOp = iota
	OpRemove
)

// Ways selects whether a connection change affects one or both sides.
type Ways uint8

const (
	OneWay Ways = iota
	TwoWay
)

// FlagMode selects how a flag-carrying change combines with the stored
// value.
type FlagMode uint8

const (
	FlagAssign FlagMode = iota
	FlagInsert
	FlagRemove
)

// UpdateMode qualifies UpdateRoomFromEvent.
type UpdateMode uint8

const (
	// UpdateMerge folds only the information the event actually carries
	// into the room.
	UpdateMerge UpdateMode = iota
	// UpdateForce overwrites the room's content with the event,
	// clearing fields the event lacks.
	UpdateForce
)

// RoomContent is the event-derived payload carried by room create and
// update changes. It is the subset of a parse event the map layer can
// store, flattened so this package needs no knowledge of events.
type RoomContent struct {
	ServerID   ServerID
	Name       string
	Desc       string
	Contents   string
	Area       string
	Terrain    Terrain
	ExitsValid bool
	Exits      [NumExits]ExitFlags
}

// --- world changes ---

// RemoveAllDoorNames clears every door name on every room.
type RemoveAllDoorNames struct{}

// CompactRoomIDs renumbers external room ids densely starting at
// FirstID, in ascending order of the current external ids.
type CompactRoomIDs struct {
	FirstID ExternalRoomID
}

// --- room changes ---

// AddPermanentRoom creates an empty permanent room at a position.
type AddPermanentRoom struct {
	Position Coordinate
}

// AddRoomFromEvent creates a room at a position populated from event
// content.
type AddRoomFromEvent struct {
	Position Coordinate
	Content  RoomContent
	Status   RoomStatus
}

// RemoveRoom deletes a room and scrubs every reference to it from
// neighboring exits.
type RemoveRoom struct {
	Room RoomID
}

// MakePermanent promotes a temporary room.
type MakePermanent struct {
	Room RoomID
}

// UpdateRoomFromEvent syncs a room's content to event content.
type UpdateRoomFromEvent struct {
	Room    RoomID
	Content RoomContent
	Mode    UpdateMode
}

// SetServerID records the server-assigned id on a room.
type SetServerID struct {
	Room     RoomID
	ServerID ServerID
}

// MoveRelative shifts one room by an offset.
type MoveRelative struct {
	Room   RoomID
	Offset Coordinate
}

// MoveRoomsRelative shifts a set of rooms by a common offset.
type MoveRoomsRelative struct {
	Rooms  RoomIDSet
	Offset Coordinate
}

// MergeRelative moves a room by an offset and, if the destination cell
// is occupied, merges the moved room into its occupant.
type MergeRelative struct {
	Room   RoomID
	Offset Coordinate
}

// RoomField is the closed variant of single-field room updates carried
// by ModifyRoomField. Exactly one implementation per mutable field.
type RoomField interface {
	isRoomField()
}

// Typed RoomField variants.
type (
	FieldName      struct{ Value string }
	FieldDesc      struct{ Value string }
	FieldContents  struct{ Value string }
	FieldNote      struct{ Value string }
	FieldArea      struct{ Value string }
	FieldTerrain   struct{ Value Terrain }
	FieldAlign     struct{ Value Align }
	FieldLight     struct{ Value Light }
	FieldPortable  struct{ Value Portable }
	FieldRidable   struct{ Value Ridable }
	FieldSundeath  struct{ Value Sundeath }
	FieldMobFlags  struct{ Value MobFlags }
	FieldLoadFlags struct{ Value LoadFlags }
)

func (FieldName) isRoomField()      {}
func (FieldDesc) isRoomField()      {}
func (FieldContents) isRoomField()  {}
func (FieldNote) isRoomField()      {}
func (FieldArea) isRoomField()      {}
func (FieldTerrain) isRoomField()   {}
func (FieldAlign) isRoomField()     {}
func (FieldLight) isRoomField()     {}
func (FieldPortable) isRoomField()  {}
func (FieldRidable) isRoomField()   {}
func (FieldSundeath) isRoomField()  {}
func (FieldMobFlags) isRoomField()  {}
func (FieldLoadFlags) isRoomField() {}

// ModifyRoomField assigns, inserts, or removes one room field. Insert
// and remove are only meaningful for the flag-set fields; for scalar
// fields they behave like assign and clear.
type ModifyRoomField struct {
	Room  RoomID
	Field RoomField
	Mode  FlagMode
}

// TryMoveCloseTo moves a room as close to a desired position as the
// occupancy of the grid allows, preferring the requested z layer. The
// move is best-effort; no position change is guaranteed.
type TryMoveCloseTo struct {
	Room    RoomID
	Desired Coordinate
}

// --- exit changes ---

// ModifyExitConnection adds or removes the adjacency between two rooms
// in a direction. Use NukeExit to clear an exit record entirely.
type ModifyExitConnection struct {
	Op   ChangeOp
	Room RoomID
	Dir  Direction
	To   RoomID
	Ways Ways
}

// NukeExit clears one exit record including its adjacency.
type NukeExit struct {
	Room RoomID
	Dir  Direction
	Ways Ways
}

// SetExitFlags assigns, inserts, or removes exit flags on one exit.
type SetExitFlags struct {
	Mode  FlagMode
	Room  RoomID
	Dir   Direction
	Flags ExitFlags
}

// SetDoorFlags assigns, inserts, or removes door flags on one exit.
type SetDoorFlags struct {
	Mode  FlagMode
	Room  RoomID
	Dir   Direction
	Flags DoorFlags
}

// SetDoorName sets the door name on one exit.
type SetDoorName struct {
	Room RoomID
	Dir  Direction
	Name string
}

// --- infomark changes ---

// AddInfomark creates an annotation; the id in Fields is ignored and
// assigned by Apply.
type AddInfomark struct {
	Fields RawInfomark
}

// UpdateInfomark replaces an annotation's fields.
type UpdateInfomark struct {
	ID     InfomarkID
	Fields RawInfomark
}

// RemoveInfomark deletes an annotation.
type RemoveInfomark struct {
	ID InfomarkID
}

func (RemoveAllDoorNames) isChange()   {}
func (CompactRoomIDs) isChange()       {}
func (AddPermanentRoom) isChange()     {}
func (AddRoomFromEvent) isChange()     {}
func (RemoveRoom) isChange()           {}
func (MakePermanent) isChange()        {}
func (UpdateRoomFromEvent) isChange()  {}
func (SetServerID) isChange()          {}
func (MoveRelative) isChange()         {}
func (MoveRoomsRelative) isChange()    {}
func (MergeRelative) isChange()        {}
func (ModifyRoomField) isChange()      {}
func (TryMoveCloseTo) isChange()       {}
func (ModifyExitConnection) isChange() {}
func (NukeExit) isChange()             {}
func (SetExitFlags) isChange()         {}
func (SetDoorFlags) isChange()         {}
func (SetDoorName) isChange()          {}
func (AddInfomark) isChange()          {}
func (UpdateInfomark) isChange()       {}
func (RemoveInfomark) isChange()       {}
