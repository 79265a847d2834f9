package world

// Exit is one of a room's seven exit records. Adjacency is stored
// redundantly on both sides of a connection: Outgoing on the source
// exit and Incoming on the destination's matching exit. That redundancy
// is what lets one-way passages exist at all.
type Exit struct {
	DoorName  string
	DoorFlags DoorFlags
	ExitFlags ExitFlags
	Incoming  RoomIDSet
	Outgoing  RoomIDSet
}

// DoorIsHidden reports whether this exit has a door marked hidden.
func (e *Exit) DoorIsHidden() bool {
	return e.ExitFlags.IsDoor() && e.DoorFlags.IsHidden()
}

// OutIsUnique reports whether the exit leads to exactly one room.
func (e *Exit) OutIsUnique() bool { return e.Outgoing.Len() == 1 }

// OutFirst returns the lowest outgoing target, or InvalidRoomID.
func (e *Exit) OutFirst() RoomID { return e.Outgoing.First() }

// ContainsOut reports whether id is an outgoing target of this exit.
func (e *Exit) ContainsOut(id RoomID) bool { return e.Outgoing.Contains(id) }

// ContainsIn reports whether id is an incoming source of this exit.
func (e *Exit) ContainsIn(id RoomID) bool { return e.Incoming.Contains(id) }

// Equal compares every field including both adjacency sets.
func (e *Exit) Equal(other *Exit) bool {
	return e.DoorName == other.DoorName &&
		e.DoorFlags == other.DoorFlags &&
		e.ExitFlags == other.ExitFlags &&
		e.Incoming.Equal(other.Incoming) &&
		e.Outgoing.Equal(other.Outgoing)
}

// Clone returns a deep copy of the exit.
func (e *Exit) Clone() Exit {
	return Exit{
		DoorName:  e.DoorName,
		DoorFlags: e.DoorFlags,
		ExitFlags: e.ExitFlags,
		Incoming:  e.Incoming.Clone(),
		Outgoing:  e.Outgoing.Clone(),
	}
}

// isTrivial reports whether the exit carries no information at all.
// A trivial exit is the "target unknown" sentinel.
func (e *Exit) isTrivial() bool {
	return e.DoorName == "" && e.DoorFlags.IsEmpty() && e.ExitFlags.IsEmpty() &&
		e.Incoming.IsEmpty() && e.Outgoing.IsEmpty()
}
