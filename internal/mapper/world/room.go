package world

// RoomFields is the aggregate of a room's descriptive content, separate
// from its identity, position, and exits.
type RoomFields struct {
	Name      string
	Desc      string
	Contents  string
	Note      string
	Area      string
	Terrain   Terrain
	Align     Align
	Light     Light
	Portable  Portable
	Ridable   Ridable
	Sundeath  Sundeath
	MobFlags  MobFlags
	LoadFlags LoadFlags
}

// RawRoom is the canonical room record. Instances reachable through a
// World snapshot are immutable; mutation happens by cloning into a new
// snapshot via Map.Apply.
type RawRoom struct {
	ID         RoomID
	ExternalID ExternalRoomID
	ServerID   ServerID
	Position   Coordinate
	Status     RoomStatus
	Fields     RoomFields
	Exits      [NumExits]Exit
}

// Exit returns the exit record for the given direction. DirNone and
// out-of-range directions map to the unknown bucket.
func (r *RawRoom) Exit(dir Direction) *Exit {
	if int(dir) >= NumExits {
		return &r.Exits[DirUnknown]
	}
	return &r.Exits[dir]
}

// IsTemporary reports whether the room is a speculative creation.
func (r *RawRoom) IsTemporary() bool { return r.Status == StatusTemporary }

// IsPermanent reports whether the room belongs to the authoritative map.
func (r *RawRoom) IsPermanent() bool { return r.Status == StatusPermanent }

// HasServerID reports whether the server ever identified this room.
func (r *RawRoom) HasServerID() bool { return r.ServerID.Valid() }

// IsTrivial reports whether every field of the room is default-valued.
// Trivial rooms act as the "exit target unknown" sentinel.
func (r *RawRoom) IsTrivial() bool {
	if r.Fields != (RoomFields{}) || r.Position != (Coordinate{}) ||
		r.ServerID.Valid() || r.Status != StatusTemporary {
		return false
	}
	for i := range r.Exits {
		if !r.Exits[i].isTrivial() {
			return false
		}
	}
	return true
}

// Equal compares every field of both rooms including all exits.
func (r *RawRoom) Equal(other *RawRoom) bool {
	if r.ID != other.ID || r.ExternalID != other.ExternalID ||
		r.ServerID != other.ServerID || r.Position != other.Position ||
		r.Status != other.Status || r.Fields != other.Fields {
		return false
	}
	for i := range r.Exits {
		if !r.Exits[i].Equal(&other.Exits[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy suitable for mutation during Apply.
func (r *RawRoom) Clone() *RawRoom {
	c := *r
	for i := range r.Exits {
		c.Exits[i] = r.Exits[i].Clone()
	}
	return &c
}

// HasTwoWayConnection reports whether the exit in dir forms a mutual
// connection with the opposite exit of the target room. Two-way-ness is
// never stored; it holds only if both adjacency sets reference each
// other and the opposite-direction exit actually exists.
func (r *RawRoom) HasTwoWayConnection(dir Direction, target *RawRoom) bool {
	if target == nil {
		return false
	}
	e := r.Exit(dir)
	back := target.Exit(dir.Opposite())
	return e.ContainsOut(target.ID) && back.ContainsOut(r.ID) &&
		back.ExitFlags.IsExit() && back.ContainsIn(r.ID) && e.ContainsIn(target.ID)
}
