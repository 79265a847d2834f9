package world

import "sort"

// RoomIDSet is a small set of room ids. Exits hold one per side of a
// connection, so most instances have zero or one element.
type RoomIDSet map[RoomID]struct{}

// NewRoomIDSet builds a set from the given ids.
func NewRoomIDSet(ids ...RoomID) RoomIDSet {
	s := make(RoomIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s RoomIDSet) Contains(id RoomID) bool {
	_, ok := s[id]
	return ok
}

// IsEmpty reports whether the set has no elements.
func (s RoomIDSet) IsEmpty() bool { return len(s) == 0 }

// Len returns the number of elements.
func (s RoomIDSet) Len() int { return len(s) }

// First returns the lowest id in the set, or InvalidRoomID when empty.
// Deterministic iteration matters to the path machine, which treats the
// unique member of a one-element set as "the" connected room.
func (s RoomIDSet) First() RoomID {
	first := InvalidRoomID
	for id := range s {
		if id < first {
			first = id
		}
	}
	return first
}

// Sorted returns the ids in ascending order.
func (s RoomIDSet) Sorted() []RoomID {
	ids := make([]RoomID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns an independent copy.
func (s RoomIDSet) Clone() RoomIDSet {
	c := make(RoomIDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold exactly the same ids.
func (s RoomIDSet) Equal(other RoomIDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
