// Package world provides the persistent map data model: rooms, exits,
// coordinates, infomarks, and the immutable World snapshot with its
// copy-on-write Map view.
package world

import "math"

// RoomID is the dense, process-local identifier of a room inside one
// World snapshot. It is never persisted; files and databases use
// ExternalRoomID instead.
type RoomID uint32

// InvalidRoomID is the sentinel for "no room". Zero is a valid id, so
// the sentinel sits at the top of the range.
const InvalidRoomID RoomID = math.MaxUint32

// Valid reports whether the id refers to a room at all.
func (id RoomID) Valid() bool { return id != InvalidRoomID }

// ExternalRoomID is the stable identifier a room keeps across save and
// load. Unlike RoomID it survives snapshot rebuilds and id compaction.
type ExternalRoomID uint32

// InvalidExternalRoomID is the sentinel for "no external id assigned".
const InvalidExternalRoomID ExternalRoomID = math.MaxUint32

// Valid reports whether the external id is assigned.
func (id ExternalRoomID) Valid() bool { return id != InvalidExternalRoomID }

// ServerID is the authoritative room identifier assigned by the game
// server. Zero means the server never told us (fog, darkness, or an old
// map that predates server ids).
type ServerID uint32

// InvalidServerID is the "unknown" sentinel; the server never assigns 0.
const InvalidServerID ServerID = 0

// Valid reports whether the server id is known.
func (id ServerID) Valid() bool { return id != InvalidServerID }
