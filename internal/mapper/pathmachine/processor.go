// Package pathmachine tracks the player's position on the map. It
// feeds candidate rooms through pluggable matching strategies and
// maintains a tree of plausible paths when the position is uncertain,
// collapsing the tree back to a single room as soon as the evidence
// allows.
package pathmachine

import "github.com/mume/mapcore/internal/mapper/world"

// PathProcessor consumes candidate rooms streamed by a lookup. Each
// ReceiveRoom call hands the processor temporary, exclusive custody of
// that room; the processor must eventually return every distinct room
// to the admin through exactly one KeepRoom or ReleaseRoom call.
//
// Processors are strategies and new ones are expected; implementations
// in this package are Approved, Forced, Syncing, Crossover and
// OneByOne.
type PathProcessor interface {
	ReceiveRoom(admin RoomAdmin, room world.RoomHandle)
}

// RoomAdmin is the custody ledger for streamed rooms. KeepRoom marks
// the room as genuinely in use (a temporary room becomes permanent);
// ReleaseRoom hands it back unused, allowing the admin to discard a
// temporary room nobody else holds.
type RoomAdmin interface {
	KeepRoom(recipient PathProcessor, id world.RoomID)
	ReleaseRoom(recipient PathProcessor, id world.RoomID)
}
