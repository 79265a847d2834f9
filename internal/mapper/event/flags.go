package event

import "github.com/mume/mapcore/internal/mapper/world"

// ExitsFlags packs the per-direction exit observations of a room
// snapshot: four bits per direction (exit, door, road, climb) plus a
// validity bit. An invalid value means the snapshot carried no exit
// line at all, which is different from "no exits".
type ExitsFlags uint32

const (
	exitsBitsPerDir           = 4
	exitsDirMask   ExitsFlags = 0xf
	exitsValidBit  ExitsFlags = 1 << 30
)

const (
	exitBitExit ExitsFlags = 1 << iota
	exitBitDoor
	exitBitRoad
	exitBitClimb
)

// IsValid reports whether the snapshot carried an exit line.
func (f ExitsFlags) IsValid() bool { return f&exitsValidBit != 0 }

// WithValid returns f with the validity bit set.
func (f ExitsFlags) WithValid() ExitsFlags { return f | exitsValidBit }

// Get returns the observed flags for one direction mapped onto the
// room exit flag space.
func (f ExitsFlags) Get(dir world.Direction) world.ExitFlags {
	if int(dir) >= len(world.NESWUD) {
		return 0
	}
	bits := (f >> (uint(dir) * exitsBitsPerDir)) & exitsDirMask
	var out world.ExitFlags
	if bits&exitBitExit != 0 {
		out |= world.ExitFlagExit
	}
	if bits&exitBitDoor != 0 {
		out |= world.ExitFlagDoor
	}
	if bits&exitBitRoad != 0 {
		out |= world.ExitFlagRoad
	}
	if bits&exitBitClimb != 0 {
		out |= world.ExitFlagClimb
	}
	return out
}

// Set returns f with the direction's observation replaced. Only the
// exit, door, road and climb bits of flags are representable.
func (f ExitsFlags) Set(dir world.Direction, flags world.ExitFlags) ExitsFlags {
	if int(dir) >= len(world.NESWUD) {
		return f
	}
	var bits ExitsFlags
	if flags.IsExit() {
		bits |= exitBitExit
	}
	if flags.IsDoor() {
		bits |= exitBitDoor
	}
	if flags.IsRoad() {
		bits |= exitBitRoad
	}
	if flags.IsClimb() {
		bits |= exitBitClimb
	}
	shift := uint(dir) * exitsBitsPerDir
	return (f &^ (exitsDirMask << shift)) | (bits << shift)
}

// PromptFlags carries the light observation parsed from the prompt.
type PromptFlags uint16

const (
	promptLit PromptFlags = 1 << iota
	promptDark
	promptValidBit
)

// IsValid reports whether a prompt was actually seen.
func (f PromptFlags) IsValid() bool { return f&promptValidBit != 0 }

// IsLit reports a sunlit prompt.
func (f PromptFlags) IsLit() bool { return f&promptLit != 0 }

// IsDark reports a dark prompt.
func (f PromptFlags) IsDark() bool { return f&promptDark != 0 }

// WithLit returns a valid prompt observation marked lit.
func (f PromptFlags) WithLit() PromptFlags { return (f &^ promptDark) | promptLit | promptValidBit }

// WithDark returns a valid prompt observation marked dark.
func (f PromptFlags) WithDark() PromptFlags { return (f &^ promptLit) | promptDark | promptValidBit }

// WithValid returns f with the validity bit set.
func (f PromptFlags) WithValid() PromptFlags { return f | promptValidBit }

// DirectSunlight is what the player saw through one neighboring exit.
type DirectSunlight uint8

// DirectSunlight observations per direction.
const (
	SunlightUnknown DirectSunlight = iota
	SawDirectSunlight
	SawNoDirectSunlight
)

// ConnectedRoomFlags records, two bits per direction, whether direct
// sunlight was visible through each exit. Stored so a troll-vision
// player's dark-looking room is not mistaken for a different room.
type ConnectedRoomFlags uint16

const (
	connectedBitsPerDir                    = 2
	connectedDirMask    ConnectedRoomFlags = 0x3
	connectedValidBit   ConnectedRoomFlags = 1 << 12
	connectedTrollBit   ConnectedRoomFlags = 1 << 13
)

// IsValid reports whether the observation was captured at all.
func (f ConnectedRoomFlags) IsValid() bool { return f&connectedValidBit != 0 }

// WithValid returns f with the validity bit set.
func (f ConnectedRoomFlags) WithValid() ConnectedRoomFlags { return f | connectedValidBit }

// IsTrollMode reports whether the observing character sees in the
// troll spectrum, where sunlit rooms read as dark.
func (f ConnectedRoomFlags) IsTrollMode() bool { return f&connectedTrollBit != 0 }

// WithTrollMode returns f marked as a troll-vision observation.
func (f ConnectedRoomFlags) WithTrollMode() ConnectedRoomFlags { return f | connectedTrollBit }

// DirectSunlight returns the observation for one direction.
func (f ConnectedRoomFlags) DirectSunlight(dir world.Direction) DirectSunlight {
	if int(dir) >= len(world.NESWUD) {
		return SunlightUnknown
	}
	return DirectSunlight((f >> (uint(dir) * connectedBitsPerDir)) & connectedDirMask)
}

// WithDirectSunlight returns f with one direction's observation set.
func (f ConnectedRoomFlags) WithDirectSunlight(dir world.Direction, s DirectSunlight) ConnectedRoomFlags {
	if int(dir) >= len(world.NESWUD) {
		return f
	}
	shift := uint(dir) * connectedBitsPerDir
	return (f &^ (connectedDirMask << shift)) | (ConnectedRoomFlags(s) << shift)
}

// HasAnyDirectSunlight reports whether at least one exit showed direct
// sunlight.
func (f ConnectedRoomFlags) HasAnyDirectSunlight() bool {
	for _, dir := range world.NESWUD {
		if f.DirectSunlight(dir) == SawDirectSunlight {
			return true
		}
	}
	return false
}
