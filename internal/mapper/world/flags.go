package world

// ExitFlags is the bitset describing one exit: what kind of passage it
// is and how it behaves. The same bits are used by live parse events,
// which is what makes the XOR diff in the comparison engine possible.
type ExitFlags uint16

// ExitFlags bits.
const (
	ExitFlagExit ExitFlags = 1 << iota
	ExitFlagDoor
	ExitFlagRoad
	ExitFlagClimb
	ExitFlagRandom
	ExitFlagSpecial
	// ExitFlagNoMatch excludes the exit from event comparison entirely;
	// mappers set it on exits the game reports inconsistently.
	ExitFlagNoMatch
	ExitFlagFlow
	ExitFlagNoFlee
	ExitFlagDamage
	ExitFlagFall
	ExitFlagGuarded
)

// IsEmpty reports whether no bits are set.
func (f ExitFlags) IsEmpty() bool { return f == 0 }

// Contains reports whether every bit of other is set in f.
func (f ExitFlags) Contains(other ExitFlags) bool { return f&other == other }

// Xor returns the symmetric difference of two flag sets.
func (f ExitFlags) Xor(other ExitFlags) ExitFlags { return f ^ other }

// IsExit reports the plain-passage bit.
func (f ExitFlags) IsExit() bool { return f&ExitFlagExit != 0 }

// IsDoor reports the door bit.
func (f ExitFlags) IsDoor() bool { return f&ExitFlagDoor != 0 }

// IsRoad reports the road/trail bit.
func (f ExitFlags) IsRoad() bool { return f&ExitFlagRoad != 0 }

// IsClimb reports the climb bit.
func (f ExitFlags) IsClimb() bool { return f&ExitFlagClimb != 0 }

// IsNoMatch reports the comparison-exclusion bit.
func (f ExitFlags) IsNoMatch() bool { return f&ExitFlagNoMatch != 0 }

// DoorFlags is the bitset of door properties.
type DoorFlags uint16

// DoorFlags bits.
const (
	DoorFlagHidden DoorFlags = 1 << iota
	DoorFlagNeedKey
	DoorFlagNoBlock
	DoorFlagNoBreak
	DoorFlagNoPick
	DoorFlagDelayed
	DoorFlagCallable
	DoorFlagKnockable
	DoorFlagMagic
	DoorFlagAction
)

// IsEmpty reports whether no bits are set.
func (f DoorFlags) IsEmpty() bool { return f == 0 }

// IsHidden reports whether the door is a secret door.
func (f DoorFlags) IsHidden() bool { return f&DoorFlagHidden != 0 }
