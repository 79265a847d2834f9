package event

import "github.com/mume/mapcore/internal/mapper/world"

// Command is the player action that produced a room snapshot. The
// first seven values align with world.Direction so a movement command
// doubles as an exit index.
type Command uint8

// Commands.
const (
	CmdNorth Command = iota
	CmdSouth
	CmdEast
	CmdWest
	CmdUp
	CmdDown
	CmdUnknown // movement in an undetermined direction
	CmdLook
	CmdFlee
	CmdScout
	CmdNone
)

var commandNames = map[Command]string{
	CmdNorth:   "north",
	CmdSouth:   "south",
	CmdEast:    "east",
	CmdWest:    "west",
	CmdUp:      "up",
	CmdDown:    "down",
	CmdUnknown: "unknown",
	CmdLook:    "look",
	CmdFlee:    "flee",
	CmdScout:   "scout",
	CmdNone:    "none",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "invalid"
}

// IsDirection7 reports whether the command is a movement, including
// movement in an unknown direction.
func (c Command) IsDirection7() bool { return c <= CmdUnknown }

// Direction returns the exit slot the command moves through.
// Non-movement commands map to DirNone.
func (c Command) Direction() world.Direction {
	if c.IsDirection7() {
		return world.Direction(c)
	}
	return world.DirNone
}

// CommandForDirection returns the movement command for an exit slot.
func CommandForDirection(dir world.Direction) Command {
	if int(dir) < int(world.NumExits) {
		return Command(dir)
	}
	return CmdNone
}
