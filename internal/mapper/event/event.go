// Package event models a single observed room: the text, flags and
// server identifiers parsed out of one arrival, look or scout. Events
// are immutable after construction so concurrent path candidates can
// share one instance without copying.
package event

import (
	"fmt"
	"strings"

	"github.com/mume/mapcore/internal/mapper/world"
)

// Params carries everything a parser extracted for one room snapshot.
// Zero values mean "not observed".
type Params struct {
	Command       Command
	ServerID      world.ServerID
	Name          string
	Desc          string
	Contents      string
	Area          string
	Terrain       world.Terrain
	Exits         ExitsFlags
	Prompt        PromptFlags
	Connected     ConnectedRoomFlags
	ServerExitIDs [6]world.ServerID
	NumSkipped    int
}

// ParseEvent is an immutable room observation.
type ParseEvent struct {
	p Params
}

// New builds an event from parser output.
func New(p Params) *ParseEvent {
	return &ParseEvent{p: p}
}

// Command returns the action that produced the snapshot.
func (e *ParseEvent) Command() Command { return e.p.Command }

// ServerID returns the server-assigned room id, or the invalid
// sentinel when the server sent none.
func (e *ParseEvent) ServerID() world.ServerID { return e.p.ServerID }

// Name returns the observed room name.
func (e *ParseEvent) Name() string { return e.p.Name }

// Desc returns the observed static description.
func (e *ParseEvent) Desc() string { return e.p.Desc }

// Contents returns the dynamic description (mobs, items).
func (e *ParseEvent) Contents() string { return e.p.Contents }

// Area returns the zone name, when announced.
func (e *ParseEvent) Area() string { return e.p.Area }

// Terrain returns the observed terrain type.
func (e *ParseEvent) Terrain() world.Terrain { return e.p.Terrain }

// ExitsFlags returns the per-direction exit observations.
func (e *ParseEvent) ExitsFlags() ExitsFlags { return e.p.Exits }

// PromptFlags returns the light observation from the prompt.
func (e *ParseEvent) PromptFlags() PromptFlags { return e.p.Prompt }

// ConnectedRoomFlags returns the per-direction sunlight observations.
func (e *ParseEvent) ConnectedRoomFlags() ConnectedRoomFlags { return e.p.Connected }

// ServerExitID returns the server id seen through one exit, or the
// invalid sentinel.
func (e *ParseEvent) ServerExitID(dir world.Direction) world.ServerID {
	if int(dir) >= len(e.p.ServerExitIDs) {
		return world.InvalidServerID
	}
	return e.p.ServerExitIDs[dir]
}

// NumSkipped is how many unparsed rooms were crossed before this one,
// e.g. while fleeing through darkness.
func (e *ParseEvent) NumSkipped() int { return e.p.NumSkipped }

// HasServerID reports whether the server identified the room.
func (e *ParseEvent) HasServerID() bool { return e.p.ServerID.Valid() }

// HasNameDescFlags reports whether the snapshot carries any of the
// identifying content a match can be based on.
func (e *ParseEvent) HasNameDescFlags() bool {
	return e.p.Name != "" || e.p.Desc != "" || e.p.Exits.IsValid()
}

// CanCreateNewRoom reports whether the snapshot is complete enough to
// seed a brand-new room record.
func (e *ParseEvent) CanCreateNewRoom() bool {
	return e.p.Name != "" && e.p.Desc != "" && e.p.Exits.IsValid()
}

// Content flattens the event into the payload an update change
// carries.
func (e *ParseEvent) Content() world.RoomContent {
	c := world.RoomContent{
		ServerID: e.p.ServerID,
		Name:     e.p.Name,
		Desc:     e.p.Desc,
		Contents: e.p.Contents,
		Area:     e.p.Area,
		Terrain:  e.p.Terrain,
	}
	if e.p.Exits.IsValid() {
		c.ExitsValid = true
		for _, dir := range world.NESWUD {
			c.Exits[dir] = e.p.Exits.Get(dir)
		}
	}
	return c
}

func (e *ParseEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %q", e.p.Command, e.p.Name)
	if e.p.ServerID.Valid() {
		fmt.Fprintf(&b, " #%d", e.p.ServerID)
	}
	if e.p.NumSkipped > 0 {
		fmt.Fprintf(&b, " skipped=%d", e.p.NumSkipped)
	}
	return b.String()
}
