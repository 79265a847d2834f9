// Package compare scores a mapped room against a live room observation
// and returns a three-way verdict. The fuzziness it absorbs is not
// noise: descriptions get edited upstream, fog and darkness truncate
// what the player sees, and secret doors exist on the map before the
// player has found them.
//
// All functions here are pure and total: any inputs produce exactly
// one of the three verdicts, and nothing is ever mutated.
package compare

import (
	"strings"

	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/world"
)

// Result is the three-way comparison verdict.
type Result uint8

// Verdicts, from worst to best.
const (
	// Different rules the room out as a candidate.
	Different Result = iota
	// Tolerance means the room matches but something is stale or was
	// absorbed by the tolerance budget.
	Tolerance
	// Equal means every check passed with no tolerance consumed.
	Equal
)

func (r Result) String() string {
	switch r {
	case Different:
		return "different"
	case Tolerance:
		return "tolerance"
	case Equal:
		return "equal"
	}
	return "invalid"
}

// wordDifference counts mismatched letter positions between two words
// plus the trailing excess of the longer word.
func wordDifference(a, b string) int {
	n := min(len(a), len(b))
	diff := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	return diff + (len(a) - n) + (len(b) - n)
}

// CompareStrings walks two texts word by word, spending a tolerance
// budget on letter-level mismatches. prevTolerance is a percentage of
// the room text's length, converted here to an absolute budget.
//
// An empty event text is not a mismatch: blindness and fog suppress
// text entirely, so there is nothing to compare and the room text
// passes unchallenged. When the room text runs out of words first it
// is only charged for the event's surplus if the room is upToDate; a
// room that is already known stale is allowed to be shorter.
//
// Postcondition: Returns Equal only when the budget survived intact
// and the raw lengths match (catching whitespace-only differences),
// Tolerance when the budget was consumed but never went negative, and
// Different as soon as it did.
func CompareStrings(roomText, eventText string, prevTolerance int, upToDate bool) Result {
	if prevTolerance < 0 {
		prevTolerance = 0
	}
	prevTolerance = prevTolerance * len(roomText) / 100
	tolerance := prevTolerance

	eventWords := strings.Fields(eventText)
	if len(eventWords) == 0 {
		return Equal
	}
	roomWords := strings.Fields(roomText)

	ei, ri := 0, 0
	for tolerance >= 0 {
		if ri == len(roomWords) {
			if upToDate {
				for _, w := range eventWords[ei:] {
					tolerance -= len(w)
				}
			}
			break
		}
		if ei == len(eventWords) {
			for _, w := range roomWords[ri:] {
				tolerance -= len(w)
			}
			break
		}
		tolerance -= wordDifference(eventWords[ei], roomWords[ri])
		ei++
		ri++
	}

	if tolerance < 0 {
		return Different
	}
	if tolerance != prevTolerance {
		return Tolerance
	}
	if len(eventText) != len(roomText) {
		return Tolerance
	}
	return Equal
}

// Compare produces the top-level verdict for one room against one
// observation. tolerance is the percent-of-length budget handed to
// each CompareStrings call.
//
// A matching server id on both sides is authoritative enough to
// downgrade any content mismatch to Tolerance; a differing server id
// on both sides is an immediate Different regardless of content.
func Compare(room *world.RawRoom, ev *event.ParseEvent, tolerance int) Result {
	name := room.Fields.Name
	desc := room.Fields.Desc
	terrain := room.Fields.Terrain
	mapIDMatch := false
	upToDate := true

	if name == "" && desc == "" && terrain == world.TerrainUndefined {
		// user-created placeholder; never reject it outright
		return Tolerance
	}

	// fog and darkness yield events without a server id
	switch {
	case !ev.HasServerID() || !room.HasServerID():
		mapIDMatch = false
	case ev.ServerID() == room.ServerID:
		mapIDMatch = true
	default:
		return Different
	}

	if ev.Terrain() != terrain {
		if mapIDMatch {
			return Tolerance
		}
		return Different
	}

	switch CompareStrings(name, ev.Name(), tolerance, true) {
	case Different:
		if !mapIDMatch {
			return Different
		}
		return Tolerance
	case Tolerance:
		upToDate = false
	}

	switch CompareStrings(desc, ev.Desc(), tolerance, upToDate) {
	case Different:
		if !mapIDMatch {
			return Different
		}
		return Tolerance
	case Tolerance:
		upToDate = false
	}

	switch CompareWeakProps(room, ev) {
	case Different:
		if !mapIDMatch {
			return Different
		}
		return Tolerance
	case Tolerance:
		upToDate = false
	}

	if upToDate && ev.HasServerID() && !mapIDMatch {
		// room is missing its server id
		upToDate = false
	}
	if upToDate && room.Fields.Area != ev.Area() {
		// room is missing its area
		upToDate = false
	}

	if upToDate {
		return Equal
	}
	return Tolerance
}

// CompareWeakProps checks the properties that legitimately drift:
// lighting as seen by the character, and the exit, door, road and
// climb flags per direction. At most one tolerance-consuming exit
// difference is absorbed; a second one rules the room out.
//
// The branch order below encodes game-specific heuristics (secret
// doors, fog-hidden exits, doors masking roads and climbs) whose
// precedence is load-bearing. Do not reorder.
func CompareWeakProps(room *world.RawRoom, ev *event.ParseEvent) Result {
	exitsValid := true
	tolerance := false

	connected := ev.ConnectedRoomFlags()
	prompt := ev.PromptFlags()
	if prompt.IsValid() && connected.IsValid() && connected.IsTrollMode() {
		light := room.Fields.Light
		sun := room.Fields.Sundeath
		if prompt.IsLit() && light != world.LightLit && sun == world.SundeathNoSundeath {
			// prompt sunlight overrides an unlit room we know is troll safe
			tolerance = true
		} else if prompt.IsDark() && light != world.LightDark && sun == world.SundeathNoSundeath {
			tolerance = true
		}
	}

	eventExits := ev.ExitsFlags()
	if eventExits.IsValid() {
		previousDifference := false
		for _, dir := range world.NESWUD {
			roomExit := room.Exit(dir)
			roomFlags := roomExit.ExitFlags
			if !roomFlags.IsEmpty() {
				exitsValid = true
				if previousDifference {
					return Different
				}
			}
			if roomFlags.IsNoMatch() {
				continue
			}
			hasLight := connected.IsValid() && connected.DirectSunlight(dir) == event.SawDirectSunlight
			eventFlags := eventExits.Get(dir)
			diff := eventFlags.Xor(roomFlags)

			switch {
			case diff.IsExit() || diff.IsDoor():
				if !exitsValid {
					// no exits recorded in the room yet
					previousDifference = true
					continue
				}
				switch {
				case tolerance:
					// a second difference is one too many
					return Different
				case !roomFlags.IsExit() && eventFlags.IsDoor():
					// no mapped exit here, so this is likely a newly
					// found secret door
					tolerance = true
				case roomExit.DoorIsHidden() && !eventFlags.IsDoor():
					// hidden door simply not visible right now
				case roomFlags.IsExit() && roomFlags.IsDoor() && !eventFlags.IsExit():
					// mapped door is likely a secret one
					tolerance = true
				default:
					return Different
				}
			case diff.IsRoad():
				switch {
				case roomFlags.IsRoad() && hasLight:
					// orcs and trolls only see trails in darkness
				case roomFlags.IsRoad() && !eventFlags.IsRoad() && roomFlags.IsDoor() && eventFlags.IsDoor():
					// closed door hiding a known road
				case !roomFlags.IsRoad() && eventFlags.IsRoad() && roomFlags.IsDoor() && eventFlags.IsDoor():
					// previously closed door was hiding a road
					tolerance = true
				default:
					tolerance = true
				}
			case diff.IsClimb():
				if roomFlags.IsDoor() && roomFlags.IsClimb() {
					// closed door hiding a known climb
				} else {
					tolerance = true
				}
			}
		}
	}

	if tolerance || !exitsValid {
		return Tolerance
	}
	return Equal
}
