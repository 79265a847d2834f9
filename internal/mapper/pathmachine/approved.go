package pathmachine

import (
	"github.com/mume/mapcore/internal/mapper/compare"
	"github.com/mume/mapcore/internal/mapper/event"
	"github.com/mume/mapcore/internal/mapper/world"
)

// Approved disambiguates the player's live position: it scores each
// streamed candidate against the event and keeps the single best
// match. Two distinct plausible candidates make the pass ambiguous,
// which is a legitimate outcome, not an error.
type Approved struct {
	m                 world.Map
	event             *event.ParseEvent
	matchingTolerance int

	matched     world.RoomHandle
	owner       RoomAdmin
	moreThanOne bool
	update      bool

	// results are memoized for the lifetime of the instance: the same
	// candidates reappear across widening retries, and the comparison
	// is a pure function of immutable inputs. ReleaseMatch keeps this
	// cache on purpose.
	cache map[world.RoomID]compare.Result
}

// NewApproved builds a disambiguation pass for one event against one
// map snapshot. Panics if ev is nil; callers construct events before
// matching ever starts.
func NewApproved(m world.Map, ev *event.ParseEvent, matchingTolerance int) *Approved {
	if ev == nil {
		panic("pathmachine: Approved requires an event")
	}
	return &Approved{
		m:                 m,
		event:             ev,
		matchingTolerance: matchingTolerance,
		cache:             map[world.RoomID]compare.Result{},
	}
}

// ReceiveRoom scores one candidate. The first non-Different candidate
// becomes the match; any later distinct one flips the pass to
// ambiguous regardless of arrival order.
func (a *Approved) ReceiveRoom(admin RoomAdmin, room world.RoomHandle) {
	if !room.IsValid() {
		return
	}
	id := room.ID()
	result, ok := a.cache[id]
	if !ok {
		result = compare.Compare(room.Raw(), a.event, a.matchingTolerance)
		a.cache[id] = result
	}
	if result == compare.Different {
		admin.ReleaseRoom(a, id)
		return
	}
	if a.matched.IsValid() {
		if a.matched.ID() == id {
			// already ours; custody is per distinct room
			return
		}
		a.moreThanOne = true
		admin.ReleaseRoom(a, id)
		return
	}
	a.matched = room
	a.owner = admin
	switch result {
	case compare.Tolerance:
		if a.event.HasNameDescFlags() || a.event.HasServerID() {
			a.update = true
		}
	case compare.Equal:
		// content matches, but the neighbors the server names may
		// still disagree with the mapped graph
		a.checkExitServerIDs(room)
	}
}

func (a *Approved) checkExitServerIDs(room world.RoomHandle) {
	for _, dir := range world.NESWUD {
		evID := a.event.ServerExitID(dir)
		if !evID.Valid() {
			continue
		}
		e := room.Raw().Exit(dir)
		if !e.OutIsUnique() {
			a.update = true
			continue
		}
		to := a.m.FindRoomHandle(e.OutFirst())
		if !to.IsValid() || to.Raw().ServerID != evID {
			a.update = true
		}
	}
}

// OneMatch returns the matched room, or an invalid handle when no
// candidate matched or more than one did.
func (a *Approved) OneMatch() world.RoomHandle {
	if a.moreThanOne {
		return world.RoomHandle{}
	}
	return a.matched
}

// NeedsUpdate reports whether the matched room is stale and should be
// synced from the event.
func (a *Approved) NeedsUpdate() bool { return a.update }

// ReleaseMatch resets the pass so the caller can retry with a wider
// search, releasing the current candidate. The compare cache survives.
func (a *Approved) ReleaseMatch() {
	if a.matched.IsValid() {
		a.owner.ReleaseRoom(a, a.matched.ID())
	}
	a.update = false
	a.matched = world.RoomHandle{}
	a.moreThanOne = false
	a.owner = nil
}

// Close settles custody of whatever is still held: the match is kept
// when it was unambiguous, released otherwise. Must be called exactly
// once when the pass is over; further calls are no-ops.
func (a *Approved) Close() {
	if a.owner == nil || !a.matched.IsValid() {
		return
	}
	if a.moreThanOne {
		a.owner.ReleaseRoom(a, a.matched.ID())
	} else {
		a.owner.KeepRoom(a, a.matched.ID())
	}
	a.matched = world.RoomHandle{}
	a.owner = nil
}
