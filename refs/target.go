// Package refs models the named pointers into the commit graph: bookmarks,
// remote bookmarks with tracking state, tags, raw git refs and the per
// workspace working copy pointer. The View bundles all of them into the
// read snapshot the revset engine resolves symbols against.
package refs

import (
	"fmt"
	"strings"

	"github.com/theduke/jj/graph"
)

// Target is the value a named ref points to. It is a closed variant:
// absent, normal (exactly one id) or conflicted (parallel add/remove
// lists, produced when concurrent operations moved the ref differently).
type Target struct {
	adds    []graph.ID
	removes []graph.ID
}

// Absent returns the target of a ref that does not exist.
// Absence is a value, not an error.
func Absent() Target {
	return Target{}
}

// Normal returns an unconflicted target pointing at `id`.
func Normal(id graph.ID) Target {
	return Target{adds: []graph.ID{id}}
}

// Conflict builds a conflicted target from parallel add/remove lists.
// Trivial inputs normalize: one add and no removes is a Normal target,
// no adds at all is Absent.
func Conflict(adds []graph.ID, removes []graph.ID) Target {
	if len(adds) == 0 {
		return Absent()
	}

	if len(adds) == 1 && len(removes) == 0 {
		return Normal(adds[0])
	}

	return Target{
		adds:    append([]graph.ID{}, adds...),
		removes: append([]graph.ID{}, removes...),
	}
}

// IsPresent is false only for an absent target.
func (t Target) IsPresent() bool {
	return len(t.adds) > 0
}

// IsConflict checks if concurrent moves left this ref conflicted.
func (t Target) IsConflict() bool {
	return len(t.adds) > 1 || len(t.removes) > 0
}

// AddedIDs returns the ids a lookup of this ref resolves to: none if
// absent, exactly one if normal, all added sides of a conflict in order.
func (t Target) AddedIDs() []graph.ID {
	return t.adds
}

// RemovedIDs returns the removed sides of a conflict (empty otherwise).
func (t Target) RemovedIDs() []graph.ID {
	return t.removes
}

// ID returns the single id of a normal target.
// The bool is false for absent and conflicted targets.
func (t Target) ID() (graph.ID, bool) {
	if t.IsPresent() && !t.IsConflict() {
		return t.adds[0], true
	}

	return graph.EmptyID, false
}

// String will return a nice representation of a target.
func (t Target) String() string {
	switch {
	case !t.IsPresent():
		return "<absent>"
	case t.IsConflict():
		adds := make([]string, len(t.adds))
		for idx, id := range t.adds {
			adds[idx] = string(id)
		}

		return fmt.Sprintf("<conflict %s>", strings.Join(adds, "|"))
	default:
		return fmt.Sprintf("<ref %s>", t.adds[0])
	}
}

//////////////

// TrackingState says if a remote bookmark is kept in sync with a local
// bookmark of the same name.
type TrackingState int

const (
	// StateNew is a remote bookmark we have seen but do not track.
	StateNew = TrackingState(iota)
	// StateTracking is a remote bookmark paired with a local one.
	StateTracking
)

// String will convert a TrackingState to a human readable form.
func (ts TrackingState) String() string {
	if ts == StateTracking {
		return "tracking"
	}

	return "new"
}

// RemoteRef is the view of a bookmark on one remote.
type RemoteRef struct {
	Target Target
	State  TrackingState
}

// IsTracking checks if the remote bookmark is tracked locally.
func (rr RemoteRef) IsTracking() bool {
	return rr.State == StateTracking
}
