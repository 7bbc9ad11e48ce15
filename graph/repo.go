package graph

import (
	"fmt"
	"sort"
	"strings"
)

// RootID is the id of the root commit. It hashes to all zeros since the
// root has no content of its own.
var (
	rootID       = ID(strings.Repeat("0", IDHexLen))
	rootChangeID = ChangeID(strings.Repeat("0", ChangeIDHexLen))
)

type diffKey struct {
	parent ID
	child  ID
}

// Repo is an in-memory implementation of Store and Index. Commits are
// append-only and must be added parents-first; the insertion order doubles
// as the topological position.
type Repo struct {
	order      []ID
	byID       map[ID]*Commit
	children   map[ID][]ID
	byChange   map[ChangeID][]ID
	conflicted map[ID]bool
	diffs      map[diffKey][]FileChange

	// lazily built position cache, dropped on Add
	positions map[ID]int

	// sorted id/change-id hex strings for prefix lookup
	sortedIDs     []string
	sortedChanges []string
}

// NewRepo creates an empty repository holding only the root commit.
func NewRepo() *Repo {
	rp := &Repo{
		byID:       make(map[ID]*Commit),
		children:   make(map[ID][]ID),
		byChange:   make(map[ChangeID][]ID),
		conflicted: make(map[ID]bool),
		diffs:      make(map[diffKey][]FileChange),
	}

	root := &Commit{
		ID:     rootID,
		Change: rootChangeID,
	}

	if err := rp.Add(root); err != nil {
		// Adding the root to an empty repo cannot fail.
		panic(err)
	}

	return rp
}

// Add appends `cmt` to the history. All parents must have been added
// before. The commit gets the next free position.
func (rp *Repo) Add(cmt *Commit) error {
	if _, ok := rp.byID[cmt.ID]; ok {
		return fmt.Errorf("commit exists already: %s", cmt.ID)
	}

	if len(cmt.Parents) == 0 && len(rp.order) > 0 {
		return fmt.Errorf("only the root commit may have no parents: %s", cmt.ID)
	}

	for _, parent := range cmt.Parents {
		if _, ok := rp.byID[parent]; !ok {
			return fmt.Errorf("parent of %s was not added yet: %s", cmt.ID, parent)
		}
	}

	rp.byID[cmt.ID] = cmt
	rp.order = append(rp.order, cmt.ID)
	rp.positions = nil
	rp.byChange[cmt.Change] = append(rp.byChange[cmt.Change], cmt.ID)

	for _, parent := range cmt.Parents {
		rp.children[parent] = append(rp.children[parent], cmt.ID)
	}

	insortString(&rp.sortedIDs, string(cmt.ID))

	// A divergent change indexes the same change id more than once.
	if len(rp.byChange[cmt.Change]) == 1 {
		insortString(&rp.sortedChanges, string(cmt.Change))
	}

	return nil
}

// SetConflict marks the tree of `id` as (un)conflicted.
func (rp *Repo) SetConflict(id ID, isConflicted bool) {
	rp.conflicted[id] = isConflicted
}

// SetDiff records the diff between `parent` and `child`.
// Use EmptyID as parent for the diff against the empty tree.
func (rp *Repo) SetDiff(parent, child ID, changes []FileChange) {
	rp.diffs[diffKey{parent: parent, child: child}] = changes
}

/////////////// STORE INTERFACE ///////////////

// CommitByID returns the commit with `id` or ErrNoSuchCommit.
func (rp *Repo) CommitByID(id ID) (*Commit, error) {
	cmt, ok := rp.byID[id]
	if !ok {
		return nil, ErrNoSuchCommit{ID: id}
	}

	return cmt, nil
}

// HasConflict checks if the tree of `id` has unresolved conflicts.
func (rp *Repo) HasConflict(id ID) (bool, error) {
	if _, ok := rp.byID[id]; !ok {
		return false, ErrNoSuchCommit{ID: id}
	}

	return rp.conflicted[id], nil
}

// Diff returns the recorded changes between `parent` and `child`.
// Unrecorded pairs yield an empty diff.
func (rp *Repo) Diff(parent, child ID) ([]FileChange, error) {
	if _, ok := rp.byID[child]; !ok {
		return nil, ErrNoSuchCommit{ID: child}
	}

	return rp.diffs[diffKey{parent: parent, child: child}], nil
}

/////////////// INDEX INTERFACE ///////////////

// Position returns the topological position of `id`.
func (rp *Repo) Position(id ID) (int, bool) {
	// Positions are queried a lot; build the map lazily once.
	if rp.positions == nil {
		rp.positions = make(map[ID]int, len(rp.order))
		for pos, curr := range rp.order {
			rp.positions[curr] = pos
		}
	}

	pos, ok := rp.positions[id]
	return pos, ok
}

// IsAncestor checks if `ancestor` is reachable from `descendant` by
// following parent edges. Reflexive.
func (rp *Repo) IsAncestor(ancestor, descendant ID) bool {
	ancPos, ok := rp.Position(ancestor)
	if !ok {
		return false
	}

	if _, ok := rp.Position(descendant); !ok {
		return false
	}

	if ancestor == descendant {
		return true
	}

	seen := map[ID]bool{descendant: true}
	stack := []ID{descendant}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, parent := range rp.byID[curr].Parents {
			if parent == ancestor {
				return true
			}

			if seen[parent] {
				continue
			}

			// Parents below the ancestor's position cannot reach it.
			if pos, _ := rp.Position(parent); pos < ancPos {
				continue
			}

			seen[parent] = true
			stack = append(stack, parent)
		}
	}

	return false
}

// Parents returns the direct parents of `id`.
func (rp *Repo) Parents(id ID) []ID {
	cmt, ok := rp.byID[id]
	if !ok {
		return nil
	}

	return cmt.Parents
}

// Children returns the direct children of `id`.
func (rp *Repo) Children(id ID) []ID {
	return rp.children[id]
}

// RootID returns the id of the root commit.
func (rp *Repo) RootID() ID {
	return rootID
}

// AllIDs returns all commit ids, newest position first.
func (rp *Repo) AllIDs() []ID {
	all := make([]ID, 0, len(rp.order))
	for idx := len(rp.order) - 1; idx >= 0; idx-- {
		all = append(all, rp.order[idx])
	}

	return all
}

// ResolveIDPrefix matches `prefix` against all commit ids.
func (rp *Repo) ResolveIDPrefix(prefix string) ([]ID, PrefixMatch) {
	matches := prefixRange(rp.sortedIDs, prefix)
	switch len(matches) {
	case 0:
		return nil, PrefixNone
	case 1:
		return []ID{ID(matches[0])}, PrefixUnique
	default:
		return nil, PrefixAmbiguous
	}
}

// ResolveChangePrefix matches `prefix` against all change ids. A unique
// change may map to several commits (a divergent change); they are
// returned in descending position order.
func (rp *Repo) ResolveChangePrefix(prefix string) ([]ID, PrefixMatch) {
	matches := prefixRange(rp.sortedChanges, prefix)
	switch len(matches) {
	case 0:
		return nil, PrefixNone
	case 1:
		ids := append([]ID{}, rp.byChange[ChangeID(matches[0])]...)
		sort.Slice(ids, func(i, j int) bool {
			posI, _ := rp.Position(ids[i])
			posJ, _ := rp.Position(ids[j])
			return posI > posJ
		})

		return ids, PrefixUnique
	default:
		return nil, PrefixAmbiguous
	}
}

//////////////

// prefixRange returns all entries of the sorted `haystack`
// that start with `prefix`.
func prefixRange(haystack []string, prefix string) []string {
	lo := sort.SearchStrings(haystack, prefix)
	hi := lo

	for hi < len(haystack) && strings.HasPrefix(haystack[hi], prefix) {
		hi++
	}

	return haystack[lo:hi]
}

// insortString inserts `entry` into the sorted slice `haystack`.
func insortString(haystack *[]string, entry string) {
	idx := sort.SearchStrings(*haystack, entry)
	*haystack = append(*haystack, "")
	copy((*haystack)[idx+1:], (*haystack)[idx:])
	(*haystack)[idx] = entry
}

// Assert that Repo implements both contracts:
var (
	_ Store = &Repo{}
	_ Index = &Repo{}
)
