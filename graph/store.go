package graph

import "fmt"

// FileChange is one path that changed between a commit and one of its
// parents, together with the lines the change inserted and removed.
type FileChange struct {
	Path    string
	Added   []string
	Removed []string
}

// Store gives read access to commit contents. The revset engine borrows a
// store for the duration of one evaluation; it never writes through it.
type Store interface {
	// CommitByID returns the commit with `id` or an ErrNoSuchCommit.
	CommitByID(id ID) (*Commit, error)

	// HasConflict checks if the tree of `id` contains at least one
	// unresolved multi-way conflict.
	HasConflict(id ID) (bool, error)

	// Diff computes the changes between `parent` and `child`.
	// `parent` may be EmptyID to diff against the empty tree.
	Diff(parent, child ID) ([]FileChange, error)
}

// Index answers ancestry queries over the whole history. Every commit has a
// position consistent with topological order: a parent's position is always
// lower than any of its children's. The root commit sits at position 0.
type Index interface {
	// Position returns the topological position of `id`,
	// or false if the index does not know the commit.
	Position(id ID) (int, bool)

	// IsAncestor checks if `ancestor` is an ancestor of `descendant`.
	// Every commit is an ancestor of itself.
	IsAncestor(ancestor, descendant ID) bool

	// Parents returns the direct parents of `id`.
	Parents(id ID) []ID

	// Children returns the direct children of `id`.
	Children(id ID) []ID

	// RootID returns the id of the root commit.
	RootID() ID

	// AllIDs returns every indexed commit id in descending position order.
	AllIDs() []ID

	// ResolveIDPrefix matches `prefix` against the commit id namespace.
	// On a unique match the returned slice holds exactly that id.
	ResolveIDPrefix(prefix string) ([]ID, PrefixMatch)

	// ResolveChangePrefix matches `prefix` against the change id namespace.
	// A unique match may still yield several commit ids: a divergent change
	// has more than one visible commit. The ids come in descending
	// position order.
	ResolveChangePrefix(prefix string) ([]ID, PrefixMatch)
}

//////////////

// ErrNoSuchCommit is returned when a commit id is not present in the store.
// Ids handed out by the View or Index should always be present; seeing this
// error for one of those signals an integrity problem.
type ErrNoSuchCommit struct {
	ID ID
}

func (e ErrNoSuchCommit) Error() string {
	return fmt.Sprintf("no such commit in store: '%s'", e.ID)
}

// IsErrNoSuchCommit asserts that `err` means a missing commit.
func IsErrNoSuchCommit(err error) bool {
	_, ok := err.(ErrNoSuchCommit)
	return ok
}
