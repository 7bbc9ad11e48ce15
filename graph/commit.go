package graph

import (
	"fmt"
	"time"
)

// Signature names the person that authored or committed a commit,
// together with the time they did so.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit is one node of the history DAG. It is an immutable value; the
// revset engine only ever reads commits through a Store.
type Commit struct {
	// ID is the content derived commit id.
	ID ID

	// Change is the rewrite-stable change id.
	Change ChangeID

	// Parents are the direct parent ids, in order.
	// Only the root commit has no parents.
	Parents []ID

	// Description is the commit message (might be empty).
	Description string

	// Author is who wrote the change.
	Author Signature

	// Committer is who recorded the commit (and when).
	Committer Signature
}

// IsRoot checks if this is the (parentless) root commit.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// IsMerge checks if the commit has two or more parents.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) >= 2
}

// String will return a nice representation of a commit.
func (c *Commit) String() string {
	return fmt.Sprintf("<commit %s (%s)>", c.ID, c.Description)
}
