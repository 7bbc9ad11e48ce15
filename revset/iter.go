package revset

import "github.com/theduke/jj/graph"

// stepFunc yields the next commit id of a sequence, or ok=false when the
// sequence is exhausted. A returned error ends the sequence for good.
type stepFunc func() (graph.ID, bool, error)

// genFunc starts a fresh walk over a sequence. Calling it again restarts
// the walk from the beginning, yielding the same ids in the same order.
type genFunc func() stepFunc

// Iter iterates the commit ids of an evaluated revset in descending index
// position order.
//
// The API is modeled after bufio.Scanner and can be used like this:
//
//	it := rs.Iter()
//	for it.Next() {
//		it.ID()
//	}
//
//	if it.Err() != nil {
//		// Handle errors.
//	}
type Iter struct {
	step stepFunc
	curr graph.ID
	err  error
	done bool
}

// Next advances the iterator. It returns false when the sequence is
// exhausted or an error occurred (check Err afterwards).
func (it *Iter) Next() bool {
	if it.done {
		return false
	}

	id, ok, err := it.step()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}

	if !ok {
		it.done = true
		return false
	}

	it.curr = id
	return true
}

// ID returns the id the iterator currently points at.
// Only valid after a Next() that returned true.
func (it *Iter) ID() graph.ID {
	return it.curr
}

// Err returns the first error the walk ran into, if any.
func (it *Iter) Err() error {
	return it.err
}

/////////////// GENERATOR HELPERS ///////////////

// genEmpty is the empty sequence.
func genEmpty() stepFunc {
	return func() (graph.ID, bool, error) {
		return graph.EmptyID, false, nil
	}
}

// genFromSorted replays an already sorted (descending position),
// deduplicated id slice.
func genFromSorted(ids []graph.ID) genFunc {
	return func() stepFunc {
		idx := 0
		return func() (graph.ID, bool, error) {
			if idx >= len(ids) {
				return graph.EmptyID, false, nil
			}

			id := ids[idx]
			idx++
			return id, true, nil
		}
	}
}
