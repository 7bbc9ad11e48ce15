package revset

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/theduke/jj/graph"
)

// evalContext bundles the snapshot one evaluation runs against. The store
// and index are borrowed from the surrounding repository and must outlive
// the returned Revset.
type evalContext struct {
	store graph.Store
	idx   graph.Index
	cfg   *Config
}

// pos returns the index position of `id`. Ids sourced from the View or
// Index are always known; anything else is an integrity error.
func (ec *evalContext) pos(id graph.ID) (int, error) {
	pos, ok := ec.idx.Position(id)
	if !ok {
		return 0, graph.ErrNoSuchCommit{ID: id}
	}

	return pos, nil
}

// eval compiles a resolved expression into a restartable generator.
// Wherever the operator allows it the generator walks lazily; operators
// that need the full input (heads, roots, latest, reachable e.g.)
// materialize their sub-result once at compile time.
func (ec *evalContext) eval(x Expr) (genFunc, error) {
	switch e := x.(type) {
	case NoneExpr:
		return func() stepFunc { return genEmpty() }, nil
	case CommitsExpr:
		ids, err := ec.sortDescByPos(e.IDs)
		if err != nil {
			return nil, err
		}

		return genFromSorted(ids), nil
	case AncestorsExpr:
		seeds, err := ec.materialize(e.Heads)
		if err != nil {
			return nil, err
		}

		return ec.genAncestors(seeds, e.Limit), nil
	case DescendantsExpr:
		roots, err := ec.materialize(e.Roots)
		if err != nil {
			return nil, err
		}

		ids, err := ec.walkDescendants(roots, e.Limit)
		if err != nil {
			return nil, err
		}

		return genFromSorted(ids), nil
	case ParentsExpr:
		return ec.evalGeneration(e.Of, e.Gen, ec.idx.Parents)
	case ChildrenExpr:
		return ec.evalGeneration(e.Of, e.Gen, ec.idx.Children)
	case DagRangeExpr:
		roots, err := ec.materialize(e.Roots)
		if err != nil {
			return nil, err
		}

		heads, err := ec.materialize(e.Heads)
		if err != nil {
			return nil, err
		}

		ids, err := ec.dagRange(roots, heads)
		if err != nil {
			return nil, err
		}

		return genFromSorted(ids), nil
	case RangeExpr:
		from, err := ec.materialize(e.From)
		if err != nil {
			return nil, err
		}

		to, err := ec.materialize(e.To)
		if err != nil {
			return nil, err
		}

		return ec.genDifference(ec.genAncestors(to, -1), ec.genAncestors(from, -1)), nil
	case HeadsExpr:
		ids, err := ec.materialize(e.Of)
		if err != nil {
			return nil, err
		}

		return genFromSorted(ec.headsOf(ids)), nil
	case RootsExpr:
		ids, err := ec.materialize(e.Of)
		if err != nil {
			return nil, err
		}

		return genFromSorted(ec.rootsOf(ids)), nil
	case ConnectedExpr:
		ids, err := ec.materialize(e.Of)
		if err != nil {
			return nil, err
		}

		connected, err := ec.dagRange(ec.rootsOf(ids), ec.headsOf(ids))
		if err != nil {
			return nil, err
		}

		return genFromSorted(connected), nil
	case ReachableExpr:
		return ec.evalReachable(e)
	case UnionExpr:
		l, err := ec.eval(e.L)
		if err != nil {
			return nil, err
		}

		r, err := ec.eval(e.R)
		if err != nil {
			return nil, err
		}

		return ec.genUnion(l, r), nil
	case IntersectionExpr:
		return ec.evalIntersection(e)
	case DifferenceExpr:
		l, err := ec.eval(e.L)
		if err != nil {
			return nil, err
		}

		r, err := ec.eval(e.R)
		if err != nil {
			return nil, err
		}

		return ec.genDifference(l, r), nil
	case FilterExpr:
		// The resolver intersects every bare filter with its candidate
		// set; a filter showing up here has none to select from. The
		// whole index is not a substitute: it includes commits no
		// visible head reaches.
		return nil, fmt.Errorf("filter '%s' has no candidate set; intersect it with one", e)
	case LatestExpr:
		ids, err := ec.materialize(e.Of)
		if err != nil {
			return nil, err
		}

		selected, err := ec.latestOf(ids, e.Count)
		if err != nil {
			return nil, err
		}

		return genFromSorted(selected), nil
	case MergesExpr:
		src, err := ec.eval(e.Of)
		if err != nil {
			return nil, err
		}

		return ec.genMerges(src), nil
	default:
		return nil, fmt.Errorf("bug: expression was not resolved: %T", x)
	}
}

/////////////// MATERIALIZATION ///////////////

// materialize evaluates a sub-expression into a descending position id
// slice.
func (ec *evalContext) materialize(x Expr) ([]graph.ID, error) {
	gen, err := ec.eval(x)
	if err != nil {
		return nil, err
	}

	var ids []graph.ID
	step := gen()

	for {
		id, ok, err := step()
		if err != nil {
			return nil, err
		}

		if !ok {
			return ids, nil
		}

		ids = append(ids, id)
	}
}

// sortDescByPos deduplicates `ids` and sorts them by descending index
// position.
func (ec *evalContext) sortDescByPos(ids []graph.ID) ([]graph.ID, error) {
	type posID struct {
		pos int
		id  graph.ID
	}

	seen := make(map[graph.ID]bool, len(ids))
	entries := make([]posID, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		seen[id] = true
		pos, err := ec.pos(id)
		if err != nil {
			return nil, err
		}

		entries = append(entries, posID{pos: pos, id: id})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].pos > entries[j].pos
	})

	out := make([]graph.ID, len(entries))
	for idx, entry := range entries {
		out[idx] = entry.id
	}

	return out, nil
}

/////////////// GRAPH WALKS ///////////////

// posHeap is a max-heap of (position, id) pairs.
type posHeap struct {
	positions []int
	ids       []graph.ID
}

func (h *posHeap) Len() int { return len(h.positions) }

func (h *posHeap) Less(i, j int) bool {
	return h.positions[i] > h.positions[j]
}

func (h *posHeap) Swap(i, j int) {
	h.positions[i], h.positions[j] = h.positions[j], h.positions[i]
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
}

func (h *posHeap) Push(x interface{}) {
	entry := x.(posEntry)
	h.positions = append(h.positions, entry.pos)
	h.ids = append(h.ids, entry.id)
}

func (h *posHeap) Pop() interface{} {
	n := len(h.positions)
	entry := posEntry{pos: h.positions[n-1], id: h.ids[n-1]}
	h.positions = h.positions[:n-1]
	h.ids = h.ids[:n-1]
	return entry
}

type posEntry struct {
	pos int
	id  graph.ID
}

// genAncestors lazily walks the ancestors of `seeds` (seeds included) in
// descending position order. A limit >= 0 stops the walk after that many
// commits; the seeds count first.
func (ec *evalContext) genAncestors(seeds []graph.ID, limit int) genFunc {
	return func() stepFunc {
		ph := &posHeap{}
		pushed := make(map[graph.ID]bool)

		push := func(id graph.ID) error {
			if pushed[id] {
				return nil
			}

			pos, err := ec.pos(id)
			if err != nil {
				return err
			}

			pushed[id] = true
			heap.Push(ph, posEntry{pos: pos, id: id})
			return nil
		}

		var seedErr error
		for _, seed := range seeds {
			if err := push(seed); err != nil {
				seedErr = err
				break
			}
		}

		count := 0
		return func() (graph.ID, bool, error) {
			if seedErr != nil {
				return graph.EmptyID, false, seedErr
			}

			if limit >= 0 && count >= limit {
				return graph.EmptyID, false, nil
			}

			if ph.Len() == 0 {
				return graph.EmptyID, false, nil
			}

			entry := heap.Pop(ph).(posEntry)
			for _, parent := range ec.idx.Parents(entry.id) {
				if err := push(parent); err != nil {
					return graph.EmptyID, false, err
				}
			}

			count++
			return entry.id, true, nil
		}
	}
}

// walkDescendants collects the descendants of `roots` (roots included) by
// walking child edges in ascending position order, then returns them in
// descending position order. A limit >= 0 keeps only the first commits of
// the ascending walk, roots counted first.
func (ec *evalContext) walkDescendants(roots []graph.ID, limit int) ([]graph.ID, error) {
	ph := &minPosHeap{}
	pushed := make(map[graph.ID]bool)

	push := func(id graph.ID) error {
		if pushed[id] {
			return nil
		}

		pos, err := ec.pos(id)
		if err != nil {
			return err
		}

		pushed[id] = true
		heap.Push(ph, posEntry{pos: pos, id: id})
		return nil
	}

	for _, root := range roots {
		if err := push(root); err != nil {
			return nil, err
		}
	}

	var ascending []graph.ID
	for ph.Len() > 0 {
		if limit >= 0 && len(ascending) >= limit {
			break
		}

		entry := heap.Pop(ph).(posEntry)
		ascending = append(ascending, entry.id)

		for _, child := range ec.idx.Children(entry.id) {
			if err := push(child); err != nil {
				return nil, err
			}
		}
	}

	// Reverse into descending position order:
	for i, j := 0, len(ascending)-1; i < j; i, j = i+1, j-1 {
		ascending[i], ascending[j] = ascending[j], ascending[i]
	}

	return ascending, nil
}

// minPosHeap is a min-heap of (position, id) pairs.
type minPosHeap struct {
	posHeap
}

func (h *minPosHeap) Less(i, j int) bool {
	return h.positions[i] < h.positions[j]
}

// dagRange walks ancestors of `heads` and keeps those that also descend
// from `roots`, both ends included.
func (ec *evalContext) dagRange(roots, heads []graph.ID) ([]graph.ID, error) {
	descendants, err := ec.walkDescendants(roots, -1)
	if err != nil {
		return nil, err
	}

	inDescendants := make(map[graph.ID]bool, len(descendants))
	for _, id := range descendants {
		inDescendants[id] = true
	}

	var out []graph.ID
	step := ec.genAncestors(heads, -1)()

	for {
		id, ok, err := step()
		if err != nil {
			return nil, err
		}

		if !ok {
			return out, nil
		}

		if inDescendants[id] {
			out = append(out, id)
		}
	}
}

// headsOf keeps the commits of `ids` (descending position order) that no
// other member descends from.
func (ec *evalContext) headsOf(ids []graph.ID) []graph.ID {
	var kept []graph.ID

	for _, id := range ids {
		isHead := true
		for _, head := range kept {
			if ec.idx.IsAncestor(id, head) {
				isHead = false
				break
			}
		}

		if isHead {
			kept = append(kept, id)
		}
	}

	return kept
}

// rootsOf keeps the commits of `ids` that no other member is an ancestor
// of. The result stays in descending position order.
func (ec *evalContext) rootsOf(ids []graph.ID) []graph.ID {
	var kept []graph.ID

	// Walk ascending so candidate ancestors are already kept:
	for idx := len(ids) - 1; idx >= 0; idx-- {
		id := ids[idx]

		isRoot := true
		for _, root := range kept {
			if ec.idx.IsAncestor(root, id) {
				isRoot = false
				break
			}
		}

		if isRoot {
			kept = append(kept, id)
		}
	}

	// Back to descending position order:
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}

	return kept
}

func (ec *evalContext) evalReachable(e ReachableExpr) (genFunc, error) {
	domainIDs, err := ec.materialize(e.Domain)
	if err != nil {
		return nil, err
	}

	sourceIDs, err := ec.materialize(e.Sources)
	if err != nil {
		return nil, err
	}

	domain := make(map[graph.ID]bool, len(domainIDs))
	for _, id := range domainIDs {
		domain[id] = true
	}

	// Flood the domain-induced subgraph from the sources, following both
	// parent and child edges until nothing new turns up.
	reached := make(map[graph.ID]bool)
	var frontier []graph.ID

	for _, id := range sourceIDs {
		if domain[id] && !reached[id] {
			reached[id] = true
			frontier = append(frontier, id)
		}
	}

	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		neighbors := append([]graph.ID{}, ec.idx.Parents(id)...)
		neighbors = append(neighbors, ec.idx.Children(id)...)

		for _, neighbor := range neighbors {
			if domain[neighbor] && !reached[neighbor] {
				reached[neighbor] = true
				frontier = append(frontier, neighbor)
			}
		}
	}

	// The domain ids are already in descending position order:
	var out []graph.ID
	for _, id := range domainIDs {
		if reached[id] {
			out = append(out, id)
		}
	}

	return genFromSorted(out), nil
}

// evalGeneration applies the `step` edge function (parents or children)
// `gen` times to the input set.
func (ec *evalContext) evalGeneration(of Expr, gen int, step func(graph.ID) []graph.ID) (genFunc, error) {
	ids, err := ec.materialize(of)
	if err != nil {
		return nil, err
	}

	current := make(map[graph.ID]bool, len(ids))
	for _, id := range ids {
		current[id] = true
	}

	for i := 0; i < gen; i++ {
		next := make(map[graph.ID]bool)
		for id := range current {
			for _, neighbor := range step(id) {
				next[neighbor] = true
			}
		}

		current = next
	}

	flat := make([]graph.ID, 0, len(current))
	for id := range current {
		flat = append(flat, id)
	}

	sorted, err := ec.sortDescByPos(flat)
	if err != nil {
		return nil, err
	}

	return genFromSorted(sorted), nil
}

// latestOf selects the `count` members with the greatest committer
// timestamp (higher position wins ties) and emits them in descending
// position order.
func (ec *evalContext) latestOf(ids []graph.ID, count int) ([]graph.ID, error) {
	if count <= 0 || len(ids) == 0 {
		return nil, nil
	}

	type entry struct {
		id   graph.ID
		when int64
		pos  int
	}

	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		cmt, err := ec.store.CommitByID(id)
		if err != nil {
			return nil, err
		}

		pos, err := ec.pos(id)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry{
			id:   id,
			when: cmt.Committer.When.UnixMilli(),
			pos:  pos,
		})
	}

	// Best candidates first: later timestamp, then later position.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].when != entries[j].when {
			return entries[i].when > entries[j].when
		}

		return entries[i].pos > entries[j].pos
	})

	if count < len(entries) {
		entries = entries[:count]
	}

	selected := make(map[graph.ID]bool, len(entries))
	for _, entry := range entries {
		selected[entry.id] = true
	}

	// `ids` is already in descending position order:
	var out []graph.ID
	for _, id := range ids {
		if selected[id] {
			out = append(out, id)
		}
	}

	return out, nil
}

/////////////// LAZY COMBINATORS ///////////////

// peeker pulls from a step function one element ahead.
type peeker struct {
	step stepFunc
	curr graph.ID
	pos  int
	ok   bool
	err  error
}

func (ec *evalContext) newPeeker(step stepFunc) *peeker {
	p := &peeker{step: step}
	p.advance(ec)
	return p
}

func (p *peeker) advance(ec *evalContext) {
	if p.err != nil {
		return
	}

	p.curr, p.ok, p.err = p.step()
	if p.err != nil || !p.ok {
		return
	}

	p.pos, p.err = ec.pos(p.curr)
}

// genUnion merges two descending position streams, dropping duplicates.
func (ec *evalContext) genUnion(l, r genFunc) genFunc {
	return func() stepFunc {
		var pl, pr *peeker

		return func() (graph.ID, bool, error) {
			if pl == nil {
				pl = ec.newPeeker(l())
				pr = ec.newPeeker(r())
			}

			if pl.err != nil {
				return graph.EmptyID, false, pl.err
			}
			if pr.err != nil {
				return graph.EmptyID, false, pr.err
			}

			switch {
			case !pl.ok && !pr.ok:
				return graph.EmptyID, false, nil
			case pl.ok && (!pr.ok || pl.pos > pr.pos):
				id := pl.curr
				pl.advance(ec)
				return id, true, nil
			case pr.ok && (!pl.ok || pr.pos > pl.pos):
				id := pr.curr
				pr.advance(ec)
				return id, true, nil
			default:
				// Same position, same id: emit once.
				id := pl.curr
				pl.advance(ec)
				pr.advance(ec)
				return id, true, nil
			}
		}
	}
}

// genIntersection keeps the ids present in both streams.
func (ec *evalContext) genIntersection(l, r genFunc) genFunc {
	return func() stepFunc {
		var pl, pr *peeker

		return func() (graph.ID, bool, error) {
			if pl == nil {
				pl = ec.newPeeker(l())
				pr = ec.newPeeker(r())
			}

			for {
				if pl.err != nil {
					return graph.EmptyID, false, pl.err
				}
				if pr.err != nil {
					return graph.EmptyID, false, pr.err
				}

				if !pl.ok || !pr.ok {
					return graph.EmptyID, false, nil
				}

				switch {
				case pl.pos == pr.pos:
					id := pl.curr
					pl.advance(ec)
					pr.advance(ec)
					return id, true, nil
				case pl.pos > pr.pos:
					pl.advance(ec)
				default:
					pr.advance(ec)
				}
			}
		}
	}
}

// genDifference keeps the ids of `l` that are not in `r`.
func (ec *evalContext) genDifference(l, r genFunc) genFunc {
	return func() stepFunc {
		var pl, pr *peeker

		return func() (graph.ID, bool, error) {
			if pl == nil {
				pl = ec.newPeeker(l())
				pr = ec.newPeeker(r())
			}

			for {
				if pl.err != nil {
					return graph.EmptyID, false, pl.err
				}
				if pr.err != nil {
					return graph.EmptyID, false, pr.err
				}

				if !pl.ok {
					return graph.EmptyID, false, nil
				}

				// Drop right-side entries above the left position:
				if pr.ok && pr.pos > pl.pos {
					pr.advance(ec)
					continue
				}

				if pr.ok && pr.pos == pl.pos {
					pl.advance(ec)
					pr.advance(ec)
					continue
				}

				id := pl.curr
				pl.advance(ec)
				return id, true, nil
			}
		}
	}
}

// genPredicate streams `src` through a commit predicate.
func (ec *evalContext) genPredicate(src genFunc, pred Predicate) genFunc {
	return func() stepFunc {
		step := src()

		return func() (graph.ID, bool, error) {
			for {
				id, ok, err := step()
				if err != nil || !ok {
					return graph.EmptyID, false, err
				}

				cmt, err := ec.store.CommitByID(id)
				if err != nil {
					return graph.EmptyID, false, err
				}

				matched, err := pred.Match(ec, cmt)
				if err != nil {
					return graph.EmptyID, false, err
				}

				if matched {
					return id, true, nil
				}
			}
		}
	}
}

// genMerges keeps the commits with at least two parents.
func (ec *evalContext) genMerges(src genFunc) genFunc {
	return func() stepFunc {
		step := src()

		return func() (graph.ID, bool, error) {
			for {
				id, ok, err := step()
				if err != nil || !ok {
					return graph.EmptyID, false, err
				}

				if len(ec.idx.Parents(id)) >= 2 {
					return id, true, nil
				}
			}
		}
	}
}

// evalIntersection streams one operand through the other's predicate if
// either side is a filter, and falls back to a positional merge
// otherwise.
func (ec *evalContext) evalIntersection(e IntersectionExpr) (genFunc, error) {
	lf, lIsFilter := e.L.(FilterExpr)
	rf, rIsFilter := e.R.(FilterExpr)

	switch {
	case rIsFilter:
		// Two bare filters cannot meet here: the resolver gives the
		// left one a candidate set first. Evaluating the left side
		// rejects the leftover case.
		src, err := ec.eval(e.L)
		if err != nil {
			return nil, err
		}

		return ec.genPredicate(src, rf.Pred), nil
	case lIsFilter:
		src, err := ec.eval(e.R)
		if err != nil {
			return nil, err
		}

		return ec.genPredicate(src, lf.Pred), nil
	default:
		l, err := ec.eval(e.L)
		if err != nil {
			return nil, err
		}

		r, err := ec.eval(e.R)
		if err != nil {
			return nil, err
		}

		return ec.genIntersection(l, r), nil
	}
}
