package revset

import (
	"fmt"

	"github.com/emirpasic/gods/sets/linkedhashset"
	log "github.com/sirupsen/logrus"

	"github.com/theduke/jj/graph"
	"github.com/theduke/jj/refs"
)

// Resolve walks the expression tree depth-first and replaces every
// symbolic leaf (symbols, bookmarks, tags, git refs, working copies, all/
// visible-heads) with concrete commit ids. The result contains only id
// sets, DAG operators and filter predicates and can be evaluated without
// a View.
//
// Resolution fails on the first error; only a NoSuchRevision wrapped in
// present(...) is converted to the empty set instead.
func Resolve(x Expr, view *refs.View, idx graph.Index, cfg *Config) (Expr, error) {
	env := &resolveEnv{view: view, idx: idx, cfg: cfg.orDefault()}

	resolved, err := env.resolve(x)
	if err != nil {
		return nil, err
	}

	return env.wrapBareFilter(resolved), nil
}

func (env *resolveEnv) resolve(x Expr) (Expr, error) {
	switch e := x.(type) {
	case NoneExpr, CommitsExpr, FilterExpr:
		return x, nil
	case AllExpr:
		return env.allCommits(), nil
	case VisibleHeadsExpr:
		return CommitsExpr{IDs: env.visibleHeadIDs()}, nil
	case RootExpr:
		return CommitsExpr{IDs: []graph.ID{env.idx.RootID()}}, nil
	case CommitRefExpr:
		ids, err := env.resolveSymbol(e.Symbol)
		if err != nil {
			return nil, err
		}

		return CommitsExpr{IDs: ids}, nil
	case PresentExpr:
		inner, err := env.resolve(e.Inner)
		if IsErrNoSuchRevision(err) {
			log.Debugf("revset: present() suppressed: %v", err)
			return CommitsExpr{}, nil
		}

		if err != nil {
			return nil, err
		}

		return inner, nil
	case WorkingCopyExpr:
		ids, err := env.resolveWorkingCopy(e.Workspace)
		if err != nil {
			return nil, err
		}

		return CommitsExpr{IDs: ids}, nil
	case WorkingCopiesExpr:
		set := linkedhashset.New()
		for _, ws := range env.view.Workspaces() {
			if id, ok := env.view.WorkingCopy(ws); ok {
				set.Add(id)
			}
		}

		return CommitsExpr{IDs: setToIDs(set)}, nil
	case BookmarksExpr:
		set := linkedhashset.New()
		for _, name := range env.view.BookmarkNames() {
			if matchName(e.Name, name) {
				addTargetIDs(set, env.view.Bookmark(name))
			}
		}

		return CommitsExpr{IDs: setToIDs(set)}, nil
	case RemoteBookmarksExpr:
		return env.resolveRemoteBookmarks(e), nil
	case TagsExpr:
		set := linkedhashset.New()
		for _, name := range env.view.TagNames() {
			if matchName(e.Name, name) {
				addTargetIDs(set, env.view.Tag(name))
			}
		}

		return CommitsExpr{IDs: setToIDs(set)}, nil
	case GitRefsExpr:
		set := linkedhashset.New()
		for _, path := range env.view.GitRefPaths() {
			addTargetIDs(set, env.view.GitRef(path))
		}

		return CommitsExpr{IDs: setToIDs(set)}, nil
	case GitHeadExpr:
		return CommitsExpr{IDs: env.view.GitHead().AddedIDs()}, nil
	case AncestorsExpr:
		heads, err := env.resolveOperand(e.Heads)
		if err != nil {
			return nil, err
		}

		return AncestorsExpr{Heads: heads, Limit: e.Limit}, nil
	case DescendantsExpr:
		roots, err := env.resolveOperand(e.Roots)
		if err != nil {
			return nil, err
		}

		return DescendantsExpr{Roots: roots, Limit: e.Limit}, nil
	case ParentsExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return ParentsExpr{Of: of, Gen: e.Gen}, nil
	case ChildrenExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return ChildrenExpr{Of: of, Gen: e.Gen}, nil
	case DagRangeExpr:
		roots, err := env.resolveOperand(e.Roots)
		if err != nil {
			return nil, err
		}

		heads, err := env.resolveOperand(e.Heads)
		if err != nil {
			return nil, err
		}

		return DagRangeExpr{Roots: roots, Heads: heads}, nil
	case RangeExpr:
		from, to := e.From, e.To
		if from == nil {
			from = NoneExpr{}
		}
		if to == nil {
			to = VisibleHeadsExpr{}
		}

		rfrom, err := env.resolveOperand(from)
		if err != nil {
			return nil, err
		}

		rto, err := env.resolveOperand(to)
		if err != nil {
			return nil, err
		}

		return RangeExpr{From: rfrom, To: rto}, nil
	case HeadsExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return HeadsExpr{Of: of}, nil
	case RootsExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return RootsExpr{Of: of}, nil
	case ConnectedExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return ConnectedExpr{Of: of}, nil
	case ReachableExpr:
		sources, err := env.resolveOperand(e.Sources)
		if err != nil {
			return nil, err
		}

		domain, err := env.resolveOperand(e.Domain)
		if err != nil {
			return nil, err
		}

		return ReachableExpr{Sources: sources, Domain: domain}, nil
	case UnionExpr:
		l, err := env.resolveOperand(e.L)
		if err != nil {
			return nil, err
		}

		r, err := env.resolveOperand(e.R)
		if err != nil {
			return nil, err
		}

		return UnionExpr{L: l, R: r}, nil
	case IntersectionExpr:
		// Filters survive as intersection operands; the evaluator
		// streams the other side through the predicate.
		l, err := env.resolve(e.L)
		if err != nil {
			return nil, err
		}

		r, err := env.resolve(e.R)
		if err != nil {
			return nil, err
		}

		if isFilter(l) && isFilter(r) {
			l = env.wrapBareFilter(l)
		}

		return IntersectionExpr{L: l, R: r}, nil
	case DifferenceExpr:
		l, err := env.resolveOperand(e.L)
		if err != nil {
			return nil, err
		}

		r, err := env.resolveOperand(e.R)
		if err != nil {
			return nil, err
		}

		return DifferenceExpr{L: l, R: r}, nil
	case LatestExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return LatestExpr{Of: of, Count: e.Count}, nil
	case MergesExpr:
		of, err := env.resolveOperand(e.Of)
		if err != nil {
			return nil, err
		}

		return MergesExpr{Of: of}, nil
	default:
		return nil, fmt.Errorf("bug: cannot resolve expression %T", x)
	}
}

// resolveOperand resolves a child expression and wraps a bare filter so
// it applies to all visible commits.
func (env *resolveEnv) resolveOperand(x Expr) (Expr, error) {
	resolved, err := env.resolve(x)
	if err != nil {
		return nil, err
	}

	return env.wrapBareFilter(resolved), nil
}

// wrapBareFilter gives a standalone filter its implicit candidate set.
func (env *resolveEnv) wrapBareFilter(x Expr) Expr {
	if !isFilter(x) {
		return x
	}

	return IntersectionExpr{L: env.allCommits(), R: x}
}

func isFilter(x Expr) bool {
	_, ok := x.(FilterExpr)
	return ok
}

// allCommits is the resolved form of all(): ancestors of the visible
// heads, root included.
func (env *resolveEnv) allCommits() Expr {
	return AncestorsExpr{
		Heads: CommitsExpr{IDs: env.visibleHeadIDs()},
		Limit: -1,
	}
}

// visibleHeadIDs falls back to the root commit so that all() is never
// empty, even on a freshly initialized view.
func (env *resolveEnv) visibleHeadIDs() []graph.ID {
	ids := env.view.HeadIDs()
	if len(ids) == 0 {
		return []graph.ID{env.idx.RootID()}
	}

	return ids
}

func (env *resolveEnv) resolveRemoteBookmarks(e RemoteBookmarksExpr) Expr {
	set := linkedhashset.New()
	for _, key := range env.view.RemoteBookmarkKeys() {
		if !matchName(e.Name, key.Name) {
			continue
		}

		if e.Remote == nil {
			// The git mirror remote only shows up when asked for
			// explicitly.
			if key.Remote == refs.GitRemoteName {
				continue
			}
		} else if !e.Remote.Match(key.Remote) {
			continue
		}

		rr, _ := env.view.RemoteBookmark(key.Name, key.Remote)
		if e.Tracked != nil && rr.IsTracking() != *e.Tracked {
			continue
		}

		addTargetIDs(set, rr.Target)
	}

	return CommitsExpr{IDs: setToIDs(set)}
}

func matchName(pattern *refs.Pattern, name string) bool {
	return pattern == nil || pattern.Match(name)
}

func addTargetIDs(set *linkedhashset.Set, target refs.Target) {
	for _, id := range target.AddedIDs() {
		set.Add(id)
	}
}

func setToIDs(set *linkedhashset.Set) []graph.ID {
	ids := make([]graph.ID, 0, set.Size())
	for _, value := range set.Values() {
		ids = append(ids, value.(graph.ID))
	}

	return ids
}
