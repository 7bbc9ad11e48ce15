// Package revset implements the commit selection language of the
// repository: a small algebra of set expressions over the history DAG.
// A parsed expression is resolved against a ref View (replacing symbols
// with commit ids) and then evaluated against the ancestry index into a
// deterministically ordered, deduplicated sequence of commit ids.
package revset

import (
	"fmt"
	"strings"

	"github.com/theduke/jj/graph"
	"github.com/theduke/jj/refs"
)

// Expr is one node of a revset expression tree. The set of implementations
// is closed; the resolver and evaluator switch over it exhaustively.
// Trees are immutable values, built once per query and discarded after.
type Expr interface {
	expr()
	String() string
}

// NoneExpr is the empty set.
type NoneExpr struct{}

// AllExpr is every commit reachable from a visible head, root included.
type AllExpr struct{}

// CommitRefExpr is an unresolved textual symbol: a commit or change id
// prefix, a bookmark, tag or git ref name, or a `name@remote` pair.
type CommitRefExpr struct {
	Symbol string
}

// RootExpr is the root commit. The parser produces it for the reserved
// `root()` form; a quoted "root" symbol stays a CommitRefExpr.
type RootExpr struct{}

// PresentExpr suppresses a NoSuchRevision error of its inner expression,
// turning it into the empty set. Ambiguity errors still propagate.
type PresentExpr struct {
	Inner Expr
}

// CommitsExpr is a concrete list of commit ids. The resolver pass rewrites
// every symbolic leaf into one of these.
type CommitsExpr struct {
	IDs []graph.ID
}

// AncestorsExpr is the ancestors of Heads, including Heads itself.
// A Limit >= 0 keeps only the first Limit commits of the walk
// (heads counted first); -1 means unlimited.
type AncestorsExpr struct {
	Heads Expr
	Limit int
}

// DescendantsExpr is the descendants of Roots, including Roots itself.
// Limit works like in AncestorsExpr.
type DescendantsExpr struct {
	Roots Expr
	Limit int
}

// ParentsExpr is the Gen-th generation of direct parents of Of
// (Gen == 1 for plain parents; the optimizer folds chains).
type ParentsExpr struct {
	Of  Expr
	Gen int
}

// ChildrenExpr is the Gen-th generation of direct children of Of.
type ChildrenExpr struct {
	Of  Expr
	Gen int
}

// DagRangeExpr is every commit that is both an ancestor of Heads and a
// descendant of Roots, both ends included.
type DagRangeExpr struct {
	Roots Expr
	Heads Expr
}

// RangeExpr is Ancestors(To) minus Ancestors(From). A nil From defaults
// to the empty exclusion, a nil To defaults to the visible heads.
type RangeExpr struct {
	From Expr
	To   Expr
}

// HeadsExpr keeps the commits of Of that no other commit of Of descends
// from.
type HeadsExpr struct {
	Of Expr
}

// RootsExpr keeps the commits of Of that no other commit of Of is an
// ancestor of.
type RootsExpr struct {
	Of Expr
}

// ConnectedExpr is DagRange(Roots(Of), Heads(Of)): it fills the gaps on
// paths between members of Of without adding unrelated common ancestors.
type ConnectedExpr struct {
	Of Expr
}

// ReachableExpr is the union of the connected components of the
// Domain-induced subgraph that contain a commit of Sources.
type ReachableExpr struct {
	Sources Expr
	Domain  Expr
}

// UnionExpr, IntersectionExpr and DifferenceExpr are the boolean set
// operators.
type UnionExpr struct {
	L, R Expr
}

type IntersectionExpr struct {
	L, R Expr
}

type DifferenceExpr struct {
	L, R Expr
}

// FilterExpr is a commit predicate. On its own it filters All; combined
// with an intersection it filters the other operand.
type FilterExpr struct {
	Pred Predicate
}

// LatestExpr keeps the Count commits of Of with the greatest committer
// timestamp, position breaking ties in favor of the later commit.
type LatestExpr struct {
	Of    Expr
	Count int
}

// MergesExpr keeps the commits of Of with two or more parents.
type MergesExpr struct {
	Of Expr
}

// WorkingCopyExpr is the commit checked out in one workspace.
type WorkingCopyExpr struct {
	Workspace refs.WorkspaceID
}

// WorkingCopiesExpr is every workspace's checked out commit.
type WorkingCopiesExpr struct{}

// BookmarksExpr is the targets of all local bookmarks matching Name.
// A nil Name matches every bookmark.
type BookmarksExpr struct {
	Name *refs.Pattern
}

// RemoteBookmarksExpr is the targets of all remote bookmarks matching
// Name and Remote. With a nil Remote the reserved git mirror remote is
// excluded. Tracked, if set, additionally filters by tracking state.
type RemoteBookmarksExpr struct {
	Name    *refs.Pattern
	Remote  *refs.Pattern
	Tracked *bool
}

// TagsExpr is the targets of all tags matching Name.
type TagsExpr struct {
	Name *refs.Pattern
}

// GitRefsExpr is the targets of all raw git refs.
type GitRefsExpr struct{}

// GitHeadExpr is the target of the git HEAD.
type GitHeadExpr struct{}

// VisibleHeadsExpr is the set of visible head commits.
type VisibleHeadsExpr struct{}

func (NoneExpr) expr() {}
func (AllExpr) expr() {}
func (CommitRefExpr) expr() {}
func (RootExpr) expr() {}
func (PresentExpr) expr() {}
func (CommitsExpr) expr() {}
func (AncestorsExpr) expr() {}
func (DescendantsExpr) expr() {}
func (ParentsExpr) expr() {}
func (ChildrenExpr) expr() {}
func (DagRangeExpr) expr() {}
func (RangeExpr) expr() {}
func (HeadsExpr) expr() {}
func (RootsExpr) expr() {}
func (ConnectedExpr) expr() {}
func (ReachableExpr) expr() {}
func (UnionExpr) expr() {}
func (IntersectionExpr) expr() {}
func (DifferenceExpr) expr() {}
func (FilterExpr) expr() {}
func (LatestExpr) expr() {}
func (MergesExpr) expr() {}
func (WorkingCopyExpr) expr() {}
func (WorkingCopiesExpr) expr() {}
func (BookmarksExpr) expr() {}
func (RemoteBookmarksExpr) expr() {}
func (TagsExpr) expr() {}
func (GitRefsExpr) expr() {}
func (GitHeadExpr) expr() {}
func (VisibleHeadsExpr) expr() {}

/////////////// CONSTRUCTORS ///////////////

// None returns the empty set expression.
func None() Expr { return NoneExpr{} }

// All returns the expression selecting every visible commit.
func All() Expr { return AllExpr{} }

// Symbol returns an unresolved symbol leaf.
func Symbol(symbol string) Expr { return CommitRefExpr{Symbol: symbol} }

// Root returns the root commit expression.
func Root() Expr { return RootExpr{} }

// Present wraps `inner` so that a missing revision yields the empty set.
func Present(inner Expr) Expr { return PresentExpr{Inner: inner} }

// Commits returns a concrete id list expression.
func Commits(ids ...graph.ID) Expr { return CommitsExpr{IDs: ids} }

// Ancestors returns `e` and all its ancestors.
func Ancestors(e Expr) Expr { return AncestorsExpr{Heads: e, Limit: -1} }

// AncestorsLimit returns the first `limit` commits of the ancestor walk.
func AncestorsLimit(e Expr, limit int) Expr {
	return AncestorsExpr{Heads: e, Limit: limit}
}

// Descendants returns `e` and all its descendants.
func Descendants(e Expr) Expr { return DescendantsExpr{Roots: e, Limit: -1} }

// DescendantsLimit returns the first `limit` commits of the descendant
// walk.
func DescendantsLimit(e Expr, limit int) Expr {
	return DescendantsExpr{Roots: e, Limit: limit}
}

// Parents returns the direct parents of `e`.
func Parents(e Expr) Expr { return ParentsExpr{Of: e, Gen: 1} }

// Children returns the direct children of `e`.
func Children(e Expr) Expr { return ChildrenExpr{Of: e, Gen: 1} }

// DagRange returns the commits between `roots` and `heads`, inclusive.
func DagRange(roots, heads Expr) Expr {
	return DagRangeExpr{Roots: roots, Heads: heads}
}

// Range returns Ancestors(to) without Ancestors(from). Either side may be
// nil: From defaults to nothing excluded, To to the visible heads.
func Range(from, to Expr) Expr { return RangeExpr{From: from, To: to} }

// Heads keeps the topmost commits of `e`.
func Heads(e Expr) Expr { return HeadsExpr{Of: e} }

// Roots keeps the bottommost commits of `e`.
func Roots(e Expr) Expr { return RootsExpr{Of: e} }

// Connected fills the DAG paths between the members of `e`.
func Connected(e Expr) Expr { return ConnectedExpr{Of: e} }

// Reachable returns the domain-restricted connected components around
// `sources`.
func Reachable(sources, domain Expr) Expr {
	return ReachableExpr{Sources: sources, Domain: domain}
}

// Union returns the union of all given expressions (None for none).
func Union(exprs ...Expr) Expr {
	if len(exprs) == 0 {
		return None()
	}

	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = UnionExpr{L: acc, R: e}
	}

	return acc
}

// Intersection returns the intersection of `l` and `r`.
func Intersection(l, r Expr) Expr { return IntersectionExpr{L: l, R: r} }

// Difference returns `l` without `r`.
func Difference(l, r Expr) Expr { return DifferenceExpr{L: l, R: r} }

// Filter returns a bare predicate expression.
func Filter(pred Predicate) Expr { return FilterExpr{Pred: pred} }

// Latest keeps the `count` most recently committed members of `e`.
func Latest(e Expr, count int) Expr { return LatestExpr{Of: e, Count: count} }

// Merges keeps the merge commits of `e`.
func Merges(e Expr) Expr { return MergesExpr{Of: e} }

// WorkingCopy returns the checkout of workspace `ws`.
func WorkingCopy(ws refs.WorkspaceID) Expr {
	return WorkingCopyExpr{Workspace: ws}
}

// WorkingCopies returns every workspace's checkout.
func WorkingCopies() Expr { return WorkingCopiesExpr{} }

// Bookmarks returns the targets of bookmarks matching `name`
// (nil for all).
func Bookmarks(name *refs.Pattern) Expr { return BookmarksExpr{Name: name} }

// RemoteBookmarks returns the targets of remote bookmarks matching `name`
// and `remote` (nil for all; the git mirror remote needs an explicit
// remote pattern).
func RemoteBookmarks(name, remote *refs.Pattern) Expr {
	return RemoteBookmarksExpr{Name: name, Remote: remote}
}

// TrackedRemoteBookmarks is RemoteBookmarks restricted to tracked refs.
func TrackedRemoteBookmarks(name, remote *refs.Pattern) Expr {
	tracked := true
	return RemoteBookmarksExpr{Name: name, Remote: remote, Tracked: &tracked}
}

// UntrackedRemoteBookmarks is RemoteBookmarks restricted to untracked
// refs.
func UntrackedRemoteBookmarks(name, remote *refs.Pattern) Expr {
	tracked := false
	return RemoteBookmarksExpr{Name: name, Remote: remote, Tracked: &tracked}
}

// Tags returns the targets of tags matching `name` (nil for all).
func Tags(name *refs.Pattern) Expr { return TagsExpr{Name: name} }

// GitRefs returns the targets of all raw git refs.
func GitRefs() Expr { return GitRefsExpr{} }

// GitHead returns the target of the git HEAD.
func GitHead() Expr { return GitHeadExpr{} }

// VisibleHeads returns the visible head set.
func VisibleHeads() Expr { return VisibleHeadsExpr{} }

/////////////// STRINGER ///////////////

func (NoneExpr) String() string { return "none()" }
func (AllExpr) String() string { return "all()" }
func (RootExpr) String() string { return "root()" }
func (e CommitRefExpr) String() string {
	return fmt.Sprintf("symbol(%q)", e.Symbol)
}
func (e PresentExpr) String() string {
	return fmt.Sprintf("present(%s)", e.Inner)
}

func (e CommitsExpr) String() string {
	parts := make([]string, len(e.IDs))
	for idx, id := range e.IDs {
		short := string(id)
		if len(short) > 8 {
			short = short[:8]
		}

		parts[idx] = short
	}

	return fmt.Sprintf("commits(%s)", strings.Join(parts, ","))
}

func (e AncestorsExpr) String() string {
	if e.Limit >= 0 {
		return fmt.Sprintf("ancestors(%s, %d)", e.Heads, e.Limit)
	}

	return fmt.Sprintf("ancestors(%s)", e.Heads)
}

func (e DescendantsExpr) String() string {
	if e.Limit >= 0 {
		return fmt.Sprintf("descendants(%s, %d)", e.Roots, e.Limit)
	}

	return fmt.Sprintf("descendants(%s)", e.Roots)
}

func (e ParentsExpr) String() string {
	return fmt.Sprintf("parents(%s, %d)", e.Of, e.Gen)
}

func (e ChildrenExpr) String() string {
	return fmt.Sprintf("children(%s, %d)", e.Of, e.Gen)
}

func (e DagRangeExpr) String() string {
	return fmt.Sprintf("%s::%s", e.Roots, e.Heads)
}

func (e RangeExpr) String() string {
	from, to := "", ""
	if e.From != nil {
		from = e.From.String()
	}
	if e.To != nil {
		to = e.To.String()
	}

	return fmt.Sprintf("%s..%s", from, to)
}

func (e HeadsExpr) String() string { return fmt.Sprintf("heads(%s)", e.Of) }
func (e RootsExpr) String() string { return fmt.Sprintf("roots(%s)", e.Of) }
func (e ConnectedExpr) String() string { return fmt.Sprintf("connected(%s)", e.Of) }

func (e ReachableExpr) String() string {
	return fmt.Sprintf("reachable(%s, %s)", e.Sources, e.Domain)
}

func (e UnionExpr) String() string { return fmt.Sprintf("(%s | %s)", e.L, e.R) }
func (e IntersectionExpr) String() string { return fmt.Sprintf("(%s & %s)", e.L, e.R) }
func (e DifferenceExpr) String() string { return fmt.Sprintf("(%s ~ %s)", e.L, e.R) }
func (e FilterExpr) String() string { return e.Pred.String() }

func (e LatestExpr) String() string {
	return fmt.Sprintf("latest(%s, %d)", e.Of, e.Count)
}

func (e MergesExpr) String() string { return fmt.Sprintf("merges(%s)", e.Of) }

func (e WorkingCopyExpr) String() string {
	return fmt.Sprintf("working_copy(%s)", e.Workspace)
}

func (WorkingCopiesExpr) String() string { return "working_copies()" }

func (e BookmarksExpr) String() string {
	return fmt.Sprintf("bookmarks(%s)", patternString(e.Name))
}

func (e RemoteBookmarksExpr) String() string {
	state := ""
	if e.Tracked != nil && *e.Tracked {
		state = "tracked_"
	} else if e.Tracked != nil {
		state = "untracked_"
	}

	return fmt.Sprintf(
		"%sremote_bookmarks(%s, %s)",
		state, patternString(e.Name), patternString(e.Remote),
	)
}

func (e TagsExpr) String() string {
	return fmt.Sprintf("tags(%s)", patternString(e.Name))
}

func (GitRefsExpr) String() string { return "git_refs()" }
func (GitHeadExpr) String() string { return "git_head()" }
func (VisibleHeadsExpr) String() string { return "visible_heads()" }

func patternString(p *refs.Pattern) string {
	if p == nil {
		return "*"
	}

	return p.String()
}
