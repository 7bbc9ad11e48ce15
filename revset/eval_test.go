package revset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theduke/jj/graph"
	"github.com/theduke/jj/refs"
)

// withDiamond runs `fn` against this graph (positions in add order):
//
//	root - c1 - c2 - c3 -\
//	            \-- c4 -- c5
type diamond struct {
	c1, c2, c3, c4, c5 *graph.Commit
}

func withDiamond(t *testing.T, fn func(rp *graph.Repo, view *refs.View, d diamond)) {
	graph.WithDummyRepo(t, func(rp *graph.Repo) {
		d := diamond{}
		d.c1 = graph.MustCommit(t, rp, "c1")
		d.c2 = graph.MustCommit(t, rp, "c2", d.c1.ID)
		d.c3 = graph.MustCommit(t, rp, "c3", d.c2.ID)
		d.c4 = graph.MustCommit(t, rp, "c4", d.c2.ID)
		d.c5 = graph.MustCommit(t, rp, "c5", d.c3.ID, d.c4.ID)

		view := refs.NewView()
		view.AddHead(d.c5.ID)
		fn(rp, view, d)
	})
}

func mustEval(t *testing.T, rp *graph.Repo, view *refs.View, x Expr) []graph.ID {
	rs, err := Evaluate(x, view, rp, rp, nil)
	require.Nil(t, err)

	ids, err := rs.IDs()
	require.Nil(t, err)
	return ids
}

func TestEvaluateCommits(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		// Explicit sets come out deduplicated, newest position first:
		ids := mustEval(t, rp, view, Commits(d.c1.ID, d.c4.ID, d.c1.ID))
		require.Equal(t, []graph.ID{d.c4.ID, d.c1.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, None()))
		require.Equal(t,
			[]graph.ID{rp.RootID()},
			mustEval(t, rp, view, Root()),
		)

		// Unknown ids abort evaluation:
		_, err := Evaluate(Commits(graph.FakeID("nope")), view, rp, rp, nil)
		require.True(t, graph.IsErrNoSuchCommit(err))
	})
}

func TestEvaluateAll(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, All())
		require.Equal(t, []graph.ID{
			d.c5.ID, d.c4.ID, d.c3.ID, d.c2.ID, d.c1.ID, rp.RootID(),
		}, ids)

		// A fresh view has no heads; all() still yields the root.
		empty := refs.NewView()
		require.Equal(t,
			[]graph.ID{rp.RootID()},
			mustEval(t, rp, empty, All()),
		)
	})
}

func TestEvaluateAncestors(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, Ancestors(Commits(d.c3.ID)))
		require.Equal(t, []graph.ID{
			d.c3.ID, d.c2.ID, d.c1.ID, rp.RootID(),
		}, ids)

		// Merge ancestry visits both sides, each commit once:
		ids = mustEval(t, rp, view, Ancestors(Commits(d.c5.ID)))
		require.Equal(t, []graph.ID{
			d.c5.ID, d.c4.ID, d.c3.ID, d.c2.ID, d.c1.ID, rp.RootID(),
		}, ids)

		// The limit counts commits, heads included:
		ids = mustEval(t, rp, view, AncestorsLimit(Commits(d.c3.ID), 2))
		require.Equal(t, []graph.ID{d.c3.ID, d.c2.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, AncestorsLimit(Commits(d.c3.ID), 0)))
		require.Empty(t, mustEval(t, rp, view, Ancestors(None())))
	})
}

func TestEvaluateDescendants(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, Descendants(Commits(d.c2.ID)))
		require.Equal(t, []graph.ID{
			d.c5.ID, d.c4.ID, d.c3.ID, d.c2.ID,
		}, ids)

		// Limited walks keep the commits closest to the roots:
		ids = mustEval(t, rp, view, DescendantsLimit(Commits(d.c2.ID), 2))
		require.Equal(t, []graph.ID{d.c3.ID, d.c2.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, Descendants(None())))
	})
}

func TestEvaluateParentsChildren(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, Parents(Commits(d.c5.ID)))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		// The root has no parents:
		require.Empty(t, mustEval(t, rp, view, Parents(Root())))

		ids = mustEval(t, rp, view, Children(Commits(d.c2.ID)))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		// Nested generations fold: parents of parents of the merge.
		ids = mustEval(t, rp, view, Parents(Parents(Commits(d.c5.ID))))
		require.Equal(t, []graph.ID{d.c2.ID}, ids)

		// Tips have no children:
		require.Empty(t, mustEval(t, rp, view, Children(Commits(d.c5.ID))))
	})
}

func TestEvaluateRange(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, Range(Commits(d.c1.ID), Commits(d.c3.ID)))
		require.Equal(t, []graph.ID{d.c3.ID, d.c2.ID}, ids)

		// from..to is ancestors(to) minus ancestors(from):
		want := mustEval(t, rp, view, Difference(
			Ancestors(Commits(d.c3.ID)),
			Ancestors(Commits(d.c1.ID)),
		))
		require.Equal(t, want, ids)

		// A missing "from" means everything below "to"; a missing
		// "to" means up to the visible heads.
		ids = mustEval(t, rp, view, Range(nil, Commits(d.c2.ID)))
		require.Equal(t, []graph.ID{
			d.c2.ID, d.c1.ID, rp.RootID(),
		}, ids)

		ids = mustEval(t, rp, view, Range(Commits(d.c2.ID), nil))
		require.Equal(t, []graph.ID{d.c5.ID, d.c4.ID, d.c3.ID}, ids)

		// For siblings only "to" itself survives the subtraction:
		ids = mustEval(t, rp, view, Range(Commits(d.c4.ID), Commits(d.c3.ID)))
		require.Equal(t, []graph.ID{d.c3.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, Range(Commits(d.c3.ID), Commits(d.c3.ID))))
	})
}

func TestEvaluateDagRange(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, DagRange(Commits(d.c2.ID), Commits(d.c5.ID)))
		require.Equal(t, []graph.ID{
			d.c5.ID, d.c4.ID, d.c3.ID, d.c2.ID,
		}, ids)

		// Equivalent to descendants(roots) & ancestors(heads):
		want := mustEval(t, rp, view, Intersection(
			Descendants(Commits(d.c2.ID)),
			Ancestors(Commits(d.c5.ID)),
		))
		require.Equal(t, want, ids)

		// Roots and heads are included even when they coincide:
		ids = mustEval(t, rp, view, DagRange(Commits(d.c3.ID), Commits(d.c3.ID)))
		require.Equal(t, []graph.ID{d.c3.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, DagRange(None(), Commits(d.c5.ID))))
		require.Empty(t, mustEval(t, rp, view, DagRange(Commits(d.c4.ID), Commits(d.c3.ID))))
	})
}

func TestEvaluateHeads(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		// c1 is an ancestor of c3 and drops out:
		ids := mustEval(t, rp, view, Heads(Commits(d.c1.ID, d.c3.ID)))
		require.Equal(t, []graph.ID{d.c3.ID}, ids)

		// Siblings are both heads, newest position first:
		ids = mustEval(t, rp, view, Heads(Commits(d.c3.ID, d.c4.ID)))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		// heads() only looks at ancestry inside the set; the merge
		// above does not count when it is not a member.
		ids = mustEval(t, rp, view, Heads(Commits(d.c3.ID, d.c4.ID, d.c1.ID)))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, Heads(None())))
	})
}

func TestEvaluateRoots(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, Roots(Commits(d.c2.ID, d.c3.ID, d.c4.ID)))
		require.Equal(t, []graph.ID{d.c2.ID}, ids)

		ids = mustEval(t, rp, view, Roots(Commits(d.c3.ID, d.c4.ID)))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, Roots(None())))
	})
}

func TestHeadsRootsIdempotent(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		set := Commits(d.c1.ID, d.c3.ID, d.c4.ID)

		require.Equal(t,
			mustEval(t, rp, view, Heads(set)),
			mustEval(t, rp, view, Heads(Heads(set))),
		)
		require.Equal(t,
			mustEval(t, rp, view, Roots(set)),
			mustEval(t, rp, view, Roots(Roots(set))),
		)
	})
}

func TestEvaluateConnected(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		// The gap between c1 and c3 is filled in:
		ids := mustEval(t, rp, view, Connected(Commits(d.c1.ID, d.c3.ID)))
		require.Equal(t, []graph.ID{d.c3.ID, d.c2.ID, d.c1.ID}, ids)

		// connected(x) is x::x; siblings gain no common ancestor.
		ids = mustEval(t, rp, view, Connected(Commits(d.c3.ID, d.c4.ID)))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		want := mustEval(t, rp, view, DagRange(
			Commits(d.c3.ID, d.c4.ID),
			Commits(d.c3.ID, d.c4.ID),
		))
		require.Equal(t, want, ids)

		require.Empty(t, mustEval(t, rp, view, Connected(None())))
	})
}

func TestEvaluateSetOperations(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		l := Commits(d.c1.ID, d.c3.ID)
		r := Commits(d.c3.ID, d.c4.ID)

		ids := mustEval(t, rp, view, Union(l, r))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID, d.c1.ID}, ids)

		ids = mustEval(t, rp, view, Intersection(l, r))
		require.Equal(t, []graph.ID{d.c3.ID}, ids)

		ids = mustEval(t, rp, view, Difference(l, r))
		require.Equal(t, []graph.ID{d.c1.ID}, ids)

		// Emptiness laws:
		require.Empty(t, mustEval(t, rp, view, Intersection(l, None())))
		require.Empty(t, mustEval(t, rp, view, Difference(l, l)))
		require.Empty(t, mustEval(t, rp, view, Union(None(), None())))

		// Variadic unions nest:
		ids = mustEval(t, rp, view, Union(
			Commits(d.c1.ID), Commits(d.c2.ID), Commits(d.c5.ID),
		))
		require.Equal(t, []graph.ID{d.c5.ID, d.c2.ID, d.c1.ID}, ids)
	})
}

func TestEvaluateMerges(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, Merges(All()))
		require.Equal(t, []graph.ID{d.c5.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, Merges(Commits(d.c3.ID, d.c4.ID))))
	})
}

func TestEvaluateLatest(t *testing.T) {
	graph.WithDummyRepo(t, func(rp *graph.Repo) {
		view := refs.NewView()

		a := graph.MustCommit(t, rp, "a")
		b := graph.MustCommit(t, rp, "b", a.ID)

		// c and d share b's committer timestamp; the higher position
		// wins ties.
		c := graph.MustCommitAt(t, rp, "c", b.Committer.When, b.ID)
		d := graph.MustCommitAt(t, rp, "d", b.Committer.When, b.ID)
		view.AddHead(c.ID)
		view.AddHead(d.ID)

		ids := mustEval(t, rp, view, Latest(All(), 1))
		require.Equal(t, []graph.ID{d.ID}, ids)

		// The output keeps position order, not timestamp order:
		ids = mustEval(t, rp, view, Latest(All(), 3))
		require.Equal(t, []graph.ID{d.ID, c.ID, b.ID}, ids)

		// Counts beyond the set size are harmless:
		ids = mustEval(t, rp, view, Latest(Commits(a.ID), 10))
		require.Equal(t, []graph.ID{a.ID}, ids)

		require.Empty(t, mustEval(t, rp, view, Latest(All(), 0)))
	})
}

func TestEvaluateReachable(t *testing.T) {
	graph.WithDummyRepo(t, func(rp *graph.Repo) {
		view := refs.NewView()

		// Three islands below the root:
		a1 := graph.MustCommit(t, rp, "a1")
		a2 := graph.MustCommit(t, rp, "a2", a1.ID)
		b1 := graph.MustCommit(t, rp, "b1")
		b2 := graph.MustCommit(t, rp, "b2", b1.ID)
		c1 := graph.MustCommit(t, rp, "c1")

		view.AddHead(a2.ID)
		view.AddHead(b2.ID)
		view.AddHead(c1.ID)

		// Cutting out the root disconnects the islands:
		domain := Difference(All(), Root())

		ids := mustEval(t, rp, view, Reachable(Commits(a1.ID), domain))
		require.Equal(t, []graph.ID{a2.ID, a1.ID}, ids)

		ids = mustEval(t, rp, view, Reachable(Commits(a2.ID, b1.ID), domain))
		require.Equal(t, []graph.ID{b2.ID, b1.ID, a2.ID, a1.ID}, ids)

		// Sources outside the domain contribute nothing:
		require.Empty(t, mustEval(t, rp, view, Reachable(Root(), domain)))

		// With the root in the domain everything is one component:
		ids = mustEval(t, rp, view, Reachable(Commits(c1.ID), All()))
		require.Len(t, ids, 6)
	})
}

func TestEvaluateVisibleHeads(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		ids := mustEval(t, rp, view, VisibleHeads())
		require.Equal(t, []graph.ID{d.c5.ID}, ids)

		view.AddHead(d.c3.ID)
		ids = mustEval(t, rp, view, VisibleHeads())
		require.Equal(t, []graph.ID{d.c5.ID, d.c3.ID}, ids)

		// No heads recorded yet: fall back to the root.
		require.Equal(t,
			[]graph.ID{rp.RootID()},
			mustEval(t, rp, refs.NewView(), VisibleHeads()),
		)
	})
}

func TestEvaluateWorkingCopies(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		view.SetWorkingCopy(refs.DefaultWorkspace, d.c5.ID)
		view.SetWorkingCopy("second", d.c3.ID)

		ids := mustEval(t, rp, view, WorkingCopy(refs.DefaultWorkspace))
		require.Equal(t, []graph.ID{d.c5.ID}, ids)

		ids = mustEval(t, rp, view, WorkingCopies())
		require.Equal(t, []graph.ID{d.c5.ID, d.c3.ID}, ids)

		_, err := Evaluate(WorkingCopy("nope"), view, rp, rp, nil)
		require.True(t, IsErrWorkspaceMissingWorkingCopy(err))
	})
}

func TestEvaluateGitRefs(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		view.SetGitRef("refs/heads/main", refs.Normal(d.c5.ID))
		view.SetGitRef("refs/tags/v1", refs.Normal(d.c2.ID))
		view.SetGitHead(refs.Normal(d.c5.ID))

		ids := mustEval(t, rp, view, GitRefs())
		require.Equal(t, []graph.ID{d.c5.ID, d.c2.ID}, ids)

		ids = mustEval(t, rp, view, GitHead())
		require.Equal(t, []graph.ID{d.c5.ID}, ids)

		// A detached view has no git head:
		require.Empty(t, mustEval(t, rp, refs.NewView(), GitHead()))
	})
}

func TestEvaluateBookmarks(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		view.SetBookmark("main", refs.Normal(d.c5.ID))
		view.SetBookmark("feature/a", refs.Normal(d.c3.ID))
		view.SetBookmark("feature/b", refs.Normal(d.c4.ID))
		view.SetTag("v1", refs.Normal(d.c2.ID))

		ids := mustEval(t, rp, view, Bookmarks(nil))
		require.Equal(t, []graph.ID{d.c5.ID, d.c4.ID, d.c3.ID}, ids)

		pat, err := refs.NewPattern(refs.KindGlob, "feature/*", false)
		require.Nil(t, err)

		ids = mustEval(t, rp, view, Bookmarks(&pat))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		ids = mustEval(t, rp, view, Tags(nil))
		require.Equal(t, []graph.ID{d.c2.ID}, ids)
	})
}

func TestEvaluateRemoteBookmarks(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		view.SetRemoteBookmark("main", "origin", refs.RemoteRef{
			Target: refs.Normal(d.c4.ID),
			State:  refs.StateTracking,
		})
		view.SetRemoteBookmark("main", "upstream", refs.RemoteRef{
			Target: refs.Normal(d.c3.ID),
			State:  refs.StateNew,
		})
		view.SetRemoteBookmark("main", refs.GitRemoteName, refs.RemoteRef{
			Target: refs.Normal(d.c5.ID),
			State:  refs.StateTracking,
		})

		// The reserved git remote is excluded unless matched
		// explicitly:
		ids := mustEval(t, rp, view, RemoteBookmarks(nil, nil))
		require.Equal(t, []graph.ID{d.c4.ID, d.c3.ID}, ids)

		gitPat := refs.Exact(refs.GitRemoteName)
		ids = mustEval(t, rp, view, RemoteBookmarks(nil, &gitPat))
		require.Equal(t, []graph.ID{d.c5.ID}, ids)

		ids = mustEval(t, rp, view, TrackedRemoteBookmarks(nil, nil))
		require.Equal(t, []graph.ID{d.c4.ID}, ids)

		ids = mustEval(t, rp, view, UntrackedRemoteBookmarks(nil, nil))
		require.Equal(t, []graph.ID{d.c3.ID}, ids)
	})
}

func TestEvaluatePresent(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		view.SetBookmark("main", refs.Normal(d.c5.ID))

		ids := mustEval(t, rp, view, Present(Symbol("main")))
		require.Equal(t, []graph.ID{d.c5.ID}, ids)

		// Unknown symbols collapse to the empty set...
		require.Empty(t, mustEval(t, rp, view, Present(Symbol("gone"))))

		ids = mustEval(t, rp, view, Union(Present(Symbol("gone")), Commits(d.c1.ID)))
		require.Equal(t, []graph.ID{d.c1.ID}, ids)

		// ...but ambiguous prefixes stay fatal:
		graph.MustChainCommit(t, rp, padID("0454"), padChangeID("d1"), "p1")
		graph.MustChainCommit(t, rp, padID("045f"), padChangeID("d2"), "p2")

		_, err := Evaluate(Present(Symbol("04")), view, rp, rp, nil)
		require.True(t, IsErrAmbiguousCommitIDPrefix(err))

		// And so do empty symbols:
		_, err = Evaluate(Present(Symbol("")), view, rp, rp, nil)
		require.Equal(t, ErrEmptyString, err)
	})
}

func TestRevsetIterRestarts(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		rs, err := Evaluate(Ancestors(Commits(d.c3.ID)), view, rp, rp, nil)
		require.Nil(t, err)

		first, err := rs.IDs()
		require.Nil(t, err)

		second, err := rs.IDs()
		require.Nil(t, err)
		require.Equal(t, first, second)

		empty, err := rs.IsEmpty()
		require.Nil(t, err)
		require.False(t, empty)
	})
}

func TestRevsetContainingFn(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		rs, err := Evaluate(Ancestors(Commits(d.c3.ID)), view, rp, rp, nil)
		require.Nil(t, err)

		contains, err := rs.ContainingFn()
		require.Nil(t, err)

		require.True(t, contains(d.c3.ID))
		require.True(t, contains(rp.RootID()))
		require.False(t, contains(d.c4.ID))
		require.False(t, contains(graph.FakeID("nope")))
	})
}

func TestEvaluateValidation(t *testing.T) {
	withDiamond(t, func(rp *graph.Repo, view *refs.View, d diamond) {
		_, err := Evaluate(Latest(All(), -1), view, rp, rp, nil)
		require.NotNil(t, err)

		_, err = Evaluate(AncestorsLimit(Commits(d.c1.ID), -2), view, rp, rp, nil)
		require.NotNil(t, err)

		// All validation errors are reported at once:
		_, err = Evaluate(
			Union(Latest(All(), -1), FileFilter()),
			view, rp, rp, nil,
		)
		require.NotNil(t, err)
		require.Contains(t, err.Error(), "latest")
		require.Contains(t, err.Error(), "file")
	})
}
