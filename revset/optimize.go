package revset

// optimize rewrites an expression tree into a cheaper equivalent. Every
// rewrite preserves the resulting set exactly; evaluation works without
// this pass, just slower.
func optimize(x Expr) Expr {
	switch e := x.(type) {
	case PresentExpr:
		return PresentExpr{Inner: optimize(e.Inner)}
	case AncestorsExpr:
		heads := optimize(e.Heads)

		// ancestors(ancestors(x)) adds nothing (only for unlimited
		// walks; limits cut differently on each level).
		if inner, ok := heads.(AncestorsExpr); ok && e.Limit == -1 && inner.Limit == -1 {
			return inner
		}

		return AncestorsExpr{Heads: heads, Limit: e.Limit}
	case DescendantsExpr:
		roots := optimize(e.Roots)
		if inner, ok := roots.(DescendantsExpr); ok && e.Limit == -1 && inner.Limit == -1 {
			return inner
		}

		return DescendantsExpr{Roots: roots, Limit: e.Limit}
	case ParentsExpr:
		of := optimize(e.Of)

		// parents(parents(x)) is a single depth-2 walk.
		if inner, ok := of.(ParentsExpr); ok {
			return ParentsExpr{Of: inner.Of, Gen: inner.Gen + e.Gen}
		}

		return ParentsExpr{Of: of, Gen: e.Gen}
	case ChildrenExpr:
		of := optimize(e.Of)
		if inner, ok := of.(ChildrenExpr); ok {
			return ChildrenExpr{Of: inner.Of, Gen: inner.Gen + e.Gen}
		}

		return ChildrenExpr{Of: of, Gen: e.Gen}
	case DagRangeExpr:
		return DagRangeExpr{Roots: optimize(e.Roots), Heads: optimize(e.Heads)}
	case RangeExpr:
		var from, to Expr
		if e.From != nil {
			from = optimize(e.From)
		}
		if e.To != nil {
			to = optimize(e.To)
		}

		return RangeExpr{From: from, To: to}
	case HeadsExpr:
		of := optimize(e.Of)

		// heads() is idempotent.
		if _, ok := of.(HeadsExpr); ok {
			return of
		}

		return HeadsExpr{Of: of}
	case RootsExpr:
		of := optimize(e.Of)
		if _, ok := of.(RootsExpr); ok {
			return of
		}

		return RootsExpr{Of: of}
	case ConnectedExpr:
		return ConnectedExpr{Of: optimize(e.Of)}
	case ReachableExpr:
		return ReachableExpr{Sources: optimize(e.Sources), Domain: optimize(e.Domain)}
	case UnionExpr:
		l, r := optimize(e.L), optimize(e.R)

		if isNone(l) {
			return r
		}
		if isNone(r) {
			return l
		}

		return UnionExpr{L: l, R: r}
	case IntersectionExpr:
		l, r := optimize(e.L), optimize(e.R)

		if isNone(l) || isNone(r) {
			return NoneExpr{}
		}
		if isAll(l) {
			return r
		}
		if isAll(r) {
			return l
		}

		return IntersectionExpr{L: l, R: r}
	case DifferenceExpr:
		l, r := optimize(e.L), optimize(e.R)

		if isNone(l) {
			return NoneExpr{}
		}
		if isNone(r) {
			return l
		}

		return DifferenceExpr{L: l, R: r}
	case LatestExpr:
		return LatestExpr{Of: optimize(e.Of), Count: e.Count}
	case MergesExpr:
		return MergesExpr{Of: optimize(e.Of)}
	default:
		// Leaves stay as they are.
		return x
	}
}

func isNone(x Expr) bool {
	_, ok := x.(NoneExpr)
	return ok
}

func isAll(x Expr) bool {
	_, ok := x.(AllExpr)
	return ok
}
