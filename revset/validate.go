package revset

import (
	"fmt"

	"go.uber.org/multierr"
)

// validate walks a resolved tree and collects every construction-level
// problem (malformed predicate parameters, negative counts) so they
// surface before any commit is emitted. All problems are reported at
// once, not just the first.
func validate(x Expr) error {
	var err error

	walkExpr(x, func(node Expr) {
		switch e := node.(type) {
		case FilterExpr:
			err = multierr.Append(err, e.Pred.Validate())
		case LatestExpr:
			if e.Count < 0 {
				err = multierr.Append(err, fmt.Errorf(
					"latest() count must not be negative: %d", e.Count,
				))
			}
		case AncestorsExpr:
			if e.Limit < -1 {
				err = multierr.Append(err, fmt.Errorf(
					"ancestors() limit must not be negative: %d", e.Limit,
				))
			}
		case DescendantsExpr:
			if e.Limit < -1 {
				err = multierr.Append(err, fmt.Errorf(
					"descendants() limit must not be negative: %d", e.Limit,
				))
			}
		case ParentsExpr:
			if e.Gen < 1 {
				err = multierr.Append(err, fmt.Errorf(
					"parents() generation must be positive: %d", e.Gen,
				))
			}
		case ChildrenExpr:
			if e.Gen < 1 {
				err = multierr.Append(err, fmt.Errorf(
					"children() generation must be positive: %d", e.Gen,
				))
			}
		}
	})

	return err
}

// walkExpr visits `x` and all its sub-expressions depth-first.
func walkExpr(x Expr, visit func(Expr)) {
	if x == nil {
		return
	}

	switch e := x.(type) {
	case PresentExpr:
		walkExpr(e.Inner, visit)
	case AncestorsExpr:
		walkExpr(e.Heads, visit)
	case DescendantsExpr:
		walkExpr(e.Roots, visit)
	case ParentsExpr:
		walkExpr(e.Of, visit)
	case ChildrenExpr:
		walkExpr(e.Of, visit)
	case DagRangeExpr:
		walkExpr(e.Roots, visit)
		walkExpr(e.Heads, visit)
	case RangeExpr:
		walkExpr(e.From, visit)
		walkExpr(e.To, visit)
	case HeadsExpr:
		walkExpr(e.Of, visit)
	case RootsExpr:
		walkExpr(e.Of, visit)
	case ConnectedExpr:
		walkExpr(e.Of, visit)
	case ReachableExpr:
		walkExpr(e.Sources, visit)
		walkExpr(e.Domain, visit)
	case UnionExpr:
		walkExpr(e.L, visit)
		walkExpr(e.R, visit)
	case IntersectionExpr:
		walkExpr(e.L, visit)
		walkExpr(e.R, visit)
	case DifferenceExpr:
		walkExpr(e.L, visit)
		walkExpr(e.R, visit)
	case LatestExpr:
		walkExpr(e.Of, visit)
	case MergesExpr:
		walkExpr(e.Of, visit)
	}

	visit(x)
}
