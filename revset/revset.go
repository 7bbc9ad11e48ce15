package revset

import (
	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/theduke/jj/graph"
	"github.com/theduke/jj/refs"
)

// Revset is an evaluated expression: a restartable, lazily walked
// sequence of commit ids in descending index position order, without
// duplicates. It stays valid as long as the store and index it was
// evaluated against.
type Revset struct {
	gen genFunc
}

// Iter starts a fresh walk over the revset. Walking twice yields the
// same ids in the same order.
func (rs *Revset) Iter() *Iter {
	return &Iter{step: rs.gen()}
}

// IDs materializes the whole revset into a slice.
func (rs *Revset) IDs() ([]graph.ID, error) {
	var ids []graph.ID

	it := rs.Iter()
	for it.Next() {
		ids = append(ids, it.ID())
	}

	return ids, it.Err()
}

// IsEmpty checks if the revset selects no commits at all.
func (rs *Revset) IsEmpty() (bool, error) {
	it := rs.Iter()
	if it.Next() {
		return false, nil
	}

	return true, it.Err()
}

// ContainingFn returns a membership test over the revset. The set is
// indexed once; the returned function is cheap and can be called often.
func (rs *Revset) ContainingFn() (func(graph.ID) bool, error) {
	ids, err := rs.IDs()
	if err != nil {
		return nil, err
	}

	member := make(map[graph.ID]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}

	return func(id graph.ID) bool {
		return member[id]
	}, nil
}

// Evaluate turns a parsed expression into a Revset. It resolves all
// symbols against `view`, optimizes the resolved tree, validates the
// filter predicates and compiles the result against `idx`. The view,
// store and index are borrowed read-only and must outlive the returned
// Revset.
//
// Resolution errors abort the whole query; there is no partial output.
// Resolution runs before any rewrite so that rewrites which drop a
// sub-expression (x & none() e.g.) cannot swallow its resolution error.
func Evaluate(x Expr, view *refs.View, store graph.Store, idx graph.Index, cfg *Config) (*Revset, error) {
	resolved, err := Resolve(x, view, idx, cfg)
	if err != nil {
		return nil, err
	}

	return EvaluateResolved(optimize(resolved), store, idx, cfg)
}

// EvaluateResolved compiles an already resolved expression (no symbolic
// leaves left) into a Revset.
func EvaluateResolved(x Expr, store graph.Store, idx graph.Index, cfg *Config) (*Revset, error) {
	if err := validate(x); err != nil {
		return nil, e.Wrap(err, "invalid revset")
	}

	ec := &evalContext{store: store, idx: idx, cfg: cfg.orDefault()}

	gen, err := ec.eval(x)
	if err != nil {
		return nil, err
	}

	log.Debugf("revset: compiled '%s'", x)
	return &Revset{gen: gen}, nil
}
