package revset

import (
	"fmt"
	"strings"
	"time"

	"github.com/theduke/jj/graph"
	"github.com/theduke/jj/refs"
)

// Predicate decides if a single commit belongs into a filter's result.
// Predicates are pure: the outcome only depends on the commit (read
// through the store) and the config.
type Predicate interface {
	// Match checks the commit against the predicate.
	Match(ec *evalContext, cmt *graph.Commit) (bool, error)

	// Validate reports construction-level problems (e.g. an inverted
	// date range) before any commit is emitted.
	Validate() error

	String() string
}

/////////////// TEXT PREDICATES ///////////////

type descriptionPred struct {
	pattern refs.Pattern
}

// DescriptionFilter matches commits whose description matches `pattern`.
func DescriptionFilter(pattern refs.Pattern) Expr {
	return Filter(descriptionPred{pattern: pattern})
}

func (p descriptionPred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	return p.pattern.Match(cmt.Description), nil
}

func (p descriptionPred) Validate() error { return nil }

func (p descriptionPred) String() string {
	return fmt.Sprintf("description(%s)", p.pattern)
}

//////////////

type signaturePred struct {
	field   string // "author" or "committer"
	pattern refs.Pattern
}

// AuthorFilter matches commits whose author name or email matches
// `pattern`.
func AuthorFilter(pattern refs.Pattern) Expr {
	return Filter(signaturePred{field: "author", pattern: pattern})
}

// CommitterFilter matches commits whose committer name or email matches
// `pattern`.
func CommitterFilter(pattern refs.Pattern) Expr {
	return Filter(signaturePred{field: "committer", pattern: pattern})
}

func (p signaturePred) signature(cmt *graph.Commit) graph.Signature {
	if p.field == "author" {
		return cmt.Author
	}

	return cmt.Committer
}

func (p signaturePred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	sig := p.signature(cmt)
	return p.pattern.Match(sig.Name) || p.pattern.Match(sig.Email), nil
}

func (p signaturePred) Validate() error { return nil }

func (p signaturePred) String() string {
	return fmt.Sprintf("%s(%s)", p.field, p.pattern)
}

/////////////// DATE PREDICATES ///////////////

type datePred struct {
	field  string // "author" or "committer"
	after  time.Time
	before time.Time
}

// AuthorDateFilter matches commits authored in [after, before). A zero
// bound is open.
func AuthorDateFilter(after, before time.Time) Expr {
	return Filter(datePred{field: "author", after: after, before: before})
}

// CommitterDateFilter matches commits committed in [after, before).
func CommitterDateFilter(after, before time.Time) Expr {
	return Filter(datePred{field: "committer", after: after, before: before})
}

func (p datePred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	when := cmt.Committer.When
	if p.field == "author" {
		when = cmt.Author.When
	}

	if !p.after.IsZero() && when.Before(p.after) {
		return false, nil
	}

	if !p.before.IsZero() && !when.Before(p.before) {
		return false, nil
	}

	return true, nil
}

func (p datePred) Validate() error {
	if !p.after.IsZero() && !p.before.IsZero() && p.after.After(p.before) {
		return fmt.Errorf(
			"malformed %s date range: after %s is later than before %s",
			p.field, p.after, p.before,
		)
	}

	return nil
}

func (p datePred) String() string {
	return fmt.Sprintf("%s_date(after:%s, before:%s)", p.field, p.after, p.before)
}

/////////////// CONTENT PREDICATES ///////////////

type filePred struct {
	paths []string
}

// FileFilter matches commits whose diff against each parent touches at
// least one of `paths` (as path prefixes).
func FileFilter(paths ...string) Expr {
	return Filter(filePred{paths: paths})
}

func (p filePred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	parents := cmt.Parents
	if len(parents) == 0 {
		// The root commit diffs against the empty tree.
		parents = []graph.ID{graph.EmptyID}
	}

	for _, parent := range parents {
		changes, err := ec.store.Diff(parent, cmt.ID)
		if err != nil {
			return false, err
		}

		touched := false
		for _, change := range changes {
			if p.matchPath(change.Path) {
				touched = true
				break
			}
		}

		if !touched {
			return false, nil
		}
	}

	return true, nil
}

func (p filePred) matchPath(path string) bool {
	for _, prefix := range p.paths {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}

func (p filePred) Validate() error {
	if len(p.paths) == 0 {
		return fmt.Errorf("file() needs at least one path")
	}

	return nil
}

func (p filePred) String() string {
	return fmt.Sprintf("file(%s)", strings.Join(p.paths, ", "))
}

//////////////

type diffContainsPred struct {
	needle refs.Pattern
	path   string // empty for "any path"
}

// DiffContainsFilter matches commits where a line inserted or removed by
// the diff (against at least one parent) matches `needle`. A non-empty
// `path` restricts the search to that path prefix.
func DiffContainsFilter(needle refs.Pattern, path string) Expr {
	return Filter(diffContainsPred{needle: needle, path: path})
}

func (p diffContainsPred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	parents := cmt.Parents
	if len(parents) == 0 {
		parents = []graph.ID{graph.EmptyID}
	}

	for _, parent := range parents {
		changes, err := ec.store.Diff(parent, cmt.ID)
		if err != nil {
			return false, err
		}

		for _, change := range changes {
			if p.path != "" {
				inPath := change.Path == p.path ||
					strings.HasPrefix(change.Path, p.path+"/")
				if !inPath {
					continue
				}
			}

			for _, line := range change.Added {
				if p.needle.Match(line) {
					return true, nil
				}
			}

			for _, line := range change.Removed {
				if p.needle.Match(line) {
					return true, nil
				}
			}
		}
	}

	return false, nil
}

func (p diffContainsPred) Validate() error { return nil }

func (p diffContainsPred) String() string {
	if p.path == "" {
		return fmt.Sprintf("diff_contains(%s)", p.needle)
	}

	return fmt.Sprintf("diff_contains(%s, %s)", p.needle, p.path)
}

//////////////

type conflictPred struct{}

// ConflictFilter matches commits whose tree has at least one unresolved
// conflict.
func ConflictFilter() Expr {
	return Filter(conflictPred{})
}

func (conflictPred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	return ec.store.HasConflict(cmt.ID)
}

func (conflictPred) Validate() error { return nil }
func (conflictPred) String() string  { return "conflict()" }

//////////////

type minePred struct{}

// MineFilter matches commits whose author email equals the configured
// user's email (case insensitive).
func MineFilter() Expr {
	return Filter(minePred{})
}

func (minePred) Match(ec *evalContext, cmt *graph.Commit) (bool, error) {
	if ec.cfg.UserEmail == "" {
		return false, nil
	}

	return strings.EqualFold(cmt.Author.Email, ec.cfg.UserEmail), nil
}

func (minePred) Validate() error { return nil }
func (minePred) String() string  { return "mine()" }
