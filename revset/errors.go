package revset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theduke/jj/refs"
)

var (
	// ErrEmptyString is returned for a quoted empty-string symbol.
	ErrEmptyString = errors.New("empty string is not a valid revision")
)

// ErrNoSuchRevision means a symbol did not resolve to anything.
// Candidates carries near-miss ref names for a "did you mean" hint;
// it is empty (never nil) if nothing comes close.
type ErrNoSuchRevision struct {
	Name       string
	Candidates []string
}

func (e ErrNoSuchRevision) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no such revision: '%s'", e.Name)
	}

	return fmt.Sprintf(
		"no such revision: '%s' (did you mean %s?)",
		e.Name,
		strings.Join(e.Candidates, ", "),
	)
}

// IsErrNoSuchRevision asserts that `err` means an unresolvable symbol.
func IsErrNoSuchRevision(err error) bool {
	var target ErrNoSuchRevision
	return errors.As(err, &target)
}

//////////////

// ErrAmbiguousCommitIDPrefix means a hex prefix matched two or more
// commit ids. Ambiguity is a query-writing bug and is never suppressed.
type ErrAmbiguousCommitIDPrefix struct {
	Prefix string
}

func (e ErrAmbiguousCommitIDPrefix) Error() string {
	return fmt.Sprintf("commit id prefix '%s' is ambiguous", e.Prefix)
}

// IsErrAmbiguousCommitIDPrefix asserts that `err` is a commit prefix
// ambiguity.
func IsErrAmbiguousCommitIDPrefix(err error) bool {
	var target ErrAmbiguousCommitIDPrefix
	return errors.As(err, &target)
}

//////////////

// ErrAmbiguousChangeIDPrefix means a hex prefix matched two or more
// change ids.
type ErrAmbiguousChangeIDPrefix struct {
	Prefix string
}

func (e ErrAmbiguousChangeIDPrefix) Error() string {
	return fmt.Sprintf("change id prefix '%s' is ambiguous", e.Prefix)
}

// IsErrAmbiguousChangeIDPrefix asserts that `err` is a change prefix
// ambiguity.
func IsErrAmbiguousChangeIDPrefix(err error) bool {
	var target ErrAmbiguousChangeIDPrefix
	return errors.As(err, &target)
}

//////////////

// ErrWorkspaceMissingWorkingCopy means a working-copy symbol referenced a
// workspace the View does not know a checkout for.
type ErrWorkspaceMissingWorkingCopy struct {
	Workspace refs.WorkspaceID
}

func (e ErrWorkspaceMissingWorkingCopy) Error() string {
	return fmt.Sprintf("workspace '%s' has no working copy", e.Workspace)
}

// IsErrWorkspaceMissingWorkingCopy asserts that `err` is a missing
// working copy.
func IsErrWorkspaceMissingWorkingCopy(err error) bool {
	var target ErrWorkspaceMissingWorkingCopy
	return errors.As(err, &target)
}
