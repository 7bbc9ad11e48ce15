// Package graph holds the commit model of the repository: content derived
// identifiers, the immutable Commit value and the Store/Index contracts the
// revset engine evaluates against. It also ships an in-memory implementation
// of both contracts that backs the tests and small histories.
package graph

import "strings"

const (
	// IDHexLen is the length of a full commit id in hex digits.
	IDHexLen = 40

	// ChangeIDHexLen is the length of a full change id in hex digits.
	ChangeIDHexLen = 32
)

// ID is the content derived identifier of a single commit, as a lowercase
// hex string. It changes whenever the commit's content or parents change.
type ID string

// ChangeID identifies "the same logical change" across rewrites of a commit.
// It stays stable when a commit is amended or rebased.
type ChangeID string

// EmptyID is the id used to denote "no commit" (e.g. the parent side of a
// diff against the empty tree).
const EmptyID = ID("")

// IsHex checks if `s` consists only of lowercase hex digits.
// Uppercase digits are rejected on purpose; ids are normalized on creation.
func IsHex(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

// HasPrefix checks if the hex form of `id` starts with `prefix`.
func (id ID) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(id), prefix)
}

// HasPrefix checks if the hex form of `id` starts with `prefix`.
func (id ChangeID) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(id), prefix)
}

// PrefixMatch is the outcome of a prefix lookup in one id namespace.
type PrefixMatch int

const (
	// PrefixNone means no id starts with the prefix.
	PrefixNone = PrefixMatch(iota)
	// PrefixUnique means exactly one id starts with the prefix.
	PrefixUnique
	// PrefixAmbiguous means two or more ids start with the prefix.
	PrefixAmbiguous
)

// String will convert a PrefixMatch to a human readable form.
func (pm PrefixMatch) String() string {
	switch pm {
	case PrefixNone:
		return "none"
	case PrefixUnique:
		return "unique"
	case PrefixAmbiguous:
		return "ambiguous"
	}

	return "invalid"
}
