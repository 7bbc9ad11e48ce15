package graph

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/theduke/jj/util"
)

func init() {
	log.SetLevel(log.WarnLevel)
	log.SetFormatter(&util.LogFormatter{})
}

// TestAuthor is the signature used by the Must* helpers.
var TestAuthor = Signature{
	Name:  "tester",
	Email: "tester@example.org",
}

// WithDummyRepo creates a fresh in-memory repo (holding only the root
// commit) and calls `fn` with it.
func WithDummyRepo(t *testing.T, fn func(rp *Repo)) {
	rp := NewRepo()
	fn(rp)
}

// FakeID derives a deterministic commit id from `seed`.
func FakeID(seed string) ID {
	sum := sha1.Sum([]byte("commit:" + seed))
	return ID(hex.EncodeToString(sum[:]))
}

// FakeChangeID derives a deterministic change id from `seed`.
func FakeChangeID(seed string) ChangeID {
	sum := md5.Sum([]byte("change:" + seed))
	return ChangeID(hex.EncodeToString(sum[:]))
}

// MustCommit adds a commit described by `desc` on top of `parents` and
// returns it. The committer timestamp advances with the position so every
// commit gets a distinct, increasing time.
func MustCommit(t *testing.T, rp *Repo, desc string, parents ...ID) *Commit {
	if len(parents) == 0 {
		parents = []ID{rp.RootID()}
	}

	when := time.Unix(int64(1000+len(rp.order)), 0)
	return MustCommitAt(t, rp, desc, when, parents...)
}

// MustCommitAt is MustCommit with an explicit committer timestamp.
func MustCommitAt(t *testing.T, rp *Repo, desc string, when time.Time, parents ...ID) *Commit {
	if len(parents) == 0 {
		parents = []ID{rp.RootID()}
	}

	seed := fmt.Sprintf("%s-%d", desc, len(rp.order))
	author := TestAuthor
	author.When = when

	cmt := &Commit{
		ID:          FakeID(seed),
		Change:      FakeChangeID(seed),
		Parents:     parents,
		Description: desc,
		Author:      author,
		Committer:   author,
	}

	require.Nil(t, rp.Add(cmt))
	return cmt
}

// MustChainCommit rewrites commits with explicit ids; used by tests that
// need control over the hex representation (prefix resolution e.g.).
func MustChainCommit(t *testing.T, rp *Repo, id ID, change ChangeID, desc string, parents ...ID) *Commit {
	if len(parents) == 0 {
		parents = []ID{rp.RootID()}
	}

	author := TestAuthor
	author.When = time.Unix(int64(1000+len(rp.order)), 0)

	cmt := &Commit{
		ID:          id,
		Change:      change,
		Parents:     parents,
		Description: desc,
		Author:      author,
		Committer:   author,
	}

	require.Nil(t, rp.Add(cmt))
	return cmt
}
