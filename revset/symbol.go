package revset

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/theduke/jj/graph"
	"github.com/theduke/jj/refs"
	"github.com/theduke/jj/util"
)

// resolveEnv bundles the read snapshot a resolve pass runs against.
type resolveEnv struct {
	view *refs.View
	idx  graph.Index
	cfg  *Config
}

// resolveSymbol turns a bare textual symbol into a non-empty, ordered
// list of commit ids, or a resolution error.
//
// Resolution order for a symbol without a `name@remote` form: hex prefix
// in the commit id namespace, hex prefix in the change id namespace, tag,
// local bookmark, raw git ref. The two id namespaces are independent; an
// ambiguity in either aborts resolution for good.
func (env *resolveEnv) resolveSymbol(symbol string) ([]graph.ID, error) {
	if symbol == "" {
		return nil, ErrEmptyString
	}

	if name, remote, ok := splitRemoteSymbol(symbol); ok {
		return env.resolveRemoteSymbol(symbol, name, remote)
	}

	if graph.IsHex(symbol) && len(symbol) >= env.cfg.MinPrefixLen {
		ids, done, err := env.resolveHexPrefix(symbol)
		if done {
			return ids, err
		}

		// Zero matches in both namespaces: fall through to ref names.
	}

	// Tags shadow local bookmarks of the same name:
	if tag := env.view.Tag(symbol); tag.IsPresent() {
		return tag.AddedIDs(), nil
	}

	if bookmark := env.view.Bookmark(symbol); bookmark.IsPresent() {
		return bookmark.AddedIDs(), nil
	}

	for _, path := range gitRefPathCandidates(symbol) {
		if ref := env.view.GitRef(path); ref.IsPresent() {
			return ref.AddedIDs(), nil
		}
	}

	log.Debugf("revset: symbol '%s' did not resolve", symbol)
	return nil, ErrNoSuchRevision{
		Name:       symbol,
		Candidates: env.suggestions(symbol),
	}
}

// resolveRemoteSymbol looks up the `name@remote` pair. Both new and
// tracking remote refs resolve; there is no fallback to id prefixes.
func (env *resolveEnv) resolveRemoteSymbol(symbol, name, remote string) ([]graph.ID, error) {
	if rr, ok := env.view.RemoteBookmark(name, remote); ok {
		return rr.Target.AddedIDs(), nil
	}

	return nil, ErrNoSuchRevision{
		Name:       symbol,
		Candidates: env.suggestions(symbol),
	}
}

// resolveWorkingCopy returns the checkout of workspace `ws`.
func (env *resolveEnv) resolveWorkingCopy(ws refs.WorkspaceID) ([]graph.ID, error) {
	id, ok := env.view.WorkingCopy(ws)
	if !ok {
		return nil, ErrWorkspaceMissingWorkingCopy{Workspace: ws}
	}

	return []graph.ID{id}, nil
}

// resolveHexPrefix tries `symbol` as a commit id prefix, then as a change
// id prefix. `done` is false if neither namespace had a match.
func (env *resolveEnv) resolveHexPrefix(symbol string) (ids []graph.ID, done bool, err error) {
	commitIDs, match := env.idx.ResolveIDPrefix(symbol)
	switch match {
	case graph.PrefixUnique:
		return commitIDs, true, nil
	case graph.PrefixAmbiguous:
		return nil, true, ErrAmbiguousCommitIDPrefix{Prefix: symbol}
	}

	changeIDs, match := env.idx.ResolveChangePrefix(symbol)
	switch match {
	case graph.PrefixUnique:
		return changeIDs, true, nil
	case graph.PrefixAmbiguous:
		return nil, true, ErrAmbiguousChangeIDPrefix{Prefix: symbol}
	}

	return nil, false, nil
}

// splitRemoteSymbol splits `name@remote` at the last '@'. A lone '@', a
// leading or a trailing '@' is not a remote form (quoting produced it).
func splitRemoteSymbol(symbol string) (name, remote string, ok bool) {
	idx := strings.LastIndexByte(symbol, '@')
	if idx <= 0 || idx == len(symbol)-1 {
		return "", "", false
	}

	return symbol[:idx], symbol[idx+1:], true
}

// gitRefPathCandidates lists the raw ref paths a bare symbol may name.
func gitRefPathCandidates(symbol string) []string {
	return []string{
		symbol,
		"refs/heads/" + symbol,
		"refs/tags/" + symbol,
	}
}

// suggestions collects "did you mean" candidates for a failed lookup:
// every bookmark, bookmark@remote pair and tag name that is close to the
// symbol. Close means within a bounded edit distance (case insensitive),
// or containing/contained in the symbol's name part. The result is
// sorted and never nil.
func (env *resolveEnv) suggestions(symbol string) []string {
	names := []string{}
	names = append(names, env.view.BookmarkNames()...)
	names = append(names, env.view.TagNames()...)

	for _, key := range env.view.RemoteBookmarkKeys() {
		names = append(names, key.String())
	}

	symName, _, isRemote := splitRemoteSymbol(symbol)
	if !isRemote {
		symName = symbol
	}

	candidates := []string{}
	for _, name := range names {
		if env.isCloseName(symbol, symName, name) {
			candidates = append(candidates, name)
		}
	}

	sort.Strings(candidates)
	return dedupSorted(candidates)
}

func (env *resolveEnv) isCloseName(symbol, symName, candidate string) bool {
	maxDist := env.cfg.MaxSuggestionDistance

	lowSym := strings.ToLower(symbol)
	lowCand := strings.ToLower(candidate)
	if util.WithinDistance(lowSym, lowCand, maxDist) {
		return true
	}

	candName, _, isRemote := splitRemoteSymbol(candidate)
	if !isRemote {
		candName = candidate
	}

	lowSymName := strings.ToLower(symName)
	lowCandName := strings.ToLower(candName)

	if util.WithinDistance(lowSymName, lowCandName, maxDist) {
		return true
	}

	return strings.Contains(lowCandName, lowSymName) ||
		strings.Contains(lowSymName, lowCandName)
}

func dedupSorted(names []string) []string {
	out := names[:0]
	for idx, name := range names {
		if idx > 0 && names[idx-1] == name {
			continue
		}

		out = append(out, name)
	}

	return out
}
