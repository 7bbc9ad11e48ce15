package refs

import (
	"fmt"
	"sort"

	"github.com/theduke/jj/graph"
)

// WorkspaceID names one working copy of the repository.
type WorkspaceID string

// DefaultWorkspace is the workspace used when none is named.
const DefaultWorkspace = WorkspaceID("default")

// GitRemoteName is the reserved remote name holding the local git
// mirror's refs. It resolves like any other remote in `name@git` lookups,
// but is excluded from unfiltered remote bookmark enumeration.
const GitRemoteName = "git"

// RemoteKey addresses one bookmark on one remote.
type RemoteKey struct {
	Name   string
	Remote string
}

// String will return the `name@remote` form of the key.
func (rk RemoteKey) String() string {
	return fmt.Sprintf("%s@%s", rk.Name, rk.Remote)
}

// View is the ref snapshot of the repository: every named pointer into the
// commit graph plus the visible heads. The revset engine only reads it;
// all mutation happens in the transaction layer before a View is handed
// out.
type View struct {
	bookmarks       map[string]Target
	remoteBookmarks map[RemoteKey]RemoteRef
	tags            map[string]Target
	gitRefs         map[string]Target
	gitHead         Target
	workingCopies   map[WorkspaceID]graph.ID
	heads           map[graph.ID]bool
}

// NewView creates an empty view.
func NewView() *View {
	return &View{
		bookmarks:       make(map[string]Target),
		remoteBookmarks: make(map[RemoteKey]RemoteRef),
		tags:            make(map[string]Target),
		gitRefs:         make(map[string]Target),
		workingCopies:   make(map[WorkspaceID]graph.ID),
		heads:           make(map[graph.ID]bool),
	}
}

/////////////// MUTATION (transaction layer only) ///////////////

// SetBookmark points the local bookmark `name` at `target`.
// An absent target deletes the bookmark.
func (v *View) SetBookmark(name string, target Target) {
	if !target.IsPresent() {
		delete(v.bookmarks, name)
		return
	}

	v.bookmarks[name] = target
}

// SetRemoteBookmark records the state of `name` on `remote`.
func (v *View) SetRemoteBookmark(name, remote string, rr RemoteRef) {
	key := RemoteKey{Name: name, Remote: remote}
	if !rr.Target.IsPresent() {
		delete(v.remoteBookmarks, key)
		return
	}

	v.remoteBookmarks[key] = rr
}

// SetTag points the tag `name` at `target`.
func (v *View) SetTag(name string, target Target) {
	if !target.IsPresent() {
		delete(v.tags, name)
		return
	}

	v.tags[name] = target
}

// SetGitRef records the raw git ref at `path` (e.g. "refs/heads/main").
func (v *View) SetGitRef(path string, target Target) {
	if !target.IsPresent() {
		delete(v.gitRefs, path)
		return
	}

	v.gitRefs[path] = target
}

// SetGitHead records where the git HEAD points.
func (v *View) SetGitHead(target Target) {
	v.gitHead = target
}

// SetWorkingCopy records that workspace `ws` has `id` checked out.
func (v *View) SetWorkingCopy(ws WorkspaceID, id graph.ID) {
	v.workingCopies[ws] = id
}

// AddHead marks `id` as a visible head.
func (v *View) AddHead(id graph.ID) {
	v.heads[id] = true
}

// RemoveHead unmarks `id` as a visible head.
func (v *View) RemoveHead(id graph.ID) {
	delete(v.heads, id)
}

/////////////// LOOKUP ///////////////

// Bookmark returns the target of the local bookmark `name`
// (absent if there is none).
func (v *View) Bookmark(name string) Target {
	return v.bookmarks[name]
}

// RemoteBookmark returns the state of `name` on `remote`.
func (v *View) RemoteBookmark(name, remote string) (RemoteRef, bool) {
	rr, ok := v.remoteBookmarks[RemoteKey{Name: name, Remote: remote}]
	return rr, ok
}

// Tag returns the target of the tag `name`.
func (v *View) Tag(name string) Target {
	return v.tags[name]
}

// GitRef returns the target of the raw git ref at `path`.
func (v *View) GitRef(path string) Target {
	return v.gitRefs[path]
}

// GitHead returns where the git HEAD points (maybe absent).
func (v *View) GitHead() Target {
	return v.gitHead
}

// WorkingCopy returns the commit checked out in workspace `ws`.
func (v *View) WorkingCopy(ws WorkspaceID) (graph.ID, bool) {
	id, ok := v.workingCopies[ws]
	return id, ok
}

/////////////// ENUMERATION (sorted, deterministic) ///////////////

// BookmarkNames returns all local bookmark names in sorted order.
func (v *View) BookmarkNames() []string {
	return sortedKeys(v.bookmarks)
}

// TagNames returns all tag names in sorted order.
func (v *View) TagNames() []string {
	return sortedKeys(v.tags)
}

// GitRefPaths returns all raw git ref paths in sorted order.
func (v *View) GitRefPaths() []string {
	return sortedKeys(v.gitRefs)
}

// RemoteBookmarkKeys returns all (name, remote) pairs,
// sorted by name, then remote.
func (v *View) RemoteBookmarkKeys() []RemoteKey {
	keys := make([]RemoteKey, 0, len(v.remoteBookmarks))
	for key := range v.remoteBookmarks {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}

		return keys[i].Remote < keys[j].Remote
	})

	return keys
}

// Workspaces returns all workspace ids in sorted order.
func (v *View) Workspaces() []WorkspaceID {
	wss := make([]WorkspaceID, 0, len(v.workingCopies))
	for ws := range v.workingCopies {
		wss = append(wss, ws)
	}

	sort.Slice(wss, func(i, j int) bool { return wss[i] < wss[j] })
	return wss
}

// HeadIDs returns all visible head ids in sorted order.
func (v *View) HeadIDs() []graph.ID {
	ids := make([]graph.ID, 0, len(v.heads))
	for id := range v.heads {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedKeys(m map[string]Target) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}
