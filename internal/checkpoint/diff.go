package checkpoint

import (
	"fmt"
	"path"
	"sort"

	"github.com/ipfs/go-cid"

	"github.com/keshon/avc/internal/object"
	"github.com/keshon/avc/internal/refs"
	"github.com/keshon/avc/internal/textdiff"
)

// Status classifies one path's difference.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
)

// Change is one path-level difference between two snapshots (or a
// snapshot and the live working tree). Deletions count the file's full
// line count, not zero.
type Change struct {
	Path      string `json:"path"`
	Status    Status `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Diff      string `json:"diff,omitempty"`
}

// resolveRef resolves a reference name, falling back to a literal
// commit id, so callers can diff against arbitrary checkpoints.
// Unresolvable input is ErrNotFound, distinct from I/O failure.
func (r *Repo) resolveRef(name string) (object.ID, error) {
	if r.refs.Exists(name) {
		return r.refs.Head(name)
	}
	id, err := object.ParseID(name)
	if err != nil {
		return cid.Undef, fmt.Errorf("%q is neither a reference nor a commit id: %w", name, refs.ErrNotFound)
	}
	if !r.store.Has(id) {
		return cid.Undef, fmt.Errorf("commit %q: %w", name, refs.ErrNotFound)
	}
	return id, nil
}

// flattenCommit maps every tracked path of a commit's tree to its blob
// entry. An undefined commit (empty lineage) flattens to nothing.
func (r *Repo) flattenCommit(id object.ID) (map[string]object.TreeEntry, error) {
	out := map[string]object.TreeEntry{}
	if !id.Defined() {
		return out, nil
	}

	commit, err := r.store.GetCommit(id)
	if err != nil {
		return nil, err
	}
	treeID, err := object.ParseID(commit.Tree)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", id, err)
	}
	if err := r.flattenTree(treeID, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) flattenTree(id object.ID, prefix string, out map[string]object.TreeEntry) error {
	tree, err := r.store.GetTree(id)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		rel := e.Name
		if prefix != "" {
			rel = path.Join(prefix, e.Name)
		}
		if e.IsDir() {
			childID, err := object.ParseID(e.ID)
			if err != nil {
				return fmt.Errorf("tree %s entry %q: %w", id, e.Name, err)
			}
			if err := r.flattenTree(childID, rel, out); err != nil {
				return err
			}
			continue
		}
		out[rel] = e
	}
	return nil
}

func (r *Repo) blobContent(entry object.TreeEntry) ([]byte, error) {
	id, err := object.ParseID(entry.ID)
	if err != nil {
		return nil, err
	}
	return r.store.GetBlob(id)
}

// TreeDiff compares two references (or literal commit ids) path by
// path. includeDiff attaches unified diff text to each change.
func (r *Repo) TreeDiff(refA, refB string, includeDiff bool) ([]Change, error) {
	aID, err := r.resolveRef(refA)
	if err != nil {
		return nil, err
	}
	bID, err := r.resolveRef(refB)
	if err != nil {
		return nil, err
	}

	aMap, err := r.flattenCommit(aID)
	if err != nil {
		return nil, err
	}
	bMap, err := r.flattenCommit(bID)
	if err != nil {
		return nil, err
	}

	var changes []Change
	for _, p := range unionPaths(aMap, bMap) {
		aEntry, inA := aMap[p]
		bEntry, inB := bMap[p]

		switch {
		case inA && !inB:
			content, err := r.blobContent(aEntry)
			if err != nil {
				return nil, err
			}
			c := Change{Path: p, Status: StatusDeleted, Deletions: textdiff.CountLines(content)}
			if includeDiff {
				c.Diff = textdiff.Unified(p, content, nil)
			}
			changes = append(changes, c)

		case !inA && inB:
			content, err := r.blobContent(bEntry)
			if err != nil {
				return nil, err
			}
			c := Change{Path: p, Status: StatusAdded, Additions: textdiff.CountLines(content)}
			if includeDiff {
				c.Diff = textdiff.Unified(p, nil, content)
			}
			changes = append(changes, c)

		case aEntry.ID != bEntry.ID:
			aContent, err := r.blobContent(aEntry)
			if err != nil {
				return nil, err
			}
			bContent, err := r.blobContent(bEntry)
			if err != nil {
				return nil, err
			}
			c := Change{Path: p, Status: StatusModified}
			c.Additions, c.Deletions = textdiff.Stats(aContent, bContent)
			if includeDiff {
				c.Diff = textdiff.Unified(p, aContent, bContent)
			}
			changes = append(changes, c)
		}
	}
	return changes, nil
}

func unionPaths(a, b map[string]object.TreeEntry) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var paths []string
	for p := range a {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for p := range b {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
