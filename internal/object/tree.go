package object

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ipfs/go-cid"
)

// Entry modes, git-style octal strings.
const (
	ModeDir  = "40000"
	ModeFile = "100644"
	ModeExec = "100755"
)

// TreeEntry references one child of a directory snapshot. Size is the
// referenced blob's content length (0 for subtrees); it is a pure
// function of the content, so including it keeps tree ids deterministic.
type TreeEntry struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
	ID   string `json:"id"`
	Size int64  `json:"size,omitempty"`
}

func (e TreeEntry) IsDir() bool { return e.Mode == ModeDir }

// Tree is a name-sorted directory snapshot.
type Tree struct {
	Entries []TreeEntry `json:"entries"`
}

// Sort orders entries by name. Encode calls it, so callers may append
// in any order.
func (t *Tree) Sort() {
	sort.Slice(t.Entries, func(i, j int) bool {
		return t.Entries[i].Name < t.Entries[j].Name
	})
}

// Find returns the entry with the given name.
func (t *Tree) Find(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Encode canonicalizes the tree and returns its envelope and id. The
// encoding is a pure function of the entries: same entries, same id,
// regardless of scan order.
func (t *Tree) Encode() ([]byte, ID, error) {
	t.Sort()
	for i := 1; i < len(t.Entries); i++ {
		if t.Entries[i].Name == t.Entries[i-1].Name {
			return nil, cid.Undef, fmt.Errorf("tree has duplicate entry %q", t.Entries[i].Name)
		}
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return nil, cid.Undef, fmt.Errorf("encode tree: %w", err)
	}

	enc := Encode(KindTree, payload)
	id, err := ComputeID(enc)
	if err != nil {
		return nil, cid.Undef, err
	}
	return enc, id, nil
}

// DecodeTree parses a tree payload (the envelope already stripped).
func DecodeTree(payload []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("%w: tree payload: %v", ErrCorrupt, err)
	}
	return &t, nil
}
