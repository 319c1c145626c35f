// Package verify walks the recorded object graph and checks every
// reachable object against its content id, so damaged or missing
// storage is reported before a restore trips over it.
package verify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/avc/internal/object"
	"github.com/keshon/avc/internal/refs"
	"github.com/keshon/avc/internal/store"
)

type Status string

const (
	OK      Status = "ok"
	Missing Status = "missing"
	Damaged Status = "damaged"
)

// Check is the verification result for one reachable object.
type Check struct {
	ID     string
	Kind   object.Kind
	Status Status
	Detail string
	// Refs lists the references whose history reaches this object.
	Refs []string
}

// Scan walks every reference's commit chain down to its blobs and
// verifies each reachable object exactly once. Results come back in
// id order. A damaged commit or tree ends that branch of the walk (its
// children cannot be enumerated) but the scan continues elsewhere.
func Scan(st *store.ObjectStore, rm *refs.Manager) ([]Check, error) {
	names, err := rm.List()
	if err != nil {
		return nil, err
	}

	type seenObject struct {
		kind object.Kind
		refs map[string]bool
	}
	reachable := map[string]*seenObject{}
	broken := map[string]string{}

	note := func(id string, kind object.Kind, ref string) bool {
		so, known := reachable[id]
		if !known {
			so = &seenObject{kind: kind, refs: map[string]bool{}}
			reachable[id] = so
		}
		so.refs[ref] = true
		return known
	}

	var walkTree func(id object.ID, ref string)
	walkTree = func(id object.ID, ref string) {
		if note(id.String(), object.KindTree, ref) {
			return
		}
		tree, err := st.GetTree(id)
		if err != nil {
			broken[id.String()] = err.Error()
			return
		}
		for _, e := range tree.Entries {
			childID, err := object.ParseID(e.ID)
			if err != nil {
				broken[id.String()] = fmt.Sprintf("entry %q: %v", e.Name, err)
				continue
			}
			if e.IsDir() {
				walkTree(childID, ref)
				continue
			}
			note(childID.String(), object.KindBlob, ref)
		}
	}

	for _, ref := range names {
		head, err := rm.Head(ref)
		if err != nil {
			return nil, err
		}
		cur := head
		visited := map[string]bool{}
		for cur.Defined() && !visited[cur.String()] {
			visited[cur.String()] = true
			note(cur.String(), object.KindCommit, ref)

			commit, err := st.GetCommit(cur)
			if err != nil {
				broken[cur.String()] = err.Error()
				break
			}
			treeID, err := object.ParseID(commit.Tree)
			if err != nil {
				broken[cur.String()] = err.Error()
				break
			}
			walkTree(treeID, ref)

			if len(commit.Parents) == 0 {
				break
			}
			// lineages are linear; the first parent is the chain
			parent, err := object.ParseID(commit.Parents[0])
			if err != nil {
				broken[cur.String()] = err.Error()
				break
			}
			cur = parent
		}
	}

	results := make([]Check, 0, len(reachable))
	for id, so := range reachable {
		c := Check{ID: id, Kind: so.kind, Status: OK}
		for r := range so.refs {
			c.Refs = append(c.Refs, r)
		}
		sort.Strings(c.Refs)

		verr := error(nil)
		if detail, bad := broken[id]; bad {
			verr = errors.New(detail)
		} else if oid, err := object.ParseID(id); err != nil {
			verr = err
		} else {
			verr = st.Verify(oid)
		}
		if verr != nil {
			c.Status = Damaged
			if errors.Is(verr, store.ErrNotFound) {
				c.Status = Missing
			}
			c.Detail = verr.Error()
		}
		results = append(results, c)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// Summarize folds a scan into per-status counts.
func Summarize(checks []Check) map[Status]int {
	out := map[Status]int{}
	for _, c := range checks {
		out[c.Status]++
	}
	return out
}

// Describe renders one check as a report line.
func Describe(c Check) string {
	line := fmt.Sprintf("%-7s %-6s %s", c.Status, c.Kind, c.ID)
	if len(c.Refs) > 0 {
		line += "  [" + strings.Join(c.Refs, ", ") + "]"
	}
	if c.Detail != "" {
		line += "  " + c.Detail
	}
	return line
}
