package checkpoint

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/keshon/avc/internal/exclude"
	"github.com/keshon/avc/internal/object"
)

// workFile is one scanned workspace file, identified by its
// slash-separated path relative to the workspace root.
type workFile struct {
	rel     string
	abs     string
	size    int64
	mtimeNS int64
	mode    string
}

// scanWorkspace walks the workspace depth-first with name-sorted
// entries, skipping everything the matcher excludes. The traversal
// order is deterministic so identical directory contents always
// assemble into the identical tree.
func (r *Repo) scanWorkspace(m *exclude.Matcher) ([]workFile, error) {
	var files []workFile

	var walk func(abs, rel string) error
	walk = func(abs, rel string) error {
		entries, err := r.fsys.ReadDir(abs)
		if err != nil {
			return fmt.Errorf("scan %q: %w", rel, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			childRel := e.Name()
			if rel != "" {
				childRel = path.Join(rel, e.Name())
			}
			childAbs := filepath.Join(abs, e.Name())

			if m.Excluded(childRel, e.IsDir()) {
				continue
			}

			if e.IsDir() {
				if err := walk(childAbs, childRel); err != nil {
					return err
				}
				continue
			}

			info, err := r.fsys.Stat(childAbs)
			if err != nil {
				return fmt.Errorf("stat %q: %w", childRel, err)
			}
			if !info.Mode().IsRegular() {
				// sockets, devices, symlinks: not tracked
				continue
			}

			mode := object.ModeFile
			if info.Mode().Perm()&0o111 != 0 {
				mode = object.ModeExec
			}
			files = append(files, workFile{
				rel:     childRel,
				abs:     childAbs,
				size:    info.Size(),
				mtimeNS: info.ModTime().UnixNano(),
				mode:    mode,
			})
		}
		return nil
	}

	if err := walk(r.cfg.Workspace, ""); err != nil {
		return nil, err
	}
	return files, nil
}
