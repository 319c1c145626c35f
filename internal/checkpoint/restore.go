package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/object"
)

// Restore reconciles the working directory to the given checkpoint and
// returns the restored paths.
//
// Every blob of the target tree is written to its path; afterwards the
// paths the engine can prove it once tracked (pre-restore head tree
// plus staged entries) that are absent from the target are deleted.
// Never-tracked, always-ignored files are left alone no matter what.
//
// On a write failure the walk aborts with a RestoreError naming the
// failed path and everything already restored; already-written files
// stay intact. The reference itself never moves: history is append-only
// and a later checkpoint records the restored state.
func (s *Session) Restore(commitID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.repo

	id, err := r.resolveRef(commitID)
	if err != nil {
		return nil, err
	}
	target, err := r.flattenCommit(id)
	if err != nil {
		return nil, err
	}

	head, err := r.refs.Head(s.ref)
	if err != nil {
		return nil, err
	}
	previous, err := r.flattenCommit(head)
	if err != nil {
		return nil, err
	}

	idx := r.loadIndex(s.ref)

	// fetch all blobs up front so a damaged object aborts before the
	// working directory is touched
	contents := make(map[string][]byte, len(target))
	for p, entry := range target {
		content, err := r.blobContent(entry)
		if err != nil {
			return nil, fmt.Errorf("restore %q: %w", p, err)
		}
		contents[p] = content
	}

	paths := make([]string, 0, len(target))
	for p := range target {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var (
		mu       sync.Mutex
		restored []string
		failed   atomic.Bool
	)

	g := &errgroup.Group{}
	g.SetLimit(max(1, r.conf.Workers))
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if failed.Load() {
				// a path already failed; the walk is aborting
				return nil
			}
			abs := filepath.Join(r.cfg.Workspace, filepath.FromSlash(p))
			if err := r.fsys.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				failed.Store(true)
				return &RestoreError{Path: p, Err: err}
			}
			perm := os.FileMode(0o644)
			if target[p].Mode == object.ModeExec {
				perm = 0o755
			}
			if err := fs.WriteFileAtomic(r.fsys, abs, contents[p], perm); err != nil {
				failed.Store(true)
				return &RestoreError{Path: p, Err: err}
			}
			mu.Lock()
			restored = append(restored, p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sort.Strings(restored)
		var re *RestoreError
		if errors.As(err, &re) {
			re.Restored = restored
			return restored, re
		}
		return restored, err
	}
	sort.Strings(restored)

	// delete what the engine once tracked and the target lacks
	tracked := make(map[string]bool, len(previous)+len(idx))
	for p := range previous {
		tracked[p] = true
	}
	for p := range idx {
		tracked[p] = true
	}

	var doomed []string
	for p := range tracked {
		if _, keep := target[p]; !keep {
			doomed = append(doomed, p)
		}
	}
	sort.Strings(doomed)

	for _, p := range doomed {
		abs := filepath.Join(r.cfg.Workspace, filepath.FromSlash(p))
		if err := r.fsys.Remove(abs); err != nil && !r.fsys.IsNotExist(err) {
			return restored, &RestoreError{Path: p, Err: err, Restored: restored}
		}
		r.pruneEmptyDirs(filepath.Dir(abs))
	}

	// the stat cache now describes the restored state; staged-only
	// entries are gone with it
	fresh := make(index, len(target))
	for p, entry := range target {
		abs := filepath.Join(r.cfg.Workspace, filepath.FromSlash(p))
		info, err := r.fsys.Stat(abs)
		if err != nil {
			continue
		}
		fresh[p] = indexEntry{ID: entry.ID, Size: info.Size(), MtimeNS: info.ModTime().UnixNano()}
	}
	if err := r.saveIndex(s.ref, fresh); err != nil {
		r.log.Warn("stat cache rewrite failed", zap.String("ref", s.ref), zap.Error(err))
	}

	r.log.Info("checkpoint restored",
		zap.String("ref", s.ref),
		zap.String("commit", id.String()),
		zap.Int("restored", len(restored)),
		zap.Int("deleted", len(doomed)))

	return restored, nil
}

// pruneEmptyDirs removes directories emptied by deletions, walking up
// to (but never including) the workspace root.
func (r *Repo) pruneEmptyDirs(dir string) {
	root := filepath.Clean(r.cfg.Workspace)
	for {
		dir = filepath.Clean(dir)
		if dir == root || len(dir) <= len(root) {
			return
		}
		entries, err := r.fsys.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := r.fsys.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
