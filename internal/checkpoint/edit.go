package checkpoint

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/keshon/avc/internal/fs"
)

// editSnapshot holds the exact pre-edit bytes of a few paths so a
// single risky write can be undone without involving the checkpoint
// mechanism. nil content means the path did not exist.
type editSnapshot struct {
	files map[string][]byte
}

// StartEdit captures the current bytes (or absence) of the named
// workspace-relative paths. One edit scope at a time per session.
func (s *Session) StartEdit(paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit != nil {
		return ErrEditActive
	}

	snap := &editSnapshot{files: make(map[string][]byte, len(paths))}
	for _, p := range paths {
		rel := normalizeRel(p)
		abs := filepath.Join(s.repo.cfg.Workspace, filepath.FromSlash(rel))

		content, err := s.repo.fsys.ReadFile(abs)
		switch {
		case err == nil:
			snap.files[rel] = content
		case s.repo.fsys.IsNotExist(err):
			snap.files[rel] = nil
		default:
			return fmt.Errorf("snapshot %q: %w", rel, err)
		}
	}

	s.edit = snap
	s.repo.log.Debug("edit snapshot taken",
		zap.String("ref", s.ref), zap.Int("paths", len(paths)))
	return nil
}

// AbortEdit writes the captured originals back, recreating or deleting
// paths as needed, and closes the edit scope.
func (s *Session) AbortEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return ErrNoEdit
	}
	// the snapshot is kept until every path is back, so a failed
	// rollback can be retried
	snap := s.edit

	for rel, content := range snap.files {
		abs := filepath.Join(s.repo.cfg.Workspace, filepath.FromSlash(rel))
		if content == nil {
			if err := s.repo.fsys.Remove(abs); err != nil && !s.repo.fsys.IsNotExist(err) {
				return fmt.Errorf("undo edit of %q: %w", rel, err)
			}
			continue
		}
		if err := s.repo.fsys.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("undo edit of %q: %w", rel, err)
		}
		if err := fs.WriteFileAtomic(s.repo.fsys, abs, content, 0o644); err != nil {
			return fmt.Errorf("undo edit of %q: %w", rel, err)
		}
	}

	s.edit = nil
	s.repo.log.Debug("edit rolled back",
		zap.String("ref", s.ref), zap.Int("paths", len(snap.files)))
	return nil
}

// FinalizeEdit keeps the edited state and discards the snapshot.
func (s *Session) FinalizeEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return ErrNoEdit
	}
	s.edit = nil
	return nil
}
