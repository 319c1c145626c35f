package checkpoint

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/keshon/avc/internal/object"
	"github.com/keshon/avc/internal/textdiff"
)

// StagedFiles reports how the live working tree differs from the
// session head. It is recomputed per call against a freshly resolved
// exclude matcher: a tracked path hidden by a *newly added* ignore rule
// drops out of the comparison entirely instead of masquerading as a
// deletion.
func (s *Session) StagedFiles(includeDiff bool) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stagedFilesLocked(includeDiff)
}

func (s *Session) stagedFilesLocked(includeDiff bool) ([]Change, error) {
	r := s.repo

	matcher, err := r.excl.Resolve(r.cfg.Workspace)
	if err != nil {
		return nil, err
	}
	files, err := r.scanWorkspace(matcher)
	if err != nil {
		return nil, err
	}

	head, err := r.refs.Head(s.ref)
	if err != nil {
		return nil, err
	}
	baseline, err := r.flattenCommit(head)
	if err != nil {
		return nil, err
	}

	live := make(map[string]workFile, len(files))
	for _, f := range files {
		live[f.rel] = f
	}

	paths := make(map[string]bool, len(live)+len(baseline))
	for p := range live {
		paths[p] = true
	}
	for p := range baseline {
		paths[p] = true
	}
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var changes []Change
	for _, p := range ordered {
		f, onDisk := live[p]
		entry, tracked := baseline[p]

		switch {
		case onDisk && !tracked:
			content, err := r.fsys.ReadFile(f.abs)
			if err != nil {
				return nil, fmt.Errorf("read %q: %w", p, err)
			}
			c := Change{Path: p, Status: StatusAdded, Additions: textdiff.CountLines(content)}
			if includeDiff {
				c.Diff = textdiff.Unified(p, nil, content)
			}
			changes = append(changes, c)

		case !onDisk && tracked:
			if matcher.Excluded(p, false) {
				// newly ignored, not deleted: the scan skipped it but
				// the file may well still exist
				continue
			}
			content, err := r.blobContent(entry)
			if err != nil {
				return nil, err
			}
			c := Change{Path: p, Status: StatusDeleted, Deletions: textdiff.CountLines(content)}
			if includeDiff {
				c.Diff = textdiff.Unified(p, content, nil)
			}
			changes = append(changes, c)

		default:
			content, err := r.fsys.ReadFile(f.abs)
			if err != nil {
				return nil, fmt.Errorf("read %q: %w", p, err)
			}
			liveID, err := object.BlobID(content)
			if err != nil {
				return nil, err
			}
			if liveID.String() == entry.ID {
				continue
			}
			base, err := r.blobContent(entry)
			if err != nil {
				return nil, err
			}
			c := Change{Path: p, Status: StatusModified}
			c.Additions, c.Deletions = textdiff.Stats(base, content)
			if includeDiff {
				c.Diff = textdiff.Unified(p, base, content)
			}
			changes = append(changes, c)
		}
	}
	return changes, nil
}

// HasUncommittedChanges reports whether the working tree differs from
// the session head under freshly resolved exclude rules.
func (s *Session) HasUncommittedChanges() (bool, error) {
	changes, err := s.StagedFiles(false)
	if err != nil {
		return false, err
	}
	return len(changes) > 0, nil
}

// StageFile records a path as tracked ahead of its first checkpoint:
// its bytes are stored as a blob and the stat cache gains a staged
// entry. From then on the engine can prove it tracked the path, which
// is what entitles a later restore to delete it.
func (s *Session) StageFile(rel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel = normalizeRel(rel)
	abs := filepath.Join(s.repo.cfg.Workspace, filepath.FromSlash(rel))

	content, err := s.repo.fsys.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("stage %q: %w", rel, err)
	}
	id, err := s.repo.store.PutBlob(content)
	if err != nil {
		return err
	}

	info, err := s.repo.fsys.Stat(abs)
	if err != nil {
		return fmt.Errorf("stage %q: %w", rel, err)
	}

	idx := s.repo.loadIndex(s.ref)
	idx[rel] = indexEntry{
		ID:      id.String(),
		Size:    info.Size(),
		MtimeNS: info.ModTime().UnixNano(),
		Staged:  true,
	}
	return s.repo.saveIndex(s.ref, idx)
}

// StageFileDeletion records that a tracked path is being deleted. The
// stat cache keeps the path (still proof of tracking) but drops the
// blob association.
func (s *Session) StageFileDeletion(rel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel = normalizeRel(rel)
	idx := s.repo.loadIndex(s.ref)
	idx[rel] = indexEntry{Staged: true}
	return s.repo.saveIndex(s.ref, idx)
}

func normalizeRel(rel string) string {
	return filepath.ToSlash(filepath.Clean(rel))
}
