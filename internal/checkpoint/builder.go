package checkpoint

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/mmap"

	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/object"
	"github.com/keshon/avc/internal/util"
)

// CreateCheckpoint snapshots the workspace onto this session's
// reference and returns the new checkpoint's handle.
//
// The whole operation either completes (objects written, reference
// advanced, metadata log merged, stat cache rewritten) or fails before
// the reference is touched. Per-file read failures do not short-circuit
// the walk; they are collected into one ReadError naming every
// offending path.
func (s *Session) CreateCheckpoint(message string) (CheckpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCheckpointLocked(message)
}

func (s *Session) createCheckpointLocked(message string) (CheckpointInfo, error) {
	r := s.repo
	start := time.Now()

	matcher, err := r.excl.Resolve(r.cfg.Workspace)
	if err != nil {
		return CheckpointInfo{}, err
	}
	files, err := r.scanWorkspace(matcher)
	if err != nil {
		return CheckpointInfo{}, err
	}

	head, err := r.refs.Head(s.ref)
	if err != nil {
		return CheckpointInfo{}, err
	}

	if len(files) == 0 && !head.Defined() {
		// brand-new, fully-excluded workspace: nothing was ever
		// tracked, so there is nothing to commit and nothing to fail
		r.log.Info("no-op checkpoint on empty lineage", zap.String("ref", s.ref))
		return CheckpointInfo{Message: message}, nil
	}

	idx := r.loadIndex(s.ref)
	nowNS := start.UnixNano()

	ids := make([]object.ID, len(files))
	indices := make([]int, len(files))
	for i := range indices {
		indices[i] = i
	}

	errs := util.ParallelAll(indices, r.conf.Workers, func(i int) error {
		f := files[i]
		if id, ok := r.tryReuse(idx, f, nowNS); ok {
			ids[i] = id
			return nil
		}
		data, err := r.readWorkspaceFile(f)
		if err != nil {
			return &PathError{Path: f.rel, Err: err}
		}
		id, err := r.store.PutBlob(data)
		if err != nil {
			return err
		}
		ids[i] = id
		return nil
	})
	if len(errs) > 0 {
		var failures []*PathError
		for _, err := range errs {
			var pe *PathError
			if errors.As(err, &pe) {
				failures = append(failures, pe)
				continue
			}
			// store write failures are not per-file degradations
			return CheckpointInfo{}, err
		}
		return CheckpointInfo{}, &ReadError{Failures: failures, Preview: r.conf.ErrPreviewCap}
	}

	treeID, err := r.buildTree(files, ids)
	if err != nil {
		return CheckpointInfo{}, err
	}

	commit := &object.Commit{
		Tree:      treeID.String(),
		Author:    "avc",
		Timestamp: start.UnixNano(),
		Message:   message,
	}
	if head.Defined() {
		commit.Parents = []string{head.String()}
	}

	commitID, err := r.store.PutCommit(commit)
	if err != nil {
		return CheckpointInfo{}, err
	}
	if err := r.refs.Advance(s.ref, commitID, message); err != nil {
		return CheckpointInfo{}, err
	}

	fresh := make(index, len(files))
	for i, f := range files {
		fresh[f.rel] = indexEntry{ID: ids[i].String(), Size: f.size, MtimeNS: f.mtimeNS}
	}
	if err := r.saveIndex(s.ref, fresh); err != nil {
		// the cache is rebuilt on the next checkpoint anyway
		r.log.Warn("stat cache rewrite failed", zap.String("ref", s.ref), zap.Error(err))
	}

	r.log.Info("checkpoint created",
		zap.String("ref", s.ref),
		zap.String("commit", commitID.String()),
		zap.Int("files", len(files)),
		zap.Duration("took", time.Since(start)))

	return CheckpointInfo{ID: commitID.String(), Message: message}, nil
}

// readWorkspaceFile reads one scanned file, memory-mapping it when it
// crosses the configured threshold.
func (r *Repo) readWorkspaceFile(f workFile) ([]byte, error) {
	if _, ok := r.fsys.(*fs.OSFS); ok && r.conf.MmapThreshold > 0 && f.size >= r.conf.MmapThreshold {
		m, err := mmap.Open(f.abs)
		if err == nil {
			defer m.Close()
			data := make([]byte, m.Len())
			if _, err := m.ReadAt(data, 0); err == nil {
				return data, nil
			}
		}
		// fall through to a plain read
	}
	return r.fsys.ReadFile(f.abs)
}

// buildTree assembles the name-sorted tree graph bottom-up and stores
// every node, returning the root tree id.
func (r *Repo) buildTree(files []workFile, ids []object.ID) (object.ID, error) {
	root := newDirNode()
	for i, f := range files {
		parts := strings.Split(f.rel, "/")
		node := root
		for _, dir := range parts[:len(parts)-1] {
			node = node.child(dir)
		}
		node.files = append(node.files, object.TreeEntry{
			Name: parts[len(parts)-1],
			Mode: f.mode,
			ID:   ids[i].String(),
			Size: f.size,
		})
	}
	return r.putDirNode(root, "")
}

type dirNode struct {
	files []object.TreeEntry
	dirs  map[string]*dirNode
}

func newDirNode() *dirNode {
	return &dirNode{dirs: make(map[string]*dirNode)}
}

func (n *dirNode) child(name string) *dirNode {
	c, ok := n.dirs[name]
	if !ok {
		c = newDirNode()
		n.dirs[name] = c
	}
	return c
}

func (r *Repo) putDirNode(n *dirNode, rel string) (object.ID, error) {
	t := &object.Tree{Entries: append([]object.TreeEntry(nil), n.files...)}

	for _, name := range util.SortedKeys(n.dirs) {
		childID, err := r.putDirNode(n.dirs[name], path.Join(rel, name))
		if err != nil {
			return object.ID{}, err
		}
		t.Entries = append(t.Entries, object.TreeEntry{
			Name: name,
			Mode: object.ModeDir,
			ID:   childID.String(),
		})
	}

	id, err := r.store.PutTree(t)
	if err != nil {
		return object.ID{}, fmt.Errorf("store tree %q: %w", rel, err)
	}
	return id, nil
}
