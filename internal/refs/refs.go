// Package refs maintains the mutable side of the engine: named pointers
// into the immutable commit graph plus the metadata log. A reference is
// one file under refs/ holding a commit id; everything it points to
// never changes, so advancing the pointer is the only write that needs
// serialization.
package refs

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/object"
	"github.com/keshon/avc/internal/store"
)

// ErrNotFound marks references or commits that do not exist, distinct
// from I/O failures.
var ErrNotFound = errors.New("reference not found")

// CheckpointInfo is the externally visible handle for one checkpoint,
// independent of which reference advanced to it.
type CheckpointInfo struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Manager owns the refs/ directory and the metadata log for one
// conversation. Advancement and log merges for a given reference are
// serialized by a per-reference mutex (single writer per reference);
// different references proceed independently.
type Manager struct {
	cfg   *config.RepoConfig
	fsys  fs.FS
	store *store.ObjectStore
	log   *zap.Logger

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex

	// metaMu orders whole-file read-merge-write cycles of the metadata
	// log when two references advance at the same time.
	metaMu sync.Mutex
}

func NewManager(cfg *config.RepoConfig, fsys fs.FS, st *store.ObjectStore, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:   cfg,
		fsys:  fsys,
		store: st,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// refLock returns the mutex serializing writers of one reference.
func (m *Manager) refLock(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[name]
	if !ok {
		l = &sync.Mutex{}
		m.locks[name] = l
	}
	return l
}

// EnsureRepo creates the refs directory, the main reference and an
// empty metadata log. Safe to call repeatedly.
func (m *Manager) EnsureRepo() error {
	if err := m.fsys.MkdirAll(m.cfg.RefsDir(), 0o755); err != nil {
		return fmt.Errorf("create refs dir: %w", err)
	}
	mainRef := m.cfg.RefFile(config.MainRef)
	if !m.fsys.Exists(mainRef) {
		if err := fs.WriteFileAtomic(m.fsys, mainRef, []byte{}, 0o644); err != nil {
			return fmt.Errorf("create %s reference: %w", config.MainRef, err)
		}
	}
	if !m.fsys.Exists(m.cfg.MetaFile()) {
		if err := m.writeMeta(&metaFile{Version: metaVersion, Messages: map[string]string{}}); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether a reference file is present.
func (m *Manager) Exists(name string) bool {
	return m.fsys.Exists(m.cfg.RefFile(name))
}

// Head returns the commit a reference points to. A reference that
// exists but has no commits yet yields cid.Undef with no error; a
// missing reference is ErrNotFound.
func (m *Manager) Head(name string) (object.ID, error) {
	data, err := m.fsys.ReadFile(m.cfg.RefFile(name))
	if err != nil {
		if m.fsys.IsNotExist(err) {
			return cid.Undef, fmt.Errorf("reference %q: %w", name, ErrNotFound)
		}
		return cid.Undef, fmt.Errorf("read reference %q: %w", name, err)
	}

	s := strings.TrimSpace(string(data))
	if s == "" {
		return cid.Undef, nil
	}
	id, err := object.ParseID(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("reference %q: %w", name, err)
	}
	return id, nil
}

// Advance moves a reference to a new commit and merges the commit's
// message into the metadata log, both under the reference's writer
// lock so concurrent log merges never lose updates.
func (m *Manager) Advance(name string, id object.ID, message string) error {
	l := m.refLock(name)
	l.Lock()
	defer l.Unlock()

	if !m.Exists(name) {
		return fmt.Errorf("reference %q: %w", name, ErrNotFound)
	}
	if err := fs.WriteFileAtomic(m.fsys, m.cfg.RefFile(name), []byte(id.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("advance reference %q: %w", name, err)
	}
	if err := m.mergeMessage(id.String(), message); err != nil {
		return err
	}

	m.log.Debug("reference advanced",
		zap.String("ref", name), zap.String("commit", id.String()))
	return nil
}

// List returns every reference name, main first, sessions in numeric
// order.
func (m *Manager) List() ([]string, error) {
	entries, err := m.fsys.ReadDir(m.cfg.RefsDir())
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == config.MainRef {
			return true
		}
		if names[j] == config.MainRef {
			return false
		}
		return sessionNumber(names[i]) < sessionNumber(names[j])
	})
	return names, nil
}

// Sessions returns the session reference names only, numeric order.
func (m *Manager) Sessions() ([]string, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	sessions := all[:0]
	for _, n := range all {
		if strings.HasPrefix(n, config.SessionRefPrefix) {
			sessions = append(sessions, n)
		}
	}
	return sessions, nil
}

func sessionNumber(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, config.SessionRefPrefix))
	if err != nil {
		return 0
	}
	return n
}

// CreateSession allocates the smallest unused session_N reference,
// pointing at the given base commit (cid.Undef for an empty lineage).
func (m *Manager) CreateSession(base object.ID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.fsys.ReadDir(m.cfg.RefsDir())
	if err != nil {
		return "", fmt.Errorf("list references: %w", err)
	}
	used := map[int]bool{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), config.SessionRefPrefix) {
			used[sessionNumber(e.Name())] = true
		}
	}

	n := 1
	for used[n] {
		n++
	}
	name := fmt.Sprintf("%s%d", config.SessionRefPrefix, n)

	content := ""
	if base.Defined() {
		content = base.String() + "\n"
	}
	if err := fs.WriteFileAtomic(m.fsys, m.cfg.RefFile(name), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("create reference %q: %w", name, err)
	}

	m.log.Info("session created",
		zap.String("ref", name), zap.String("base", base.String()))
	return name, nil
}

// PromoteToMain moves main to the given commit. Promotion is always an
// explicit pointer move by the caller; sessions are never merged back
// automatically.
func (m *Manager) PromoteToMain(id object.ID) error {
	c, err := m.store.GetCommit(id)
	if err != nil {
		return err
	}
	return m.Advance(config.MainRef, id, c.Message)
}

// ListCheckpoints walks a reference's parent chain from head back to
// the root and returns the checkpoints oldest-first. Messages come from
// the metadata log when present, else from the commit body.
func (m *Manager) ListCheckpoints(name string) ([]CheckpointInfo, error) {
	head, err := m.Head(name)
	if err != nil {
		return nil, err
	}
	if !head.Defined() {
		return nil, nil
	}

	meta, err := m.readMeta()
	if err != nil {
		return nil, err
	}

	var out []CheckpointInfo
	seen := map[string]bool{}
	queue := []object.ID{head}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id.String()] {
			continue
		}
		seen[id.String()] = true

		c, err := m.store.GetCommit(id)
		if err != nil {
			return nil, err
		}

		msg, ok := meta.Messages[id.String()]
		if !ok {
			msg = c.Message
		}
		out = append(out, CheckpointInfo{ID: id.String(), Message: msg})

		for _, p := range c.Parents {
			pid, err := object.ParseID(p)
			if err != nil {
				return nil, fmt.Errorf("commit %s: %w", id, err)
			}
			queue = append(queue, pid)
		}
	}

	// walk order is newest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
