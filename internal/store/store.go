package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/object"
)

// ErrNotFound marks lookups of ids the store has never seen, distinct
// from I/O failures so callers can tell "nothing there" from "storage
// is broken".
var ErrNotFound = errors.New("object not found")

// ObjectStore keeps immutable envelope-encoded objects, one file per id,
// in a single directory. Writes are atomic and idempotent.
type ObjectStore struct {
	dir  string
	fsys fs.FS
	log  *zap.Logger
}

func New(dir string, fsys fs.FS, log *zap.Logger) *ObjectStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ObjectStore{dir: dir, fsys: fsys, log: log}
}

// Init creates the store directory.
func (s *ObjectStore) Init() error {
	if err := s.fsys.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create object dir %q: %w", s.dir, err)
	}
	return nil
}

func (s *ObjectStore) path(id object.ID) (string, error) {
	name, err := object.Filename(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Put stores a payload under its content id. Storing the same content
// twice returns the same id without rewriting.
func (s *ObjectStore) Put(kind object.Kind, payload []byte) (object.ID, error) {
	enc := object.Encode(kind, payload)
	id, err := object.ComputeID(enc)
	if err != nil {
		return cid.Undef, err
	}
	if err := s.write(kind, id, enc, len(payload)); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (s *ObjectStore) write(kind object.Kind, id object.ID, enc []byte, payloadLen int) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if s.fsys.Exists(path) {
		return nil
	}

	if err := fs.WriteFileAtomic(s.fsys, path, enc, 0o644); err != nil {
		return fmt.Errorf("store %s object %s: %w", kind, id, err)
	}

	s.log.Debug("stored object",
		zap.String("kind", string(kind)),
		zap.String("id", id.String()),
		zap.Int("payload_bytes", payloadLen))

	return nil
}

// PutBlob stores file content as a blob object.
func (s *ObjectStore) PutBlob(content []byte) (object.ID, error) {
	return s.Put(object.KindBlob, content)
}

// PutTree stores a tree in its canonical encoding.
func (s *ObjectStore) PutTree(t *object.Tree) (object.ID, error) {
	enc, id, err := t.Encode()
	if err != nil {
		return cid.Undef, err
	}
	if err := s.write(object.KindTree, id, enc, len(enc)); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// PutCommit stores a commit.
func (s *ObjectStore) PutCommit(c *object.Commit) (object.ID, error) {
	enc, id, err := c.Encode()
	if err != nil {
		return cid.Undef, err
	}
	if err := s.write(object.KindCommit, id, enc, len(enc)); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Get returns an object's kind tag and payload. Unknown ids return
// ErrNotFound.
func (s *ObjectStore) Get(id object.ID) (object.Kind, []byte, error) {
	path, err := s.path(id)
	if err != nil {
		return "", nil, err
	}

	data, err := s.fsys.ReadFile(path)
	if err != nil {
		if s.fsys.IsNotExist(err) {
			return "", nil, fmt.Errorf("object %s: %w", id, ErrNotFound)
		}
		return "", nil, fmt.Errorf("read object %s: %w", id, err)
	}

	kind, payload, err := object.Decode(data)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w", id, err)
	}
	return kind, payload, nil
}

// Has reports whether the store holds id.
func (s *ObjectStore) Has(id object.ID) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	return s.fsys.Exists(path)
}

// GetBlob fetches a blob payload, failing on kind mismatch.
func (s *ObjectStore) GetBlob(id object.ID) ([]byte, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != object.KindBlob {
		return nil, fmt.Errorf("object %s is a %s, expected blob", id, kind)
	}
	return payload, nil
}

// GetTree fetches and decodes a tree.
func (s *ObjectStore) GetTree(id object.ID) (*object.Tree, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != object.KindTree {
		return nil, fmt.Errorf("object %s is a %s, expected tree", id, kind)
	}
	return object.DecodeTree(payload)
}

// GetCommit fetches and decodes a commit.
func (s *ObjectStore) GetCommit(id object.ID) (*object.Commit, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != object.KindCommit {
		return nil, fmt.Errorf("object %s is a %s, expected commit", id, kind)
	}
	return object.DecodeCommit(payload)
}

// Verify re-reads an object and recomputes its digest against the id.
// Returns ErrNotFound for missing objects and object.ErrCorrupt (wrapped)
// for envelope or digest damage.
func (s *ObjectStore) Verify(id object.ID) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	data, err := s.fsys.ReadFile(path)
	if err != nil {
		if s.fsys.IsNotExist(err) {
			return fmt.Errorf("object %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("read object %s: %w", id, err)
	}

	got, err := object.ComputeID(data)
	if err != nil {
		return err
	}
	if !got.Equals(id) {
		return fmt.Errorf("object %s: digest mismatch (%s): %w", id, got, object.ErrCorrupt)
	}
	if _, _, err := object.Decode(data); err != nil {
		return fmt.Errorf("object %s: %w", id, err)
	}
	return nil
}

// List returns every stored id. Used by integrity scans.
func (s *ObjectStore) List() ([]object.ID, error) {
	entries, err := s.fsys.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	ids := make([]object.ID, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, err := object.ParseID(e.Name())
		if err != nil {
			// stray temp or foreign file, not ours to judge here
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
