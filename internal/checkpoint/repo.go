// Package checkpoint is the engine core: it snapshots a workspace into
// the content-addressed object store, diffs snapshots against each
// other and the live tree, and reconciles the working directory back to
// any recorded checkpoint. One Repo serves one conversation; callers
// address lineages through explicit Session handles.
package checkpoint

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dolthub/fslock"
	"go.uber.org/zap"

	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/exclude"
	"github.com/keshon/avc/internal/extsource"
	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/refs"
	"github.com/keshon/avc/internal/store"
)

// CheckpointInfo is re-exported so callers of the engine need only this
// package.
type CheckpointInfo = refs.CheckpointInfo

// Repo is one conversation's checkpoint state over one workspace.
type Repo struct {
	cfg   *config.RepoConfig
	conf  *config.Config
	fsys  fs.FS
	store *store.ObjectStore
	refs  *refs.Manager
	excl  *exclude.Resolver
	ext   extsource.Source
	log   *zap.Logger
	flock *fslock.Lock

	mu       sync.Mutex
	sessions map[string]*Session
}

type options struct {
	fsys fs.FS
	log  *zap.Logger
	ext  extsource.Source
	conf *config.Config
}

type Option func(*options)

// WithFS substitutes the filesystem, mainly for tests.
func WithFS(fsys fs.FS) Option { return func(o *options) { o.fsys = fsys } }

// WithLogger attaches a logger; the default is a nop.
func WithLogger(log *zap.Logger) Option { return func(o *options) { o.log = log } }

// WithExternalSource injects a read-only external store for blob reuse
// (typically the workspace's own git history). Without one the builder
// always reads from disk.
func WithExternalSource(src extsource.Source) Option { return func(o *options) { o.ext = src } }

// WithConfig overrides the tunables instead of loading config.yml.
func WithConfig(conf *config.Config) Option { return func(o *options) { o.conf = conf } }

// Open binds a Repo to <workspace>/.avc/<conversation> and takes the
// conversation's cross-process advisory lock. The layout itself is
// created by EnsureRepo.
func Open(workspace, conversation string, opts ...Option) (*Repo, error) {
	o := &options{fsys: fs.NewOSFS(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %q: %w", workspace, err)
	}
	cfg := config.NewRepoConfig(abs, conversation)

	conf := o.conf
	if conf == nil {
		conf = config.Load(o.fsys, cfg.ConfigFile())
	}

	if err := o.fsys.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create conversation root: %w", err)
	}

	flock := fslock.New(cfg.LockFile())
	if err := flock.TryLock(); err != nil {
		if err == fslock.ErrLocked {
			return nil, fmt.Errorf("conversation %q: %w", conversation, ErrLocked)
		}
		return nil, fmt.Errorf("acquire conversation lock: %w", err)
	}

	objFS := o.fsys
	if conf.Compress {
		objFS = fs.NewCompressedFS(o.fsys)
	}

	st := store.New(cfg.ObjectsDir(), objFS, o.log)
	r := &Repo{
		cfg:      cfg,
		conf:     conf,
		fsys:     o.fsys,
		store:    st,
		refs:     refs.NewManager(cfg, o.fsys, st, o.log),
		excl:     exclude.NewResolver(o.fsys, conf.ExtraExcludes, o.log),
		ext:      o.ext,
		log:      o.log,
		flock:    flock,
		sessions: make(map[string]*Session),
	}
	return r, nil
}

// Close releases the conversation lock.
func (r *Repo) Close() error {
	if r.flock == nil {
		return nil
	}
	err := r.flock.Unlock()
	r.flock = nil
	return err
}

// EnsureRepo creates the full on-disk layout: object store, references
// (main included) and metadata log. Safe to call repeatedly.
func (r *Repo) EnsureRepo() error {
	if err := r.store.Init(); err != nil {
		return err
	}
	if err := r.fsys.MkdirAll(r.cfg.IndexDir(), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	if err := r.refs.EnsureRepo(); err != nil {
		return err
	}

	r.log.Info("checkpoint repository ready",
		zap.String("root", r.cfg.Root))
	return nil
}

// Workspace returns the absolute workspace root.
func (r *Repo) Workspace() string { return r.cfg.Workspace }

// Store exposes the object store for read-only collaborators
// (integrity scans, CLI plumbing).
func (r *Repo) Store() *store.ObjectStore { return r.store }

// Refs exposes the reference manager for read-only collaborators.
func (r *Repo) Refs() *refs.Manager { return r.refs }

// MainSession returns the session handle for the main reference.
func (r *Repo) MainSession() *Session {
	s, _ := r.sessionFor(config.MainRef, false)
	return s
}

// Session returns the handle for an existing reference.
func (r *Repo) Session(ref string) (*Session, error) {
	return r.sessionFor(ref, true)
}

func (r *Repo) sessionFor(ref string, check bool) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[ref]; ok {
		return s, nil
	}
	if check && !r.refs.Exists(ref) {
		return nil, fmt.Errorf("session %q: %w", ref, refs.ErrNotFound)
	}
	s := &Session{repo: r, ref: ref}
	r.sessions[ref] = s
	return s, nil
}

// NewSession creates the next session_N lineage, branched from the
// current main head.
func (r *Repo) NewSession() (*Session, error) {
	base, err := r.refs.Head(config.MainRef)
	if err != nil {
		return nil, err
	}
	name, err := r.refs.CreateSession(base)
	if err != nil {
		return nil, err
	}
	return r.sessionFor(name, false)
}

// PromoteToMain moves main to the given checkpoint. Promotion is the
// caller's explicit decision; nothing here merges sessions implicitly.
func (r *Repo) PromoteToMain(commitID string) error {
	id, err := r.resolveRef(commitID)
	if err != nil {
		return err
	}
	return r.refs.PromoteToMain(id)
}

// ListCheckpoints lists a reference's chain oldest-first.
func (r *Repo) ListCheckpoints(ref string) ([]CheckpointInfo, error) {
	return r.refs.ListCheckpoints(ref)
}

// ActiveRef reads the CLI's durable active-reference pointer (HEAD).
// The engine API itself never consults it; interactive commands do.
func (r *Repo) ActiveRef() string {
	data, err := r.fsys.ReadFile(r.cfg.HeadFile())
	if err != nil {
		return config.MainRef
	}
	name := parseHeadRef(string(data))
	if name == "" || !r.refs.Exists(name) {
		return config.MainRef
	}
	return name
}

// SetActiveRef updates the CLI's active-reference pointer.
func (r *Repo) SetActiveRef(name string) error {
	if !r.refs.Exists(name) {
		return fmt.Errorf("reference %q: %w", name, refs.ErrNotFound)
	}
	content := "ref: " + config.RefsDirName + "/" + name + "\n"
	return fs.WriteFileAtomic(r.fsys, r.cfg.HeadFile(), []byte(content), 0o644)
}

// ActiveSession is the session for the CLI's active reference.
func (r *Repo) ActiveSession() (*Session, error) {
	return r.Session(r.ActiveRef())
}

func parseHeadRef(content string) string {
	s := content
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	const prefix = "ref: " + config.RefsDirName + "/"
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return ""
	}
	return s[len(prefix):]
}
