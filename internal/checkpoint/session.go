package checkpoint

import (
	"sync"

	"github.com/keshon/avc/internal/object"
)

// Session is an explicit handle on one reference lineage. All mutating
// operations (checkpoint, restore, staging, transactions) go through a
// Session so concurrent lineages stay isolated; the session mutex is
// the single-writer-per-reference discipline.
type Session struct {
	repo *Repo
	ref  string

	mu   sync.Mutex
	tx   *transaction
	edit *editSnapshot
}

// Ref is the reference name this session advances.
func (s *Session) Ref() string { return s.ref }

// Head is the commit the session's reference currently points to;
// undefined when the lineage has no checkpoints yet.
func (s *Session) Head() (object.ID, error) {
	return s.repo.refs.Head(s.ref)
}

// ListCheckpoints returns the lineage oldest-first.
func (s *Session) ListCheckpoints() ([]CheckpointInfo, error) {
	return s.repo.refs.ListCheckpoints(s.ref)
}
