package checkpoint

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation labels what a tool did to a path within a transaction.
type Operation string

const (
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// transaction accumulates the file operations of one agent turn so they
// collapse into a single checkpoint. Purely in-memory; abort discards
// it without a trace.
type transaction struct {
	id    string
	order []string
	ops   map[string]Operation
}

// BeginTransaction opens a batching scope on this session. Only one can
// be active at a time.
func (s *Session) BeginTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil {
		return ErrTransactionActive
	}
	s.tx = &transaction{
		id:  uuid.NewString(),
		ops: make(map[string]Operation),
	}
	s.repo.log.Debug("transaction started",
		zap.String("ref", s.ref), zap.String("tx", s.tx.id))
	return nil
}

// TrackFileChange records one path touched during the transaction.
// Paths keep their first-touch order; the last operation per path wins.
func (s *Session) TrackFileChange(rel string, op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrNoTransaction
	}
	rel = normalizeRel(rel)
	if _, seen := s.tx.ops[rel]; !seen {
		s.tx.order = append(s.tx.order, rel)
	}
	s.tx.ops[rel] = op
	return nil
}

// CommitTransaction flushes the transaction into exactly one
// checkpoint. With no tracked changes it returns nil and no checkpoint
// is created. An empty message is auto-composed from the tracked
// operations.
func (s *Session) CommitTransaction(message string) (*CheckpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil, ErrNoTransaction
	}
	tx := s.tx
	s.tx = nil

	if len(tx.order) == 0 {
		s.repo.log.Debug("empty transaction committed",
			zap.String("ref", s.ref), zap.String("tx", tx.id))
		return nil, nil
	}

	if message == "" {
		message = tx.composeMessage()
	}

	info, err := s.createCheckpointLocked(message)
	if err != nil {
		return nil, err
	}
	s.repo.log.Debug("transaction committed",
		zap.String("ref", s.ref),
		zap.String("tx", tx.id),
		zap.String("commit", info.ID),
		zap.Int("paths", len(tx.order)))
	return &info, nil
}

// AbortTransaction discards the transaction without checkpointing.
func (s *Session) AbortTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrNoTransaction
	}
	s.repo.log.Debug("transaction aborted",
		zap.String("ref", s.ref), zap.String("tx", s.tx.id))
	s.tx = nil
	return nil
}

// composeMessage summarizes the tracked operations in first-touch
// order, listing at most three paths.
func (t *transaction) composeMessage() string {
	const listed = 3

	var parts []string
	for i, p := range t.order {
		if i == listed {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %s", t.ops[p], p))
	}

	msg := strings.Join(parts, ", ")
	if rest := len(t.order) - listed; rest > 0 {
		msg += fmt.Sprintf(" (+%d more)", rest)
	}
	return msg
}
