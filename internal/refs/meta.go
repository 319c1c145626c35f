package refs

import (
	"fmt"

	"github.com/keshon/avc/internal/util"
)

const metaVersion = 1

// metaFile is the on-disk metadata log: a serialized commit id →
// message map, readable without walking the object graph. It is the
// durable source of truth for checkpoint messages; commits whose body
// carries no message (or a legacy one) fall back to it.
type metaFile struct {
	Version  int               `json:"version"`
	Messages map[string]string `json:"messages"`
}

func (m *Manager) readMeta() (*metaFile, error) {
	meta := &metaFile{Version: metaVersion, Messages: map[string]string{}}
	if !m.fsys.Exists(m.cfg.MetaFile()) {
		return meta, nil
	}
	if err := util.ReadJSON(m.fsys, m.cfg.MetaFile(), meta); err != nil {
		return nil, fmt.Errorf("read metadata log: %w", err)
	}
	if meta.Messages == nil {
		meta.Messages = map[string]string{}
	}
	return meta, nil
}

func (m *Manager) writeMeta(meta *metaFile) error {
	if err := util.WriteJSON(m.fsys, m.cfg.MetaFile(), meta); err != nil {
		return fmt.Errorf("write metadata log: %w", err)
	}
	return nil
}

// mergeMessage re-reads the log and merges one entry. References write
// disjoint commit ids, but the log is one file, so the whole
// read-merge-write cycle is ordered by metaMu on top of the caller's
// per-reference lock.
func (m *Manager) mergeMessage(commitID, message string) error {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()

	meta, err := m.readMeta()
	if err != nil {
		return err
	}
	meta.Messages[commitID] = message
	return m.writeMeta(meta)
}

// Message looks up a commit's message in the metadata log.
func (m *Manager) Message(commitID string) (string, bool) {
	meta, err := m.readMeta()
	if err != nil {
		return "", false
	}
	msg, ok := meta.Messages[commitID]
	return msg, ok
}
