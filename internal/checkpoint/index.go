package checkpoint

import (
	"go.uber.org/zap"

	"github.com/keshon/avc/internal/util"
)

// indexEntry is one tracked path in a reference's stat cache. The cache
// is not part of object identity; it backs the blob-reuse fast path and
// is the proof that the engine once tracked a path, which is what
// entitles a restore to delete it.
type indexEntry struct {
	ID      string `json:"id,omitempty"`
	Size    int64  `json:"size"`
	MtimeNS int64  `json:"mtime_ns"`

	// Staged marks paths recorded via staging before any commit
	// contains them.
	Staged bool `json:"staged,omitempty"`
}

// index maps slash-separated workspace-relative paths to their last
// recorded stat.
type index map[string]indexEntry

// loadIndex reads a reference's stat cache. A missing or unreadable
// cache degrades to empty: the cache only accelerates reuse, it never
// gates correctness.
func (r *Repo) loadIndex(ref string) index {
	idx := index{}
	path := r.cfg.IndexFile(ref)
	if !r.fsys.Exists(path) {
		return idx
	}
	if err := util.ReadJSON(r.fsys, path, &idx); err != nil {
		r.log.Warn("stat cache unreadable, ignoring",
			zap.String("ref", ref), zap.Error(err))
		return index{}
	}
	return idx
}

func (r *Repo) saveIndex(ref string, idx index) error {
	return util.WriteJSON(r.fsys, r.cfg.IndexFile(ref), idx)
}
