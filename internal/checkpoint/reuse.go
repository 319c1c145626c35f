package checkpoint

import (
	"time"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/keshon/avc/internal/object"
)

// tryReuse resolves a scanned file to an already-known blob without
// reading its bytes. Reuse is gated on a digest the engine recorded
// itself: the reference's stat cache. An entry whose (size, mtime)
// exactly matches the live stat still names the file's blob; any write
// bumps the mtime, so an exact match plus a stable age means the bytes
// have not changed since they were last hashed.
//
// When the cache names the blob but the store no longer holds the
// object, the injected external store (the workspace's own VCS history)
// may supply the bytes. A size match there is only a candidate, since
// same-size-different-content is a real failure mode; fetched bytes are
// adopted only when they hash to the digest the cache recorded. With no
// trusted digest the external store is never consulted: equality with
// the on-disk file cannot be proven without reading it, at which point
// reuse saves nothing.
//
// Files younger than Config.ReuseStableAge are never reused: a too-fresh
// mtime cannot be trusted against in-flight writes. That window is a
// performance knob only; every "no" here makes the builder read the
// file, which is always correct.
//
// External-source failures of any kind degrade to "no reuse", never to
// an error.
func (r *Repo) tryReuse(idx index, f workFile, nowNS int64) (object.ID, bool) {
	stable := nowNS-f.mtimeNS >= int64(r.conf.ReuseStableAge/time.Nanosecond)

	e, ok := idx[f.rel]
	if !ok || e.ID == "" || e.Size != f.size || e.MtimeNS != f.mtimeNS || !stable {
		return cid.Undef, false
	}
	id, err := object.ParseID(e.ID)
	if err != nil {
		return cid.Undef, false
	}
	if r.store.Has(id) {
		return id, true
	}

	if r.ext == nil {
		return cid.Undef, false
	}

	size, extID, ok := r.ext.Lookup(f.rel)
	if !ok || size != f.size {
		return cid.Undef, false
	}

	data, ok := r.ext.Read(extID)
	if !ok || int64(len(data)) != f.size {
		return cid.Undef, false
	}

	got, err := object.BlobID(data)
	if err != nil || !got.Equals(id) {
		r.log.Debug("external bytes do not match the recorded digest, reading from disk",
			zap.String("path", f.rel))
		return cid.Undef, false
	}

	putID, err := r.store.PutBlob(data)
	if err != nil {
		r.log.Warn("adopting external blob failed, reading from disk",
			zap.String("path", f.rel), zap.Error(err))
		return cid.Undef, false
	}

	r.log.Debug("reused external blob",
		zap.String("path", f.rel), zap.String("id", putID.String()))
	return putID, true
}
