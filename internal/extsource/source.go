// Package extsource defines the read-only capability the blob reuse
// optimizer uses to borrow content from an unrelated version-control
// store (typically the user's own git repository). The engine never
// depends on a concrete store; adapters implement Source and tests
// inject fakes.
package extsource

// Source is a point-in-time view of the external store's head snapshot.
//
// Implementations never return errors: any internal failure (corrupt
// store, foreign format, I/O) must surface as ok=false so the caller
// degrades to reading the workspace file itself.
type Source interface {
	// Lookup finds rel (slash-separated, workspace-relative) in the
	// head snapshot, returning the recorded content size and the
	// source's own id for it.
	Lookup(rel string) (size int64, id string, ok bool)

	// Read fetches the bytes for an id previously returned by Lookup.
	// Implementations must verify the bytes against their own digest
	// before returning ok=true.
	Read(id string) (data []byte, ok bool)
}
