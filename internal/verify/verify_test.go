package verify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/object"
	"github.com/keshon/avc/internal/refs"
	"github.com/keshon/avc/internal/store"
	"github.com/keshon/avc/internal/verify"
)

func setup(t *testing.T) (*store.ObjectStore, *refs.Manager, *config.RepoConfig) {
	t.Helper()

	cfg := config.NewRepoConfig(t.TempDir(), "default")
	fsys := fs.NewOSFS()
	st := store.New(cfg.ObjectsDir(), fsys, nil)
	require.NoError(t, st.Init())
	rm := refs.NewManager(cfg, fsys, st, nil)
	require.NoError(t, rm.EnsureRepo())
	return st, rm, cfg
}

func buildGraph(t *testing.T, st *store.ObjectStore, rm *refs.Manager) (blob, tree, commit object.ID) {
	t.Helper()

	blobID, err := st.PutBlob([]byte("hello\n"))
	require.NoError(t, err)

	treeID, err := st.PutTree(&object.Tree{Entries: []object.TreeEntry{
		{Name: "hello.txt", Mode: object.ModeFile, ID: blobID.String(), Size: 6},
	}})
	require.NoError(t, err)

	commitID, err := st.PutCommit(&object.Commit{Tree: treeID.String(), Timestamp: 1, Message: "ok"})
	require.NoError(t, err)

	require.NoError(t, rm.Advance(config.MainRef, commitID, "ok"))
	return blobID, treeID, commitID
}

func TestScanHealthyGraph(t *testing.T) {
	st, rm, _ := setup(t)
	buildGraph(t, st, rm)

	checks, err := verify.Scan(st, rm)
	require.NoError(t, err)
	require.Len(t, checks, 3)

	counts := verify.Summarize(checks)
	require.Equal(t, 3, counts[verify.OK])
	for _, c := range checks {
		require.Equal(t, []string{"main"}, c.Refs)
	}
}

func TestScanReportsMissingBlob(t *testing.T) {
	st, rm, cfg := setup(t)
	blobID, _, _ := buildGraph(t, st, rm)

	name, err := object.Filename(blobID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(cfg.ObjectsDir(), name)))

	checks, err := verify.Scan(st, rm)
	require.NoError(t, err)

	counts := verify.Summarize(checks)
	require.Equal(t, 1, counts[verify.Missing])
	require.Equal(t, 2, counts[verify.OK])
}

func TestScanReportsDamagedObject(t *testing.T) {
	st, rm, cfg := setup(t)
	blobID, _, _ := buildGraph(t, st, rm)

	name, err := object.Filename(blobID)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ObjectsDir(), name), []byte("flipped bits"), 0o644))

	checks, err := verify.Scan(st, rm)
	require.NoError(t, err)

	counts := verify.Summarize(checks)
	require.Equal(t, 1, counts[verify.Damaged])
}

func TestScanEmptyRepo(t *testing.T) {
	st, rm, _ := setup(t)

	checks, err := verify.Scan(st, rm)
	require.NoError(t, err)
	require.Empty(t, checks)
}
