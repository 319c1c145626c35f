package checkpoint_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/refs"
)

func TestRestoreRoundTrip(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "a.txt", "alpha\n")
	writeFile(t, ws, "dir/b.txt", "beta\nlines\n")
	info, err := s.CreateCheckpoint("snap")
	require.NoError(t, err)

	writeFile(t, ws, "a.txt", "mutated\n")
	writeFile(t, ws, "dir/b.txt", "also mutated\n")

	restored, err := s.Restore(info.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "dir/b.txt"}, restored)

	require.Equal(t, "alpha\n", readFile(t, ws, "a.txt"))
	require.Equal(t, "beta\nlines\n", readFile(t, ws, "dir/b.txt"))
}

func TestRestoreDeletesLaterTrackedFiles(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "base.txt", "here first\n")
	first, err := s.CreateCheckpoint("C1")
	require.NoError(t, err)

	writeFile(t, ws, "later/new.txt", "came after\n")
	_, err = s.CreateCheckpoint("C2")
	require.NoError(t, err)

	_, err = s.Restore(first.ID)
	require.NoError(t, err)

	require.False(t, fileExists(ws, "later/new.txt"))
	require.False(t, fileExists(ws, "later"), "emptied directory is pruned")
	require.Equal(t, "here first\n", readFile(t, ws, "base.txt"))
}

func TestRestoreDeletesStagedThenIgnoredFiles(t *testing.T) {
	// staged after C1, then hidden by a new ignore rule: the staging
	// record is still proof of tracking, so restore may delete it
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "base.txt", "v1\n")
	first, err := s.CreateCheckpoint("C1")
	require.NoError(t, err)

	writeFile(t, ws, "scratch.out", "staged then ignored\n")
	require.NoError(t, s.StageFile("scratch.out"))
	appendIgnoreRule(t, ws, "*.out")

	_, err = s.Restore(first.ID)
	require.NoError(t, err)
	require.False(t, fileExists(ws, "scratch.out"))
}

func TestRestorePreservesAlwaysIgnoredFiles(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	appendIgnoreRule(t, ws, "secrets.env")
	writeFile(t, ws, "secrets.env", "TOKEN=keepme\n")
	writeFile(t, ws, "code.py", "v1\n")

	first, err := s.CreateCheckpoint("C1")
	require.NoError(t, err)

	writeFile(t, ws, "code.py", "v2\n")
	_, err = s.CreateCheckpoint("C2")
	require.NoError(t, err)

	_, err = s.Restore(first.ID)
	require.NoError(t, err)

	require.Equal(t, "TOKEN=keepme\n", readFile(t, ws, "secrets.env"))
	require.Equal(t, "v1\n", readFile(t, ws, "code.py"))
}

func TestRestorePartialFailureReportsProgress(t *testing.T) {
	conf := config.Default()
	conf.ReuseStableAge = 0
	conf.Workers = 1 // deterministic write order for the failure check

	r, ws := testRepoWithConfig(t, conf)
	s := r.MainSession()

	writeFile(t, ws, "a.txt", "one\n")
	writeFile(t, ws, "b.txt", "two\n")
	writeFile(t, ws, "c.txt", "three\n")
	info, err := s.CreateCheckpoint("snap")
	require.NoError(t, err)

	writeFile(t, ws, "a.txt", "dirty\n")
	writeFile(t, ws, "b.txt", "dirty\n")
	writeFile(t, ws, "c.txt", "dirty\n")

	orig := fs.GetRename()
	fs.SetRename(func(oldPath, newPath string) error {
		if strings.HasSuffix(newPath, "b.txt") {
			return errors.New("disk full")
		}
		return orig(oldPath, newPath)
	})
	t.Cleanup(func() { fs.SetRename(orig) })

	restored, err := s.Restore(info.ID)
	require.Error(t, err)

	var re *checkpoint.RestoreError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "b.txt", re.Path)
	require.Equal(t, []string{"a.txt"}, re.Restored)
	require.Equal(t, []string{"a.txt"}, restored)

	// restored paths are intact, the failed one is untouched
	require.Equal(t, "one\n", readFile(t, ws, "a.txt"))
	require.Equal(t, "dirty\n", readFile(t, ws, "b.txt"))
}

func TestRestoreUnknownCommitNotFound(t *testing.T) {
	r, ws := testRepo(t)
	writeFile(t, ws, "f.txt", "v1\n")
	_, err := r.MainSession().CreateCheckpoint("base")
	require.NoError(t, err)

	_, err = r.MainSession().Restore("definitely-not-a-commit")
	require.ErrorIs(t, err, refs.ErrNotFound)
}

func TestRestoreDoesNotMoveReference(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "f.txt", "v1\n")
	first, err := s.CreateCheckpoint("one")
	require.NoError(t, err)

	writeFile(t, ws, "f.txt", "v2\n")
	second, err := s.CreateCheckpoint("two")
	require.NoError(t, err)

	_, err = s.Restore(first.ID)
	require.NoError(t, err)

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, second.ID, head.String(), "history stays append-only")

	infos, err := s.ListCheckpoints()
	require.NoError(t, err)
	require.Len(t, infos, 2)
}
