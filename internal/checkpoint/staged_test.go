package checkpoint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/checkpoint"
)

func appendIgnoreRule(t *testing.T, ws, rule string) {
	t.Helper()
	path := filepath.Join(ws, ".gitignore")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(rule + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestStagedFilesAgainstHead(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "kept.txt", "same\n")
	writeFile(t, ws, "edited.txt", "one\ntwo\n")
	writeFile(t, ws, "gone.txt", "a\nb\nc\n")
	_, err := s.CreateCheckpoint("base")
	require.NoError(t, err)

	writeFile(t, ws, "edited.txt", "one\n2\n")
	writeFile(t, ws, "new.txt", "fresh\n")
	removeFile(t, ws, "gone.txt")

	changes, err := s.StagedFiles(false)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	byPath := map[string]checkpoint.Change{}
	for _, c := range changes {
		byPath[c.Path] = c
	}

	require.Equal(t, checkpoint.StatusModified, byPath["edited.txt"].Status)
	require.Equal(t, 1, byPath["edited.txt"].Additions)
	require.Equal(t, 1, byPath["edited.txt"].Deletions)

	require.Equal(t, checkpoint.StatusAdded, byPath["new.txt"].Status)
	require.Equal(t, 1, byPath["new.txt"].Additions)

	require.Equal(t, checkpoint.StatusDeleted, byPath["gone.txt"].Status)
	require.Equal(t, 3, byPath["gone.txt"].Deletions)
}

func TestHasUncommittedChanges(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "f.txt", "v1\n")
	_, err := s.CreateCheckpoint("base")
	require.NoError(t, err)

	dirty, err := s.HasUncommittedChanges()
	require.NoError(t, err)
	require.False(t, dirty)

	writeFile(t, ws, "f.txt", "v2\n")
	dirty, err = s.HasUncommittedChanges()
	require.NoError(t, err)
	require.True(t, dirty)
}

func TestIgnoreRuleChangeIsNotAChange(t *testing.T) {
	// checkpoint tracks F; a rule matching F is added later; F itself
	// is untouched on disk. That must not read as a pending change.
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "generated.out", "machine made\n")
	writeFile(t, ws, "kept.txt", "hand made\n")
	_, err := s.CreateCheckpoint("tracking both")
	require.NoError(t, err)

	appendIgnoreRule(t, ws, "*.out")

	dirty, err := s.HasUncommittedChanges()
	require.NoError(t, err)
	require.False(t, dirty)
	require.True(t, fileExists(ws, "generated.out"))
}

func TestStagedFilesExcludesFreshlyIgnoredEvenWhenModified(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "scratch.out", "v1\n")
	_, err := s.CreateCheckpoint("base")
	require.NoError(t, err)

	writeFile(t, ws, "scratch.out", "v2, now ignored\n")
	appendIgnoreRule(t, ws, "*.out")

	changes, err := s.StagedFiles(false)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestStagedFilesIncludeDiff(t *testing.T) {
	r, ws := testRepo(t)
	s := r.MainSession()

	writeFile(t, ws, "f.txt", "old\n")
	_, err := s.CreateCheckpoint("base")
	require.NoError(t, err)

	writeFile(t, ws, "f.txt", "new\n")
	changes, err := s.StagedFiles(true)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Diff, "-old\n")
	require.Contains(t, changes[0].Diff, "+new\n")
}

func TestStagedFilesOnEmptyLineage(t *testing.T) {
	r, ws := testRepo(t)
	writeFile(t, ws, "a.txt", "one\n")

	changes, err := r.MainSession().StagedFiles(false)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, checkpoint.StatusAdded, changes[0].Status)
}
