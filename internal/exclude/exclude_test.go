package exclude_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/exclude"
	"github.com/keshon/avc/internal/fs"
)

func resolve(t *testing.T, root string, extra ...string) *exclude.Matcher {
	t.Helper()
	m, err := exclude.NewResolver(fs.NewOSFS(), extra, nil).Resolve(root)
	require.NoError(t, err)
	return m
}

func TestBuiltinDefaults(t *testing.T) {
	m := resolve(t, t.TempDir())

	require.True(t, m.Excluded(".git", true))
	require.True(t, m.Excluded("node_modules", true))
	require.True(t, m.Excluded("node_modules/pkg/index.js", false))
	require.True(t, m.Excluded(".avc", true))
	require.True(t, m.Excluded(".avc/conv1/objects/x", false))
	require.True(t, m.Excluded(".gitignore", false), "the ignore file itself is never tracked")
	require.True(t, m.Excluded("server.log", false))
	require.True(t, m.Excluded("deep/dir/trace.log", false))

	require.False(t, m.Excluded("src/main.go", false))
	require.False(t, m.Excluded("a.py", false))
	require.False(t, m.Excluded(".", true))
}

func TestWorkspaceIgnoreFile(t *testing.T) {
	root := t.TempDir()
	body := "# comment\n\n*.secret\ndata/\n!data/keep.txt\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(body), 0o644))

	m := resolve(t, root)
	require.True(t, m.Excluded("api.secret", false))
	require.True(t, m.Excluded("data", true))
	require.False(t, m.Excluded("data/keep.txt", false), "negation must win")
	require.False(t, m.Excluded("readme.md", false))
}

func TestResolveIsFresh(t *testing.T) {
	root := t.TempDir()
	ignorePath := filepath.Join(root, ".gitignore")

	m := resolve(t, root)
	require.False(t, m.Excluded("f.txt", false))

	// rule added after the first resolve
	require.NoError(t, os.WriteFile(ignorePath, []byte("f.txt\n"), 0o644))
	m2 := resolve(t, root)
	require.True(t, m2.Excluded("f.txt", false))

	// rule removed again
	require.NoError(t, os.Remove(ignorePath))
	m3 := resolve(t, root)
	require.False(t, m3.Excluded("f.txt", false))
}

func TestExtraPatterns(t *testing.T) {
	m := resolve(t, t.TempDir(), "*.bak")
	require.True(t, m.Excluded("old.bak", false))
	require.False(t, m.Excluded("old.bak.txt", false))
}

func TestMissingIgnoreFileIsFine(t *testing.T) {
	m := resolve(t, t.TempDir())
	require.NotNil(t, m)
}

func TestOSSeparatorsNormalized(t *testing.T) {
	m := resolve(t, t.TempDir())
	require.True(t, m.Excluded(filepath.Join("node_modules", "a", "b.js"), false))
}
