package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/fs"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, 2*time.Second, cfg.ReuseStableAge)
	require.Equal(t, 10, cfg.ErrPreviewCap)
	require.Positive(t, cfg.Workers)
	require.False(t, cfg.Compress)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg := config.Load(fs.NewOSFS(), filepath.Join(t.TempDir(), "config.yml"))
	require.Equal(t, config.Default().ErrPreviewCap, cfg.ErrPreviewCap)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := "reuse_stable_age: 5s\nworkers: 2\ncompress: true\nexclude:\n  - \"*.bak\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := config.Load(fs.NewOSFS(), path)
	require.Equal(t, 5*time.Second, cfg.ReuseStableAge)
	require.Equal(t, 2, cfg.Workers)
	require.True(t, cfg.Compress)
	require.Contains(t, cfg.ExtraExcludes, "*.bak")
	// untouched fields keep defaults
	require.Equal(t, 10, cfg.ErrPreviewCap)
}

func TestLoadMalformedFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml::"), 0o644))

	cfg := config.Load(fs.NewOSFS(), path)
	require.Equal(t, config.Default().Workers, cfg.Workers)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AVC_WORKERS", "3")
	t.Setenv("AVC_REUSE_STABLE_AGE", "7s")

	cfg := config.Load(fs.NewOSFS(), filepath.Join(t.TempDir(), "config.yml"))
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, 7*time.Second, cfg.ReuseStableAge)
}

func TestRepoConfigPaths(t *testing.T) {
	rc := config.NewRepoConfig("/ws", "conv1")
	require.Equal(t, filepath.Join("/ws", ".avc", "conv1"), rc.Root)
	require.Equal(t, filepath.Join(rc.Root, "objects"), rc.ObjectsDir())
	require.Equal(t, filepath.Join(rc.Root, "refs", "main"), rc.RefFile("main"))
	require.Equal(t, filepath.Join(rc.Root, "index", "session_1.json"), rc.IndexFile("session_1"))
	require.Equal(t, filepath.Join("/ws", ".gitignore"), rc.IgnoreFile())
}

func TestFindWorkspaceRoot(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, config.StateDirName), 0o755))
	nested := filepath.Join(ws, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	require.Equal(t, ws, config.FindWorkspaceRoot(nested))
	require.Equal(t, "", config.FindWorkspaceRoot(filepath.Join(string(filepath.Separator), "nonexistent-root-xyz")))
}
