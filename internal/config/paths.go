package config

import (
	"os"
	"path/filepath"
)

// RepoConfig resolves every on-disk location for one conversation's
// checkpoint state, rooted at <workspace>/.avc/<conversation>.
type RepoConfig struct {
	Workspace string // absolute workspace root
	Root      string // conversation state root
}

func NewRepoConfig(workspace, conversation string) *RepoConfig {
	return &RepoConfig{
		Workspace: workspace,
		Root:      filepath.Join(workspace, StateDirName, conversation),
	}
}

func (c *RepoConfig) ObjectsDir() string { return filepath.Join(c.Root, ObjectsDirName) }
func (c *RepoConfig) RefsDir() string    { return filepath.Join(c.Root, RefsDirName) }
func (c *RepoConfig) IndexDir() string   { return filepath.Join(c.Root, IndexDirName) }
func (c *RepoConfig) MetaFile() string   { return filepath.Join(c.Root, MetaFileName) }
func (c *RepoConfig) HeadFile() string   { return filepath.Join(c.Root, HeadFileName) }
func (c *RepoConfig) ConfigFile() string { return filepath.Join(c.Root, ConfigFileName) }
func (c *RepoConfig) LockFile() string   { return filepath.Join(c.Root, LockFileName) }

func (c *RepoConfig) RefFile(name string) string {
	return filepath.Join(c.RefsDir(), name)
}

func (c *RepoConfig) IndexFile(ref string) string {
	return filepath.Join(c.IndexDir(), ref+".json")
}

// IgnoreFile is the workspace's own ignore file.
func (c *RepoConfig) IgnoreFile() string {
	return filepath.Join(c.Workspace, IgnoreFileName)
}

// FindWorkspaceRoot walks up from dir until it finds a directory holding
// the engine's state dir. Returns "" when none is found.
func FindWorkspaceRoot(dir string) string {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		if fi, err := os.Stat(filepath.Join(cur, StateDirName)); err == nil && fi.IsDir() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return ""
}
