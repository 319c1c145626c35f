package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/util"
)

const (
	StateDirName   = ".avc"
	ObjectsDirName = "objects"
	RefsDirName    = "refs"
	IndexDirName   = "index"
	MetaFileName   = "meta.json"
	HeadFileName   = "HEAD"
	ConfigFileName = "config.yml"
	LockFileName   = "LOCK"
)

const (
	MainRef          = "main"
	SessionRefPrefix = "session_"
)

// IgnoreFileName is the workspace's own ignore file, read fresh on every
// scan and merged with DefaultExcludes.
const IgnoreFileName = ".gitignore"

// Config carries the engine tunables. Zero values mean "use default".
type Config struct {
	// ReuseStableAge is how old a file's mtime must be before the blob
	// reuse heuristic trusts stat metadata. Files modified more recently
	// are always read in full. Performance knob, not a correctness one:
	// correctness is guaranteed by the read fallback.
	ReuseStableAge time.Duration `yaml:"reuse_stable_age"`

	// ErrPreviewCap bounds how many failed paths a checkpoint error lists
	// before collapsing the rest into a "+N more" suffix.
	ErrPreviewCap int `yaml:"error_preview_cap"`

	// Workers limits concurrent file reads during checkpoint and restore.
	Workers int `yaml:"workers"`

	// MmapThreshold is the file size above which the builder reads
	// workspace files through a memory mapping instead of ReadFile.
	MmapThreshold int64 `yaml:"mmap_threshold"`

	// Compress gzips stored object payloads.
	Compress bool `yaml:"compress"`

	// ExtraExcludes extends the built-in default exclude set with
	// workspace-specific patterns (gitignore syntax).
	ExtraExcludes []string `yaml:"exclude"`
}

func Default() *Config {
	return &Config{
		ReuseStableAge: 2 * time.Second,
		ErrPreviewCap:  10,
		Workers:        util.WorkerCount(),
		MmapThreshold:  8 << 20,
	}
}

// Load returns the defaults overlaid with the conversation's config.yml
// (if present) and AVC_* environment variables. A missing or malformed
// file falls back silently, matching the rest of the tooling.
func Load(fsys fs.FS, path string) *Config {
	cfg := Default()

	if data, err := fsys.ReadFile(path); err == nil {
		var file Config
		if yaml.Unmarshal(data, &file) == nil {
			cfg.apply(&file)
		}
	}
	cfg.applyEnv()

	return cfg
}

func (c *Config) apply(o *Config) {
	if o.ReuseStableAge > 0 {
		c.ReuseStableAge = o.ReuseStableAge
	}
	if o.ErrPreviewCap > 0 {
		c.ErrPreviewCap = o.ErrPreviewCap
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.MmapThreshold > 0 {
		c.MmapThreshold = o.MmapThreshold
	}
	if o.Compress {
		c.Compress = true
	}
	if len(o.ExtraExcludes) > 0 {
		c.ExtraExcludes = append(c.ExtraExcludes, o.ExtraExcludes...)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AVC_REUSE_STABLE_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.ReuseStableAge = d
		}
	}
	if v := os.Getenv("AVC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
	if v := os.Getenv("AVC_COMPRESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Compress = b
		}
	}
}
