package exclude

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"

	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/fs"
)

// Resolver merges the built-in default excludes with the workspace's own
// ignore file into a Matcher. Resolve reads the ignore file on every
// call and never caches the result: ignore rules legitimately change
// between two checkpoints, and a stale matcher is exactly how false
// "uncommitted changes" reports happen.
type Resolver struct {
	fsys  fs.FS
	extra []string
	log   *zap.Logger
}

func NewResolver(fsys fs.FS, extra []string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{fsys: fsys, extra: extra, log: log}
}

// Resolve builds a fresh Matcher for the workspace rooted at root.
func (r *Resolver) Resolve(root string) (*Matcher, error) {
	patterns := make([]gitignore.Pattern, 0, len(config.DefaultExcludes)+len(r.extra)+16)

	for _, p := range config.DefaultExcludes {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, p := range r.extra {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	// workspace rules come last so they win over the defaults,
	// including negations
	ignorePath := filepath.Join(root, config.IgnoreFileName)
	data, err := r.fsys.ReadFile(ignorePath)
	switch {
	case err == nil:
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(strings.TrimRight(line, "\r"))
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
			n++
		}
		r.log.Debug("loaded workspace ignore rules",
			zap.String("file", ignorePath), zap.Int("patterns", n))
	case r.fsys.IsNotExist(err):
		// no workspace ignore file, defaults only
	default:
		return nil, fmt.Errorf("read ignore file %q: %w", ignorePath, err)
	}

	return &Matcher{m: gitignore.NewMatcher(patterns)}, nil
}

// Matcher answers exclusion queries for workspace-relative paths.
type Matcher struct {
	m gitignore.Matcher
}

// Excluded reports whether rel (slash- or OS-separated, relative to the
// workspace root) is excluded from tracking.
func (m *Matcher) Excluded(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." {
		return false
	}
	return m.m.Match(strings.Split(rel, "/"), isDir)
}
