// Package gitsource adapts a git repository into an extsource.Source.
package gitsource

import (
	"io"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Source reads blobs out of the workspace's own git history. Strictly
// read-only; every failure degrades to "not available".
type Source struct {
	repo *git.Repository
	log  *zap.Logger
}

// New wraps an already-open repository.
func New(repo *git.Repository, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{repo: repo, log: log}
}

// Open finds the git repository containing dir. ok is false when there
// is none or it cannot be opened; the engine then simply never reuses.
func Open(dir string, log *zap.Logger) (*Source, bool) {
	if log == nil {
		log = zap.NewNop()
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		log.Debug("no usable git repository for blob reuse",
			zap.String("dir", dir), zap.Error(err))
		return nil, false
	}
	return New(repo, log), true
}

// Lookup finds rel in the repository's HEAD tree.
func (s *Source) Lookup(rel string) (int64, string, bool) {
	head, err := s.repo.Head()
	if err != nil {
		return 0, "", false
	}
	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return 0, "", false
	}
	tree, err := commit.Tree()
	if err != nil {
		return 0, "", false
	}

	entry, err := tree.FindEntry(filepath.ToSlash(rel))
	if err != nil {
		return 0, "", false
	}
	if !entry.Mode.IsFile() {
		return 0, "", false
	}

	blob, err := s.repo.BlobObject(entry.Hash)
	if err != nil {
		return 0, "", false
	}
	return blob.Size, entry.Hash.String(), true
}

// Read fetches a blob's bytes and verifies them against the id before
// handing them out.
func (s *Source) Read(id string) ([]byte, bool) {
	hash := plumbing.NewHash(id)
	if hash.IsZero() {
		return nil, false
	}

	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, false
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, false
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	if plumbing.ComputeHash(plumbing.BlobObject, data) != hash {
		s.log.Warn("git object failed digest verification", zap.String("id", id))
		return nil, false
	}
	return data, true
}
