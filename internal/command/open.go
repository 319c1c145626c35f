package command

import (
	"os"

	"go.uber.org/zap"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/extsource/gitsource"
)

// Conversation resolves which conversation's state a command operates
// on. One workspace can hold several independent histories side by side.
func Conversation() string {
	if v := os.Getenv("AVC_CONVERSATION"); v != "" {
		return v
	}
	return "default"
}

// Logger returns the cli logger. Silent unless AVC_DEBUG is set.
func Logger() *zap.Logger {
	if os.Getenv("AVC_DEBUG") == "" {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// OpenRepo opens the checkpoint repository enclosing the current
// directory. When the workspace sits inside a git repository, the git
// object store is wired in as the blob reuse source.
func OpenRepo() (*checkpoint.Repo, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := config.FindWorkspaceRoot(wd)
	if root == "" {
		root = wd
	}

	log := Logger()
	opts := []checkpoint.Option{checkpoint.WithLogger(log)}
	if src, ok := gitsource.Open(root, log); ok {
		opts = append(opts, checkpoint.WithExternalSource(src))
	}
	return checkpoint.Open(root, Conversation(), opts...)
}
