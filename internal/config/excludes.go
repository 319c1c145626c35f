package config

// DefaultExcludes is the built-in exclude set applied to every scan,
// gitignore syntax. Workspace rules from the ignore file are merged on
// top at resolve time; the engine's own state dir is always excluded to
// avoid self-tracking.
var DefaultExcludes = []string{
	// version control metadata; the host's ignore file changes between
	// checkpoints without being an edit the agent made
	".git/",
	".gitignore",
	".svn/",
	".hg/",
	".bzr/",

	// dependency directories
	"node_modules/",
	"bower_components/",
	"__pycache__/",
	".venv/",
	"venv/",
	".tox/",
	".bundle/",

	// build output
	"build/",
	"dist/",
	"out/",
	"target/",
	".next/",
	".nuxt/",
	".gradle/",

	// caches
	".cache/",
	".pytest_cache/",
	".mypy_cache/",
	".sass-cache/",
	".parcel-cache/",

	// logs and scratch
	"*.log",
	"tmp/",
	"temp/",
	".DS_Store",
	"Thumbs.db",

	// engine state
	StateDirName + "/",
}
