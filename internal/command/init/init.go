package init

import (
	"flag"
	"fmt"
	"os"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/config"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct {
	quiet bool
}

func (c *Command) Name() string      { return "init" }
func (c *Command) Short() string     { return "i" }
func (c *Command) Aliases() []string { return []string{"initialize"} }
func (c *Command) Usage() string     { return "init [options]" }
func (c *Command) Brief() string     { return "Initialize checkpoint state for this workspace" }
func (c *Command) Help() string {
	return `Initialize checkpoint state in the current directory.

Creates the ` + config.StateDirName + ` directory holding the object store, the
main reference and the checkpoint metadata for the active conversation.
Running it again in an initialized workspace is harmless.

Options:
  -q, --quiet   Suppress normal output.

Usage:
  avc init

Examples:
  avc init
  AVC_CONVERSATION=review avc init
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.quiet, "q", false, "alias for --quiet")
}

func (c *Command) Run(ctx *command.Context) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	existed := config.FindWorkspaceRoot(wd) == wd

	r, err := checkpoint.Open(wd, command.Conversation(), checkpoint.WithLogger(command.Logger()))
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.EnsureRepo(); err != nil {
		return err
	}

	if !c.quiet {
		if existed {
			fmt.Printf("Reinitialized existing checkpoint state in %q\n", wd)
		} else {
			fmt.Printf("Initialized checkpoint state in %q (conversation %q)\n", wd, command.Conversation())
		}
	}
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
