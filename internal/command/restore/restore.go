package restore

import (
	"errors"
	"flag"
	"fmt"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "restore" }
func (c *Command) Short() string     { return "r" }
func (c *Command) Aliases() []string { return []string{"rollback"} }
func (c *Command) Usage() string     { return "restore <checkpoint>" }
func (c *Command) Brief() string     { return "Restore the workspace to a checkpoint" }
func (c *Command) Help() string {
	return `Rewrite every tracked file to match a checkpoint. Files the engine
once tracked but the checkpoint lacks are deleted; files that were
always ignored are left alone. History is never rewritten: the restored
state can itself be checkpointed, and later checkpoints stay reachable.

The argument is a reference name (main, session_1) or a commit id as
printed by 'avc log'.

Usage:
  avc restore <checkpoint>

Examples:
  avc restore main
  avc restore bafkreia...
`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *flag.FlagSet)         {}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	r, err := command.OpenRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	s, err := r.ActiveSession()
	if err != nil {
		return err
	}

	restored, err := s.Restore(ctx.Args[0])
	if err != nil {
		var rerr *checkpoint.RestoreError
		if errors.As(err, &rerr) {
			fmt.Printf("Restore failed at %s after %d file(s); the workspace is partially restored\n",
				rerr.Path, len(rerr.Restored))
		}
		return err
	}

	fmt.Printf("Restored %d file(s) to %s\n", len(restored), ctx.Args[0])
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithRepoCheck(),
			middleware.WithDebugArgsPrint(),
		),
	)
}
