package promote

import (
	"flag"
	"fmt"

	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "promote" }
func (c *Command) Short() string     { return "p" }
func (c *Command) Aliases() []string { return []string{"approve"} }
func (c *Command) Usage() string     { return "promote <checkpoint>" }
func (c *Command) Brief() string     { return "Advance main to an approved checkpoint" }
func (c *Command) Help() string {
	return `Point the main reference at a checkpoint, typically one produced on a
session whose work was approved. The session itself is untouched and
keeps advancing independently.

The argument is a reference name (its head is promoted) or a commit id.

Usage:
  avc promote <checkpoint>

Examples:
  avc promote session_2
  avc promote bafkreia...
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

	if err := r.PromoteToMain(ctx.Args[0]); err != nil {
		return err
	}
	fmt.Printf("main is now at %s\n", ctx.Args[0])
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
