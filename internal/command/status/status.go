package status

import (
	"flag"
	"fmt"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct{}

func (c *Command) Name() string      { return "status" }
func (c *Command) Short() string     { return "s" }
func (c *Command) Aliases() []string { return []string{"st"} }
func (c *Command) Usage() string     { return "status" }
func (c *Command) Brief() string     { return "Show uncommitted workspace changes" }
func (c *Command) Help() string {
	return `Show what changed in the workspace since the active session's last
checkpoint. Paths matching the exclude rules are never listed; editing
the ignore rules themselves does not count as a change.

Usage:
  avc status

Examples:
  avc status
`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *flag.FlagSet)         {}

func (c *Command) Run(ctx *command.Context) error {
	r, err := command.OpenRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	s, err := r.ActiveSession()
	if err != nil {
		return err
	}

	changes, err := s.StagedFiles(false)
	if err != nil {
		return err
	}

	fmt.Printf("On %s\n", s.Ref())
	if len(changes) == 0 {
		fmt.Println("Nothing to checkpoint, workspace matches the last checkpoint")
		return nil
	}

	for _, ch := range changes {
		fmt.Printf("  %s %-40s +%d -%d\n", marker(ch.Status), ch.Path, ch.Additions, ch.Deletions)
	}
	fmt.Printf("\n%d file(s) changed\n", len(changes))
	return nil
}

func marker(st checkpoint.Status) string {
	switch st {
	case checkpoint.StatusAdded:
		return "A"
	case checkpoint.StatusDeleted:
		return "D"
	default:
		return "M"
	}
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
