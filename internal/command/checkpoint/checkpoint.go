package checkpoint

import (
	"errors"
	"flag"
	"fmt"

	avccheckpoint "github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct {
	message string
}

func (c *Command) Name() string      { return "checkpoint" }
func (c *Command) Short() string     { return "ci" }
func (c *Command) Aliases() []string { return []string{"ci", "save"} }
func (c *Command) Usage() string     { return "checkpoint [-m <message>]" }
func (c *Command) Brief() string     { return "Record a checkpoint of the workspace" }
func (c *Command) Help() string {
	return `Capture the current workspace state as a checkpoint on the active
session. Every tracked file is stored; unchanged files are shared with
earlier checkpoints through content addressing, so repeated checkpoints
stay cheap.

Options:
  -m <message>  Checkpoint message (default: empty).

Usage:
  avc checkpoint -m "refactor parser"

Examples:
  avc checkpoint
  avc ci -m "agent turn 12"
  avc save -m "before risky edit"
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *flag.FlagSet) {
	fs.StringVar(&c.message, "m", "", "checkpoint message")
}

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

	info, err := s.CreateCheckpoint(c.message)
	if err != nil {
		var readErr *avccheckpoint.ReadError
		if errors.As(err, &readErr) {
			return fmt.Errorf("%w\nno checkpoint was created; the workspace is untouched", err)
		}
		return err
	}
	if info.ID == "" {
		fmt.Println("Nothing to checkpoint (empty workspace)")
		return nil
	}

	fmt.Printf("[%s] %s\n", shortID(info.ID), info.Message)
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
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
