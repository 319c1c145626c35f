package sessions

import (
	"flag"
	"fmt"

	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct {
	create bool
	use    string
}

func (c *Command) Name() string      { return "sessions" }
func (c *Command) Short() string     { return "ss" }
func (c *Command) Aliases() []string { return []string{"session"} }
func (c *Command) Usage() string     { return "sessions [options]" }
func (c *Command) Brief() string     { return "List, create and switch sessions" }
func (c *Command) Help() string {
	return `Manage sessions. A session is an isolated line of checkpoints branched
from main's head; sessions advance independently and never disturb each
other, so parallel agents can work side by side.

Options:
  --new          Create a session branched from main's current head and
                 make it active.
  --use <ref>    Switch the active session.

Usage:
  avc sessions            List sessions; the active one is starred.
  avc sessions --new
  avc sessions --use session_2
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&c.create, "new", false, "")
	fs.StringVar(&c.use, "use", "", "")
}

func (c *Command) Run(ctx *command.Context) error {
	r, err := command.OpenRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	if c.create {
		s, err := r.NewSession()
		if err != nil {
			return err
		}
		if err := r.SetActiveRef(s.Ref()); err != nil {
			return err
		}
		fmt.Printf("Created %s (active)\n", s.Ref())
		return nil
	}

	if c.use != "" {
		if _, err := r.Session(c.use); err != nil {
			return err
		}
		if err := r.SetActiveRef(c.use); err != nil {
			return err
		}
		fmt.Printf("Switched to %s\n", c.use)
		return nil
	}

	names, err := r.Refs().List()
	if err != nil {
		return err
	}
	active := r.ActiveRef()
	for _, name := range names {
		star := " "
		if name == active {
			star = "*"
		}
		infos, err := r.ListCheckpoints(name)
		if err != nil {
			return err
		}
		label := "checkpoints"
		if len(infos) == 1 {
			label = "checkpoint"
		}
		fmt.Printf("%s %-12s %d %s\n", star, name, len(infos), label)
	}
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
