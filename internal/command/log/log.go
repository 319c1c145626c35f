package log

import (
	"flag"
	"fmt"
	"time"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
	"github.com/keshon/avc/internal/object"
)

type Command struct {
	oneline bool
}

func (c *Command) Name() string      { return "log" }
func (c *Command) Short() string     { return "l" }
func (c *Command) Aliases() []string { return []string{"history"} }
func (c *Command) Usage() string     { return "log [options] [reference]" }
func (c *Command) Brief() string     { return "List checkpoints of a session" }
func (c *Command) Help() string {
	return `List the checkpoints of a session, oldest first.

Without an argument the active session is shown. Pass a reference name
(main, session_1, ...) to inspect another session's history.

Options:
  --oneline   One checkpoint per line, id and message only.

Usage:
  avc log [reference]

Examples:
  avc log
  avc log --oneline session_2
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&c.oneline, "oneline", false, "")
}

func (c *Command) Run(ctx *command.Context) error {
	r, err := command.OpenRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	ref := r.ActiveRef()
	if len(ctx.Args) > 0 {
		ref = ctx.Args[0]
	}

	infos, err := r.ListCheckpoints(ref)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Printf("No checkpoints on %s yet\n", ref)
		return nil
	}

	for i, info := range infos {
		if c.oneline {
			fmt.Printf("%s %s\n", shortID(info.ID), info.Message)
			continue
		}
		fmt.Printf("checkpoint %s (#%d on %s)\n", info.ID, i+1, ref)
		if when, ok := timestamp(r, info.ID); ok {
			fmt.Printf("Date: %s\n", when.Format(time.RFC1123))
		}
		fmt.Printf("\n    %s\n\n", info.Message)
	}
	return nil
}

func timestamp(r *checkpoint.Repo, id string) (time.Time, bool) {
	oid, err := object.ParseID(id)
	if err != nil {
		return time.Time{}, false
	}
	commit, err := r.Store().GetCommit(oid)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, commit.Timestamp), true
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
