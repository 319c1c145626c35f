package diff

import (
	"flag"
	"fmt"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
)

type Command struct {
	patch bool
}

func (c *Command) Name() string      { return "diff" }
func (c *Command) Short() string     { return "d" }
func (c *Command) Aliases() []string { return []string{"compare"} }
func (c *Command) Usage() string     { return "diff [options] [<from> [<to>]]" }
func (c *Command) Brief() string     { return "Compare checkpoints or the workspace" }
func (c *Command) Help() string {
	return `Compare two snapshots path by path.

With no arguments the active session's last checkpoint is compared to
the live workspace. With one argument that checkpoint (a reference name
or a commit id) is compared to the active session's head. With two
arguments the first is compared to the second.

Binary files are reported by status only, with no patch text.

Options:
  -p, --patch   Also print unified diffs for text files.

Usage:
  avc diff [<from> [<to>]]

Examples:
  avc diff
  avc diff -p
  avc diff main session_2
  avc diff bafkreia...
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&c.patch, "patch", false, "")
	fs.BoolVar(&c.patch, "p", false, "alias for --patch")
}

func (c *Command) Run(ctx *command.Context) error {
	r, err := command.OpenRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	var changes []checkpoint.Change
	switch len(ctx.Args) {
	case 0:
		s, err := r.ActiveSession()
		if err != nil {
			return err
		}
		changes, err = s.StagedFiles(c.patch)
		if err != nil {
			return err
		}
	case 1:
		changes, err = r.TreeDiff(ctx.Args[0], r.ActiveRef(), c.patch)
		if err != nil {
			return err
		}
	default:
		changes, err = r.TreeDiff(ctx.Args[0], ctx.Args[1], c.patch)
		if err != nil {
			return err
		}
	}

	if len(changes) == 0 {
		fmt.Println("No differences")
		return nil
	}

	adds, dels := 0, 0
	for _, ch := range changes {
		fmt.Printf("%-8s %s  +%d -%d\n", ch.Status, ch.Path, ch.Additions, ch.Deletions)
		adds += ch.Additions
		dels += ch.Deletions
		if c.patch && ch.Diff != "" {
			fmt.Print(ch.Diff)
			fmt.Println()
		}
	}
	fmt.Printf("\n%d file(s) changed, %d insertion(s), %d deletion(s)\n", len(changes), adds, dels)
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
