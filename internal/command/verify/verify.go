package verify

import (
	"flag"
	"fmt"

	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/middleware"
	"github.com/keshon/avc/internal/progress"
	avcverify "github.com/keshon/avc/internal/verify"
)

type Command struct {
	verbose bool
}

func (c *Command) Name() string      { return "verify" }
func (c *Command) Short() string     { return "v" }
func (c *Command) Aliases() []string { return []string{"fsck"} }
func (c *Command) Usage() string     { return "verify [options]" }
func (c *Command) Brief() string     { return "Check integrity of stored checkpoints" }
func (c *Command) Help() string {
	return `Walk every session's history down to its blobs and verify each stored
object against its content id. Damaged or missing objects are listed
with the references whose history depends on them.

Options:
  --verbose   Also list healthy objects.

Usage:
  avc verify

Examples:
  avc verify
  avc verify --verbose
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
}

func (c *Command) Run(ctx *command.Context) error {
	r, err := command.OpenRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	p := progress.NewProgress(0, "verifying objects")
	checks, err := avcverify.Scan(r.Store(), r.Refs())
	if err != nil {
		p.Finish()
		return err
	}
	p.SetTotal(len(checks))
	p.SetCurrent(len(checks))
	p.Finish()

	bad := 0
	for _, check := range checks {
		if check.Status == avcverify.OK && !c.verbose {
			continue
		}
		if check.Status != avcverify.OK {
			bad++
		}
		fmt.Println(avcverify.Describe(check))
	}

	counts := avcverify.Summarize(checks)
	fmt.Printf("%d object(s): %d ok, %d missing, %d damaged\n",
		len(checks), counts[avcverify.OK], counts[avcverify.Missing], counts[avcverify.Damaged])

	if bad > 0 {
		return fmt.Errorf("%d object(s) failed verification", bad)
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
