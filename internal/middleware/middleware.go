package middleware

import (
	"fmt"
	"os"

	"github.com/keshon/avc/internal/command"
	"github.com/keshon/avc/internal/config"
)

// WithRepoCheck refuses to run the command outside an initialized
// workspace, so commands can assume the state directory exists.
func WithRepoCheck() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				if config.FindWorkspaceRoot(wd) == "" {
					return fmt.Errorf("not a workspace (no %s directory found); run 'avc init' first", config.StateDirName)
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithDebugArgsPrint echoes the parsed arguments when AVC_DEBUG is set
func WithDebugArgsPrint() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				if os.Getenv("AVC_DEBUG") != "" {
					fmt.Printf("Args: %+v\n", ctx.Args)
				}
				return cmd.Run(ctx)
			},
		}
	}
}
