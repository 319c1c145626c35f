package command

// Middleware decorates a command, usually with a pre-run check.
type Middleware func(Command) Command

// WrappedCommand delegates everything to the inner command except Run,
// which goes through Wrap.
type WrappedCommand struct {
	Command
	Wrap func(ctx *Context) error
}

func (w *WrappedCommand) Run(ctx *Context) error {
	if w.Wrap != nil {
		return w.Wrap(ctx)
	}
	return w.Command.Run(ctx)
}

// ApplyMiddlewares wraps cmd in the given order; the last middleware
// ends up outermost and runs first.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
