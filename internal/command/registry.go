package command

// The process-wide tree. Command packages register themselves from
// init() and cmd/avc pulls them in with blank imports.
var tree = NewTree()

func RegisterCommand(cmd Command) {
	tree.Register(cmd)
}

func ResolveCommand(args []string) (*Node, []string, error) {
	return tree.Resolve(args)
}

func GetCommand(name string) (Command, bool) {
	return tree.Get(name)
}

// AllCommands returns every registered command once, regardless of how
// many aliases point at it.
func AllCommands() []Command {
	cmds := make([]Command, 0)
	seen := make(map[Command]struct{})

	var walk func(node *Node)
	walk = func(node *Node) {
		if node.Cmd != nil {
			if _, ok := seen[node.Cmd]; !ok {
				cmds = append(cmds, node.Cmd)
				seen[node.Cmd] = struct{}{}
			}
		}
		for _, sub := range node.Subcommands {
			walk(sub)
		}
	}

	walk(tree.root)
	return cmds
}
