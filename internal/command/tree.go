package command

import (
	"errors"
	"fmt"
)

// Node is one resolvable name in the command tree. Aliases share the
// command value, so a command reached through an alias behaves
// identically.
type Node struct {
	Cmd         Command
	Subcommands map[string]*Node
}

// CommandTree resolves argument vectors to commands.
type CommandTree struct {
	root *Node
}

func NewTree() *CommandTree {
	return &CommandTree{
		root: &Node{Subcommands: make(map[string]*Node)},
	}
}

// Register inserts a command, its aliases and its subcommands.
func (t *CommandTree) Register(cmd Command) {
	t.insert(t.root, cmd)
}

// Get looks up a top-level command by name or alias.
func (t *CommandTree) Get(name string) (Command, bool) {
	node, ok := t.root.Subcommands[name]
	if !ok {
		return nil, false
	}
	return node.Cmd, true
}

func (t *CommandTree) insert(node *Node, cmd Command) {
	names := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, n := range names {
		sub := &Node{Cmd: cmd, Subcommands: make(map[string]*Node)}
		node.Subcommands[n] = sub
		for _, subcmd := range cmd.Subcommands() {
			t.insert(sub, subcmd)
		}
	}
}

// Resolve follows args down the tree as far as names keep matching and
// returns the deepest command together with the unconsumed arguments.
func (t *CommandTree) Resolve(args []string) (*Node, []string, error) {
	node := t.root
	for len(args) > 0 {
		next, ok := node.Subcommands[args[0]]
		if !ok {
			break
		}
		node = next
		args = args[1:]
	}
	if node.Cmd == nil {
		if len(args) > 0 {
			return nil, nil, fmt.Errorf("unknown command %q (try 'avc help')", args[0])
		}
		return nil, nil, errors.New("no command given (try 'avc help')")
	}
	return node, args, nil
}
