package main

import (
	"os"

	"github.com/keshon/avc/internal/command"

	_ "github.com/keshon/avc/internal/command/checkpoint"
	_ "github.com/keshon/avc/internal/command/diff"
	_ "github.com/keshon/avc/internal/command/help"
	_ "github.com/keshon/avc/internal/command/init"
	_ "github.com/keshon/avc/internal/command/log"
	_ "github.com/keshon/avc/internal/command/promote"
	_ "github.com/keshon/avc/internal/command/restore"
	_ "github.com/keshon/avc/internal/command/sessions"
	_ "github.com/keshon/avc/internal/command/status"
	_ "github.com/keshon/avc/internal/command/verify"
)

func main() {
	command.RunCLI(os.Args[1:])
}
