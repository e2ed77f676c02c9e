// Package main provides the entry point for relaychat-client.
//
// relaychat-client is a terminal chat client for a relaychat server:
// it connects over TCP, handles the token prompt, and renders the room
// in an interactive TUI.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/relaychat-go/internal/client/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
