// Package command provides the CLI definition for relaychat-client.
//
// It uses urfave/cli/v2 for flag parsing. The default action launches
// the interactive chat TUI against the configured server.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/relaychat-go/internal/client/tui"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "relaychat-client",
		Usage:   "Terminal client for a relaychat server",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "relaychat server address (e.g., localhost:6969)",
				EnvVars: []string{"RELAYCHAT_SERVER"},
				Value:   "localhost:6969",
			},
		},
		Action: func(c *cli.Context) error {
			return tui.Run(c.String("server"))
		},
	}
}
