package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"warden/cmd/internal/app"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "warden:", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "warden",
		Usage: "Authentication gate for HTTP APIs",
		Commands: []*cli.Command{
			serveCmd(),
			hashPasswordCmd(),
			basicHeaderCmd(),
		},
		// Running without a command serves.
		Action: func(*cli.Context) error { return app.Run() },
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server (configured from WARDEN_* and AUTH_TYPE env vars)",
		Action: func(*cli.Context) error {
			return app.Run()
		},
	}
}
