package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Run creates and executes the hati CLI application with the given version
// and command-line arguments. This is the entry point for all CLI
// operations; main delegates here so the full command tree is testable.
//
// Commands operate on the nearest .hati/ directory, discovered by walking up
// from the current working directory, so they work from any subdirectory
// within a project.
func Run(ctx context.Context, version string, args []string) error {
	app := &cli.Command{
		Name:  "hati",
		Usage: "HatiData — RAM for Agents",
		Description: `hati is a local-first data warehouse client. It manages a DuckDB-backed
project directory, executes SQL locally, and pushes/pulls tables to the
HatiData cloud subject to your subscription tier.`,
		Version: version,
		Commands: []*cli.Command{
			initCmd(),
			query(),
			push(),
			pull(),
			status(),
			configCmd(),
			auth(),
			dashboard(),
		},
	}

	return app.Run(ctx, args)
}
