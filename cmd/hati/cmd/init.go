package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hatidata/hati/pkg/consts"
	"github.com/hatidata/hati/pkg/engine"
	"github.com/hatidata/hati/pkg/project"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// initCmd returns the `hati init` command, which initializes a HatiData
// project in the current (or specified) directory.
//
// Created structure:
//   - .hati/config.yaml: project configuration
//   - .hati/.gitignore: excludes the database and secrets from git
//   - .hati/local.duckdb: empty local database
//
// Running init in an already initialized directory is a no-op.
func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize a HatiData project in the current (or specified) directory",
		ArgsUsage: "[path]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			base := cmd.Args().First()
			if base == "" {
				wd, err := os.Getwd()
				if err != nil {
					return errors.Wrap(err, "failed to get current directory")
				}
				base = wd
			}

			proj := project.New(base)

			if _, err := os.Stat(proj.HatiDir()); err == nil {
				fmt.Printf("%s HatiData project already initialized at %s\n", glyphWarn, dimmed(proj.HatiDir()))
				return nil
			}

			fmt.Printf("%s Initializing HatiData project in %s\n", glyphStep, bold(base))

			if err := os.MkdirAll(base, consts.ModeDir); err != nil {
				return errors.Wrapf(err, "failed to create %s", base)
			}

			if err := proj.Initialize(); err != nil {
				return err
			}
			fmt.Printf("  %s Created %s\n", glyphAdd, dimmed(consts.HatiDir+"/"))
			fmt.Printf("  %s Created %s\n", glyphAdd, dimmed(consts.ConfigFile))
			fmt.Printf("  %s Created %s\n", glyphAdd, dimmed(".gitignore"))

			// Opening the engine creates the database file.
			eng, err := engine.Open(project.DatabasePath(proj.HatiDir()))
			if err != nil {
				return errors.Wrap(err, "failed to create local DuckDB database")
			}
			if err := eng.Close(); err != nil {
				return errors.Wrap(err, "failed to close local DuckDB database")
			}
			fmt.Printf("  %s Created %s\n", glyphAdd, dimmed(consts.DatabaseFile))

			fmt.Println()
			fmt.Printf("%s HatiData project initialized!\n", glyphOK)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  %s Set your API key\n", dimmed("1."))
			fmt.Printf("     %s\n", cyan("hati config set api_key hd_live_..."))
			fmt.Printf("  %s Run a query\n", dimmed("2."))
			fmt.Printf("     %s\n", cyan(`hati query "CREATE TABLE test (id INT, name VARCHAR)"`))
			fmt.Printf("  %s Push to cloud\n", dimmed("3."))
			fmt.Printf("     %s\n", cyan("hati push"))

			return nil
		},
	}
}
