package cmd

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/hatidata/hati/pkg/config"
	"github.com/hatidata/hati/pkg/engine"
	"github.com/hatidata/hati/pkg/project"
	"github.com/hatidata/hati/pkg/tier"
	"github.com/urfave/cli/v3"
)

// status returns the `hati status` command, which summarizes the local
// project: location, database contents, configuration, and resolved tier.
func status() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show status of the local HatiData project",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			hatiDir, cfg, err := locateProject()
			if err != nil {
				return err
			}

			fmt.Println(bold("HatiData Project Status"))
			fmt.Println()
			fmt.Printf("  %s %s\n", bold("Location:"), dimmed(hatiDir))

			dbPath := project.DatabasePath(hatiDir)
			if info, err := os.Stat(dbPath); err == nil {
				fmt.Printf("  %s %s\n", bold("Database:"), tier.FormatBytes(uint64(info.Size())))

				if err := printTableSummary(ctx, dbPath); err != nil {
					return err
				}
			} else {
				fmt.Printf("  %s not found\n", bold("Database:"))
			}

			fmt.Println()
			fmt.Printf("  %s\n", bold("Configuration:"))
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				display := value
				switch {
				case key == "api_key" && value == "":
					display = "(not set)"
				case key == "api_key":
					display = config.MaskAPIKey(value)
				case value == "":
					display = dimmed("(not set)")
				}
				fmt.Printf("    %s = %s\n", cyan(key), display)
			}

			resolved := tier.Resolve(cfg.Tier, "")
			fmt.Println()
			fmt.Printf("  %s %s (%s)\n", bold("Tier:"), resolved, describeLimits(tier.LimitsFor(resolved)))

			fmt.Println()
			fmt.Printf("  %s\n", bold("Session:"))
			if session, err := config.LoadSession(project.SessionPath(hatiDir)); err == nil {
				fmt.Printf("    %s logged in as %s\n", dimmed("-"), session.Email)
			} else {
				fmt.Printf("    %s none\n", dimmed("-"))
			}

			return nil
		},
	}
}

// describeLimits renders a tier's push limits, showing "unlimited" for the
// sentinel values rather than raw maximums.
func describeLimits(limits tier.Limits) string {
	tables := "unlimited tables per push"
	if limits.MaxTables != math.MaxInt {
		tables = fmt.Sprintf("up to %d tables per push", limits.MaxTables)
	}

	size := "unlimited size per table"
	if limits.MaxPushSizeBytes != math.MaxUint64 {
		size = tier.FormatBytes(limits.MaxPushSizeBytes) + " per table"
	}

	return tables + ", " + size
}

func printTableSummary(ctx context.Context, dbPath string) error {
	eng, err := engine.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	tables, err := eng.ListTables(ctx)
	if err != nil {
		return err
	}

	var totalRows uint64
	if len(tables) > 0 {
		fmt.Println()
		fmt.Printf("  %s\n", bold("Tables:"))
		for _, table := range tables {
			rows, err := eng.TableRowCount(ctx, table)
			if err != nil {
				return err
			}
			totalRows += rows
			fmt.Printf("    %s %s (%d rows)\n", dimmed("-"), cyan(table), rows)
		}
	}

	fmt.Println()
	fmt.Printf("  %s %d table%s, %d total rows\n", bold("Summary:"), len(tables), plural(len(tables)), totalRows)

	return nil
}
