package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hatidata/hati/pkg/consts"
	"github.com/hatidata/hati/pkg/engine"
	"github.com/hatidata/hati/pkg/sync"
	"github.com/hatidata/hati/pkg/tier"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// pull returns the `hati pull` command, which fetches remote tables into the
// local database. Pull is capability-gated by tier; there is no partial pull.
func pull() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Pull schema and data from remote into the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tables",
				Aliases: []string{"T"},
				Usage:   "comma-separated list of tables to pull (default: all)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			hatiDir, cfg, err := locateProject()
			if err != nil {
				return err
			}

			if cfg.APIKey == "" {
				fmt.Printf("%s Authentication required for cloud features.\n", glyphWarn)
				fmt.Printf("  %s\n", cyan("hati config set api_key hd_live_..."))
				return tier.ErrNotAuthenticated
			}

			resolved := tier.Resolve(cfg.Tier, "")
			if !tier.EvaluatePull(resolved) {
				fmt.Printf("  %s Remote pull requires Cloud tier. %s\n", glyphInfo, tier.UpgradeHint(resolved))
				return errors.Wrapf(tier.ErrPullNotAllowed, "%s tier", resolved)
			}

			eng, err := openDatabase(hatiDir)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			client := sync.New(cfg.CloudEndpoint, cfg.APIKey)

			schemas, err := client.PullSchema(ctx)
			if err != nil {
				return err
			}

			wanted := pullFilter(cmd.String("tables"))

			fmt.Printf("%s Pulling from %s\n", glyphStep, dimmed(cfg.CloudEndpoint))
			fmt.Println()

			staging, err := os.MkdirTemp("", "hati-pull-")
			if err != nil {
				return errors.Wrap(err, "failed to create staging directory")
			}
			defer func() { _ = os.RemoveAll(staging) }()

			pulled := 0
			for _, schema := range schemas {
				if len(wanted) > 0 && !wanted[schema.Name] {
					continue
				}

				// The name comes from the control plane; validate before it
				// touches the filesystem.
				if err := engine.ValidateIdentifier(schema.Name); err != nil {
					return errors.Wrap(err, "remote schema contains invalid table name")
				}

				data, err := client.PullTable(ctx, schema.Name)
				if err != nil {
					return err
				}

				path := filepath.Join(staging, schema.Name+".parquet")
				if err := os.WriteFile(path, data, consts.ModeFile); err != nil {
					return errors.Wrapf(err, "failed to stage %s", schema.Name)
				}

				if err := eng.ImportParquet(ctx, schema.Name, path); err != nil {
					return err
				}

				fmt.Printf("  %s %s (%d column%s)\n", glyphStep, bold(schema.Name), len(schema.Columns), plural(len(schema.Columns)))
				pulled++
			}

			fmt.Println()
			fmt.Printf("%s Pulled %d table%s\n", glyphOK, pulled, plural(pulled))

			return nil
		},
	}
}

func pullFilter(csv string) map[string]bool {
	if csv == "" {
		return nil
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(csv, ",") {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = true
		}
	}
	return wanted
}
