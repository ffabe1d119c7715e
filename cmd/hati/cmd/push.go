package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hatidata/hati/pkg/engine"
	"github.com/hatidata/hati/pkg/sync"
	"github.com/hatidata/hati/pkg/tier"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// push returns the `hati push` command, which exports local tables to
// Parquet and uploads them, subject to the resolved tier's quota limits.
//
// Per-table row and size overruns are skipped, not fatal: the push uploads
// whatever fit and reports the rest with reasons. Target validation,
// authentication, VPC capability, and the table-count cap abort the whole
// operation before any table is exported.
func push() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Push local tables to cloud or VPC",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "target",
				Aliases:     []string{"t"},
				Usage:       "target environment: cloud or vpc",
				DefaultText: "default_target from config",
			},
			&cli.StringFlag{
				Name:    "tables",
				Aliases: []string{"T"},
				Usage:   "comma-separated list of tables to push (default: all)",
			},
			&cli.StringFlag{
				Name:  "tier",
				Usage: "override the configured tier for this push",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			hatiDir, cfg, err := locateProject()
			if err != nil {
				return err
			}

			target := cmd.String("target")
			if target == "" {
				target = cfg.DefaultTarget
			}

			eng, err := openDatabase(hatiDir)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			names, err := tableList(ctx, eng, cmd.String("tables"))
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Printf("%s No tables found. Create some tables first with %s\n", glyphWarn, cyan("hati query"))
				return nil
			}

			candidates := make([]tier.Candidate, 0, len(names))
			for _, name := range names {
				rows, err := eng.TableRowCount(ctx, name)
				if err != nil {
					return err
				}
				candidates = append(candidates, tier.Candidate{Name: name, Rows: rows})
			}

			resolved := tier.Resolve(cfg.Tier, cmd.String("tier"))

			fmt.Printf("%s Pushing to %s as %s tier (%s)\n", glyphStep, bold(target), bold(resolved.String()), dimmed(cfg.CloudEndpoint))
			fmt.Println()

			staging, err := os.MkdirTemp("", "hati-push-")
			if err != nil {
				return errors.Wrap(err, "failed to create staging directory")
			}
			defer func() { _ = os.RemoveAll(staging) }()

			exporter := &engine.Exporter{Engine: eng, Dir: staging}

			creds := tier.Credentials{Endpoint: cfg.CloudEndpoint, APIKey: cfg.APIKey}
			report, err := tier.EvaluatePush(ctx, resolved, tier.Target(target), creds, candidates, exporter)
			if err != nil {
				printPushGuidance(err, resolved)
				return err
			}

			for _, skip := range report.Skipped {
				fmt.Printf("  %s %s skipped: %s\n", glyphWarn, bold(skip.Table), skip.Reason)
			}

			client := sync.New(cfg.CloudEndpoint, cfg.APIKey)
			for _, name := range report.Accepted {
				path := exporter.Path(name)
				info, err := os.Stat(path)
				if err != nil {
					return errors.Wrapf(err, "failed to stat export for %s", name)
				}

				fmt.Printf("  %s %s (%s)\n", glyphStep, bold(name), tier.FormatBytes(uint64(info.Size())))

				resp, err := client.PushTable(ctx, name, path)
				if err != nil {
					return err
				}
				if !resp.Success {
					fmt.Printf("    %s %s\n", glyphWarn, resp.Message)
					continue
				}
				if resp.RowsSynced != nil {
					fmt.Printf("    %s synced %d rows\n", glyphOK, *resp.RowsSynced)
				}
			}

			fmt.Println()
			fmt.Printf("%s Pushed %d table%s, skipped %d\n", glyphOK, len(report.Accepted), plural(len(report.Accepted)), len(report.Skipped))

			if len(report.Skipped) > 0 {
				if hint := tier.UpgradeHint(resolved); hint != "" {
					fmt.Printf("  %s %s\n", glyphInfo, hint)
				}
			}

			return nil
		},
	}
}

// tableList resolves the tables for a push or pull: an explicit CSV wins,
// otherwise every user table in the database.
func tableList(ctx context.Context, eng *engine.Engine, csv string) ([]string, error) {
	if csv == "" {
		return eng.ListTables(ctx)
	}

	var names []string
	for _, name := range strings.Split(csv, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// printPushGuidance prints remediation for fatal gate errors before the
// error itself propagates to the exit path.
func printPushGuidance(err error, resolved tier.Tier) {
	switch {
	case errors.Is(err, tier.ErrNotAuthenticated):
		fmt.Printf("%s Authentication required for cloud features.\n", glyphWarn)
		fmt.Println()
		fmt.Printf("  Sign up:  %s\n", cyan("hati auth signup"))
		fmt.Printf("  Log in:   %s\n", cyan("hati auth login"))
		fmt.Printf("  Or set:   %s\n", cyan("hati config set api_key hd_live_..."))
	case errors.Is(err, tier.ErrVPCNotAllowed), errors.Is(err, tier.ErrTooManyTables):
		if hint := tier.UpgradeHint(resolved); hint != "" {
			fmt.Printf("  %s %s\n", glyphInfo, hint)
		}
	}
}
