package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/hatidata/hati/pkg/consts"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// validPages are the dashboard pages addressable by name.
var validPages = []string{
	"billing",
	"onboarding",
	"agents",
	"triggers",
	"branches",
	"cot",
	"api-keys",
	"policies",
}

// dashboard returns the `hati dashboard` command, which opens the web
// dashboard (optionally at a named page) in the default browser.
func dashboard() *cli.Command {
	return &cli.Command{
		Name:      "dashboard",
		Usage:     "Open the HatiData web dashboard",
		ArgsUsage: "[page]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			page := cmd.Args().First()
			if page != "" && !isValidPage(page) {
				return errors.Errorf("unknown page '%s'. Valid pages: %s", page, strings.Join(validPages, ", "))
			}

			if _, cfg, err := locateProject(); err != nil {
				fmt.Printf("%s No .hati/ directory found. Run %s first.\n", glyphWarn, cyan("hati init"))
			} else if cfg.APIKey == "" {
				fmt.Printf("%s No API key configured. Run %s first.\n", glyphWarn, cyan("hati auth login"))
			}

			url := dashboardURL(page)
			fmt.Printf("%s Opening dashboard: %s\n", glyphStep, cyan(url))
			if err := browser.OpenURL(url); err != nil {
				fmt.Printf("%s Could not open browser. Visit: %s\n", glyphWarn, url)
			}

			return nil
		},
	}
}

// dashboardURL builds the full dashboard URL for a page. An empty page opens
// the dashboard root.
func dashboardURL(page string) string {
	if page == "" {
		return consts.DashboardBase
	}
	return consts.DashboardBase + "/" + page
}

func isValidPage(page string) bool {
	for _, p := range validPages {
		if p == page {
			return true
		}
	}
	return false
}
