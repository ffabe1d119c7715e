package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/hatidata/hati/pkg/config"
	"github.com/hatidata/hati/pkg/project"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// configCmd returns the `hati config` command group: set, get, and list over
// the validated key set. API keys are always masked on display.
func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage HatiData configuration",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Set a configuration value",
				ArgsUsage: "<key> <value>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key, value := cmd.Args().Get(0), cmd.Args().Get(1)
					if key == "" || cmd.Args().Len() < 2 {
						return errors.New("usage: hati config set <key> <value>")
					}

					hatiDir, cfg, err := locateProject()
					if err != nil {
						return err
					}

					if err := cfg.Set(key, value); err != nil {
						return keyError(err)
					}

					if err := cfg.Save(project.ConfigPath(hatiDir)); err != nil {
						return err
					}

					fmt.Printf("%s %s = %s\n", glyphOK, cyan(key), displayValue(key, value))
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Get a configuration value",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					if key == "" {
						return errors.New("usage: hati config get <key>")
					}

					_, cfg, err := locateProject()
					if err != nil {
						return err
					}

					value, err := cfg.Get(key)
					if err != nil {
						return keyError(err)
					}

					fmt.Printf("%s = %s\n", cyan(key), displayValue(key, value))
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List all configuration values",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					hatiDir, cfg, err := locateProject()
					if err != nil {
						return err
					}

					fmt.Println(bold("HatiData Configuration"))
					fmt.Printf("  %s %s\n", dimmed("File:"), dimmed(project.ConfigPath(hatiDir)))
					fmt.Println()

					for _, key := range config.Keys() {
						value, _ := cfg.Get(key)
						fmt.Printf("  %s = %s\n", cyan(key), displayValue(key, value))
					}

					return nil
				},
			},
		},
	}
}

func displayValue(key, value string) string {
	switch {
	case value == "":
		return dimmed("(not set)")
	case key == "api_key":
		return config.MaskAPIKey(value)
	default:
		return value
	}
}

func keyError(err error) error {
	if errors.Is(err, config.ErrUnknownKey) {
		return errors.Wrapf(err, "valid keys: %s", strings.Join(config.Keys(), ", "))
	}
	return err
}
