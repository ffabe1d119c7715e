package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hatidata/hati/pkg/project"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// query returns the `hati query` command, which executes SQL against the
// local database and renders the result as a table.
func query() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a SQL query against the local database",
		ArgsUsage: "[sql]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "path to a .sql file to execute",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sql, err := resolveSQL(cmd.Args().First(), cmd.String("file"))
			if err != nil {
				return err
			}

			hatiDir, err := project.FindFromWd()
			if err != nil {
				return err
			}

			eng, err := openDatabase(hatiDir)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			fmt.Printf("%s Executing against %s\n", glyphStep, dimmed(project.DatabasePath(hatiDir)))
			fmt.Println()

			start := time.Now()
			result, err := eng.ExecuteQuery(ctx, sql)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			if len(result.Columns) == 0 {
				fmt.Printf("%s Query executed successfully (%s)\n", glyphOK, elapsed.Round(time.Microsecond))
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader(result.Columns)
			for _, row := range result.Rows {
				table.Append(row)
			}
			table.Render()

			fmt.Println()
			fmt.Printf("%s %d row%s in %s\n", glyphOK, len(result.Rows), plural(len(result.Rows)), elapsed.Round(time.Microsecond))

			return nil
		},
	}
}

func resolveSQL(arg, file string) (string, error) {
	switch {
	case arg != "":
		return arg, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", file)
		}
		return string(data), nil
	default:
		return "", errors.New("provide SQL as an argument or use --file <path.sql>")
	}
}
