package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/hatidata/hati/pkg/config"
	"github.com/hatidata/hati/pkg/engine"
	"github.com/hatidata/hati/pkg/project"
	"github.com/pkg/errors"
)

// Status glyphs and styles shared by all commands. The palette mirrors the
// rest of the HatiData tooling: cyan for steps, green for success, yellow for
// warnings, blue for hints.
var (
	glyphStep = color.New(color.FgCyan, color.Bold).Sprint(">")
	glyphOK   = color.New(color.FgGreen, color.Bold).Sprint("OK")
	glyphWarn = color.New(color.FgYellow, color.Bold).Sprint("!")
	glyphInfo = color.New(color.FgBlue, color.Bold).Sprint("i")
	glyphAdd  = color.New(color.FgGreen, color.Bold).Sprint("+")

	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dimmed = color.New(color.Faint).SprintFunc()
)

// locateProject finds the nearest .hati directory and loads its config.
func locateProject() (string, *config.Config, error) {
	hatiDir, err := project.FindFromWd()
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.LoadFile(project.ConfigPath(hatiDir))
	if err != nil {
		return "", nil, err
	}

	return hatiDir, cfg, nil
}

// openDatabase opens the project's database, requiring that it already
// exists. Opening a path DuckDB hasn't seen would silently create an empty
// database, which masks a missing `hati init`.
func openDatabase(hatiDir string) (*engine.Engine, error) {
	path := project.DatabasePath(hatiDir)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Errorf("database not found at %s. Run 'hati init' first", path)
	}
	return engine.Open(path)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
