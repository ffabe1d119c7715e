package project

import (
	_ "embed"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/hatidata/hati/pkg/consts"
	"github.com/pkg/errors"
)

var (
	//go:embed embed/config.yaml
	defaultConfig []byte

	//go:embed embed/gitignore
	defaultGitignore []byte

	image = fstest.MapFS{
		consts.HatiDir:                           {Mode: os.ModeDir | 0o755},
		consts.HatiDir + "/" + consts.ConfigFile: {Data: defaultConfig},
		consts.HatiDir + "/.gitignore":           {Data: defaultGitignore},
	}
)

type (
	// Project manages the .hati/ directory for a HatiData project rooted at a
	// given path.
	Project struct {
		root string
	}
)

// New creates a Project for the given root directory. The directory must
// exist; Initialize creates everything beneath it.
//
// Example:
//
//	proj := project.New("/path/to/workspace")
//	if err := proj.Initialize(); err != nil {
//		log.Fatal(err)
//	}
func New(root string) *Project {
	return &Project{root: root}
}

// Root returns the project root directory.
func (p *Project) Root() string {
	return p.root
}

// HatiDir returns the path to the project's .hati directory.
func (p *Project) HatiDir() string {
	return filepath.Join(p.root, consts.HatiDir)
}

// Initialize sets up the .hati/ directory with its default configuration and
// .gitignore. It is idempotent: existing files and directories are preserved,
// so running it in an already initialized project is safe.
func (p *Project) Initialize() error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	for path, entry := range image {
		fullPath := filepath.Join(p.root, path)

		if _, err := os.Stat(fullPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		if entry.Mode.IsDir() {
			if err := os.MkdirAll(fullPath, entry.Mode.Perm()); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create parent directory for %s", fullPath)
		}

		if err := os.WriteFile(fullPath, entry.Data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}
	}

	return nil
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}

// Find locates the nearest .hati/ directory by walking up from start. This
// lets commands run from any subdirectory within a project.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", start)
	}

	for {
		candidate := filepath.Join(dir, consts.HatiDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no .hati/ directory found. Run 'hati init' first")
		}
		dir = parent
	}
}

// FindFromWd is Find starting at the current working directory.
func FindFromWd() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current directory")
	}
	return Find(wd)
}

// DatabasePath returns the local DuckDB path within a .hati directory. The
// file may not exist yet; callers decide whether that is an error.
func DatabasePath(hatiDir string) string {
	return filepath.Join(hatiDir, consts.DatabaseFile)
}

// ConfigPath returns the config file path within a .hati directory.
func ConfigPath(hatiDir string) string {
	return filepath.Join(hatiDir, consts.ConfigFile)
}

// SessionPath returns the session file path within a .hati directory.
func SessionPath(hatiDir string) string {
	return filepath.Join(hatiDir, consts.SessionFile)
}
