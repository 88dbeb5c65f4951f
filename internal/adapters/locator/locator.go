// Package locator finds the repository enclosing a directory.
package locator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// FSLocator walks up the filesystem looking for .jj and .git markers.
type FSLocator struct{}

var _ domain.Locator = FSLocator{}

// Locate returns the nearest directory at or above path holding a .jj directory
// or a .git entry. A .git file counts, as git worktrees and submodules use one.
// The first directory with either marker wins; markers further up are ignored.
func (FSLocator) Locate(path string) (domain.RepoLocation, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return domain.RepoLocation{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	for {
		loc := domain.RepoLocation{
			Root:       dir,
			JJPresent:  isDir(filepath.Join(dir, ".jj")),
			GitPresent: exists(filepath.Join(dir, ".git")),
		}
		if loc.JJPresent || loc.GitPresent {
			return loc, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return domain.RepoLocation{}, fmt.Errorf("%w: %s", domain.ErrNotARepository, path)
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
