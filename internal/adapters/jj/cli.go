package jj

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// CommandRunner runs the jj binary in a repository and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs jj through os/exec.
type ExecRunner struct {
	// Binary is the jj executable; defaults to "jj" on PATH.
	Binary string
}

// Run implements CommandRunner. Stderr is folded into the returned error.
func (r ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "jj"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", domain.ErrBackendUnavailable, bin)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("jj exited with code %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("jj: %w", err)
	}
	return out, nil
}

// globalArgs keep every invocation read-only: no snapshot, no pager, no color.
func globalArgs(root string) []string {
	return []string{"--no-pager", "--color=never", "--ignore-working-copy", "-R", root}
}

// Templates. Fields are tab separated; lists inside a field are space separated
// because bookmark names and ids never contain spaces.
const (
	identityTemplate = `change_id ++ "\t" ++ commit_id ++ "\t" ++ change_id.shortest().prefix() ++ "\t" ++ ` +
		`if(conflict, "1", "0") ++ "\t" ++ if(divergent, "1", "0") ++ "\t" ++ if(description, "0", "1") ++ "\n"`

	bookmarkTemplate = `name ++ "\t" ++ if(remote, remote) ++ "\t" ++ ` +
		`added_targets.map(|c| c.commit_id()).join(" ") ++ "\t" ++ if(tracked, "1", "0") ++ "\n"`

	graphTemplate = `commit_id ++ "\t" ++ parents.map(|c| c.commit_id()).join(" ") ++ "\t" ++ ` +
		`if(self.contained_in("immutable_heads()"), "1", "0") ++ "\n"`
)

func identityArgs(root string) []string {
	return append(globalArgs(root), "log", "--no-graph", "-r", "@", "-T", identityTemplate)
}

func bookmarkArgs(root string) []string {
	return append(globalArgs(root), "bookmark", "list", "--all-remotes", "-T", bookmarkTemplate)
}

// graphArgs loads the working copy and its ancestors up to depth hops away.
// The revset depth counts generations including @ itself.
func graphArgs(root string, depth int) []string {
	revset := fmt.Sprintf("ancestors(@, %d)", depth+1)
	return append(globalArgs(root), "log", "--no-graph", "-r", revset, "-T", graphTemplate)
}
