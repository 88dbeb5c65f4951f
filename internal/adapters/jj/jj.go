// Package jj provides adapters for interacting with Jujutsu (jj) repositories.
// This package implements domain.Backend on top of the jj CLI, using templates to get
// machine-readable output. Every command runs with --ignore-working-copy so rendering
// a prompt never snapshots the working copy or writes to the operation log.
package jj

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// gitRemote is the pseudo remote jj keeps for colocated git refs.
const gitRemote = "git"

// Logger defines the logging interface for the jj adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Repository implements domain.Backend for a jj workspace.
type Repository struct {
	root     string
	idLength int
	depth    int
	runner   CommandRunner
	logger   Logger

	// graph is loaded on the first Parents call.
	graph *graph

	// flags read together with the identity, reused by Status.
	emptyDescription bool
	divergent        bool
}

var (
	_ domain.Backend           = (*Repository)(nil)
	_ domain.TraversalBoundary = (*Repository)(nil)
)

// Options configures a Repository.
type Options struct {
	IDLength int
	MaxDepth int
	Runner   CommandRunner
}

// NewRepository creates a jj backend rooted at root.
// No command runs until a query is made.
func NewRepository(root string, opts Options, log Logger) *Repository {
	if opts.IDLength <= 0 {
		opts.IDLength = domain.DefaultIDLength
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	return &Repository{
		root:     root,
		idLength: opts.IDLength,
		depth:    max(opts.MaxDepth, 0),
		runner:   opts.Runner,
		logger:   log,
	}
}

// Kind implements domain.Backend.
func (r *Repository) Kind() domain.BackendKind {
	return domain.BackendJJ
}

// Identity returns the working-copy change identity.
func (r *Repository) Identity(ctx context.Context) (*domain.WorkingCopyIdentity, error) {
	out, err := r.runner.Run(ctx, r.root, identityArgs(r.root)...)
	if err != nil {
		return nil, fmt.Errorf("failed to read working copy: %w", err)
	}

	line := strings.TrimRight(string(out), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return nil, fmt.Errorf("unexpected identity output %q", line)
	}

	changeID, commitID, prefix := fields[0], fields[1], fields[2]
	if changeID == "" || commitID == "" {
		return nil, fmt.Errorf("unexpected identity output %q", line)
	}

	r.divergent = fields[4] == "1"
	r.emptyDescription = fields[5] == "1"

	short := domain.ShortID(changeID, r.idLength)
	identity := &domain.WorkingCopyIdentity{
		ShortID:         short,
		FullID:          changeID,
		UniquePrefixLen: min(len(prefix), len(short)),
		Commit:          domain.CommitID(commitID),
		Conflicted:      fields[3] == "1",
	}

	r.logger.Debug(ctx, "read working copy", map[string]interface{}{
		"change_id":  short,
		"commit_id":  commitID,
		"conflicted": identity.Conflicted,
		"divergent":  r.divergent,
	})

	return identity, nil
}

// Bookmarks lists local bookmarks with their remote state.
// A conflicted bookmark yields one entry per target.
func (r *Repository) Bookmarks(ctx context.Context) ([]domain.BookmarkRef, error) {
	out, err := r.runner.Run(ctx, r.root, bookmarkArgs(r.root)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	refs, err := parseBookmarks(string(out))
	if err != nil {
		return nil, err
	}

	r.logger.Debug(ctx, "listed bookmarks", map[string]interface{}{
		"count": len(refs),
	})
	return refs, nil
}

type bookmarkLine struct {
	name    string
	remote  string
	targets []string
	tracked bool
}

func parseBookmarks(out string) ([]domain.BookmarkRef, error) {
	var (
		order   []string
		locals  = map[string][]string{}
		remotes = map[string][]bookmarkLine{}
	)

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("unexpected bookmark output %q", line)
		}
		bl := bookmarkLine{
			name:    fields[0],
			remote:  fields[1],
			targets: strings.Fields(fields[2]),
			tracked: fields[3] == "1",
		}

		switch bl.remote {
		case "":
			if _, seen := locals[bl.name]; !seen {
				order = append(order, bl.name)
			}
			locals[bl.name] = append(locals[bl.name], bl.targets...)
		case gitRemote:
		default:
			// untracked remote bookmarks do not make a local one unsynced
			if bl.tracked {
				remotes[bl.name] = append(remotes[bl.name], bl)
			}
		}
	}

	var refs []domain.BookmarkRef
	for _, name := range order {
		targets := locals[name]
		rem := remotes[name]
		// origin first, then by remote name
		slices.SortFunc(rem, func(a, b bookmarkLine) int {
			switch {
			case a.remote == b.remote:
				return 0
			case a.remote == "origin":
				return -1
			case b.remote == "origin":
				return 1
			default:
				return strings.Compare(a.remote, b.remote)
			}
		})

		var remoteTarget string
		synced := false
		for _, rl := range rem {
			if len(rl.targets) == 0 {
				continue
			}
			if remoteTarget == "" {
				remoteTarget = rl.targets[0]
			}
			if slices.Equal(rl.targets, targets) {
				synced = true
				remoteTarget = rl.targets[0]
				break
			}
		}
		hasRemote := len(rem) > 0

		for _, t := range targets {
			refs = append(refs, domain.BookmarkRef{
				Name:         name,
				Target:       domain.CommitID(t),
				HasRemote:    hasRemote,
				RemoteTarget: domain.CommitID(remoteTarget),
				Unsynced:     hasRemote && !synced,
			})
		}
	}
	return refs, nil
}

// Parents returns the parents of commit from the preloaded ancestry window.
func (r *Repository) Parents(ctx context.Context, commit domain.CommitID) ([]domain.CommitID, error) {
	if err := r.loadGraph(ctx); err != nil {
		return nil, err
	}
	return r.graph.parents(commit), nil
}

// IsBoundary implements domain.TraversalBoundary: the walk does not continue past
// the heads of immutable_heads(). Older immutable commits reached through another
// parent are still walked.
func (r *Repository) IsBoundary(commit domain.CommitID) bool {
	if r.graph == nil {
		return false
	}
	return r.graph.immutableHead(commit)
}

func (r *Repository) loadGraph(ctx context.Context) error {
	if r.graph != nil {
		return nil
	}

	out, err := r.runner.Run(ctx, r.root, graphArgs(r.root, r.depth)...)
	if err != nil {
		return fmt.Errorf("failed to load ancestry: %w", err)
	}

	g, err := parseGraph(string(out))
	if err != nil {
		return err
	}
	r.graph = g

	r.logger.Debug(ctx, "loaded ancestry window", map[string]interface{}{
		"commits": len(g.nodes),
		"depth":   r.depth,
	})
	return nil
}

// Status derives jj status flags from the identity and the closest bookmark.
func (r *Repository) Status(
	_ context.Context,
	identity *domain.WorkingCopyIdentity,
	closest *domain.AncestorMatch,
) (domain.StatusFlags, error) {
	status := domain.JJStatus{
		Conflicted:       identity.Conflicted,
		EmptyDescription: r.emptyDescription,
		Divergent:        r.divergent,
	}
	if closest != nil {
		status.Unsynced = closest.Bookmark.Unsynced
	}
	return status, nil
}

// Close releases any resources held by the repository.
func (r *Repository) Close() error {
	r.graph = nil
	return nil
}
