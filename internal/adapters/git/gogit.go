// Package git provides adapters for interacting with local Git repositories.
// This package implements domain.Backend using go-git/v5.
package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// maxCountWalk caps the commits visited when counting ahead/behind.
const maxCountWalk = 2000

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// GoGitRepository implements domain.Backend using go-git/v5.
type GoGitRepository struct {
	repo     *git.Repository
	path     string
	idLength int
	logger   Logger
}

var _ domain.Backend = (*GoGitRepository)(nil)

// NewGoGitRepository opens the Git repository rooted at path.
// Linked worktrees are supported through the common dir.
// Returns domain.ErrNotARepository if the path is not a valid Git repository.
func NewGoGitRepository(path string, idLength int, log Logger) (*GoGitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNotARepository, path, err)
	}

	if idLength <= 0 {
		idLength = domain.DefaultIDLength
	}

	return &GoGitRepository{
		repo:     repo,
		path:     path,
		idLength: idLength,
		logger:   log,
	}, nil
}

// Kind implements domain.Backend.
func (r *GoGitRepository) Kind() domain.BackendKind {
	return domain.BackendGit
}

// Identity returns the HEAD commit identity.
// An unborn HEAD yields an empty identity rather than an error.
func (r *GoGitRepository) Identity(ctx context.Context) (*domain.WorkingCopyIdentity, error) {
	conflicted, err := r.indexConflicted()
	if err != nil {
		return nil, err
	}

	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			r.logger.Debug(ctx, "HEAD is unborn; repository has no commits", map[string]interface{}{
				"path": r.path,
			})
			return &domain.WorkingCopyIdentity{Empty: true, Conflicted: conflicted}, nil
		}
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	full := head.Hash().String()

	r.logger.Debug(ctx, "read HEAD", map[string]interface{}{
		"head_sha":    full,
		"is_detached": !head.Name().IsBranch(),
	})

	return &domain.WorkingCopyIdentity{
		ShortID:    domain.ShortID(full, r.idLength),
		FullID:     full,
		Commit:     domain.CommitID(full),
		Conflicted: conflicted,
	}, nil
}

// indexConflicted reports whether the index holds unmerged entries.
func (r *GoGitRepository) indexConflicted() (bool, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return false, fmt.Errorf("failed to read index: %w", err)
	}
	for _, e := range idx.Entries {
		switch e.Stage {
		case index.AncestorMode, index.OurMode, index.TheirMode:
			return true, nil
		}
	}
	return false, nil
}

// Bookmarks lists local branches with their remote tracking state.
func (r *GoGitRepository) Bookmarks(ctx context.Context) ([]domain.BookmarkRef, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer iter.Close()

	var refs []domain.BookmarkRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		b := domain.BookmarkRef{
			Name:   name,
			Target: domain.CommitID(ref.Hash().String()),
		}

		upstream := plumbing.NewRemoteReferenceName("origin", name)
		if bc, ok := cfg.Branches[name]; ok && bc.Remote != "" && bc.Merge != "" {
			if bc.Remote == "." {
				upstream = ""
			} else {
				upstream = plumbing.NewRemoteReferenceName(bc.Remote, bc.Merge.Short())
			}
		}

		if upstream != "" {
			remote, err := r.repo.Reference(upstream, true)
			switch {
			case err == nil:
				b.HasRemote = true
				b.RemoteTarget = domain.CommitID(remote.Hash().String())
				b.Unsynced = b.RemoteTarget != b.Target
			case !errors.Is(err, plumbing.ErrReferenceNotFound):
				return fmt.Errorf("failed to resolve %s: %w", upstream, err)
			}
		}

		refs = append(refs, b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk branches: %w", err)
	}

	r.logger.Debug(ctx, "listed branches", map[string]interface{}{
		"count": len(refs),
	})

	return refs, nil
}

// Parents returns the parent hashes of commit.
func (r *GoGitRepository) Parents(_ context.Context, commit domain.CommitID) ([]domain.CommitID, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(string(commit)))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object %s: %w", commit, err)
	}

	parents := make([]domain.CommitID, 0, len(c.ParentHashes))
	for _, h := range c.ParentHashes {
		parents = append(parents, domain.CommitID(h.String()))
	}
	return parents, nil
}

// Status computes worktree flags and ahead/behind against the closest bookmark's remote.
func (r *GoGitRepository) Status(
	ctx context.Context,
	identity *domain.WorkingCopyIdentity,
	closest *domain.AncestorMatch,
) (domain.StatusFlags, error) {
	status := domain.GitStatus{Conflicted: identity.Conflicted}
	if identity.Empty {
		return status, nil
	}

	if err := r.worktreeFlags(&status); err != nil {
		return nil, err
	}

	if closest != nil && closest.Bookmark.HasRemote && closest.Bookmark.RemoteTarget != identity.Commit {
		ahead, behind, err := r.aheadBehind(identity.Commit, closest.Bookmark.RemoteTarget)
		if err != nil {
			return nil, err
		}
		status.Ahead, status.Behind = ahead, behind
	}

	r.logger.Debug(ctx, "computed git status", map[string]interface{}{
		"staged":    status.Staged,
		"modified":  status.Modified,
		"untracked": status.Untracked,
		"ahead":     status.Ahead,
		"behind":    status.Behind,
	})

	return status, nil
}

func (r *GoGitRepository) worktreeFlags(status *domain.GitStatus) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil
		}
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	files, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}

	for _, fs := range files {
		switch fs.Staging {
		case git.Added, git.Modified, git.Deleted, git.Renamed, git.Copied:
			status.Staged = true
		case git.UpdatedButUnmerged:
			status.Conflicted = true
		}
		switch fs.Worktree {
		case git.Modified:
			status.Modified = true
		case git.Untracked:
			status.Untracked = true
		case git.Deleted:
			status.Deleted = true
		case git.UpdatedButUnmerged:
			status.Conflicted = true
		}
	}
	return nil
}

// aheadBehind counts the commits reachable from one side and not from the other,
// as git rev-list --left-right --count local...remote does.
func (r *GoGitRepository) aheadBehind(local, remote domain.CommitID) (int, int, error) {
	lc, err := r.repo.CommitObject(plumbing.NewHash(string(local)))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get commit object %s: %w", local, err)
	}
	rc, err := r.repo.CommitObject(plumbing.NewHash(string(remote)))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get commit object %s: %w", remote, err)
	}
	if lc.Hash == rc.Hash {
		return 0, 0, nil
	}

	localSet, err := r.reachable(lc.Hash)
	if err != nil {
		return 0, 0, err
	}
	remoteSet, err := r.reachable(rc.Hash)
	if err != nil {
		return 0, 0, err
	}

	ahead, err := countExcluding(lc, remoteSet)
	if err != nil {
		return 0, 0, err
	}
	behind, err := countExcluding(rc, localSet)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// reachable collects up to maxCountWalk commits reachable from start, nearest first.
func (r *GoGitRepository) reachable(start plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := map[plumbing.Hash]bool{start: true}
	queue := []plumbing.Hash{start}

	for len(queue) > 0 && len(seen) < maxCountWalk {
		h := queue[0]
		queue = queue[1:]

		c, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("failed to get commit object %s: %w", h, err)
		}
		for _, p := range c.ParentHashes {
			if seen[p] {
				continue
			}
			seen[p] = true
			queue = append(queue, p)
		}
	}
	return seen, nil
}

// countExcluding counts commits reachable from start that are not in exclude.
// Excluded commits are not walked through. The count is capped at maxCountWalk.
func countExcluding(start *object.Commit, exclude map[plumbing.Hash]bool) (int, error) {
	count := 0
	iter := object.NewCommitPreorderIter(start, exclude, nil)
	defer iter.Close()

	err := iter.ForEach(func(*object.Commit) error {
		count++
		if count >= maxCountWalk {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk commits from %s: %w", start.Hash, err)
	}
	return count, nil
}

// Close releases any resources held by the repository.
// For go-git, this is a no-op as the repository doesn't hold persistent resources.
func (r *GoGitRepository) Close() error {
	return nil
}
