// Package domain defines the core business entities and interfaces for vcs-prompt.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
)

// Domain errors for repository detection and resolution.
var (
	// ErrNotARepository indicates neither backend was found at or above the path.
	ErrNotARepository = errors.New("not a git or jj repository")

	// ErrBackendFailure indicates backend metadata could not be read.
	ErrBackendFailure = errors.New("backend failure")

	// ErrBackendUnavailable indicates the requested backend is not present or not installed.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// CommitGraph exposes the parent edges of a backend's commit graph.
type CommitGraph interface {
	// Parents returns the direct parents of commit. A root commit has none.
	Parents(ctx context.Context, commit CommitID) ([]CommitID, error)
}

// TraversalBoundary is implemented by graphs that stop the ancestor walk early.
// Bookmarks on a boundary commit are still collected, its parents are not visited.
type TraversalBoundary interface {
	IsBoundary(commit CommitID) bool
}

// Backend is the capability contract shared by the git and jj backends.
type Backend interface {
	CommitGraph

	// Kind reports which backend this is.
	Kind() BackendKind

	// Identity describes the working-copy position.
	// An empty repository yields an identity with Empty set rather than an error.
	Identity(ctx context.Context) (*WorkingCopyIdentity, error)

	// Bookmarks lists all local bookmarks in unspecified order.
	Bookmarks(ctx context.Context) ([]BookmarkRef, error)

	// Status computes the status flags. closest is nil when no bookmark resolved.
	Status(ctx context.Context, identity *WorkingCopyIdentity, closest *AncestorMatch) (StatusFlags, error)

	// Close releases any resources held by the backend.
	Close() error
}

// BackendFactory opens a backend of the given kind rooted at root.
type BackendFactory interface {
	Open(ctx context.Context, kind BackendKind, root string, opts ResolveOptions) (Backend, error)
}

// Locator finds the repository enclosing a path.
type Locator interface {
	Locate(path string) (RepoLocation, error)
}

// OutputWriter writes a resolved prompt segment to an output destination.
type OutputWriter interface {
	WritePrompt(result *ResolverResult, display DisplayOptions) error
}

// Resolver resolves the prompt state for a located repository.
type Resolver interface {
	Resolve(ctx context.Context, input ResolveInput) (*ResolverResult, error)
}
