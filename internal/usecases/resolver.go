// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// Logger defines the logging interface required by the resolver.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// StatusResolver resolves the prompt state of a repository.
// It selects a backend, reads the working-copy identity and bookmarks, finds the
// bookmarks nearest to the working copy and derives the status flags from the closest one.
type StatusResolver struct {
	backends domain.BackendFactory
	logger   Logger
}

// NewStatusResolver creates a new StatusResolver with the given dependencies.
func NewStatusResolver(backends domain.BackendFactory, log Logger) *StatusResolver {
	return &StatusResolver{
		backends: backends,
		logger:   log,
	}
}

// SelectBackend picks the backend to query for a location.
// jj wins in colocated repositories unless override asks for git. An override naming
// a backend that is not present fails with domain.ErrBackendUnavailable.
func SelectBackend(loc domain.RepoLocation, override domain.BackendKind) (domain.BackendKind, error) {
	if !loc.GitPresent && !loc.JJPresent {
		return "", domain.ErrNotARepository
	}

	switch override {
	case domain.BackendGit:
		if !loc.GitPresent {
			return "", fmt.Errorf("%w: %s requested but not present in %s", domain.ErrBackendUnavailable, override, loc.Root)
		}
		return domain.BackendGit, nil
	case domain.BackendJJ:
		if !loc.JJPresent {
			return "", fmt.Errorf("%w: %s requested but not present in %s", domain.ErrBackendUnavailable, override, loc.Root)
		}
		return domain.BackendJJ, nil
	}

	if loc.JJPresent {
		return domain.BackendJJ, nil
	}
	return domain.BackendGit, nil
}

// Resolve runs one resolution against the located repository.
// Any backend failure aborts the whole resolution; no partial result is returned.
func (r *StatusResolver) Resolve(ctx context.Context, input domain.ResolveInput) (*domain.ResolverResult, error) {
	started := time.Now()
	opts := input.Options

	kind, err := SelectBackend(input.Location, opts.Backend)
	if err != nil {
		return nil, err
	}

	r.logger.Debug(ctx, "selected backend", map[string]interface{}{
		"backend":   string(kind),
		"root":      input.Location.Root,
		"colocated": input.Location.Colocated(),
		"override":  string(opts.Backend),
	})

	backend, err := r.backends.Open(ctx, kind, input.Location.Root, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s repository: %w", domain.ErrBackendFailure, kind, err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			r.logger.Warn(ctx, "failed to close backend", map[string]interface{}{
				"backend": string(kind),
				"error":   closeErr.Error(),
			})
		}
	}()

	identity, err := backend.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query identity: %w", domain.ErrBackendFailure, err)
	}

	r.logger.Debug(ctx, "queried identity", map[string]interface{}{
		"short_id":   identity.ShortID,
		"conflicted": identity.Conflicted,
		"empty":      identity.Empty,
		"elapsed_ms": elapsedMillis(started),
	})

	bookmarks, err := backend.Bookmarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate bookmarks: %w", domain.ErrBackendFailure, err)
	}

	resolved, err := ResolveAncestors(ctx, backend, identity.Commit, bookmarks, opts.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve ancestors: %w", domain.ErrBackendFailure, err)
	}

	r.logger.Debug(ctx, "resolved ancestor bookmarks", map[string]interface{}{
		"bookmarks":  len(bookmarks),
		"resolved":   len(resolved),
		"max_depth":  opts.MaxDepth,
		"elapsed_ms": elapsedMillis(started),
	})

	result := &domain.ResolverResult{
		Kind:     kind,
		Root:     input.Location.Root,
		Identity: *identity,
		Resolved: resolved,
		Bookmarks: RenderBookmarks(resolved, SelectionOptions{
			DisplayLimit:   opts.DisplayLimit,
			TruncateLength: opts.TruncateLength,
			StripPrefixes:  opts.StripPrefixes,
		}),
	}

	status, err := backend.Status(ctx, identity, result.Closest())
	if err != nil {
		return nil, fmt.Errorf("%w: derive status: %w", domain.ErrBackendFailure, err)
	}
	result.Status = status

	r.logger.Debug(ctx, "resolution complete", map[string]interface{}{
		"backend":    string(kind),
		"elapsed_ms": elapsedMillis(started),
	})

	return result, nil
}

func elapsedMillis(since time.Time) float64 {
	return float64(time.Since(since).Microseconds()) / 1000
}
