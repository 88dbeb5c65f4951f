// Package backend opens the repository backend chosen by the resolver.
package backend

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/git"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/jj"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// Logger is the logging surface shared by both backends.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Factory implements domain.BackendFactory for git and jj.
type Factory struct {
	logger   Logger
	jjRunner jj.CommandRunner
}

var _ domain.BackendFactory = (*Factory)(nil)

// NewFactory creates a Factory. A nil runner uses the jj binary on PATH.
func NewFactory(log Logger, runner jj.CommandRunner) *Factory {
	return &Factory{logger: log, jjRunner: runner}
}

// Open implements domain.BackendFactory.
func (f *Factory) Open(
	_ context.Context,
	kind domain.BackendKind,
	root string,
	opts domain.ResolveOptions,
) (domain.Backend, error) {
	switch kind {
	case domain.BackendGit:
		repo, err := git.NewGoGitRepository(root, opts.IDLength, f.logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case domain.BackendJJ:
		return jj.NewRepository(root, jj.Options{
			IDLength: opts.IDLength,
			MaxDepth: opts.MaxDepth,
			Runner:   f.jjRunner,
		}, f.logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrBackendUnavailable, kind)
	}
}
