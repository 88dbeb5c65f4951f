// Package main is the entry point for the vcs-prompt CLI application.
// vcs-prompt prints a one-line summary of the working-copy position inside a
// jj or git repository, for use in a shell prompt.
package main

import (
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/MyCarrier-DevOps/vcs-prompt/cmd"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/backend"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/locator"
	logadapter "github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/output"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/usecases"
)

func main() {
	cmd.SetDefaultDependencies(newDependencies(os.Stdout, os.Stderr))
	cmd.Execute()
}

// newDependencies wires the production implementations.
func newDependencies(stdout, stderr io.Writer) *cmd.Dependencies {
	return &cmd.Dependencies{
		RegisterFlags: config.RegisterFlags,

		ConfigLoader: loadAppConfig,

		LoggerFactory: func(cfg *cmd.AppConfig, w io.Writer) (cmd.Logger, error) {
			return logadapter.New(cfg.LogFormat, cfg.LogLevel, w)
		},

		LocatorFactory: func() domain.Locator {
			return locator.FSLocator{}
		},

		ResolverFactory: func(log cmd.Logger) domain.Resolver {
			return usecases.NewStatusResolver(backend.NewFactory(log, nil), log)
		},

		OutputWriterFactory: func(w io.Writer) domain.OutputWriter {
			return output.NewWriterWithOutput(w)
		},

		Stdout: stdout,
		Stderr: stderr,
	}
}

func loadAppConfig(fs *pflag.FlagSet) (*cmd.AppConfig, error) {
	cfg, err := config.Load(fs)
	if err != nil {
		return nil, err
	}
	return &cmd.AppConfig{
		Cwd:       cfg.Cwd,
		Resolve:   cfg.Resolve,
		Display:   cfg.Display,
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
		File:      cfg.File,
	}, nil
}
