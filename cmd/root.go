// Package cmd provides the CLI commands for vcs-prompt.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v3"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/usecases"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// RegisterFlags defines the configuration flags on the root command.
	RegisterFlags func(fs *pflag.FlagSet)

	// ConfigLoader resolves configuration from the parsed flags.
	ConfigLoader func(fs *pflag.FlagSet) (*AppConfig, error)

	// LoggerFactory creates a logger for the resolved configuration.
	LoggerFactory func(cfg *AppConfig, stderr io.Writer) (Logger, error)

	// LocatorFactory creates the repository locator.
	LocatorFactory func() domain.Locator

	// ResolverFactory creates a Resolver with the given logger.
	ResolverFactory func(log Logger) domain.Resolver

	// OutputWriterFactory creates an OutputWriter writing to stdout.
	OutputWriterFactory func(stdout io.Writer) domain.OutputWriter

	// Stdout is the writer for standard output (for the prompt line).
	Stdout io.Writer

	// Stderr is the writer for standard error (for logs).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	Cwd       string                `yaml:"cwd,omitempty"`
	Resolve   domain.ResolveOptions `yaml:"resolve"`
	Display   domain.DisplayOptions `yaml:"display"`
	LogLevel  string                `yaml:"log_level"`
	LogFormat string                `yaml:"log_format"`
	File      string                `yaml:"config_file,omitempty"`
}

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for vcs-prompt.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vcs-prompt",
		Short: "Print a one-line jj or git status for a shell prompt",
		Long: `vcs-prompt prints the position of the working copy inside a jj or git
repository as a single line, for use in a shell prompt:

  on {symbol}{id} ({bookmarks}) [{status}]

Bookmarks (jj) and branches (git) are searched on the working copy and its
ancestors up to --ancestor-bookmark-depth hops away; ancestors are shown as
name~distance. In a colocated repository jj is used unless --backend=git.

Outside a repository, or when the repository cannot be read, nothing is
printed and the exit code is 1.

Settings are read from flags, then VCS_PROMPT_* environment variables, then
$XDG_CONFIG_HOME/vcs-prompt/config.yaml (or the file named by VCS_PROMPT_CONFIG).

Examples:
  # Prompt for the current directory
  vcs-prompt

  # Starship custom module
  [custom.vcs]
  command = "vcs-prompt --no-symbol"
  when = "vcs-prompt detect"

  # Strip a personal prefix and show at most two bookmarks
  vcs-prompt --strip-bookmark-prefix alice/ --bookmarks-display-limit 2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrompt(cmd, deps)
		},
	}

	if deps != nil && deps.RegisterFlags != nil {
		deps.RegisterFlags(rootCmd.PersistentFlags())
	}

	rootCmd.AddCommand(
		newPromptCmd(deps),
		newDetectCmd(deps),
		newVersionCmd(deps),
		newConfigCmd(deps),
	)

	return rootCmd
}

func newPromptCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt line (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrompt(cmd, deps)
		},
	}
}

func newDetectCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Exit 0 and print the backend when inside a repository, exit 1 otherwise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd, deps)
		},
	}
}

func newVersionCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			out := stdout(deps)
			_, err := fmt.Fprintf(out, "vcs-prompt %s (commit %s, built %s)\nbackends: %s (go-git), %s (jj CLI)\n",
				Version, Commit, BuildDate, domain.BackendGit, domain.BackendJJ)
			return err
		},
	}
}

func newConfigCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps == nil {
				return errors.New("dependencies not configured")
			}
			cfg, err := deps.ConfigLoader(cmd.Flags())
			if err != nil {
				writeWarningf(stderr(deps), "vcs-prompt: %v\n", err)
				return fmt.Errorf("configuration error: %w", err)
			}

			enc := yaml.NewEncoder(stdout(deps))
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			return enc.Close()
		},
	}
}

// setup loads configuration and builds the logger.
// Configuration errors are reported on stderr: they are user mistakes, not prompt state.
func setup(cmd *cobra.Command, deps *Dependencies) (*AppConfig, Logger, error) {
	if deps == nil {
		return nil, nil, errors.New("dependencies not configured")
	}

	cfg, err := deps.ConfigLoader(cmd.Flags())
	if err != nil {
		writeWarningf(stderr(deps), "vcs-prompt: %v\n", err)
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	log, err := deps.LoggerFactory(cfg, stderr(deps))
	if err != nil {
		writeWarningf(stderr(deps), "vcs-prompt: %v\n", err)
		return nil, nil, fmt.Errorf("logger error: %w", err)
	}
	return cfg, log, nil
}

// locate finds the repository enclosing the configured directory.
func locate(ctx context.Context, cfg *AppConfig, deps *Dependencies, log Logger) (domain.RepoLocation, error) {
	cwd := cfg.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return domain.RepoLocation{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		cwd = wd
	}

	loc, err := deps.LocatorFactory().Locate(cwd)
	if err != nil {
		log.Debug(ctx, "no repository found", map[string]interface{}{
			"cwd":   cwd,
			"error": err.Error(),
		})
		return domain.RepoLocation{}, err
	}

	log.Debug(ctx, "located repository", map[string]interface{}{
		"root": loc.Root,
		"git":  loc.GitPresent,
		"jj":   loc.JJPresent,
	})
	return loc, nil
}

// runPrompt resolves the repository state and writes the prompt line.
// Resolution failures are logged at warn level and produce no output.
func runPrompt(cmd *cobra.Command, deps *Dependencies) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := setup(cmd, deps)
	if err != nil {
		return err
	}

	loc, err := locate(ctx, cfg, deps, log)
	if err != nil {
		return err
	}

	resolver := deps.ResolverFactory(log)
	result, err := resolver.Resolve(ctx, domain.ResolveInput{
		Location: loc,
		Options:  cfg.Resolve,
	})
	if err != nil {
		log.Warn(ctx, "failed to resolve repository state", map[string]interface{}{
			"root":  loc.Root,
			"error": err.Error(),
		})
		return err
	}

	writer := deps.OutputWriterFactory(stdout(deps))
	if err := writer.WritePrompt(result, cfg.Display); err != nil {
		log.Error(ctx, "failed to write output", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	log.Debug(ctx, "prompt written", map[string]interface{}{
		"backend":   string(result.Kind),
		"bookmarks": len(result.Bookmarks),
	})
	return nil
}

// runDetect prints the backend that would be used, or fails outside a repository.
func runDetect(cmd *cobra.Command, deps *Dependencies) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := setup(cmd, deps)
	if err != nil {
		return err
	}

	loc, err := locate(ctx, cfg, deps, log)
	if err != nil {
		return err
	}

	kind, err := usecases.SelectBackend(loc, cfg.Resolve.Backend)
	if err != nil {
		log.Debug(ctx, "backend unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	_, err = fmt.Fprintln(stdout(deps), kind)
	return err
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func stdout(deps *Dependencies) io.Writer {
	if deps == nil || deps.Stdout == nil {
		return os.Stdout
	}
	return deps.Stdout
}

func stderr(deps *Dependencies) io.Writer {
	if deps == nil || deps.Stderr == nil {
		return os.Stderr
	}
	return deps.Stderr
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		// Intentionally ignored: no recovery action for failed stderr writes
		return
	}
}
