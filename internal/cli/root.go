// Package cli wires the command surface: every invocation resolves the
// project configuration, runs one operation, and writes exactly one
// JSON result object to stdout. Exit codes follow the result status:
// 0 ok, 1 a check failed, 2 the operation itself broke.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/config"
	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/logger"
	"github.com/jaymd96/eyeball/internal/modcache"
)

// NewRootCommand builds the command tree over the shared App.
func NewRootCommand(app *App, version string) *cobra.Command {
	// No Version field: cobra's built-in --version prints plain text,
	// which would break the one-JSON-result-per-invocation contract.
	// The version subcommand reports through the envelope instead.
	root := &cobra.Command{
		Use:           "eyeball",
		Short:         "Introspect, call, and probe JavaScript modules from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			cwd, err := os.Getwd()
			if err != nil {
				return app.fail(err, "")
			}
			cfg, err := config.Resolve(app.ConfigPath, cwd)
			if err != nil {
				return app.fail(err, "")
			}
			app.Config = cfg
			app.Cache = modcache.NewStore(cfg.Root)

			cleanup, err := logger.Setup(logger.Config{Root: cfg.Root, Debug: app.Debug})
			if err == nil {
				cobra.OnFinalize(func() { _ = cleanup() })
			}
			logger.L().Info("invocation",
				"command", cmd.Name(),
				"root", cfg.Root,
				"package", cfg.PackageDir)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&app.Pretty, "pretty", false, "indent the result object")
	pf.StringVar(&app.ConfigPath, "config", "", "path to eyeball.yml (default: search upward from CWD)")
	pf.BoolVar(&app.Debug, "debug", false, "log at debug level")
	pf.IntVar(&app.WallMS, "timeout", 0, "wall budget in milliseconds for evaluated code")

	root.AddCommand(
		newLsCommand(app),
		newInspectCommand(app),
		newSourceCommand(app),
		newDocCommand(app),
		newSearchCommand(app),
		newCallCommand(app),
		newExecCommand(app),
		newProbeCommand(app),
		newDepsCommand(app),
		newCallersCommand(app),
		newImportsCommand(app),
		newTestCommand(app),
		newReloadCommand(app),
		newVersionCommand(app, version),
	)

	return root
}

// Run executes one invocation and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, version string) int {
	app := &App{Stdout: stdout, Stderr: stderr}
	root := NewRootCommand(app, version)
	root.SetArgs(args)
	// Usage and cobra's own messages go to stderr; stdout carries only
	// the result object.
	root.SetOut(stderr)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !app.emitted {
			app.emit(domain.Errored(err, ""))
		}
		return domain.ExitCode(err)
	}
	return 0
}

func newVersionCommand(app *App, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.finish(domain.OK(map[string]string{"version": version}))
		},
	}
}
