package cli

import (
	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/depgraph"
	"github.com/jaymd96/eyeball/internal/domain"
)

func newDepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <module>",
		Short: "Show the forward require graph of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			g, err := depgraph.Forward(app.Config.PackageDir, args[0])
			if err != nil {
				return app.fail(err, "")
			}
			return app.finish(domain.OK(g))
		},
	}
}

func newImportsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "imports <module>",
		Short: "List the require() sites of a single module",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			imps, err := depgraph.Imports(app.Config.PackageDir, args[0])
			if err != nil {
				return app.fail(err, "")
			}
			return app.finish(domain.OK(map[string]any{
				"module":  args[0],
				"imports": imps,
			}))
		},
	}
}

func newCallersCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "callers <module> <member>",
		Short: "Find the call sites of a module's member across the package",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			member := args[1]
			sites, err := depgraph.Callers(app.Config.PackageDir, args[0], member)
			if err != nil {
				return app.fail(err, "")
			}
			return app.finish(domain.OK(map[string]any{
				"module":  args[0],
				"member":  member,
				"callers": sites,
			}))
		},
	}
}
