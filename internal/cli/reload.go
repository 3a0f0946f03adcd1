package cli

import (
	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/inspect"
)

func newReloadCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <module>",
		Short: "Re-read a module from disk and list its current members",
		Long: "Re-read a module from disk, dropping any cached copy, and " +
			"list its current members. The discovery cache entry is " +
			"refreshed from the new source.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reg := app.registry()
			m, err := reg.Reload(args[0])
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			info := inspect.List(m, false)
			app.refreshCache(m, info)
			return app.finish(domain.OK(info))
		},
	}
}
