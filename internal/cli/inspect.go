package cli

import (
	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/inspect"
	"github.com/jaymd96/eyeball/internal/jsmod"
)

// loadModule is the shared front half of every read-only command.
func (a *App) loadModule(ref string) (*jsmod.Registry, *jsmod.Module, error) {
	reg := a.registry()
	m, err := reg.Load(ref)
	if err != nil {
		return reg, nil, err
	}
	return reg, m, nil
}

func newInspectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <module> <member>",
		Short: "Show the full detail of one member: kind, signature, doc, source span",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			reg, m, err := app.loadModule(args[0])
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			detail, err := inspect.Describe(m, args[1], reg.VM())
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			return app.finish(domain.OK(detail))
		},
	}
}

func newSourceCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "source <module> [member]",
		Short: "Print the source text of a member, or the whole module",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			member := ""
			if len(args) == 2 {
				member = args[1]
			}
			reg, m, err := app.loadModule(args[0])
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			src, err := inspect.SourceOf(m, member)
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			return app.finish(domain.OK(map[string]string{
				"module": m.Ref,
				"member": member,
				"source": src,
			}))
		},
	}
}

func newDocCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doc <module> [member]",
		Short: "Show the documentation comment for a member or the module itself",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			member := ""
			if len(args) == 2 {
				member = args[1]
			}
			reg, m, err := app.loadModule(args[0])
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			doc, err := inspect.DocOf(m, member)
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			if doc == "" {
				doc = "no documentation"
			}
			return app.finish(domain.OK(map[string]string{
				"module": m.Ref,
				"member": member,
				"doc":    doc,
			}))
		},
	}
}

func newSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <module> <keyword>",
		Short: "Search a module's members by name and documentation text",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			reg, m, err := app.loadModule(args[0])
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			hits := inspect.Search(m, args[1])
			return app.finish(domain.OK(map[string]any{
				"module":  m.Ref,
				"keyword": args[1],
				"hits":    hits,
			}))
		},
	}
}
