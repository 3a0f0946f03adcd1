package cli

import (
	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/depgraph"
	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/inspect"
	"github.com/jaymd96/eyeball/internal/jsmod"
	"github.com/jaymd96/eyeball/internal/logger"
	"github.com/jaymd96/eyeball/internal/modcache"
)

func newLsCommand(app *App) *cobra.Command {
	var static bool

	cmd := &cobra.Command{
		Use:   "ls <module>",
		Short: "List the members a module exposes",
		Long: "List the members a module exposes. By default the module is " +
			"evaluated so runtime-only exports appear; --static parses " +
			"without evaluating and serves from the discovery cache when fresh.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ref := args[0]

			if static {
				if info, ok := app.cachedListing(ref); ok {
					return app.finish(domain.OK(info))
				}
				// Cold cache: parse only, never evaluate.
				m, err := jsmod.ParseModule(app.Config.PackageDir, ref)
				if err != nil {
					return app.fail(err, "")
				}
				info := inspect.List(m, true)
				app.refreshCache(m, info)
				return app.finish(domain.OK(info))
			}

			reg := app.registry()
			m, err := reg.Load(ref)
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			info := inspect.List(m, false)
			app.refreshCache(m, info)
			return app.finish(domain.OK(info))
		},
	}

	cmd.Flags().BoolVar(&static, "static", false, "parse only, do not evaluate the module")
	return cmd
}

// cachedListing serves a static listing from the discovery cache when an
// entry exists and is still fresh for the resolved file.
func (a *App) cachedListing(ref string) (inspect.ModuleInfo, bool) {
	path, err := jsmod.Resolve(a.Config.PackageDir, a.Config.PackageDir, ref)
	if err != nil {
		return inspect.ModuleInfo{}, false
	}
	entry, ok := a.Cache.Get(path)
	if !ok {
		return inspect.ModuleInfo{}, false
	}
	info := inspect.ModuleInfo{Ref: ref, Path: path}
	for _, e := range entry.Exports {
		info.Members = append(info.Members, inspect.Member{
			Name:      e.Name,
			Kind:      e.Kind,
			Signature: e.Signature,
			Doc:       e.Doc,
			Line:      e.Line,
		})
	}
	return info, true
}

// refreshCache stores the listing for later --static lookups. Cache
// failures are logged, never surfaced: the listing already succeeded.
func (a *App) refreshCache(m *jsmod.Module, info inspect.ModuleInfo) {
	entry := &modcache.Entry{Path: m.Path}
	for _, member := range info.Members {
		entry.Exports = append(entry.Exports, modcache.ExportInfo{
			Name:      member.Name,
			Kind:      member.Kind,
			Signature: member.Signature,
			Doc:       member.Doc,
			Line:      member.Line,
		})
	}
	if imps, err := depgraph.Imports(a.Config.PackageDir, m.Ref); err == nil {
		for _, imp := range imps {
			entry.Requires = append(entry.Requires, imp.Ref)
		}
	}
	if err := a.Cache.Put(entry); err != nil {
		logger.L().Warn("cache refresh failed", "path", m.Path, "err", err)
	}
}
