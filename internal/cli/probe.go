package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/probe"
	"github.com/jaymd96/eyeball/internal/report"
)

func newProbeCommand(app *App) *cobra.Command {
	var (
		setup      string
		file       string
		fixtures   []string
		patches    []string
		pathChecks []string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "probe [body]",
		Short: "Run a verification snippet with fixtures, patches, and checks",
		Long: "Run a verification snippet. The body sees check(name, cond) " +
			"and check_eq(name, got, want); named fixtures from the " +
			"configured fixtures module are bound as globals; --patch " +
			"temporarily replaces a module export for the duration of the " +
			"probe and is restored afterward, even when the body throws.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			spec := probe.Spec{
				Setup:    setup,
				Fixtures: fixtures,
				WallMS:   app.WallMS,
			}
			switch {
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return app.fail(&domain.OpError{
						Op: "cli.probe", Kind: domain.KindNotFound, Path: file, Err: err,
					}, "")
				}
				spec.Body = string(b)
			case len(args) == 1:
				spec.Body = args[0]
			}

			for _, raw := range patches {
				p, err := parsePatch(raw)
				if err != nil {
					return app.fail(err, "")
				}
				spec.Patches = append(spec.Patches, p)
			}
			for _, raw := range pathChecks {
				pc, err := parsePathCheck(raw)
				if err != nil {
					return app.fail(err, "")
				}
				spec.PathChecks = append(spec.PathChecks, pc)
			}

			reg := app.registry()
			out, err := probe.Run(reg, app.Config, spec)
			if err != nil {
				return app.fail(err, out.Stdout)
			}

			res := domain.FromChecks(out.Checks, out.Stdout, map[string]any{"value": out.Value})
			if reportPath != "" {
				if werr := report.Write(reportPath, report.Report{Title: "Probe", Result: res}); werr != nil {
					return app.fail(werr, out.Stdout)
				}
			}
			return app.finish(res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&setup, "setup", "", "code to run before the body")
	f.StringVar(&file, "file", "", "read the probe body from a file")
	f.StringArrayVar(&fixtures, "fixture", nil, "fixture name to bind (repeatable)")
	f.StringArrayVar(&patches, "patch", nil, "module.member=expr replacement for the probe's duration (repeatable)")
	f.StringArrayVar(&pathChecks, "expect-path", nil, "jsonpath=want assertion over the completion value (repeatable)")
	f.StringVar(&reportPath, "report", "", "also render the outcome to a .md or .pdf file")
	return cmd
}

// parsePatch splits "module.member=expr". The member is everything
// between the last '.' before '=' and the '=': module refs may contain
// dots of their own ("./lib/geo.js.area=..." patches area).
func parsePatch(raw string) (probe.Patch, error) {
	eq := strings.Index(raw, "=")
	if eq <= 0 || eq == len(raw)-1 {
		return probe.Patch{}, patchSyntaxError(raw)
	}
	target, expr := raw[:eq], raw[eq+1:]
	dot := strings.LastIndex(target, ".")
	if dot <= 0 || dot == len(target)-1 {
		return probe.Patch{}, patchSyntaxError(raw)
	}
	return probe.Patch{Module: target[:dot], Name: target[dot+1:], Expr: expr}, nil
}

func patchSyntaxError(raw string) error {
	return &domain.OpError{
		Op:   "cli.probe",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("invalid patch %q: want module.member=expr", raw),
	}
}

// parsePathCheck splits "jsonpath=want".
func parsePathCheck(raw string) (probe.PathCheck, error) {
	eq := strings.Index(raw, "=")
	if eq <= 0 || eq == len(raw)-1 {
		return probe.PathCheck{}, &domain.OpError{
			Op:   "cli.probe",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("invalid path check %q: want jsonpath=value", raw),
		}
	}
	return probe.PathCheck{Expr: raw[:eq], Want: raw[eq+1:]}, nil
}
