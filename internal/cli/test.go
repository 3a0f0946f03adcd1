package cli

import (
	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/report"
	"github.com/jaymd96/eyeball/internal/runner"
)

func newTestCommand(app *App) *cobra.Command {
	var (
		run        string
		file       string
		coverage   bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the project's *.test.js files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			sum, err := runner.Run(app.Config, runner.Options{
				Run:      run,
				File:     file,
				Coverage: coverage,
				WallMS:   app.WallMS,
			})
			if err != nil {
				return app.fail(err, "")
			}

			checks := make([]domain.Check, 0, len(sum.Tests))
			for _, t := range sum.Tests {
				checks = append(checks, domain.Check{
					Name:    t.Name,
					Passed:  t.Passed,
					Message: t.Message,
				})
			}
			res := domain.FromChecks(checks, "", sum)
			if reportPath != "" {
				rep := report.Report{Title: "Test run", Result: res, Summary: &sum}
				if werr := report.Write(reportPath, rep); werr != nil {
					return app.fail(werr, "")
				}
			}
			return app.finish(res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&run, "run", "", "only run tests whose name contains this substring")
	f.StringVar(&file, "file", "", "only run test files whose base name matches this glob")
	f.BoolVar(&coverage, "coverage", false, "record which exports the tests invoked")
	f.StringVar(&reportPath, "report", "", "also render the summary to a .md or .pdf file")
	return cmd
}
