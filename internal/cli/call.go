package cli

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/dop251/goja"
	"github.com/spf13/cobra"

	"github.com/jaymd96/eyeball/internal/domain"
)

var errNoCode = errors.New("no code given: pass a snippet argument or --file")

func newCallCommand(app *App) *cobra.Command {
	var asCtor bool

	cmd := &cobra.Command{
		Use:   "call <module> <member> [arg...]",
		Short: "Call an exported function with the given arguments",
		Long: "Call an exported function with the given arguments. Each " +
			"argument is parsed as a JSON literal; anything that does not " +
			"parse is passed as a string. --new constructs via the export " +
			"instead of calling it.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			reg, m, err := app.loadModule(args[0])
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			callArgs := jsArgs(reg.VM(), args[2:])
			v, err := reg.Call(m, args[1], callArgs, app.WallMS, asCtor)
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			res := domain.OK(map[string]any{
				"module": m.Ref,
				"member": args[1],
				"value":  exportValue(v),
			})
			res.Stdout = reg.Stdout()
			return app.finish(res)
		},
	}

	cmd.Flags().BoolVar(&asCtor, "new", false, "construct an instance instead of calling")
	return cmd
}

func newExecCommand(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "exec [code]",
		Short: "Run a code snippet with require and console available",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reg := app.registry()
			if err := reg.BindGlobals(""); err != nil {
				return app.fail(err, "")
			}

			name, src := "exec", ""
			switch {
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return app.fail(&domain.OpError{
						Op: "cli.exec", Kind: domain.KindNotFound, Path: file, Err: err,
					}, "")
				}
				name, src = file, string(b)
			case len(args) == 1:
				src = args[0]
			default:
				return app.fail(&domain.OpError{
					Op: "cli.exec", Kind: domain.KindInvalidConfig,
					Err: errNoCode,
				}, "")
			}

			v, err := reg.RunCode(name, src, app.WallMS)
			if err != nil {
				return app.fail(err, reg.Stdout())
			}
			res := domain.OK(map[string]any{"value": exportValue(v)})
			res.Stdout = reg.Stdout()
			return app.finish(res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read the snippet from a file")
	return cmd
}

// jsArgs converts command-line strings into runtime values. JSON
// literals become their parsed value; everything else stays a string.
func jsArgs(vm *goja.Runtime, raw []string) []goja.Value {
	out := make([]goja.Value, 0, len(raw))
	for _, s := range raw {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			out = append(out, vm.ToValue(s))
			continue
		}
		out = append(out, vm.ToValue(parsed))
	}
	return out
}

// exportValue turns a completion value into something the result
// encoder can carry. Values that do not serialize (functions, host
// objects) fall back to their string form.
func exportValue(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	if _, ok := goja.AssertFunction(v); ok {
		return v.String()
	}
	exported := v.Export()
	if _, err := json.Marshal(exported); err != nil {
		return v.String()
	}
	return exported
}
