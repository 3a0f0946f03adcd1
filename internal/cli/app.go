package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/jsmod"
	"github.com/jaymd96/eyeball/internal/modcache"
)

// App carries the state shared across commands: resolved configuration,
// output streams, and the global flag values.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	Config domain.Config
	Cache  *modcache.Store

	Pretty     bool
	Debug      bool
	ConfigPath string
	WallMS     int

	emitted bool
}

// emit writes the single result object for this invocation.
func (a *App) emit(res domain.Result) {
	a.emitted = true
	enc := json.NewEncoder(a.Stdout)
	if a.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fmt.Fprintln(a.Stderr, "eyeball: encoding result:", err)
	}
}

// finish emits res and maps its status onto the process exit
// convention: ok -> nil, fail -> ErrCheckFailed, error -> the carried
// error so the top level exits 2.
func (a *App) finish(res domain.Result) error {
	a.emit(res)
	switch res.Status {
	case domain.StatusOK:
		return nil
	case domain.StatusFail:
		return domain.ErrCheckFailed
	default:
		return domain.ErrExecution
	}
}

// fail is the shorthand for an invocation that could not be carried out.
func (a *App) fail(err error, stdout string) error {
	a.emit(domain.Errored(err, stdout))
	return err
}

// registry builds a fresh registry rooted at the configured package dir.
func (a *App) registry(opts ...jsmod.Option) *jsmod.Registry {
	if a.WallMS > 0 {
		opts = append(opts, jsmod.WithWallMS(a.WallMS))
	}
	return jsmod.New(a.Config.PackageDir, opts...)
}
