package jsmod

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dop251/goja"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/sandbox"
)

// stackFrameRe pulls "file:line:col" out of a goja stack trace line.
// Named frames look like "\tat add (lib/math.js:3:12(4))"; top-level
// frames omit the parenthesized form: "\tat probe.js:2:1(5)".
var stackFrameRe = regexp.MustCompile(`(?:\(|\bat )([^()\s]+):(\d+):(\d+)`)

// classify folds a goja runtime failure into the domain error taxonomy.
func (r *Registry) classify(op, path string, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &domain.OpError{Op: op, Kind: domain.KindTimeout, Path: path, Err: sandbox.ErrTimeout}
	}

	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		msg := dedupeSyntaxPrefix(syntax.Error())
		return &domain.OpError{
			Op:       op,
			Kind:     domain.KindParse,
			Path:     path,
			Location: compileErrorLocation(path, msg),
			Err:      errors.New(firstLine(msg)),
		}
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		msg := dedupeSyntaxPrefix(exceptionMessage(ex))
		// Syntax errors can surface wrapped in a thrown SyntaxError value
		// instead of a CompilerSyntaxError; those are still parse failures.
		if strings.HasPrefix(msg, "SyntaxError") {
			loc := exceptionLocation(ex)
			if loc == "" {
				loc = compileErrorLocation(path, msg)
			}
			return &domain.OpError{
				Op:       op,
				Kind:     domain.KindParse,
				Path:     path,
				Location: loc,
				Err:      errors.New(firstLine(msg)),
			}
		}
		return &domain.OpError{
			Op:       op,
			Kind:     domain.KindExecution,
			Path:     path,
			Location: exceptionLocation(ex),
			Err:      errors.New(msg),
		}
	}

	// A bounded-output overflow surfaces as a wrapped Go error.
	if errors.Is(err, sandbox.ErrOutputLimit) {
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: sandbox.ErrOutputLimit}
	}

	return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
}

// compileLineRe matches the "Line 3:7" fragment goja's parser puts in
// syntax error messages.
var compileLineRe = regexp.MustCompile(`Line (\d+):(\d+)`)

func compileErrorLocation(path, msg string) string {
	if m := stackFrameRe.FindStringSubmatch(msg); len(m) == 4 {
		return m[1] + ":" + m[2] + ":" + m[3]
	}
	if m := compileLineRe.FindStringSubmatch(msg); len(m) == 3 {
		return path + ":" + m[1] + ":" + m[2]
	}
	return ""
}

// dedupeSyntaxPrefix collapses the doubled "SyntaxError: SyntaxError:"
// produced when a compiler message is re-wrapped as a thrown value.
func dedupeSyntaxPrefix(msg string) string {
	for strings.HasPrefix(msg, "SyntaxError: SyntaxError:") {
		msg = strings.TrimPrefix(msg, "SyntaxError: ")
	}
	return msg
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func exceptionMessage(ex *goja.Exception) string {
	if v := ex.Value(); v != nil {
		return v.String()
	}
	return ex.Error()
}

func exceptionLocation(ex *goja.Exception) string {
	m := stackFrameRe.FindStringSubmatch(ex.String())
	if len(m) != 4 {
		return ""
	}
	return m[1] + ":" + m[2] + ":" + m[3]
}
