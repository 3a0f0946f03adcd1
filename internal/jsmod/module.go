package jsmod

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
)

var errEmptyRef = errors.New("empty module reference")

// Export kinds reported by discovery and inspection.
const (
	KindFunction  = "function"
	KindClass     = "class"
	KindObject    = "object"
	KindArray     = "array"
	KindString    = "string"
	KindNumber    = "number"
	KindBoolean   = "boolean"
	KindNull      = "null"
	KindUndefined = "undefined"
)

// Module is one loaded JavaScript module: its source, parse tree, and the
// evaluated exports object.
type Module struct {
	Ref     string
	Path    string
	Source  string
	Program *ast.Program

	exports *goja.Object
}

// Exports returns the evaluated exports object. During a require cycle
// this may be the partially populated object.
func (m *Module) Exports() *goja.Object {
	return m.exports
}

// ExportNames returns the enumerable export names in sorted order.
func (m *Module) ExportNames() []string {
	if m.exports == nil {
		return nil
	}
	names := m.exports.Keys()
	sort.Strings(names)
	return names
}

// Get returns the exported value for name, or nil when absent.
func (m *Module) Get(name string) goja.Value {
	if m.exports == nil {
		return nil
	}
	return m.exports.Get(name)
}

// ClassifyValue maps a runtime value to one of the export kind strings.
// Classes are functions whose source stringifies with the class keyword.
func ClassifyValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return KindUndefined
	}
	if goja.IsNull(v) {
		return KindNull
	}
	if _, ok := goja.AssertFunction(v); ok {
		if strings.HasPrefix(strings.TrimSpace(v.String()), "class") {
			return KindClass
		}
		return KindFunction
	}
	t := v.ExportType()
	if t == nil {
		return KindUndefined
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint32, reflect.Uint64, reflect.Float64:
		return KindNumber
	case reflect.Slice:
		return KindArray
	default:
		return KindObject
	}
}
