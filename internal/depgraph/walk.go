package depgraph

import (
	"reflect"

	"github.com/dop251/goja/ast"
)

var astPkg = reflect.TypeOf(ast.Program{}).PkgPath()

// walk visits every node of the tree rooted at n, depth-first. The goja
// ast package ships no traversal helper, so this descends through the
// node structs by reflection: every field, slice element, or interface
// value that is an ast type is recursed into, and everything satisfying
// ast.Node is reported to fn.
func walk(n ast.Node, fn func(ast.Node)) {
	if n == nil {
		return
	}
	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		fn(n)
		walkStruct(v.Elem(), fn)
		return
	}
	fn(n)
	if v.Kind() == reflect.Struct {
		walkStruct(v, fn)
	}
}

func walkStruct(v reflect.Value, fn func(ast.Node)) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		// DeclarationList aliases bindings already present in Body;
		// following it would visit every var declaration twice.
		if v.Type().Field(i).Name == "DeclarationList" {
			continue
		}
		f := v.Field(i)
		if !f.CanInterface() {
			continue
		}
		walkValue(f, fn)
	}
}

func walkValue(v reflect.Value, fn func(ast.Node)) {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		if n, ok := v.Interface().(ast.Node); ok {
			walk(n, fn)
			return
		}
		walkValue(v.Elem(), fn)
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		if n, ok := v.Interface().(ast.Node); ok {
			walk(n, fn)
			return
		}
		// Non-node pointers inside the ast package (bindings, property
		// helpers) still hold child nodes; foreign ones (the source file
		// handle) do not.
		if e := v.Elem(); e.Kind() == reflect.Struct && e.Type().PkgPath() == astPkg {
			walkStruct(e, fn)
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			walkValue(v.Index(i), fn)
		}
	case reflect.Struct:
		if v.Type().PkgPath() != astPkg {
			return
		}
		if v.CanAddr() {
			if n, ok := v.Addr().Interface().(ast.Node); ok {
				fn(n)
			}
		}
		walkStruct(v, fn)
	}
}
