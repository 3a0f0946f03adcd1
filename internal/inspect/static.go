package inspect

import (
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/jaymd96/eyeball/internal/jsmod"
)

// Decl is a top-level declaration found in a module's parse tree.
type Decl struct {
	Name string
	Kind string
	Node ast.Node
	Fn   *ast.FunctionLiteral // set for function declarations and function-valued bindings
}

// Declarations indexes the top-level declarations of a program by name.
func Declarations(prog *ast.Program) map[string]Decl {
	decls := make(map[string]Decl)
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			if s.Function != nil && s.Function.Name != nil {
				decls[string(s.Function.Name.Name)] = Decl{
					Name: string(s.Function.Name.Name),
					Kind: jsmod.KindFunction,
					Node: s.Function,
					Fn:   s.Function,
				}
			}
		case *ast.ClassDeclaration:
			if s.Class != nil && s.Class.Name != nil {
				decls[string(s.Class.Name.Name)] = Decl{
					Name: string(s.Class.Name.Name),
					Kind: jsmod.KindClass,
					Node: s.Class,
				}
			}
		case *ast.VariableStatement:
			collectBindings(s.List, decls)
		case *ast.LexicalDeclaration:
			collectBindings(s.List, decls)
		}
	}
	return decls
}

func collectBindings(list []*ast.Binding, decls map[string]Decl) {
	for _, b := range list {
		id, ok := b.Target.(*ast.Identifier)
		if !ok || b.Initializer == nil {
			continue
		}
		d := Decl{Name: string(id.Name), Kind: kindOfExpr(b.Initializer, nil), Node: b.Initializer}
		if fn, ok := b.Initializer.(*ast.FunctionLiteral); ok {
			d.Fn = fn
		}
		decls[d.Name] = d
	}
}

// StaticExport is one export discovered without evaluating the module.
type StaticExport struct {
	Name     string
	Kind     string
	Node     ast.Node // the exported value expression
	DeclName string   // top-level declaration backing the export, when known
}

// StaticExports walks the top-level statements for the CommonJS export
// idioms: module.exports = {...}, module.exports.x = v, exports.x = v,
// and module.exports = <expr> (reported under the name "default").
func StaticExports(prog *ast.Program) []StaticExport {
	decls := Declarations(prog)
	var out []StaticExport
	for _, stmt := range prog.Body {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			continue
		}
		assign, ok := es.Expression.(*ast.AssignExpression)
		if !ok {
			continue
		}

		switch left := assign.Left.(type) {
		case *ast.DotExpression:
			switch {
			case isModuleExports(left):
				// module.exports = <expr>
				if obj, ok := assign.Right.(*ast.ObjectLiteral); ok {
					out = append(out, objectExports(obj, decls)...)
				} else {
					out = append(out, exportOf("default", assign.Right, decls))
				}
			case isExportsMember(left):
				// exports.x = v  /  module.exports.x = v
				out = append(out, exportOf(string(left.Identifier.Name), assign.Right, decls))
			}
		}
	}
	return out
}

func objectExports(obj *ast.ObjectLiteral, decls map[string]Decl) []StaticExport {
	var out []StaticExport
	for _, prop := range obj.Value {
		switch p := prop.(type) {
		case *ast.PropertyKeyed:
			name := propertyName(p.Key)
			if name == "" {
				continue
			}
			out = append(out, exportOf(name, p.Value, decls))
		case *ast.PropertyShort:
			name := string(p.Name.Name)
			se := StaticExport{Name: name, Node: &p.Name, DeclName: name}
			if d, ok := decls[name]; ok {
				se.Kind = d.Kind
				se.Node = d.Node
			} else {
				se.Kind = jsmod.KindObject
			}
			out = append(out, se)
		}
	}
	return out
}

func exportOf(name string, expr ast.Expression, decls map[string]Decl) StaticExport {
	se := StaticExport{Name: name, Kind: kindOfExpr(expr, decls), Node: expr}
	if id, ok := expr.(*ast.Identifier); ok {
		se.DeclName = string(id.Name)
		if d, found := decls[se.DeclName]; found {
			se.Node = d.Node
		}
	}
	return se
}

func propertyName(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.StringLiteral:
		return string(k.Value)
	case *ast.Identifier:
		return string(k.Name)
	}
	return ""
}

func kindOfExpr(expr ast.Expression, decls map[string]Decl) string {
	switch e := expr.(type) {
	case *ast.FunctionLiteral, *ast.ArrowFunctionLiteral:
		return jsmod.KindFunction
	case *ast.ClassLiteral:
		return jsmod.KindClass
	case *ast.ObjectLiteral:
		return jsmod.KindObject
	case *ast.ArrayLiteral:
		return jsmod.KindArray
	case *ast.StringLiteral, *ast.TemplateLiteral:
		return jsmod.KindString
	case *ast.NumberLiteral:
		return jsmod.KindNumber
	case *ast.BooleanLiteral:
		return jsmod.KindBoolean
	case *ast.NullLiteral:
		return jsmod.KindNull
	case *ast.Identifier:
		if decls != nil {
			if d, ok := decls[string(e.Name)]; ok {
				return d.Kind
			}
		}
		return jsmod.KindObject
	default:
		return jsmod.KindObject
	}
}

// Signature renders a readable call signature from a function literal.
func Signature(name string, fn *ast.FunctionLiteral) string {
	if fn == nil {
		return name + "(...)"
	}
	var params []string
	if fn.ParameterList != nil {
		for _, b := range fn.ParameterList.List {
			if id, ok := b.Target.(*ast.Identifier); ok {
				params = append(params, string(id.Name))
				continue
			}
			params = append(params, "_")
		}
		if rest, ok := fn.ParameterList.Rest.(*ast.Identifier); ok && rest != nil {
			params = append(params, "..."+string(rest.Name))
		}
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}
