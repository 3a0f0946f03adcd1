package inspect

import "github.com/dop251/goja/ast"

// isModuleExports matches the expression `module.exports`.
func isModuleExports(d *ast.DotExpression) bool {
	id, ok := d.Left.(*ast.Identifier)
	return ok && string(id.Name) == "module" && string(d.Identifier.Name) == "exports"
}

// isExportsMember matches `exports.<x>` and `module.exports.<x>`.
func isExportsMember(d *ast.DotExpression) bool {
	if id, ok := d.Left.(*ast.Identifier); ok && string(id.Name) == "exports" {
		return true
	}
	if inner, ok := d.Left.(*ast.DotExpression); ok {
		return isModuleExports(inner)
	}
	return false
}
