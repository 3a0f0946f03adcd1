package depgraph

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/jaymd96/eyeball/internal/jsmod"
)

// CallSite is one location where a module member is invoked.
type CallSite struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Context string `json:"context,omitempty"`
}

// Callers scans every .js file under root for call sites of
// <targetRef>.<member>, through either `const x = require(target)` with
// `x.member(...)`, or destructuring `const {member} = require(target)`
// with bare `member(...)` calls. The target module's own file is skipped.
func Callers(root, targetRef, member string) ([]CallSite, error) {
	targetPath, err := jsmod.Resolve(root, root, targetRef)
	if err != nil {
		return nil, err
	}

	var sites []CallSite
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".js") || path == targetPath {
			return nil
		}
		p, lerr := loadStatic(root, root, path)
		if lerr != nil {
			// Unparsable neighbors don't abort the scan.
			return nil
		}
		sites = append(sites, fileCallers(root, p, targetPath, member)...)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return sites, nil
}

// fileCallers finds call sites of member within a single parsed file.
func fileCallers(root string, p *parsed, targetPath, member string) []CallSite {
	aliases, bare := targetBindings(root, p, targetPath, member)
	if len(aliases) == 0 && !bare {
		return nil
	}

	var sites []CallSite
	walk(p.prog, func(n ast.Node) {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return
		}
		switch callee := call.Callee.(type) {
		case *ast.DotExpression:
			if string(callee.Identifier.Name) != member {
				return
			}
			id, ok := callee.Left.(*ast.Identifier)
			if !ok || !aliases[string(id.Name)] {
				return
			}
		case *ast.Identifier:
			if !bare || string(callee.Name) != member {
				return
			}
		default:
			return
		}
		sites = append(sites, siteAt(p, call))
	})
	return sites
}

// targetBindings collects the local names bound to the target module:
// aliases holds `const x = require(target)` names; bare reports whether
// member itself was destructured out of the target.
func targetBindings(root string, p *parsed, targetPath, member string) (aliases map[string]bool, bare bool) {
	aliases = map[string]bool{}
	baseDir := filepath.Dir(p.path)

	walk(p.prog, func(n ast.Node) {
		var bindings []*ast.Binding
		switch s := n.(type) {
		case *ast.VariableStatement:
			bindings = s.List
		case *ast.LexicalDeclaration:
			bindings = s.List
		default:
			return
		}
		for _, b := range bindings {
			ref, ok := requiredRef(b.Initializer)
			if !ok {
				continue
			}
			path, err := jsmod.Resolve(root, baseDir, ref)
			if err != nil || path != targetPath {
				continue
			}
			switch target := b.Target.(type) {
			case *ast.Identifier:
				aliases[string(target.Name)] = true
			case *ast.ObjectPattern:
				for _, prop := range target.Properties {
					if short, ok := prop.(*ast.PropertyShort); ok && string(short.Name.Name) == member {
						bare = true
					}
				}
			}
		}
	})
	return aliases, bare
}

func requiredRef(expr ast.Expression) (string, bool) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return "", false
	}
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || string(callee.Name) != "require" || len(call.ArgumentList) != 1 {
		return "", false
	}
	lit, ok := call.ArgumentList[0].(*ast.StringLiteral)
	if !ok {
		return "", false
	}
	return string(lit.Value), true
}

func siteAt(p *parsed, n ast.Node) CallSite {
	off := jsmod.OffsetOf(n)
	line, col := jsmod.LineCol(p.src, off)
	return CallSite{File: p.path, Line: line, Col: col, Context: lineText(p.src, line)}
}

func lineText(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
