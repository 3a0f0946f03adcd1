// Package depgraph answers dependency questions statically, from parse
// trees alone: forward require graphs, per-module import lists, and
// reverse caller lookups. Nothing here evaluates code.
package depgraph

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dop251/goja/ast"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/jsmod"
)

// Import is one require() site in a module.
type Import struct {
	Ref      string `json:"ref"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line"`
	Resolved bool   `json:"resolved"`
}

// GraphNode is one module in a forward dependency graph.
type GraphNode struct {
	Ref      string   `json:"ref"`
	Path     string   `json:"path"`
	Depth    int      `json:"depth"`
	Requires []string `json:"requires,omitempty"`
}

// Cycle records one back edge found during traversal.
type Cycle struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the forward-dependency payload for one root module.
type Graph struct {
	Root   string      `json:"root"`
	Nodes  []GraphNode `json:"nodes"`
	Cycles []Cycle     `json:"cycles,omitempty"`
}

// parsed is a statically loaded module: source and tree, never evaluated.
type parsed struct {
	path string
	src  string
	prog *ast.Program
}

func loadStatic(root, baseDir, ref string) (*parsed, error) {
	path, err := jsmod.Resolve(root, baseDir, ref)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{Op: "depgraph.load", Kind: domain.KindNotFound, Path: path, Err: err}
	}
	prog, err := jsmod.Parse(path, string(src))
	if err != nil {
		return nil, err
	}
	return &parsed{path: path, src: string(src), prog: prog}, nil
}

// requireSites finds every require('<literal>') call in a program.
func requireSites(p *parsed) []*ast.CallExpression {
	var sites []*ast.CallExpression
	walk(p.prog, func(n ast.Node) {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return
		}
		callee, ok := call.Callee.(*ast.Identifier)
		if !ok || string(callee.Name) != "require" || len(call.ArgumentList) != 1 {
			return
		}
		if _, ok := call.ArgumentList[0].(*ast.StringLiteral); ok {
			sites = append(sites, call)
		}
	})
	return sites
}

// Imports lists the direct require() sites of one module.
func Imports(root, ref string) ([]Import, error) {
	p, err := loadStatic(root, root, ref)
	if err != nil {
		return nil, err
	}
	return imports(root, p), nil
}

func imports(root string, p *parsed) []Import {
	baseDir := filepath.Dir(p.path)
	var out []Import
	for _, call := range requireSites(p) {
		lit := call.ArgumentList[0].(*ast.StringLiteral)
		line, _ := jsmod.LineCol(p.src, jsmod.OffsetOf(call))
		imp := Import{Ref: string(lit.Value), Line: line}
		if path, err := jsmod.Resolve(root, baseDir, imp.Ref); err == nil {
			imp.Path = path
			imp.Resolved = true
		}
		out = append(out, imp)
	}
	return out
}

// Forward computes the transitive dependency graph of ref with DFS,
// annotating every module with its first-visit depth and recording back
// edges as cycles.
func Forward(root, ref string) (Graph, error) {
	start, err := loadStatic(root, root, ref)
	if err != nil {
		return Graph{}, err
	}

	g := Graph{Root: start.path}
	visited := map[string]int{} // path -> first-visit depth
	onStack := map[string]bool{}
	nodes := map[string]*GraphNode{}

	var visit func(p *parsed, ref string, depth int)
	visit = func(p *parsed, ref string, depth int) {
		visited[p.path] = depth
		onStack[p.path] = true
		node := &GraphNode{Ref: ref, Path: p.path, Depth: depth}
		nodes[p.path] = node

		for _, imp := range imports(root, p) {
			if !imp.Resolved {
				continue
			}
			node.Requires = append(node.Requires, imp.Path)
			if onStack[imp.Path] {
				g.Cycles = append(g.Cycles, Cycle{From: p.path, To: imp.Path})
				continue
			}
			if _, seen := visited[imp.Path]; seen {
				continue
			}
			dep, err := loadStatic(root, filepath.Dir(p.path), imp.Ref)
			if err != nil {
				continue
			}
			visit(dep, imp.Ref, depth+1)
		}
		onStack[p.path] = false
	}
	visit(start, ref, 0)

	for _, n := range nodes {
		g.Nodes = append(g.Nodes, *n)
	}
	sort.Slice(g.Nodes, func(i, j int) bool {
		if g.Nodes[i].Depth != g.Nodes[j].Depth {
			return g.Nodes[i].Depth < g.Nodes[j].Depth
		}
		return g.Nodes[i].Path < g.Nodes[j].Path
	})
	return g, nil
}
