// Package inspect provides the read-only views over a loaded module:
// discovery, member detail, source display, documentation lookup, and
// keyword search.
package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"

	"github.com/jaymd96/eyeball/internal/domain"
	"github.com/jaymd96/eyeball/internal/jsmod"
)

// Member is one entry in a module's discovery listing.
type Member struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature,omitempty"`
	Doc       string `json:"doc,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// ModuleInfo is the discovery payload for one module.
type ModuleInfo struct {
	Ref     string   `json:"ref"`
	Path    string   `json:"path"`
	Members []Member `json:"members"`
}

// Detail is the full inspection payload for one member.
type Detail struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Signature  string   `json:"signature,omitempty"`
	Arity      int      `json:"arity,omitempty"`
	Doc        string   `json:"doc,omitempty"`
	Line       int      `json:"line,omitempty"`
	EndLine    int      `json:"end_line,omitempty"`
	Source     string   `json:"source,omitempty"`
	Attributes []Member `json:"attributes,omitempty"`
}

// SearchHit is one search result.
type SearchHit struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Doc  string `json:"doc,omitempty"`
	Line int    `json:"line,omitempty"`
}

// statics indexes a module's compile-time export info by name.
func statics(m *jsmod.Module) map[string]StaticExport {
	idx := make(map[string]StaticExport)
	for _, se := range StaticExports(m.Program) {
		idx[se.Name] = se
	}
	return idx
}

// List enumerates a module's members. With staticOnly the parse tree is
// the sole source; otherwise the evaluated exports object is authoritative
// and static info only enriches it.
func List(m *jsmod.Module, staticOnly bool) ModuleInfo {
	info := ModuleInfo{Ref: m.Ref, Path: m.Path}
	idx := statics(m)
	decls := Declarations(m.Program)

	if staticOnly {
		for name, se := range idx {
			info.Members = append(info.Members, memberFrom(m, name, se.Kind, se, decls))
		}
	} else {
		for _, name := range m.ExportNames() {
			kind := jsmod.ClassifyValue(m.Get(name))
			info.Members = append(info.Members, memberFrom(m, name, kind, idx[name], decls))
		}
	}

	sort.Slice(info.Members, func(i, j int) bool { return info.Members[i].Name < info.Members[j].Name })
	return info
}

func memberFrom(m *jsmod.Module, name, kind string, se StaticExport, decls map[string]Decl) Member {
	mem := Member{Name: name, Kind: kind}
	if se.Node == nil {
		return mem
	}
	line, _ := jsmod.LineCol(m.Source, jsmod.OffsetOf(se.Node))
	mem.Line = line
	mem.Doc = FirstLine(DocComment(m.Source, jsmod.OffsetOf(se.Node)))
	if kind == jsmod.KindFunction {
		mem.Signature = Signature(name, functionLiteral(se, decls))
	}
	return mem
}

func functionLiteral(se StaticExport, decls map[string]Decl) *ast.FunctionLiteral {
	if fn, ok := se.Node.(*ast.FunctionLiteral); ok {
		return fn
	}
	if se.DeclName != "" {
		if d, ok := decls[se.DeclName]; ok && d.Fn != nil {
			return d.Fn
		}
	}
	return nil
}

// Describe builds the detailed inspection payload for one member.
func Describe(m *jsmod.Module, name string, vm *goja.Runtime) (Detail, error) {
	v := m.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return Detail{}, &domain.OpError{Op: "inspect.describe", Kind: domain.KindNotFound, Path: m.Path,
			Err: fmt.Errorf("no member %q in %s", name, m.Ref)}
	}

	d := Detail{Name: name, Kind: jsmod.ClassifyValue(v)}
	idx := statics(m)
	decls := Declarations(m.Program)

	if se, ok := idx[name]; ok && se.Node != nil {
		off := jsmod.OffsetOf(se.Node)
		d.Line, _ = jsmod.LineCol(m.Source, off)
		d.EndLine, _ = jsmod.LineCol(m.Source, jsmod.EndOf(se.Node))
		d.Doc = DocComment(m.Source, off)
		d.Source = jsmod.SliceSource(m.Source, se.Node)
		if d.Kind == jsmod.KindFunction {
			d.Signature = Signature(name, functionLiteral(se, decls))
		}
	}

	switch d.Kind {
	case jsmod.KindFunction, jsmod.KindClass:
		if obj := v.ToObject(vm); obj != nil {
			d.Arity = int(obj.Get("length").ToInteger())
			if d.Signature == "" {
				d.Signature = fmt.Sprintf("%s(/* %d args */)", name, d.Arity)
			}
		}
	case jsmod.KindObject:
		obj := v.ToObject(vm)
		keys := obj.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			d.Attributes = append(d.Attributes, Member{Name: k, Kind: jsmod.ClassifyValue(obj.Get(k))})
		}
	}
	return d, nil
}

// SourceOf returns the exact source text of a named member, or the whole
// module when name is empty. Only statically declared members have
// recoverable source.
func SourceOf(m *jsmod.Module, name string) (string, error) {
	if name == "" {
		return m.Source, nil
	}
	idx := statics(m)
	se, ok := idx[name]
	if !ok || se.Node == nil {
		return "", &domain.OpError{Op: "inspect.source", Kind: domain.KindNotFound, Path: m.Path,
			Err: fmt.Errorf("no source for member %q in %s", name, m.Ref)}
	}
	return jsmod.SliceSource(m.Source, se.Node), nil
}

// DocOf returns the documentation comment for a member, or the module's
// leading comment when name is empty.
func DocOf(m *jsmod.Module, name string) (string, error) {
	if name == "" {
		return moduleDoc(m.Source), nil
	}
	idx := statics(m)
	se, ok := idx[name]
	if !ok || se.Node == nil {
		return "", &domain.OpError{Op: "inspect.doc", Kind: domain.KindNotFound, Path: m.Path,
			Err: fmt.Errorf("no member %q in %s", name, m.Ref)}
	}
	return DocComment(m.Source, jsmod.OffsetOf(se.Node)), nil
}

// moduleDoc reads a comment block at the very top of the file.
func moduleDoc(src string) string {
	trimmed := strings.TrimLeft(src, " \t\n")
	if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
		return ""
	}
	// Reuse DocComment by pointing it just past the leading block.
	lines := strings.Split(src, "\n")
	offset := 0
	inBlock := false
	for _, line := range lines {
		t := strings.TrimSpace(line)
		switch {
		case inBlock:
			offset += len(line) + 1
			if strings.HasSuffix(t, "*/") {
				return DocComment(src, offset)
			}
		case strings.HasPrefix(t, "/*"):
			inBlock = true
			offset += len(line) + 1
			if strings.HasSuffix(t, "*/") && len(t) > 3 {
				return DocComment(src, offset)
			}
		case strings.HasPrefix(t, "//"):
			offset += len(line) + 1
		default:
			return DocComment(src, offset)
		}
	}
	return ""
}

// Search matches keyword case-insensitively against member names and doc
// text. Name matches rank ahead of doc-only matches.
func Search(m *jsmod.Module, keyword string) []SearchHit {
	kw := strings.ToLower(keyword)
	info := List(m, false)

	var nameHits, docHits []SearchHit
	for _, mem := range info.Members {
		doc, _ := DocOf(m, mem.Name)
		hit := SearchHit{Name: mem.Name, Kind: mem.Kind, Doc: FirstLine(doc), Line: mem.Line}
		switch {
		case strings.Contains(strings.ToLower(mem.Name), kw):
			nameHits = append(nameHits, hit)
		case strings.Contains(strings.ToLower(doc), kw):
			docHits = append(docHits, hit)
		}
	}
	return append(nameHits, docHits...)
}
