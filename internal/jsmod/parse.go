package jsmod

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/jaymd96/eyeball/internal/domain"
)

// Parse runs the goja parser over one source file. Each file gets its own
// file set, so node indexes are plain 1-based offsets into src.
func Parse(path, src string) (*ast.Program, error) {
	fset := &file.FileSet{}
	prog, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		oe := &domain.OpError{Op: "jsmod.parse", Kind: domain.KindParse, Path: path, Err: err}
		if list, ok := err.(parser.ErrorList); ok && len(list) > 0 {
			p := list[0].Position
			oe.Location = fmt.Sprintf("%s:%d:%d", path, p.Line, p.Column)
		}
		return nil, oe
	}
	return prog, nil
}

// OffsetOf converts a node's start index to a byte offset into the source.
func OffsetOf(n ast.Node) int {
	return int(n.Idx0()) - 1
}

// EndOf converts a node's end index to a byte offset into the source.
func EndOf(n ast.Node) int {
	return int(n.Idx1()) - 1
}

// SliceSource returns the exact source text backing a node.
func SliceSource(src string, n ast.Node) string {
	start, end := OffsetOf(n), EndOf(n)
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return src[start:end]
}

// LineCol converts a byte offset into 1-based line and column numbers.
func LineCol(src string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(src) {
		offset = len(src)
	}
	for _, ch := range src[:offset] {
		if ch == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// PositionString renders "path:line:col" for a node's start.
func PositionString(path, src string, n ast.Node) string {
	line, col := LineCol(src, OffsetOf(n))
	return fmt.Sprintf("%s:%d:%d", path, line, col)
}
