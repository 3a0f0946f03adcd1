package inspect

import "strings"

// DocComment extracts the comment block immediately preceding the given
// byte offset: either a contiguous run of // lines or a /* ... */ block
// ending on the line above the declaration. goja's parser drops comments,
// so this works from the raw source.
func DocComment(src string, offset int) string {
	if offset < 0 || offset > len(src) {
		return ""
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lines := strings.Split(src[:lineStart], "\n")
	// Drop the trailing empty element produced by the final newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	i := len(lines) - 1
	last := strings.TrimSpace(lines[i])

	if strings.HasSuffix(last, "*/") {
		var block []string
		for ; i >= 0; i-- {
			t := strings.TrimSpace(lines[i])
			block = append([]string{t}, block...)
			if strings.HasPrefix(t, "/*") {
				return cleanBlock(block)
			}
		}
		return ""
	}

	var run []string
	for ; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(t, "//") {
			break
		}
		run = append([]string{strings.TrimSpace(strings.TrimPrefix(t, "//"))}, run...)
	}
	return strings.Join(run, "\n")
}

func cleanBlock(block []string) string {
	var out []string
	for _, line := range block {
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FirstLine returns the first line of a doc comment, for compact listings.
func FirstLine(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}
