package subtitle

import "strings"

// ParseOptions is reserved for per-format parser knobs.
type ParseOptions struct{}

// interface for parsing subtitle documents
type Parser interface {
	Format() Format
	Parse(text string, opts ParseOptions) (*Document, error)
}

// block of consecutive non-blank lines; line is the 1-based number of the
// first one
type block struct {
	line  int
	lines []string
}

// splitLines drops a leading BOM and normalizes line endings.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func splitBlocks(lines []string) []block {
	var blocks []block
	var cur *block
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			if cur != nil {
				blocks = append(blocks, *cur)
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &block{line: i + 1}
		}
		cur.lines = append(cur.lines, line)
	}
	if cur != nil {
		blocks = append(blocks, *cur)
	}
	return blocks
}

// hasKeyword reports whether line is kw alone or kw followed by whitespace.
func hasKeyword(line, kw string) bool {
	if !strings.HasPrefix(line, kw) {
		return false
	}
	rest := line[len(kw):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}
