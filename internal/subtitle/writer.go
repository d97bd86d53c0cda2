package subtitle

import (
	"path/filepath"
	"strings"
)

// GenerateOptions controls generator output.
type GenerateOptions struct {
	// emit format-specific style markup; plain text otherwise
	EnableStyles bool
}

// interface for rendering documents into a target format
type Generator interface {
	Format() Format
	Generate(doc *Document, opts GenerateOptions) string
}

// subtitle format based on file extension
func FormatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, true
	case ".vtt":
		return FormatVTT, true
	case ".ass", ".ssa":
		return FormatASS, true
	case ".ttml", ".dfxp", ".xml":
		return FormatTT, true
	default:
		return "", false
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	case FormatTT:
		return ".ttml"
	default:
		return ".srt"
	}
}

// textLines renders each line of a cue with render and drops lines that
// come out empty, since a blank line ends a SubRip or WebVTT cue block.
func textLines(c Cue, render func(Segment) string) []string {
	var lines []string
	for _, line := range c.Lines() {
		var sb strings.Builder
		for _, seg := range line {
			sb.WriteString(render(seg))
		}
		if strings.TrimSpace(sb.String()) != "" {
			lines = append(lines, sb.String())
		}
	}
	return lines
}

// wrapTags surrounds text with the given opening tags and their closing
// counterparts in reverse order.
func wrapTags(text string, open []string, closeTag func(string) string) string {
	if len(open) == 0 {
		return text
	}
	var sb strings.Builder
	for _, t := range open {
		sb.WriteString(t)
	}
	sb.WriteString(text)
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString(closeTag(open[i]))
	}
	return sb.String()
}

// closeHTMLTag turns "<font color=..>" or "<c.red>" into "</font>" / "</c>".
func closeHTMLTag(open string) string {
	name := strings.TrimPrefix(open, "<")
	if i := strings.IndexAny(name, " .>"); i != -1 {
		name = name[:i]
	}
	return "</" + name + ">"
}
