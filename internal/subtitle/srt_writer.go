package subtitle

import (
	"fmt"
	"strings"
)

// SubRip format
type SRTGenerator struct{}

func (SRTGenerator) Format() Format {
	return FormatSRT
}

// Generate numbers cues sequentially from 1; source IDs are not kept.
func (SRTGenerator) Generate(doc *Document, opts GenerateOptions) string {
	render := plainSegment
	if opts.EnableStyles {
		render = srtSegment
	}

	var sb strings.Builder
	for i, c := range doc.Cues {
		// index (1-based)
		fmt.Fprintf(&sb, "%d\n", i+1)

		// timestamps: 00:00:00,000 --> 00:00:00,000
		fmt.Fprintf(&sb, "%s --> %s\n",
			formatSRTTime(c.StartTime),
			formatSRTTime(c.EndTime))

		for _, line := range textLines(c, render) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func plainSegment(seg Segment) string {
	return breakTags(seg.Text)
}

// a zero-width joiner after '<' keeps literal text from reading as a tag
const tagBreaker = "\u200d"

// breakTags defuses "<x" and "</" runs in cue text.
func breakTags(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		sb.WriteByte(text[i])
		if text[i] == '<' && i+1 < len(text) && isTagStart(text[i+1]) {
			sb.WriteString(tagBreaker)
		}
	}
	return sb.String()
}

func isTagStart(c byte) bool {
	return c == '/' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func unbreakTags(text string) string {
	return strings.ReplaceAll(text, "<"+tagBreaker, "<")
}

func srtSegment(seg Segment) string {
	var open []string
	if color := seg.Styles.Get(StyleColor); color != "" {
		open = append(open, fmt.Sprintf("<font color=%q>", normalizeColor(color)))
	}
	if seg.Styles.Flag(StyleBold) {
		open = append(open, "<b>")
	}
	if seg.Styles.Flag(StyleItalic) {
		open = append(open, "<i>")
	}
	if seg.Styles.Flag(StyleUnderline) {
		open = append(open, "<u>")
	}
	if seg.Styles.Flag(StyleStrikethrough) {
		open = append(open, "<s>")
	}
	return wrapTags(breakTags(seg.Text), open, closeHTMLTag)
}
