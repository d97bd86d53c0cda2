package subtitle

import (
	"fmt"
	"strings"
)

// cue settings in output order
var vttSettingKeys = []string{
	StyleVertical, StyleLine, StylePosition, StyleSize, StyleAlign, StyleRegion,
}

var vttEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// WebVTT format
type VTTGenerator struct{}

func (VTTGenerator) Format() Format {
	return FormatVTT
}

func (VTTGenerator) Generate(doc *Document, opts GenerateOptions) string {
	render := vttPlainSegment
	if opts.EnableStyles {
		render = vttSegment
	}

	var sb strings.Builder

	// VTT header
	sb.WriteString("WEBVTT\n\n")

	for _, c := range doc.Cues {
		// optional cue identifier
		if id := strings.TrimSpace(c.ID); id != "" && !strings.Contains(id, "-->") {
			sb.WriteString(id)
			sb.WriteByte('\n')
		}

		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(&sb, "%s --> %s",
			formatVTTTime(c.StartTime),
			formatVTTTime(c.EndTime))
		if opts.EnableStyles {
			sb.WriteString(vttSettings(c.Styles))
		}
		sb.WriteByte('\n')

		for _, line := range textLines(c, render) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func vttSettings(styles Styles) string {
	var sb strings.Builder
	for _, key := range vttSettingKeys {
		v := styles.Get(key)
		if v == "" || strings.ContainsAny(v, " \t") {
			continue
		}
		fmt.Fprintf(&sb, " %s:%s", key, v)
	}
	return sb.String()
}

func vttPlainSegment(seg Segment) string {
	return vttEscaper.Replace(seg.Text)
}

func vttSegment(seg Segment) string {
	var open []string
	if voice := seg.Styles.Get(StyleVoice); voice != "" {
		open = append(open, "<v "+vttEscaper.Replace(voice)+">")
	}

	var classes []string
	if c, ok := parseColor(seg.Styles.Get(StyleColor)); ok {
		if name, ok := c.vttClass(); ok {
			classes = append(classes, name)
		}
	}
	if c, ok := parseColor(seg.Styles.Get(StyleBackgroundColor)); ok {
		if name, ok := c.vttClass(); ok {
			classes = append(classes, "bg_"+name)
		}
	}
	classes = append(classes, strings.Fields(seg.Styles.Get(StyleClass))...)
	if len(classes) > 0 {
		open = append(open, "<c."+strings.Join(classes, ".")+">")
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
	return wrapTags(vttEscaper.Replace(seg.Text), open, closeHTMLTag)
}
