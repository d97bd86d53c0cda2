package subtitle

import (
	"fmt"
	"strings"
)

const (
	assDefaultFont     = "Arial"
	assDefaultFontSize = 20
)

// Advanced SubStation Alpha format
type ASSGenerator struct {
	Title string
}

func (ASSGenerator) Format() Format {
	return FormatASS
}

func (g ASSGenerator) Generate(doc *Document, opts GenerateOptions) string {
	var sb strings.Builder
	g.writeHeader(&sb, opts.EnableStyles)

	for _, c := range doc.Cues {
		name, text := "", assPlainText(c)
		if opts.EnableStyles {
			name = assName(c)
			text = assStyledText(c)
		}
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,%s,0,0,0,,%s\n",
			formatASSTime(c.StartTime),
			formatASSTime(c.EndTime),
			name,
			text)
	}
	return sb.String()
}

func (g ASSGenerator) writeHeader(sb *strings.Builder, extended bool) {
	title := g.Title
	if title == "" {
		title = "subconv"
	}

	// script info section
	sb.WriteString("[Script Info]\n")
	fmt.Fprintf(sb, "Title: %s\n", title)
	sb.WriteString("ScriptType: v4.00+\n")
	if extended {
		sb.WriteString("WrapStyle: 0\n")
		sb.WriteString("ScaledBorderAndShadow: yes\n")
		sb.WriteString("YCbCr Matrix: None\n")
	}
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(sb, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		assDefaultFont, assDefaultFontSize)

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

// a word joiner after '\' keeps literal \n, \N and \h from reading as
// line breaks or hard spaces, and a trailing '\' from joining the next
// override block or segment
const assEscapeBreaker = "\u2060"

func escapeASSText(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '{', '}':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\\':
			sb.WriteByte(c)
			if i+1 == len(text) || isASSEscape(text[i+1]) {
				sb.WriteString(assEscapeBreaker)
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isASSEscape(c byte) bool {
	return c == 'n' || c == 'N' || c == 'h'
}

func assPlainText(c Cue) string {
	var sb strings.Builder
	for _, seg := range c.Segments {
		if seg.Break {
			sb.WriteString("\\N")
			continue
		}
		sb.WriteString(escapeASSText(seg.Text))
	}
	return sb.String()
}

// assName picks the speaker for the Name column: the cue voice, else the
// first voiced segment.
func assName(c Cue) string {
	name := c.Styles.Get(StyleVoice)
	if name == "" {
		for _, seg := range c.Segments {
			if v := seg.Styles.Get(StyleVoice); v != "" {
				name = v
				break
			}
		}
	}
	// commas would shift the Text column
	return strings.ReplaceAll(name, ",", " ")
}

// inline state an override block can change
type assState struct {
	bold, italic, underline, strike bool
	color                           string
	font                            string
	size                            string
}

func assStateOf(styles Styles) assState {
	st := assState{
		bold:      styles.Flag(StyleBold),
		italic:    styles.Flag(StyleItalic),
		underline: styles.Flag(StyleUnderline),
		strike:    styles.Flag(StyleStrikethrough),
		font:      styles.Get(StyleFontFamily),
	}
	if c, ok := parseColor(styles.Get(StyleColor)); ok {
		st.color = c.ass()
	}
	if size := styles.Get(StyleFontSize); isDigits(size) {
		st.size = size
	}
	return st
}

// overrides returns the tags moving from st to next.
func (st assState) overrides(next assState) string {
	var sb strings.Builder
	toggle := func(tag string, from, to bool) {
		if from == to {
			return
		}
		if to {
			fmt.Fprintf(&sb, "\\%s1", tag)
		} else {
			fmt.Fprintf(&sb, "\\%s0", tag)
		}
	}
	toggle("b", st.bold, next.bold)
	toggle("i", st.italic, next.italic)
	toggle("u", st.underline, next.underline)
	toggle("s", st.strike, next.strike)
	if st.color != next.color {
		color := next.color
		if color == "" {
			color = namedColors["white"].ass()
		}
		sb.WriteString("\\c" + color)
	}
	if st.font != next.font {
		font := next.font
		if font == "" {
			font = assDefaultFont
		}
		sb.WriteString("\\fn" + font)
	}
	if st.size != next.size {
		size := next.size
		if size == "" {
			size = fmt.Sprint(assDefaultFontSize)
		}
		sb.WriteString("\\fs" + size)
	}
	return sb.String()
}

func assStyledText(c Cue) string {
	var sb strings.Builder
	if n := assAlignment(c.Styles); n != 0 && n != 2 {
		fmt.Fprintf(&sb, "{\\an%d}", n)
	}

	var st assState
	for _, seg := range c.Segments {
		if seg.Break {
			sb.WriteString("\\N")
			continue
		}
		next := assStateOf(seg.Styles)
		if tags := st.overrides(next); tags != "" {
			sb.WriteString("{" + tags + "}")
		}
		st = next
		sb.WriteString(escapeASSText(seg.Text))
	}
	return sb.String()
}

// assAlignment maps cue alignment styles onto numpad alignment; 0 when the
// cue carries none.
func assAlignment(styles Styles) int {
	horizontal := styles.Get(StyleTextAlign)
	if horizontal == "" {
		horizontal = styles.Get(StyleAlign)
	}
	vertical := styles.Get(StyleDisplayAlign)
	if horizontal == "" && vertical == "" {
		return 0
	}

	col := 2
	switch horizontal {
	case "left", "start":
		col = 1
	case "right", "end":
		col = 3
	}
	row := 0
	switch vertical {
	case "center":
		row = 1
	case "before":
		row = 2
	}
	return row*3 + col
}
