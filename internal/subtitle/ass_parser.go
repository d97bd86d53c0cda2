package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ASSParser reads Advanced SubStation Alpha / SSA scripts. Only dialogue
// events become cues; script info is not retained.
type ASSParser struct{}

func (ASSParser) Format() Format {
	return FormatASS
}

// columns of an [Events] Format line
type assEventColumns struct {
	count int
	start int
	end   int
	style int
	name  int
	text  int
}

type assScript struct {
	// inline styles and cue layout per style name
	inline map[string]Styles
	layout map[string]Styles

	styleColumns []string
	events       *assEventColumns
	doc          *Document
}

func (ASSParser) Parse(text string, _ ParseOptions) (*Document, error) {
	script := &assScript{
		inline: make(map[string]Styles),
		layout: make(map[string]Styles),
		doc:    &Document{},
	}

	section := ""
	for i, line := range splitLines(text) {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.ToLower(
				strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]"),
			)
			continue
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		var err error
		switch section {
		case "v4+ styles", "v4 styles":
			err = script.styleLine(key, value, lineNum)
		case "events":
			err = script.eventLine(key, value, lineNum)
		}
		if err != nil {
			return nil, err
		}
	}

	if script.events == nil {
		return nil, newParseError(
			FormatASS, MalformedStructure, 0, 0,
			"missing Format line in [Events] section",
		)
	}
	return script.doc, nil
}

func splitASSColumns(value string) []string {
	columns := strings.Split(value, ",")
	for i, col := range columns {
		columns[i] = strings.ToLower(strings.TrimSpace(col))
	}
	return columns
}

// splits content into numFields fields; the last one keeps any commas
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}
	return strings.SplitN(content, ",", numFields)
}

func (s *assScript) styleLine(key, value string, lineNum int) error {
	switch key {
	case "Format":
		s.styleColumns = splitASSColumns(value)
	case "Style":
		if s.styleColumns == nil {
			return newParseError(
				FormatASS, MalformedStructure, 0, lineNum,
				"Style line before Format line",
			)
		}
		fields := splitASSFields(value, len(s.styleColumns))
		if len(fields) < len(s.styleColumns) {
			return newParseError(
				FormatASS, MalformedStructure, 0, lineNum,
				"expected %d style fields, got %d",
				len(s.styleColumns), len(fields),
			)
		}
		s.defineStyle(fields)
	}
	return nil
}

// defineStyle keeps only what differs from a plain white bottom-centered
// default, so ordinary scripts do not tag every segment.
func (s *assScript) defineStyle(fields []string) {
	var name string
	var inline, layout Styles
	for i, col := range s.styleColumns {
		v := strings.TrimSpace(fields[i])
		switch col {
		case "name":
			name = v
		case "bold":
			if assFlag(v) {
				inline = inline.Set(StyleBold, flagOn)
			}
		case "italic":
			if assFlag(v) {
				inline = inline.Set(StyleItalic, flagOn)
			}
		case "underline":
			if assFlag(v) {
				inline = inline.Set(StyleUnderline, flagOn)
			}
		case "strikeout":
			if assFlag(v) {
				inline = inline.Set(StyleStrikethrough, flagOn)
			}
		case "primarycolour":
			if c, ok := parseASSColor(v); ok && c != namedColors["white"] {
				inline = inline.Set(StyleColor, c.hex())
			}
		case "alignment":
			if n, err := strconv.Atoi(v); err == nil && n != 2 {
				layout = layout.With(assAlignmentStyles(n))
			}
		}
	}
	s.inline[name] = inline
	s.layout[name] = layout
}

func assFlag(v string) bool {
	return v != "" && v != "0"
}

func (s *assScript) eventLine(key, value string, lineNum int) error {
	switch key {
	case "Format":
		cols := splitASSColumns(value)
		ev := &assEventColumns{
			count: len(cols),
			start: -1, end: -1, style: -1, name: -1, text: -1,
		}
		for i, col := range cols {
			switch col {
			case "start":
				ev.start = i
			case "end":
				ev.end = i
			case "style":
				ev.style = i
			case "name":
				ev.name = i
			case "text":
				ev.text = i
			}
		}
		if ev.text == -1 || ev.start == -1 || ev.end == -1 {
			return newParseError(
				FormatASS, MalformedStructure, 0, lineNum,
				"Format line needs Start, End and Text columns",
			)
		}
		s.events = ev
	case "Dialogue":
		return s.dialogue(value, lineNum)
	}
	return nil
}

func (s *assScript) dialogue(value string, lineNum int) error {
	cueIndex := len(s.doc.Cues) + 1
	if s.events == nil {
		return newParseError(
			FormatASS, MalformedStructure, cueIndex, lineNum,
			"Dialogue line before Format line",
		)
	}
	fields := splitASSFields(value, s.events.count)
	if len(fields) < s.events.count {
		return newParseError(
			FormatASS, MalformedStructure, cueIndex, lineNum,
			"expected %d fields, got %d", s.events.count, len(fields),
		)
	}

	start, end, err := parseASSTiming(
		fields[s.events.start],
		fields[s.events.end],
	)
	if err != nil {
		return &ParseError{
			Format: FormatASS,
			Kind:   MalformedTimestamp,
			Cue:    cueIndex,
			Line:   lineNum,
			Err:    err,
		}
	}

	var styleName string
	if s.events.style >= 0 {
		styleName = strings.TrimPrefix(
			strings.TrimSpace(fields[s.events.style]),
			"*",
		)
	}
	cueStyles := s.layout[styleName].Clone()
	if s.events.name >= 0 {
		if actor := strings.TrimSpace(fields[s.events.name]); actor != "" {
			cueStyles = cueStyles.Set(StyleVoice, actor)
		}
	}

	segs, overrides := s.parseText(fields[s.events.text], styleName)
	s.doc.Cues = append(s.doc.Cues, Cue{
		StartTime: start,
		EndTime:   end,
		Segments:  segs,
		Styles:    cueStyles.With(overrides),
	})
	return nil
}

func parseASSTiming(startText, endText string) (time.Duration, time.Duration, error) {
	start, err := parseClock(startText, ".", false)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	end, err := parseClock(endText, ".", false)
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf(
			"end %s before start %s",
			strings.TrimSpace(endText),
			strings.TrimSpace(startText),
		)
	}
	return start, end, nil
}

// parseText turns dialogue text into segments. Cue-level overrides (\an)
// are returned separately.
func (s *assScript) parseText(text, styleName string) ([]Segment, Styles) {
	base := s.inline[styleName]
	current := base.Clone()
	var segs []Segment
	var cueStyles Styles
	var run strings.Builder

	flush := func() {
		segs = appendText(segs, run.String(), current)
		run.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end == -1 {
				run.WriteString(text[i:])
				i = len(text)
				continue
			}
			flush()
			block := text[i+1 : i+end]
			current, cueStyles = s.applyOverrides(block, base, current, cueStyles)
			i += end
		case c == '\\' && i+1 < len(text):
			switch text[i+1] {
			case 'N', 'n':
				flush()
				segs = append(segs, LineBreak())
			case 'h':
				run.WriteString("\u00a0")
			case '{', '}':
				run.WriteByte(text[i+1])
			default:
				run.WriteByte(c)
				// drop the joiner that keeps a literal \n from breaking
				rest := text[i+1:]
				if after, ok := strings.CutPrefix(rest, assEscapeBreaker); ok &&
					(after == "" || after[0] == '{' || after[0] == '\\' || isASSEscape(after[0])) {
					i += len(assEscapeBreaker)
				}
				continue
			}
			i++
		default:
			run.WriteByte(c)
		}
	}
	flush()

	return segs, cueStyles
}

// applyOverrides applies one {...} block. A bare \r returns to the
// event's own style.
func (s *assScript) applyOverrides(
	block string,
	base, current, cueStyles Styles,
) (Styles, Styles) {
	for _, tag := range strings.Split(block, "\\") {
		tag = strings.TrimSpace(tag)
		switch {
		case tag == "":
		case tag == "r":
			current = base.Clone()
		case strings.HasPrefix(tag, "r") && !strings.HasPrefix(tag, "rnd"):
			current = s.inline[tag[1:]].Clone()
		case isASSToggle(tag, "b"):
			current = current.Set(StyleBold, boolFlag(assBold(tag[1:])))
		case isASSToggle(tag, "i"):
			current = current.Set(StyleItalic, boolFlag(tag[1:] != "0"))
		case isASSToggle(tag, "u"):
			current = current.Set(StyleUnderline, boolFlag(tag[1:] != "0"))
		case isASSToggle(tag, "s"):
			current = current.Set(StyleStrikethrough, boolFlag(tag[1:] != "0"))
		case strings.HasPrefix(tag, "c&") || strings.HasPrefix(tag, "1c&"):
			if c, ok := parseASSColor(tag[strings.IndexByte(tag, '&'):]); ok {
				current = current.Set(StyleColor, c.hex())
			}
		case strings.HasPrefix(tag, "fn"):
			current = current.Set(StyleFontFamily, tag[2:])
		case strings.HasPrefix(tag, "fs") && isDigits(tag[2:]):
			current = current.Set(StyleFontSize, tag[2:])
		case strings.HasPrefix(tag, "an") && isDigits(tag[2:]):
			if n, err := strconv.Atoi(tag[2:]); err == nil {
				cueStyles = cueStyles.With(assAlignmentStyles(n))
			}
		}
	}
	return current, cueStyles
}

func isASSToggle(tag, name string) bool {
	return strings.HasPrefix(tag, name) && isDigits(tag[len(name):])
}

// \b accepts 0/1 or a font weight
func assBold(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && (n == 1 || n >= 700)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// assAlignmentStyles maps numpad alignment (1-9) onto text/display
// alignment.
func assAlignmentStyles(n int) Styles {
	if n < 1 || n > 9 {
		return nil
	}
	horizontal := []string{"left", "center", "right"}[(n-1)%3]
	vertical := []string{"after", "center", "before"}[(n-1)/3]
	return Styles{
		StyleTextAlign:    horizontal,
		StyleDisplayAlign: vertical,
	}
}
