package subtitle

import (
	"fmt"
	"html"
	"slices"
	"strings"
	"time"
)

const vttSignature = "WEBVTT"

// VTTParser reads WebVTT documents.
type VTTParser struct{}

func (VTTParser) Format() Format {
	return FormatVTT
}

func (VTTParser) Parse(text string, _ ParseOptions) (*Document, error) {
	lines := splitLines(text)
	if len(lines) == 0 || !hasKeyword(lines[0], vttSignature) {
		return nil, newParseError(
			FormatVTT, MalformedStructure, 0, 1,
			"missing %s signature", vttSignature,
		)
	}

	doc := &Document{}
	blocks := splitBlocks(lines)

	// the header ends at the first blank line or time range
	header := blocks[0]
	for i := 1; i < len(header.lines); i++ {
		if strings.Contains(header.lines[i], "-->") {
			blocks[0] = block{line: header.line + i, lines: header.lines[i:]}
			blocks = append([]block{{line: header.line, lines: header.lines[:i]}}, blocks...)
			break
		}
	}

	for _, blk := range blocks[1:] {
		first := strings.TrimSpace(blk.lines[0])
		if hasKeyword(first, "NOTE") ||
			hasKeyword(first, "STYLE") ||
			hasKeyword(first, "REGION") {
			continue
		}

		cueIndex := len(doc.Cues) + 1
		timingIdx := 0
		var id string
		if !strings.Contains(blk.lines[0], "-->") {
			if len(blk.lines) < 2 || !strings.Contains(blk.lines[1], "-->") {
				line := blk.line
				if len(blk.lines) > 1 {
					line++
				}
				return nil, newParseError(
					FormatVTT, MalformedStructure, cueIndex, line,
					"cue block missing \"-->\" time range",
				)
			}
			id = first
			timingIdx = 1
		}

		start, end, settings, err := parseVTTTiming(blk.lines[timingIdx])
		if err != nil {
			return nil, &ParseError{
				Format: FormatVTT,
				Kind:   MalformedTimestamp,
				Cue:    cueIndex,
				Line:   blk.line + timingIdx,
				Err:    err,
			}
		}

		doc.Cues = append(doc.Cues, Cue{
			ID:        id,
			StartTime: start,
			EndTime:   end,
			Segments:  parseVTTText(blk.lines[timingIdx+1:]),
			Styles:    settings,
		})
	}

	return doc, nil
}

func parseVTTTiming(
	line string,
) (time.Duration, time.Duration, Styles, error) {
	idx := strings.Index(line, "-->")
	startText := strings.TrimSpace(line[:idx])
	fields := strings.Fields(line[idx+3:])
	if startText == "" || len(fields) == 0 {
		return 0, 0, nil, fmt.Errorf("incomplete time range %q", line)
	}

	start, err := parseClock(startText, ".", true)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("start: %w", err)
	}
	end, err := parseClock(fields[0], ".", true)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("end: %w", err)
	}
	if end < start {
		return 0, 0, nil, fmt.Errorf(
			"end %s before start %s",
			fields[0],
			startText,
		)
	}

	return start, end, parseVTTSettings(fields[1:]), nil
}

// malformed or unknown settings are ignored
func parseVTTSettings(fields []string) Styles {
	var styles Styles
	for _, f := range fields {
		key, value, ok := strings.Cut(f, ":")
		if !ok || key == "" || value == "" {
			continue
		}
		switch key {
		case "vertical":
			key = StyleVertical
		case "line":
			key = StyleLine
		case "position":
			key = StylePosition
		case "size":
			key = StyleSize
		case "align":
			key = StyleAlign
		case "region":
			key = StyleRegion
		default:
			continue
		}
		if styles == nil {
			styles = Styles{}
		}
		styles[key] = value
	}
	return styles
}

func parseVTTText(lines []string) []Segment {
	stack := &styleStack{}
	var segs []Segment

	for i, line := range lines {
		if i > 0 {
			segs = append(segs, LineBreak())
		}
		for _, tok := range scanMarkup(line) {
			if !tok.isTag {
				segs = appendText(
					segs,
					html.UnescapeString(tok.text),
					stack.current(),
				)
				continue
			}
			// karaoke timestamps carry no style
			if tok.name == "" || (tok.name[0] >= '0' && tok.name[0] <= '9') {
				continue
			}
			if tok.closing {
				stack.pop(tok.name)
				continue
			}
			stack.push(tok.name, vttTagStyles(tok))
		}
	}

	return segs
}

func vttTagStyles(tok markupToken) Styles {
	styles := Styles{}
	switch tok.name {
	case "b":
		styles[StyleBold] = flagOn
	case "i":
		styles[StyleItalic] = flagOn
	case "u":
		styles[StyleUnderline] = flagOn
	case "v":
		if tok.annotation != "" {
			styles[StyleVoice] = tok.annotation
		}
	case "lang":
		if tok.annotation != "" {
			styles[StyleLang] = tok.annotation
		}
	}

	var classes []string
	for _, class := range tok.classes {
		if c, ok := namedColors[class]; ok && isVTTColorClass(class) {
			styles[StyleColor] = c.hex()
			continue
		}
		if name, ok := strings.CutPrefix(class, "bg_"); ok &&
			isVTTColorClass(name) {
			styles[StyleBackgroundColor] = namedColors[name].hex()
			continue
		}
		classes = append(classes, class)
	}
	if len(classes) > 0 {
		styles[StyleClass] = strings.Join(classes, " ")
	}

	return styles
}

func isVTTColorClass(name string) bool {
	return slices.Contains(vttColorClasses, name)
}
