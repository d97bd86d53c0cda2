package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// SRTParser reads SubRip documents.
type SRTParser struct{}

func (SRTParser) Format() Format {
	return FormatSRT
}

func (SRTParser) Parse(text string, _ ParseOptions) (*Document, error) {
	doc := &Document{}

	for _, blk := range splitBlocks(splitLines(text)) {
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
					FormatSRT, MalformedStructure, cueIndex, line,
					"cue block missing \"-->\" time range",
				)
			}
			id = strings.TrimSpace(blk.lines[0])
			timingIdx = 1
		}

		start, end, err := parseSRTTiming(blk.lines[timingIdx])
		if err != nil {
			return nil, &ParseError{
				Format: FormatSRT,
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
			Segments:  parseSRTText(blk.lines[timingIdx+1:]),
		})
	}

	return doc, nil
}

func parseSRTTiming(line string) (time.Duration, time.Duration, error) {
	idx := strings.Index(line, "-->")
	startText := strings.TrimSpace(line[:idx])
	fields := strings.Fields(line[idx+3:])
	if startText == "" || len(fields) == 0 {
		return 0, 0, fmt.Errorf("incomplete time range %q", line)
	}

	start, err := parseClock(startText, ",.", false)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	end, err := parseClock(fields[0], ",.", false)
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf(
			"end %s before start %s",
			fields[0],
			startText,
		)
	}
	return start, end, nil
}

func parseSRTText(lines []string) []Segment {
	stack := &styleStack{}
	var segs []Segment

	for i, line := range lines {
		if i > 0 {
			segs = append(segs, LineBreak())
		}
		for _, tok := range scanMarkup(line) {
			if !tok.isTag {
				segs = appendText(segs, unbreakTags(tok.text), stack.current())
				continue
			}
			styles, ok := srtTagStyles(tok)
			switch {
			case !ok:
				// not markup SubRip knows, keep it visible
				segs = appendText(segs, unbreakTags(tok.raw), stack.current())
			case tok.closing:
				stack.pop(tok.name)
			default:
				stack.push(tok.name, styles)
			}
		}
	}

	return segs
}

func srtTagStyles(tok markupToken) (Styles, bool) {
	switch tok.name {
	case "b":
		return Styles{StyleBold: flagOn}, true
	case "i":
		return Styles{StyleItalic: flagOn}, true
	case "u":
		return Styles{StyleUnderline: flagOn}, true
	case "s":
		return Styles{StyleStrikethrough: flagOn}, true
	case "font":
		styles := Styles{}
		for k, v := range tagAttrs(tok.annotation) {
			switch k {
			case "color":
				styles[StyleColor] = normalizeColor(v)
			case "face":
				styles[StyleFontFamily] = v
			case "size":
				styles[StyleFontSize] = v
			}
		}
		return styles, true
	}
	return nil, false
}
