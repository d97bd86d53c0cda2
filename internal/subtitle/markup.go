package subtitle

import (
	"strings"
	"unicode"
)

// token of HTML-like cue markup shared by the VTT and SRT parsers
type markupToken struct {
	text       string
	raw        string
	isTag      bool
	closing    bool
	name       string
	classes    []string
	annotation string
}

// scanMarkup splits a text line into text runs and tags. A '<' without a
// matching '>' is kept as text.
func scanMarkup(line string) []markupToken {
	var tokens []markupToken
	for line != "" {
		open := strings.IndexByte(line, '<')
		if open == -1 {
			tokens = append(tokens, markupToken{text: line})
			break
		}
		end := strings.IndexByte(line[open:], '>')
		if end == -1 {
			tokens = append(tokens, markupToken{text: line})
			break
		}
		if open > 0 {
			tokens = append(tokens, markupToken{text: line[:open]})
		}
		tok := parseTag(line[open+1 : open+end])
		tok.raw = line[open : open+end+1]
		tokens = append(tokens, tok)
		line = line[open+end+1:]
	}
	return tokens
}

func parseTag(body string) markupToken {
	tok := markupToken{isTag: true}
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "/") {
		tok.closing = true
		body = strings.TrimSpace(body[1:])
	}

	head, rest := body, ""
	if i := strings.IndexFunc(body, unicode.IsSpace); i != -1 {
		head, rest = body[:i], strings.TrimSpace(body[i+1:])
	}
	parts := strings.Split(head, ".")
	tok.name = strings.ToLower(parts[0])
	for _, c := range parts[1:] {
		if c != "" {
			tok.classes = append(tok.classes, c)
		}
	}
	tok.annotation = rest
	return tok
}

// tagAttrs parses key="value" pairs out of a tag annotation.
func tagAttrs(annotation string) map[string]string {
	attrs := make(map[string]string)
	s := annotation
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		eq := strings.IndexByte(s, '=')
		if eq == -1 {
			return attrs
		}
		key := strings.ToLower(strings.TrimSpace(s[:eq]))
		s = strings.TrimLeftFunc(s[eq+1:], unicode.IsSpace)
		var val string
		if s != "" && (s[0] == '"' || s[0] == '\'') {
			q := s[0]
			end := strings.IndexByte(s[1:], q)
			if end == -1 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:end+1], s[end+2:]
			}
		} else {
			end := strings.IndexFunc(s, unicode.IsSpace)
			if end == -1 {
				val, s = s, ""
			} else {
				val, s = s[:end], s[end:]
			}
		}
		if key != "" {
			attrs[key] = val
		}
	}
}

type styleFrame struct {
	tag    string
	styles Styles
}

// styleStack tracks the open inline tags of one cue.
type styleStack struct {
	base   Styles
	frames []styleFrame
}

func (s *styleStack) push(tag string, styles Styles) {
	s.frames = append(s.frames, styleFrame{tag: tag, styles: styles})
}

// pop closes the innermost open tag with this name together with anything
// opened after it. End tags that were never opened are ignored.
func (s *styleStack) pop(tag string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].tag == tag {
			s.frames = s.frames[:i]
			return
		}
	}
}

func (s *styleStack) current() Styles {
	out := s.base.Clone()
	for _, f := range s.frames {
		out = out.With(f.styles)
	}
	return out
}
