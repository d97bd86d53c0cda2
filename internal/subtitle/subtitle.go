package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
	FormatTT  Format = "tt"
)

// Segment is a run of text sharing one set of inline styles, or an explicit
// line break when Break is set.
type Segment struct {
	Text   string
	Break  bool
	Styles Styles
}

// LineBreak returns a break marker segment.
func LineBreak() Segment {
	return Segment{Break: true}
}

// represents single timed subtitle entry
type Cue struct {
	ID        string
	StartTime time.Duration
	EndTime   time.Duration
	Segments  []Segment
	Styles    Styles
}

// Document is the canonical representation every parser produces and every
// generator consumes.
type Document struct {
	Cues []Cue
}

// PlainText joins the cue text with markup removed. Breaks become "\n".
func (c Cue) PlainText() string {
	var sb strings.Builder
	for _, seg := range c.Segments {
		if seg.Break {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// Lines splits the segments at break markers.
func (c Cue) Lines() [][]Segment {
	lines := [][]Segment{nil}
	for _, seg := range c.Segments {
		if seg.Break {
			lines = append(lines, nil)
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], seg)
	}
	return lines
}

func (c Cue) Duration() time.Duration {
	return c.EndTime - c.StartTime
}

func (c Cue) Clone() Cue {
	out := c
	out.Styles = c.Styles.Clone()
	if c.Segments != nil {
		out.Segments = make([]Segment, len(c.Segments))
		for i, seg := range c.Segments {
			seg.Styles = seg.Styles.Clone()
			out.Segments[i] = seg
		}
	}
	return out
}

func (c Cue) Validate() error {
	if c.StartTime < 0 {
		return fmt.Errorf("negative start time %v", c.StartTime)
	}
	if c.EndTime < c.StartTime {
		return fmt.Errorf(
			"end time %v before start time %v",
			c.EndTime,
			c.StartTime,
		)
	}
	return nil
}

// ContentEqual reports whether two cues share timing and flattened text.
// Styles are ignored.
func ContentEqual(a, b Cue) bool {
	return a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.PlainText() == b.PlainText()
}

func (d *Document) Clone() *Document {
	if d == nil {
		return &Document{}
	}
	out := &Document{Cues: make([]Cue, len(d.Cues))}
	for i, c := range d.Cues {
		out.Cues[i] = c.Clone()
	}
	return out
}

func (d *Document) Validate() error {
	for i, c := range d.Cues {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("cue %d: %w", i+1, err)
		}
	}
	return nil
}

// NewCue builds a cue from plain text, turning "\n" into break segments.
func NewCue(start, end time.Duration, text string) Cue {
	return Cue{
		StartTime: start,
		EndTime:   end,
		Segments:  TextSegments(text, nil),
	}
}

// TextSegments splits text on newlines into segments carrying styles.
func TextSegments(text string, styles Styles) []Segment {
	var segs []Segment
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			segs = append(segs, LineBreak())
		}
		if line != "" {
			segs = append(segs, Segment{Text: line, Styles: styles.Clone()})
		}
	}
	return segs
}

// appendText adds text to segs, merging with the previous segment when the
// styles match.
func appendText(segs []Segment, text string, styles Styles) []Segment {
	if text == "" {
		return segs
	}
	if n := len(segs); n > 0 && !segs[n-1].Break &&
		segs[n-1].Styles.Equal(styles) {
		segs[n-1].Text += text
		return segs
	}
	return append(segs, Segment{Text: text, Styles: styles.Clone()})
}
