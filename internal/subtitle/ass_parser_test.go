package subtitle

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const assTestHeader = `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Italic,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,1,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Top,Arial,20,&H0000FFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,8,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

func TestParseASS(t *testing.T) {
	content := assTestHeader +
		"Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!\n" +
		"Comment: 0,0:00:04.00,0:00:05.00,Default,,0,0,0,,not shown\n" +
		"Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,{\\pos(100,200)}This has positioning.\n" +
		"Dialogue: 0,0:00:10.00,0:00:12.50,Italic,Narrator,0,0,0,,Line with\\Nnewline.\n"

	doc, err := ASSParser{}.Parse(content, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse ASS: %v", err)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}

	if doc.Cues[0].StartTime != 1*time.Second {
		t.Errorf("cue 0: expected start 1s, got %v", doc.Cues[0].StartTime)
	}
	if doc.Cues[0].PlainText() != "Hello, world!" {
		t.Errorf(
			"cue 0: expected 'Hello, world!', got %q",
			doc.Cues[0].PlainText(),
		)
	}

	if doc.Cues[1].PlainText() != "This has positioning." {
		t.Errorf(
			"cue 1: expected positioning tag dropped, got %q",
			doc.Cues[1].PlainText(),
		)
	}
	if doc.Cues[1].EndTime != 8200*time.Millisecond {
		t.Errorf("cue 1: expected end 8.2s, got %v", doc.Cues[1].EndTime)
	}

	if doc.Cues[2].PlainText() != "Line with\nnewline." {
		t.Errorf(
			"cue 2: expected 'Line with\\nnewline.', got %q",
			doc.Cues[2].PlainText(),
		)
	}
	if got := doc.Cues[2].Styles.Get(StyleVoice); got != "Narrator" {
		t.Errorf("cue 2: expected voice Narrator, got %q", got)
	}
	for _, seg := range doc.Cues[2].Segments {
		if !seg.Break && !seg.Styles.Flag(StyleItalic) {
			t.Errorf("cue 2: expected italic from style, got %v", seg.Styles)
		}
	}
}

func TestParseASSOverrides(t *testing.T) {
	tests := []struct {
		name      string
		style     string
		text      string
		want      []Segment
		cueStyles Styles
	}{
		{
			name:  "toggles and color",
			style: "Default",
			text:  `{\b1}Bold{\b0} plain {\c&H0000FF&}red\Nnext`,
			want: []Segment{
				{Text: "Bold", Styles: Styles{StyleBold: "true"}},
				{Text: " plain ", Styles: Styles{StyleBold: "false"}},
				{Text: "red", Styles: Styles{
					StyleBold:  "false",
					StyleColor: "#ff0000",
				}},
				LineBreak(),
				{Text: "next", Styles: Styles{
					StyleBold:  "false",
					StyleColor: "#ff0000",
				}},
			},
		},
		{
			name:  "alignment override",
			style: "Default",
			text:  `{\an8\fnTimes\fs32}Top`,
			want: []Segment{
				{Text: "Top", Styles: Styles{
					StyleFontFamily: "Times",
					StyleFontSize:   "32",
				}},
			},
			cueStyles: Styles{
				StyleTextAlign:    "center",
				StyleDisplayAlign: "before",
			},
		},
		{
			name:  "style sheet and reset",
			style: "Top",
			text:  `{\i1}a{\r}b{\rItalic}c`,
			want: []Segment{
				{Text: "a", Styles: Styles{
					StyleColor:  "#ffff00",
					StyleItalic: "true",
				}},
				{Text: "b", Styles: Styles{StyleColor: "#ffff00"}},
				{Text: "c", Styles: Styles{StyleItalic: "true"}},
			},
			cueStyles: Styles{
				StyleTextAlign:    "center",
				StyleDisplayAlign: "before",
			},
		},
		{
			name:  "escaped braces and hard space",
			style: "Default",
			text:  `a \{b\}\hc {unclosed`,
			want:  []Segment{{Text: "a {b}\u00a0c {unclosed"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := assTestHeader +
				"Dialogue: 0,0:00:00.00,0:00:01.00," + tt.style + ",,0,0,0,," + tt.text + "\n"
			doc, err := ASSParser{}.Parse(content, ParseOptions{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c := doc.Cues[0]
			if diff := cmp.Diff(tt.want, c.Segments, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.cueStyles, c.Styles, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("cue styles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseASSErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    error
	}{
		{
			name:    "no events format",
			content: "[Script Info]\nTitle: x\n",
			kind:    ErrMalformedStructure,
		},
		{
			name: "dialogue before format",
			content: "[Events]\n" +
				"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,Hi\n",
			kind: ErrMalformedStructure,
		},
		{
			name: "too few fields",
			content: assTestHeader +
				"Dialogue: 0,0:00:00.00,0:00:01.00\n",
			kind: ErrMalformedStructure,
		},
		{
			name: "bad timestamp",
			content: assTestHeader +
				"Dialogue: 0,0:00:0.00,0:00:01.00,Default,,0,0,0,,Hi\n",
			kind: ErrMalformedTimestamp,
		},
		{
			name: "end before start",
			content: assTestHeader +
				"Dialogue: 0,0:00:02.00,0:00:01.00,Default,,0,0,0,,Hi\n",
			kind: ErrMalformedTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ASSParser{}.Parse(tt.content, ParseOptions{})
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if doc != nil {
				t.Errorf("expected no document on error")
			}
		})
	}
}
