package subtitle

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const ttTestDoc = `<?xml version="1.0" encoding="UTF-8"?>
<tt xmlns="http://www.w3.org/ns/ttml"
    xmlns:tts="http://www.w3.org/ns/ttml#styling"
    xmlns:ttp="http://www.w3.org/ns/ttml#parameter"
    ttp:frameRate="25">
  <head>
    <styling>
      <style xml:id="base" tts:color="white"/>
      <style xml:id="yellow" style="base" tts:color="yellow" tts:fontWeight="bold"/>
    </styling>
    <layout>
      <region xml:id="bottom" tts:origin="10% 80%" tts:extent="80% 20%" tts:displayAlign="after"/>
    </layout>
  </head>
  <body region="bottom">
    <div begin="10s">
      <p xml:id="c1" begin="00:00:01.000" end="00:00:03.500">Hello
        <span style="yellow">world</span><br/>second   line</p>
      <p begin="5s" dur="25f">Frames &amp; more</p>
    </div>
  </body>
</tt>
`

func TestParseTT(t *testing.T) {
	doc, err := TTParser{}.Parse(ttTestDoc, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse TTML: %v", err)
	}
	if len(doc.Cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(doc.Cues))
	}

	first := doc.Cues[0]
	if first.ID != "c1" {
		t.Errorf("expected id c1, got %q", first.ID)
	}
	// div begin offsets the paragraph
	if first.StartTime != 11*time.Second || first.EndTime != 13500*time.Millisecond {
		t.Errorf(
			"expected 11s --> 13.5s, got %v --> %v",
			first.StartTime,
			first.EndTime,
		)
	}
	if got := first.PlainText(); got != "Hello world\nsecond line" {
		t.Errorf("expected collapsed text, got %q", got)
	}

	wantCue := Styles{
		StyleRegion:       "bottom",
		StyleOrigin:       "10% 80%",
		StyleExtent:       "80% 20%",
		StyleDisplayAlign: "after",
	}
	if diff := cmp.Diff(wantCue, first.Styles); diff != "" {
		t.Errorf("cue styles mismatch (-want +got):\n%s", diff)
	}

	var span *Segment
	for i := range first.Segments {
		if first.Segments[i].Text == "world" {
			span = &first.Segments[i]
		}
	}
	if span == nil {
		t.Fatalf("expected a separate segment for the span, got %+v", first.Segments)
	}
	if !span.Styles.Flag(StyleBold) || span.Styles.Get(StyleColor) != "#ffff00" {
		t.Errorf("expected bold yellow span, got %v", span.Styles)
	}

	second := doc.Cues[1]
	if second.StartTime != 15*time.Second || second.EndTime != 16*time.Second {
		t.Errorf(
			"expected 15s --> 16s, got %v --> %v",
			second.StartTime,
			second.EndTime,
		)
	}
	if got := second.PlainText(); got != "Frames & more" {
		t.Errorf("expected decoded entity, got %q", got)
	}
}

func TestParseTTTiming(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		start time.Duration
		end   time.Duration
		text  string
	}{
		{
			name:  "derived from spans",
			body:  `<p><span begin="1s" end="2s">a</span> <span begin="2s" end="4s">b</span></p>`,
			start: time.Second,
			end:   4 * time.Second,
			text:  "a b",
		},
		{
			name:  "end clamped to parent",
			body:  `<div begin="1s" end="3s"><p begin="1s" end="10s">x</p></div>`,
			start: 2 * time.Second,
			end:   3 * time.Second,
			text:  "x",
		},
		{
			name:  "end inherited from parent",
			body:  `<div begin="0s" end="5s"><p begin="2s">x</p></div>`,
			start: 2 * time.Second,
			end:   5 * time.Second,
			text:  "x",
		},
		{
			name:  "sub-millisecond truncated",
			body:  `<p begin="0.0019s" end="1.9999s">x</p>`,
			start: time.Millisecond,
			end:   1999 * time.Millisecond,
			text:  "x",
		},
		{
			name:  "whitespace folded across spans",
			body:  `<p begin="0s" end="1s">Hello <span> world</span><span>  again </span> end</p>`,
			start: 0,
			end:   time.Second,
			text:  "Hello world again end",
		},
		{
			name:  "preserved whitespace",
			body:  "<p begin=\"0s\" end=\"1s\" xml:space=\"preserve\">a  b\nc</p>",
			start: 0,
			end:   time.Second,
			text:  "a  b\nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `<tt xmlns="http://www.w3.org/ns/ttml"><body>` +
				tt.body + `</body></tt>`
			doc, err := TTParser{}.Parse(content, ParseOptions{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(doc.Cues) != 1 {
				t.Fatalf("expected 1 cue, got %d", len(doc.Cues))
			}
			c := doc.Cues[0]
			if c.StartTime != tt.start || c.EndTime != tt.end {
				t.Errorf(
					"expected %v --> %v, got %v --> %v",
					tt.start, tt.end, c.StartTime, c.EndTime,
				)
			}
			if c.PlainText() != tt.text {
				t.Errorf("expected %q, got %q", tt.text, c.PlainText())
			}
		})
	}
}

func TestParseTTStyleCycle(t *testing.T) {
	content := `<tt xmlns="http://www.w3.org/ns/ttml" xmlns:tts="http://www.w3.org/ns/ttml#styling">
  <head><styling>
    <style xml:id="a" style="b" tts:fontStyle="italic"/>
    <style xml:id="b" style="a" tts:textDecoration="underline"/>
  </styling></head>
  <body><p begin="0s" end="1s" style="a">loop</p></body>
</tt>`

	doc, err := TTParser{}.Parse(content, ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Segment{{Text: "loop", Styles: Styles{
		StyleItalic:    "true",
		StyleUnderline: "true",
	}}}
	if diff := cmp.Diff(want, doc.Cues[0].Segments, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTTErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    error
	}{
		{
			name:    "wrong root",
			content: `<html><body/></html>`,
			kind:    ErrMalformedStructure,
		},
		{
			name:    "broken xml",
			content: `<tt><body><p begin="0s" end="1s">x</body></tt>`,
			kind:    ErrMalformedStructure,
		},
		{
			name:    "empty input",
			content: "",
			kind:    ErrMalformedStructure,
		},
		{
			name: "smpte time base",
			content: `<tt xmlns:ttp="http://www.w3.org/ns/ttml#parameter" ttp:timeBase="smpte">` +
				`<body/></tt>`,
			kind: ErrUnsupportedFeature,
		},
		{
			name:    "bad time expression",
			content: `<tt><body><p begin="soon" end="1s">x</p></body></tt>`,
			kind:    ErrMalformedTimestamp,
		},
		{
			name:    "untimed paragraph",
			content: `<tt><body><p>x</p></body></tt>`,
			kind:    ErrMalformedStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := TTParser{}.Parse(tt.content, ParseOptions{})
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if doc != nil {
				t.Errorf("expected no document on error")
			}
		})
	}
}
