package subtitle

import (
	"regexp"
	"strings"
	"testing"
)

// source document with times on 10ms boundaries so ASS centiseconds are exact
const roundTripVTT = `WEBVTT

1
00:00:01.000 --> 00:00:03.500 align:start
<v Alice>Hello <b>there</b></v>

2
00:00:02.250 --> 00:00:04.000
Overlapping <c.yellow>cue</c>
on two lines

3
01:02:03.450 --> 01:02:05.000
<i>Ampersand &amp; friends</i>
`

var (
	parsers = map[Format]Parser{
		FormatVTT: VTTParser{},
		FormatSRT: SRTParser{},
		FormatASS: ASSParser{},
		FormatTT:  TTParser{},
	}
	generators = []Generator{
		SRTGenerator{},
		ASSGenerator{},
		VTTGenerator{},
	}
)

func assertContentEqual(t *testing.T, want, got *Document) {
	t.Helper()
	if len(want.Cues) != len(got.Cues) {
		t.Fatalf("expected %d cues, got %d", len(want.Cues), len(got.Cues))
	}
	for i := range want.Cues {
		if !ContentEqual(want.Cues[i], got.Cues[i]) {
			t.Errorf(
				"cue %d: expected (%v, %v, %q), got (%v, %v, %q)",
				i,
				want.Cues[i].StartTime, want.Cues[i].EndTime, want.Cues[i].PlainText(),
				got.Cues[i].StartTime, got.Cues[i].EndTime, got.Cues[i].PlainText(),
			)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	src, err := VTTParser{}.Parse(roundTripVTT, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}
	doc := Transform(src, TransformOptions{})

	for _, gen := range generators {
		for _, styles := range []bool{false, true} {
			name := string(gen.Format())
			if styles {
				name += "-styled"
			}
			t.Run(name, func(t *testing.T) {
				out := gen.Generate(doc, GenerateOptions{EnableStyles: styles})
				back, err := parsers[gen.Format()].Parse(out, ParseOptions{})
				if err != nil {
					t.Fatalf("failed to parse generated output: %v\n%s", err, out)
				}
				assertContentEqual(t, src, back)
			})
		}
	}
}

func TestRoundTripFromTT(t *testing.T) {
	src, err := TTParser{}.Parse(ttTestDoc, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}

	for _, gen := range generators {
		t.Run(string(gen.Format()), func(t *testing.T) {
			out := gen.Generate(src, GenerateOptions{EnableStyles: true})
			back, err := parsers[gen.Format()].Parse(out, ParseOptions{})
			if err != nil {
				t.Fatalf("failed to parse generated output: %v\n%s", err, out)
			}
			assertContentEqual(t, src, back)
		})
	}
}

var styleMarkup = map[Format]*regexp.Regexp{
	FormatSRT: regexp.MustCompile(`</?(b|i|u|s|font)\b`),
	FormatVTT: regexp.MustCompile(`</?(b|i|u|c|v)\b|--> \S+ \S`),
	FormatASS: regexp.MustCompile(`\{\\`),
}

func TestStyleToggle(t *testing.T) {
	src, err := VTTParser{}.Parse(roundTripVTT, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}

	for _, gen := range generators {
		t.Run(string(gen.Format()), func(t *testing.T) {
			plain := gen.Generate(src, GenerateOptions{})
			styled := gen.Generate(src, GenerateOptions{EnableStyles: true})

			if styleMarkup[gen.Format()].MatchString(plain) {
				t.Errorf("unstyled output contains style markup:\n%s", plain)
			}
			if !styleMarkup[gen.Format()].MatchString(styled) {
				t.Errorf("styled output has no style markup:\n%s", styled)
			}

			p := parsers[gen.Format()]
			plainDoc, err := p.Parse(plain, ParseOptions{})
			if err != nil {
				t.Fatalf("failed to parse unstyled output: %v", err)
			}
			styledDoc, err := p.Parse(styled, ParseOptions{})
			if err != nil {
				t.Fatalf("failed to parse styled output: %v", err)
			}
			assertContentEqual(t, plainDoc, styledDoc)
		})
	}
}

func TestGeneratedRecordCount(t *testing.T) {
	src, err := VTTParser{}.Parse(roundTripVTT, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}

	counts := map[Format]func(string) int{
		FormatSRT: func(s string) int { return strings.Count(s, " --> ") },
		FormatVTT: func(s string) int { return strings.Count(s, " --> ") },
		FormatASS: func(s string) int { return strings.Count(s, "\nDialogue: ") },
	}
	for _, gen := range generators {
		out := gen.Generate(src, GenerateOptions{EnableStyles: true})
		if n := counts[gen.Format()](out); n != len(src.Cues) {
			t.Errorf("%s: expected %d records, got %d", gen.Format(), len(src.Cues), n)
		}
	}
}

func TestStyledASSPreservesInlineStyles(t *testing.T) {
	src, err := VTTParser{}.Parse(roundTripVTT, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}

	out := ASSGenerator{}.Generate(src, GenerateOptions{EnableStyles: true})
	back, err := ASSParser{}.Parse(out, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse generated output: %v", err)
	}

	first := back.Cues[0]
	if first.Styles.Get(StyleVoice) != "Alice" {
		t.Errorf("expected voice Alice, got %v", first.Styles)
	}
	if first.Styles.Get(StyleTextAlign) != "left" {
		t.Errorf("expected left alignment, got %v", first.Styles)
	}
	last := first.Segments[len(first.Segments)-1]
	if last.Text != "there" || !last.Styles.Flag(StyleBold) {
		t.Errorf("expected bold 'there', got %+v", last)
	}

	cue := back.Cues[1].Segments[1]
	if cue.Text != "cue" || cue.Styles.Get(StyleColor) != "#ffff00" {
		t.Errorf("expected yellow 'cue', got %+v", cue)
	}
}

// cue text that looks like markup in one of the output formats
const literalMarkupVTT = `WEBVTT

00:00:01.000 --> 00:00:02.000
C:\new\folder and \h {x} \N
<b>tail\</b>next\

00:00:03.000 --> 00:00:04.000
1 &lt;i&gt; 2 &lt;/b&gt; a &lt; b
`

func TestRoundTripLiteralMarkup(t *testing.T) {
	src, err := VTTParser{}.Parse(literalMarkupVTT, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}
	if got := src.Cues[1].PlainText(); got != "1 <i> 2 </b> a < b" {
		t.Fatalf("unexpected source text %q", got)
	}

	for _, gen := range generators {
		for _, styles := range []bool{false, true} {
			name := string(gen.Format())
			if styles {
				name += "-styled"
			}
			t.Run(name, func(t *testing.T) {
				out := gen.Generate(src, GenerateOptions{EnableStyles: styles})
				if !styles && styleMarkup[gen.Format()].MatchString(out) {
					t.Errorf("unstyled output contains style markup:\n%s", out)
				}
				back, err := parsers[gen.Format()].Parse(out, ParseOptions{})
				if err != nil {
					t.Fatalf("failed to parse generated output: %v\n%s", err, out)
				}
				assertContentEqual(t, src, back)
			})
		}
	}
}
