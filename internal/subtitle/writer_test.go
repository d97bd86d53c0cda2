package subtitle

import (
	"strings"
	"testing"
)

func styledDocument() *Document {
	return &Document{Cues: []Cue{
		{
			ID:        "intro",
			StartTime: ms(1000),
			EndTime:   ms(4000),
			Segments: []Segment{
				{Text: "Bold", Styles: Styles{StyleBold: "true"}},
				{Text: " plain & <odd> {x}"},
				LineBreak(),
				{Text: "red", Styles: Styles{
					StyleColor:  "#ff0000",
					StyleItalic: "true",
				}},
			},
			Styles: Styles{
				StyleTextAlign:    "center",
				StyleDisplayAlign: "before",
				StyleAlign:        "center",
				StyleLine:         "10%",
			},
		},
		{
			StartTime: ms(5500),
			EndTime:   ms(8200),
			Segments: []Segment{
				{Text: "Speaker line", Styles: Styles{
					StyleVoice:     "Roger",
					StyleUnderline: "true",
				}},
			},
		},
	}}
}

func TestGenerateFromVTTWithSkew(t *testing.T) {
	src := "WEBVTT\n\n00:00:01.000 --> 00:00:03.500\nHello\n"
	doc, err := VTTParser{}.Parse(src, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	out := SRTGenerator{}.Generate(
		Transform(doc, TransformOptions{TimestampSkew: ms(500)}),
		GenerateOptions{},
	)

	want := "1\n00:00:01,500 --> 00:00:04,000\nHello\n\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestSRTGenerator(t *testing.T) {
	doc := styledDocument()

	plain := SRTGenerator{}.Generate(doc, GenerateOptions{})
	wantPlain := "1\n00:00:01,000 --> 00:00:04,000\n" +
		"Bold plain & <\u200dodd> {x}\nred\n\n" +
		"2\n00:00:05,500 --> 00:00:08,200\nSpeaker line\n\n"
	if plain != wantPlain {
		t.Errorf("plain output:\nexpected %q\ngot      %q", wantPlain, plain)
	}

	styled := SRTGenerator{}.Generate(doc, GenerateOptions{EnableStyles: true})
	for _, want := range []string{
		"<b>Bold</b> plain",
		`<font color="#ff0000"><i>red</i></font>`,
		"<u>Speaker line</u>",
	} {
		if !strings.Contains(styled, want) {
			t.Errorf("styled output missing %q:\n%s", want, styled)
		}
	}
}

func TestASSGenerator(t *testing.T) {
	doc := styledDocument()

	plain := ASSGenerator{}.Generate(doc, GenerateOptions{})
	for _, want := range []string{
		"[Script Info]\nTitle: subconv\nScriptType: v4.00+\nCollisions: Normal\n",
		"Style: Default,Arial,20,&H00FFFFFF",
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n",
		"Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Bold plain & <odd> \\{x\\}\\Nred\n",
		"Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,Speaker line\n",
	} {
		if !strings.Contains(plain, want) {
			t.Errorf("plain output missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "WrapStyle") {
		t.Errorf("plain output should use the minimal header:\n%s", plain)
	}

	styled := ASSGenerator{Title: "Styled"}.Generate(
		doc,
		GenerateOptions{EnableStyles: true},
	)
	for _, want := range []string{
		"Title: Styled\n",
		"WrapStyle: 0\n",
		"Default,,0,0,0,,{\\an8}{\\b1}Bold{\\b0} plain & <odd> \\{x\\}\\N{\\i1\\c&H0000FF&}red\n",
		"Default,Roger,0,0,0,,{\\u1}Speaker line\n",
	} {
		if !strings.Contains(styled, want) {
			t.Errorf("styled output missing %q:\n%s", want, styled)
		}
	}
}

func TestASSGeneratorEscapesLiteralOverrides(t *testing.T) {
	doc := &Document{Cues: []Cue{{
		StartTime: ms(1000),
		EndTime:   ms(2000),
		Segments: []Segment{
			{Text: `C:\new\folder \h {x} \`},
			{Text: "bold", Styles: Styles{StyleBold: "true"}},
		},
	}}}

	tests := []struct {
		name   string
		styles bool
		want   string
	}{
		{
			name: "plain",
			want: ",,C:\\\u2060new\\\u2060folder \\\u2060h \\{x\\} \\\u2060bold\n",
		},
		{
			name:   "styled",
			styles: true,
			want:   ",,C:\\\u2060new\\\u2060folder \\\u2060h \\{x\\} \\\u2060{\\b1}bold\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ASSGenerator{}.Generate(doc, GenerateOptions{EnableStyles: tt.styles})
			if !strings.HasSuffix(out, tt.want) {
				t.Errorf("expected dialogue ending %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestSRTGeneratorBreaksLiteralTags(t *testing.T) {
	doc := &Document{Cues: []Cue{{
		StartTime: ms(1000),
		EndTime:   ms(2000),
		Segments:  []Segment{{Text: "1 <i> 2 </b> a < b"}},
	}}}

	for _, styles := range []bool{false, true} {
		out := SRTGenerator{}.Generate(doc, GenerateOptions{EnableStyles: styles})
		want := "1 <\u200di> 2 <\u200d/b> a < b\n"
		if !strings.Contains(out, want) {
			t.Errorf("styles=%v: expected %q in:\n%s", styles, want, out)
		}
	}
}

func TestVTTGenerator(t *testing.T) {
	doc := styledDocument()

	plain := VTTGenerator{}.Generate(doc, GenerateOptions{})
	wantPlain := "WEBVTT\n\n" +
		"intro\n00:00:01.000 --> 00:00:04.000\n" +
		"Bold plain &amp; &lt;odd&gt; {x}\nred\n\n" +
		"00:00:05.500 --> 00:00:08.200\nSpeaker line\n\n"
	if plain != wantPlain {
		t.Errorf("plain output:\nexpected %q\ngot      %q", wantPlain, plain)
	}

	styled := VTTGenerator{}.Generate(doc, GenerateOptions{EnableStyles: true})
	for _, want := range []string{
		"00:00:01.000 --> 00:00:04.000 line:10% align:center\n",
		"<b>Bold</b> plain",
		"<c.red><i>red</i></c>",
		"<v Roger><u>Speaker line</u></v>",
	} {
		if !strings.Contains(styled, want) {
			t.Errorf("styled output missing %q:\n%s", want, styled)
		}
	}
}

func TestGeneratorsDropBlankLines(t *testing.T) {
	doc := &Document{Cues: []Cue{{
		StartTime: 0,
		EndTime:   ms(1000),
		Segments:  TextSegments("\nfirst\n\nsecond\n", nil),
	}}}

	srt := SRTGenerator{}.Generate(doc, GenerateOptions{})
	if want := "1\n00:00:00,000 --> 00:00:01,000\nfirst\nsecond\n\n"; srt != want {
		t.Errorf("expected %q, got %q", want, srt)
	}

	back, err := SRTParser{}.Parse(srt, ParseOptions{})
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(back.Cues) != 1 {
		t.Errorf("expected 1 cue, got %d", len(back.Cues))
	}
}

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"movie.srt", FormatSRT, true},
		{"/tmp/captions.VTT", FormatVTT, true},
		{"show.ssa", FormatASS, true},
		{"show.ass", FormatASS, true},
		{"subs.ttml", FormatTT, true},
		{"subs.dfxp", FormatTT, true},
		{"notes.txt", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromExtension(tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}

	if ext := ExtensionForFormat(FormatASS); ext != ".ass" {
		t.Errorf("expected .ass, got %s", ext)
	}
}
