package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/subconv/internal/logging"
	"github.com/mgpai22/subconv/internal/subtitle"
	"github.com/mgpai22/subconv/internal/translate"
)

// Options selects the formats and the optional stages of one conversion.
type Options struct {
	InputFormat   string
	OutputFormat  string
	TimestampSkew time.Duration
	EnableStyles  bool
	// Title is written to the ASS script header.
	Title string
	// Translator enables the translation stage when set.
	Translator  translate.Translator
	Translation translate.DocumentOptions
}

// Result carries the rendered output and what produced it.
type Result struct {
	Output   string
	Document *subtitle.Document
	Format   OutputFormat
}

// Converter runs parse, skew, optional translation and generation.
type Converter struct {
	logger *logging.Logger
}

func New(logger *logging.Logger) *Converter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Converter{logger: logger}
}

// Convert turns source text into the selected output format. Format
// selection fails with *UnsupportedFormatError before any parsing happens;
// parse failures are returned as the parser's *subtitle.ParseError.
func (c *Converter) Convert(
	ctx context.Context,
	text string,
	opts Options,
) (*Result, error) {
	parser, err := LookupInput(opts.InputFormat)
	if err != nil {
		return nil, err
	}
	out, err := LookupOutput(opts.OutputFormat)
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(text, subtitle.ParseOptions{})
	if err != nil {
		return nil, err
	}
	c.logger.Debugw("Parsed document",
		"format", parser.Format(),
		"cues", len(doc.Cues),
	)

	doc = subtitle.Transform(doc, subtitle.TransformOptions{
		TimestampSkew: opts.TimestampSkew,
	})
	if opts.TimestampSkew != 0 {
		c.logger.Debugw("Applied timestamp skew", "skew", opts.TimestampSkew)
	}

	if opts.Translator != nil {
		c.logger.Infow("Translating cues",
			"cues", len(doc.Cues),
			"concurrency", opts.Translation.Concurrency,
		)
		doc, err = translate.TranslateDocument(ctx, opts.Translator, doc, opts.Translation)
		if err != nil {
			return nil, fmt.Errorf("translation failed: %w", err)
		}
	}

	gen := out.Generator
	if ass, ok := gen.(subtitle.ASSGenerator); ok && opts.Title != "" {
		ass.Title = opts.Title
		gen = ass
	}
	styles := opts.EnableStyles || out.ForceStyles
	output := gen.Generate(doc, subtitle.GenerateOptions{EnableStyles: styles})
	c.logger.Debugw("Generated output",
		"format", out.Key,
		"styles", styles,
		"bytes", len(output),
	)

	return &Result{Output: output, Document: doc, Format: out}, nil
}
