package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/subconv/internal/subtitle"
)

// DocumentOptions controls how translated text is placed back into cues.
type DocumentOptions struct {
	Concurrency int
	// Overlay keeps the original text below the translation.
	Overlay bool
}

// TranslateDocument translates the text of every non-empty cue and returns a
// new document. Timing, order, IDs and cue-level styles are kept; inline
// styles survive only when the whole cue shared one style set.
func TranslateDocument(
	ctx context.Context,
	tr Translator,
	doc *subtitle.Document,
	opts DocumentOptions,
) (*subtitle.Document, error) {
	out := doc.Clone()

	var items []TranslationItem
	for i, c := range out.Cues {
		text := c.PlainText()
		if strings.TrimSpace(text) == "" {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: text})
	}
	if len(items) == 0 {
		return out, nil
	}

	var (
		results []TranslationResult
		err     error
	)
	if ct, ok := tr.(ConcurrentTranslator); ok {
		results, err = ct.TranslateWithConcurrency(ctx, items, opts.Concurrency)
	} else {
		results, err = tr.Translate(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(out.Cues) {
			return nil, fmt.Errorf("result index %d out of range", r.Index)
		}
		seen[r.Index] = true

		c := &out.Cues[r.Index]
		text := strings.ReplaceAll(r.Text, `\N`, "\n")
		segs := subtitle.TextSegments(text, uniformStyles(*c))
		if opts.Overlay {
			segs = append(segs, subtitle.LineBreak())
			segs = append(segs, c.Segments...)
		}
		c.Segments = segs
	}
	for _, item := range items {
		if !seen[item.Index] {
			return nil, fmt.Errorf("missing translation for cue %d", item.Index+1)
		}
	}

	return out, nil
}

// uniformStyles returns the inline styles shared by every text segment, or
// nil when they differ.
func uniformStyles(c subtitle.Cue) subtitle.Styles {
	var (
		styles subtitle.Styles
		found  bool
	)
	for _, seg := range c.Segments {
		if seg.Break {
			continue
		}
		if !found {
			styles, found = seg.Styles, true
			continue
		}
		if !styles.Equal(seg.Styles) {
			return nil
		}
	}
	return styles
}
