package subtitle

import "time"

// TransformOptions holds document-wide timing adjustments.
type TransformOptions struct {
	// shift applied to every cue, negative moves cues earlier
	TimestampSkew time.Duration
}

// Transform returns a new document with opts applied. The input is never
// modified.
func Transform(doc *Document, opts TransformOptions) *Document {
	return Skew(doc, opts.TimestampSkew)
}

// Skew shifts every cue by d. Start times clamp at zero and end times clamp
// at the (clamped) start, so a cue pushed before zero keeps a valid range.
func Skew(doc *Document, d time.Duration) *Document {
	out := doc.Clone()
	d = truncateMillis(d)
	if d == 0 {
		return out
	}

	for i := range out.Cues {
		c := &out.Cues[i]
		start := max(0, c.StartTime+d)
		end := max(start, c.EndTime+d)
		c.StartTime, c.EndTime = start, end
	}
	return out
}
