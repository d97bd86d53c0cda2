package subtitle

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// TTParser reads TTML (timed text markup) documents. Every <p> becomes one
// cue; nested styling and region references are flattened into segment
// styles.
type TTParser struct{}

func (TTParser) Format() Format {
	return FormatTT
}

// element or text node of the parsed tree
type ttNode struct {
	name     string
	attrs    []xml.Attr
	children []*ttNode
	text     string
	isText   bool
	line     int
}

func (n *ttNode) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *ttNode) id() string {
	for _, a := range n.attrs {
		if a.Name.Local != "id" {
			continue
		}
		if a.Name.Space == xmlNamespace || a.Name.Space == "xml" ||
			a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

func (n *ttNode) xmlSpace() string {
	for _, a := range n.attrs {
		if a.Name.Local == "space" &&
			(a.Name.Space == xmlNamespace || a.Name.Space == "xml") {
			return a.Value
		}
	}
	return ""
}

func (n *ttNode) child(name string) *ttNode {
	for _, c := range n.children {
		if !c.isText && c.name == name {
			return c
		}
	}
	return nil
}

func isStylingSpace(space string) bool {
	return space == "tts" || strings.HasSuffix(space, "#styling")
}

func isParameterSpace(space string) bool {
	return space == "ttp" || strings.HasSuffix(space, "#parameter")
}

func (TTParser) Parse(text string, _ ParseOptions) (*Document, error) {
	root, err := parseTTTree(text)
	if err != nil {
		return nil, err
	}
	if root.name != "tt" {
		return nil, newParseError(
			FormatTT, MalformedStructure, 0, root.line,
			"root element is <%s>, expected <tt>", root.name,
		)
	}

	params, err := parseTTParams(root)
	if err != nil {
		return nil, err
	}

	w := &ttWalker{
		params:   params,
		styles:   make(map[string]*ttNode),
		regions:  make(map[string]*ttNode),
		resolved: make(map[string]Styles),
		doc:      &Document{},
	}
	if head := root.child("head"); head != nil {
		w.collectDefinitions(head)
	}

	body := root.child("body")
	if body == nil {
		return w.doc, nil
	}
	ctx := ttContext{end: unbounded, preserve: root.xmlSpace() == "preserve"}
	if err := w.walk(body, ctx); err != nil {
		return nil, err
	}
	return w.doc, nil
}

func parseTTTree(text string) (*ttNode, error) {
	dec := xml.NewDecoder(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	dec.Entity = xml.HTMLEntity
	// input is already decoded to UTF-8 whatever the declaration says
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}

	var root *ttNode
	var stack []*ttNode
	for {
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{
				Format: FormatTT,
				Kind:   MalformedStructure,
				Line:   line,
				Msg:    "invalid XML",
				Err:    err,
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &ttNode{name: t.Name.Local, attrs: t.Attr, line: line}
			if len(stack) == 0 {
				if root != nil {
					return nil, newParseError(
						FormatTT, MalformedStructure, 0, line,
						"multiple root elements",
					)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &ttNode{
				isText: true,
				text:   string(t),
				line:   line,
			})
		}
	}

	if root == nil {
		return nil, newParseError(
			FormatTT, MalformedStructure, 0, 0,
			"document has no root element",
		)
	}
	return root, nil
}

// ttParams holds the timing parameters declared on <tt>.
type ttParams struct {
	frameRate    int64
	rateNum      int64
	rateDen      int64
	subFrameRate int64
	tickRate     int64
}

func parseTTParams(root *ttNode) (ttParams, error) {
	p := ttParams{frameRate: 30, rateNum: 1, rateDen: 1, subFrameRate: 1}
	frameRateSet := false

	bad := func(name, value string) error {
		return newParseError(
			FormatTT, MalformedStructure, 0, root.line,
			"invalid ttp:%s %q", name, value,
		)
	}

	for _, a := range root.attrs {
		if !isParameterSpace(a.Name.Space) {
			continue
		}
		value := strings.TrimSpace(a.Value)
		switch a.Name.Local {
		case "frameRate":
			n, err := parseDigits(value, 1, 0)
			if err != nil || n == 0 {
				return p, bad(a.Name.Local, value)
			}
			p.frameRate = int64(n)
			frameRateSet = true
		case "frameRateMultiplier":
			fields := strings.Fields(value)
			if len(fields) != 2 {
				return p, bad(a.Name.Local, value)
			}
			num, err1 := parseDigits(fields[0], 1, 0)
			den, err2 := parseDigits(fields[1], 1, 0)
			if err1 != nil || err2 != nil || num == 0 || den == 0 {
				return p, bad(a.Name.Local, value)
			}
			p.rateNum, p.rateDen = int64(num), int64(den)
		case "subFrameRate":
			n, err := parseDigits(value, 1, 0)
			if err != nil || n == 0 {
				return p, bad(a.Name.Local, value)
			}
			p.subFrameRate = int64(n)
		case "tickRate":
			n, err := parseDigits(value, 1, 0)
			if err != nil || n == 0 {
				return p, bad(a.Name.Local, value)
			}
			p.tickRate = int64(n)
		case "timeBase":
			if value != "media" {
				return p, newParseError(
					FormatTT, UnsupportedFeature, 0, root.line,
					"time base %q is not supported", value,
				)
			}
		}
	}

	if p.tickRate == 0 {
		p.tickRate = 1
		if frameRateSet {
			p.tickRate = p.frameRate * p.subFrameRate
		}
	}
	return p, nil
}

const unbounded time.Duration = -1

// ttContext is what an element inherits from its ancestors.
type ttContext struct {
	begin    time.Duration
	end      time.Duration
	timed    bool
	styles   Styles
	region   string
	preserve bool
}

type ttWalker struct {
	params   ttParams
	styles   map[string]*ttNode
	regions  map[string]*ttNode
	resolved map[string]Styles
	doc      *Document
}

func (w *ttWalker) collectDefinitions(head *ttNode) {
	if styling := head.child("styling"); styling != nil {
		for _, c := range styling.children {
			if !c.isText && c.name == "style" && c.id() != "" {
				w.styles[c.id()] = c
			}
		}
	}
	if layout := head.child("layout"); layout != nil {
		for _, c := range layout.children {
			if !c.isText && c.name == "region" && c.id() != "" {
				w.regions[c.id()] = c
			}
		}
	}
}

// styleRef resolves a named style including the styles it references.
// Unknown names and reference cycles resolve to nothing.
func (w *ttWalker) styleRef(id string, visiting map[string]bool) Styles {
	if s, ok := w.resolved[id]; ok {
		return s
	}
	node, ok := w.styles[id]
	if !ok || visiting[id] {
		return nil
	}
	visiting[id] = true
	s := w.referencedStyles(node, visiting).With(ttsStyles(node))
	delete(visiting, id)
	w.resolved[id] = s
	return s
}

func (w *ttWalker) referencedStyles(
	node *ttNode,
	visiting map[string]bool,
) Styles {
	refs, ok := node.attr("style")
	if !ok {
		return nil
	}
	var out Styles
	for _, ref := range strings.Fields(refs) {
		out = out.With(w.styleRef(ref, visiting))
	}
	return out
}

func (w *ttWalker) regionStyles(id string) Styles {
	region, ok := w.regions[id]
	if !ok {
		return nil
	}
	out := w.referencedStyles(region, map[string]bool{})
	// <style> children of a region apply to it directly
	for _, c := range region.children {
		if !c.isText && c.name == "style" {
			out = out.With(w.referencedStyles(c, map[string]bool{}))
			out = out.With(ttsStyles(c))
		}
	}
	return out.With(ttsStyles(region))
}

// inherit computes the context of node from its parent's.
func (w *ttWalker) inherit(node *ttNode, parent ttContext) (ttContext, error) {
	ctx := parent

	begin, hasBegin, err := w.timeAttr(node, "begin")
	if err != nil {
		return ctx, err
	}
	end, hasEnd, err := w.timeAttr(node, "end")
	if err != nil {
		return ctx, err
	}
	dur, hasDur, err := w.timeAttr(node, "dur")
	if err != nil {
		return ctx, err
	}

	if hasBegin || hasEnd || hasDur {
		ctx.timed = true
		ctx.begin = parent.begin + begin
		switch {
		case hasEnd:
			ctx.end = parent.begin + end
		case hasDur:
			ctx.end = ctx.begin + dur
		default:
			ctx.end = parent.end
		}
		if parent.end != unbounded &&
			(ctx.end == unbounded || ctx.end > parent.end) {
			ctx.end = parent.end
		}
	}

	if region, ok := node.attr("region"); ok {
		ctx.region = region
		ctx.styles = ctx.styles.With(w.regionStyles(region))
	}
	ctx.styles = ctx.styles.
		With(w.referencedStyles(node, map[string]bool{})).
		With(ttsStyles(node))

	switch node.xmlSpace() {
	case "preserve":
		ctx.preserve = true
	case "default":
		ctx.preserve = false
	}
	return ctx, nil
}

func (w *ttWalker) timeAttr(
	node *ttNode,
	name string,
) (time.Duration, bool, error) {
	value, ok := node.attr(name)
	if !ok {
		return 0, false, nil
	}
	d, err := parseTTTime(value, w.params)
	if err != nil {
		return 0, false, &ParseError{
			Format: FormatTT,
			Kind:   MalformedTimestamp,
			Cue:    len(w.doc.Cues) + 1,
			Line:   node.line,
			Msg:    fmt.Sprintf("%s attribute on <%s>", name, node.name),
			Err:    err,
		}
	}
	return d, true, nil
}

func (w *ttWalker) walk(node *ttNode, parent ttContext) error {
	ctx, err := w.inherit(node, parent)
	if err != nil {
		return err
	}
	if node.name == "p" {
		return w.cue(node, ctx)
	}
	for _, c := range node.children {
		if c.isText || (c.name != "div" && c.name != "p") {
			continue
		}
		if err := w.walk(c, ctx); err != nil {
			return err
		}
	}
	return nil
}

// span timing collected while flattening a <p>
type ttSpanBounds struct {
	begin, end time.Duration
	found      bool
}

func (b *ttSpanBounds) add(ctx ttContext) {
	if !ctx.timed || ctx.end == unbounded {
		return
	}
	if !b.found || ctx.begin < b.begin {
		b.begin = ctx.begin
	}
	if !b.found || ctx.end > b.end {
		b.end = ctx.end
	}
	b.found = true
}

func (w *ttWalker) cue(p *ttNode, ctx ttContext) error {
	var segs []Segment
	var bounds ttSpanBounds
	if err := w.flatten(p, ctx, false, &segs, &bounds); err != nil {
		return err
	}
	if !ctx.preserve {
		segs = trimLineEdges(segs)
	}

	start, end := ctx.begin, ctx.end
	if !ctx.timed || end == unbounded {
		if !bounds.found {
			return newParseError(
				FormatTT, MalformedStructure, len(w.doc.Cues)+1, p.line,
				"<p> has no time interval",
			)
		}
		if !ctx.timed {
			start = bounds.begin
		}
		end = bounds.end
	}
	if end < start {
		return newParseError(
			FormatTT, MalformedTimestamp, len(w.doc.Cues)+1, p.line,
			"end %v before begin %v", end, start,
		)
	}

	var cueStyles Styles
	if ctx.region != "" {
		cueStyles = Styles{StyleRegion: ctx.region}
	}
	for _, key := range []string{
		StyleOrigin, StyleExtent, StyleDisplayAlign, StyleTextAlign,
	} {
		if v, ok := ctx.styles[key]; ok {
			cueStyles = cueStyles.Set(key, v)
		}
	}

	w.doc.Cues = append(w.doc.Cues, Cue{
		ID:        p.id(),
		StartTime: truncateMillis(start),
		EndTime:   truncateMillis(end),
		Segments:  segs,
		Styles:    cueStyles,
	})
	return nil
}

// flatten appends the content of node to segs. Element children other than
// <span> and <br> contribute nothing.
func (w *ttWalker) flatten(
	node *ttNode,
	ctx ttContext,
	isSpan bool,
	segs *[]Segment,
	bounds *ttSpanBounds,
) error {
	if isSpan {
		bounds.add(ctx)
	}
	for _, c := range node.children {
		switch {
		case c.isText:
			w.appendTTText(segs, c.text, ctx)
		case c.name == "br":
			*segs = append(*segs, LineBreak())
		case c.name == "span":
			child, err := w.inherit(c, ctx)
			if err != nil {
				return err
			}
			if err := w.flatten(c, child, true, segs, bounds); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *ttWalker) appendTTText(segs *[]Segment, text string, ctx ttContext) {
	if ctx.preserve {
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				*segs = append(*segs, LineBreak())
			}
			*segs = appendText(*segs, line, ctx.styles)
		}
		return
	}
	text = collapseSpace(text)
	// whitespace folds across span boundaries too
	if n := len(*segs); n > 0 && strings.HasPrefix(text, " ") {
		if last := (*segs)[n-1]; !last.Break && strings.HasSuffix(last.Text, " ") {
			text = text[1:]
		}
	}
	*segs = appendText(*segs, text, ctx.styles)
}

// collapseSpace folds XML whitespace runs into single spaces.
func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// trimLineEdges strips leading and trailing spaces of every line and drops
// segments left empty.
func trimLineEdges(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	lineStart := 0
	flush := func() {
		line := out[lineStart:]
		for len(line) > 0 {
			line[0].Text = strings.TrimLeft(line[0].Text, " ")
			if line[0].Text != "" {
				break
			}
			line = line[1:]
		}
		for len(line) > 0 {
			last := &line[len(line)-1]
			last.Text = strings.TrimRight(last.Text, " ")
			if last.Text != "" {
				break
			}
			line = line[:len(line)-1]
		}
		out = append(out[:lineStart], line...)
	}
	for _, seg := range segs {
		if seg.Break {
			flush()
			out = append(out, seg)
			lineStart = len(out)
			continue
		}
		out = append(out, seg)
	}
	flush()
	if len(out) == 0 {
		return nil
	}
	return out
}

// ttsStyles maps the tts:* attributes of node onto canonical style keys.
func ttsStyles(node *ttNode) Styles {
	var out Styles
	set := func(k, v string) {
		if out == nil {
			out = Styles{}
		}
		out[k] = v
	}
	for _, a := range node.attrs {
		if !isStylingSpace(a.Name.Space) {
			continue
		}
		value := strings.TrimSpace(a.Value)
		switch a.Name.Local {
		case "color":
			set(StyleColor, normalizeColor(value))
		case "backgroundColor":
			set(StyleBackgroundColor, normalizeColor(value))
		case "fontWeight":
			set(StyleBold, boolFlag(value == "bold"))
		case "fontStyle":
			set(StyleItalic, boolFlag(value == "italic" || value == "oblique"))
		case "textDecoration":
			for _, d := range strings.Fields(value) {
				switch d {
				case "underline":
					set(StyleUnderline, flagOn)
				case "noUnderline":
					set(StyleUnderline, boolFlag(false))
				case "lineThrough":
					set(StyleStrikethrough, flagOn)
				case "noLineThrough":
					set(StyleStrikethrough, boolFlag(false))
				case "none":
					set(StyleUnderline, boolFlag(false))
					set(StyleStrikethrough, boolFlag(false))
				}
			}
		case "fontFamily":
			set(StyleFontFamily, value)
		case "fontSize":
			set(StyleFontSize, value)
		case "textAlign":
			set(StyleTextAlign, value)
		case "displayAlign":
			set(StyleDisplayAlign, value)
		case "origin":
			set(StyleOrigin, value)
		case "extent":
			set(StyleExtent, value)
		default:
			set(a.Name.Local, value)
		}
	}
	return out
}

func boolFlag(on bool) string {
	if on {
		return flagOn
	}
	return "false"
}
