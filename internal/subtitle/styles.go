package subtitle

import "sort"

// canonical style keys shared by parsers and generators
const (
	StyleBold            = "bold"
	StyleItalic          = "italic"
	StyleUnderline       = "underline"
	StyleStrikethrough   = "strikethrough"
	StyleColor           = "color"
	StyleBackgroundColor = "backgroundColor"
	StyleFontFamily      = "fontFamily"
	StyleFontSize        = "fontSize"
	StyleTextAlign       = "textAlign"
	StyleDisplayAlign    = "displayAlign"
	StyleOrigin          = "origin"
	StyleExtent          = "extent"
	StyleRegion          = "region"
	StyleVoice           = "voice"
	StyleClass           = "class"
	StyleLang            = "lang"

	// WebVTT cue settings
	StyleLine     = "line"
	StylePosition = "position"
	StyleSize     = "size"
	StyleAlign    = "align"
	StyleVertical = "vertical"
)

const flagOn = "true"

// Styles is an open set of style annotations. Generators map the keys they
// understand and ignore the rest.
type Styles map[string]string

func (s Styles) Clone() Styles {
	if len(s) == 0 {
		return nil
	}
	out := make(Styles, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a new set holding s overridden by other.
func (s Styles) With(other Styles) Styles {
	if len(other) == 0 {
		return s.Clone()
	}
	out := make(Styles, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Set returns a copy of s with key set to value.
func (s Styles) Set(key, value string) Styles {
	return s.With(Styles{key: value})
}

func (s Styles) Get(key string) string {
	return s[key]
}

// Flag reports whether a boolean style is switched on.
func (s Styles) Flag(key string) bool {
	return s[key] == flagOn
}

// Keys returns the style keys in sorted order.
func (s Styles) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Styles) Equal(other Styles) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
