package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

type rgba struct {
	R, G, B, A uint8
}

var namedColors = map[string]rgba{
	"black":       {0, 0, 0, 255},
	"silver":      {192, 192, 192, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"white":       {255, 255, 255, 255},
	"maroon":      {128, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"purple":      {128, 0, 128, 255},
	"fuchsia":     {255, 0, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"olive":       {128, 128, 0, 255},
	"yellow":      {255, 255, 0, 255},
	"navy":        {0, 0, 128, 255},
	"blue":        {0, 0, 255, 255},
	"teal":        {0, 128, 128, 255},
	"aqua":        {0, 255, 255, 255},
	"cyan":        {0, 255, 255, 255},
	"orange":      {255, 165, 0, 255},
	"transparent": {0, 0, 0, 0},
}

// WebVTT default color classes, in the order they are tried when mapping a
// color back to a class
var vttColorClasses = []string{
	"white", "lime", "cyan", "red", "yellow", "magenta", "blue", "black",
}

// parseColor understands #rgb, #rrggbb, #rrggbbaa, rgb(), rgba() and the
// basic named colors.
func parseColor(value string) (rgba, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	if inner, ok := functionArgs(v, "rgba"); ok {
		return parseRGBArgs(inner, 4)
	}
	if inner, ok := functionArgs(v, "rgb"); ok {
		return parseRGBArgs(inner, 3)
	}
	return rgba{}, false
}

func functionArgs(v, name string) (string, bool) {
	if !strings.HasPrefix(v, name+"(") || !strings.HasSuffix(v, ")") {
		return "", false
	}
	return v[len(name)+1 : len(v)-1], true
}

func parseHexColor(hex string) (rgba, bool) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return rgba{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgba{}, false
	}
	if len(hex) == 6 {
		return rgba{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, true
	}
	return rgba{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, true
}

func parseRGBArgs(inner string, count int) (rgba, bool) {
	fields := strings.Split(inner, ",")
	if len(fields) != count {
		return rgba{}, false
	}
	var vals [4]uint8
	vals[3] = 255
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 || n > 255 {
			return rgba{}, false
		}
		vals[i] = uint8(n)
	}
	return rgba{vals[0], vals[1], vals[2], vals[3]}, true
}

// parseASSColor reads &HAABBGGRR& / &HBBGGRR& values. ASS alpha is
// inverted (00 is opaque).
func parseASSColor(value string) (rgba, bool) {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(v, "&")
	if len(v) < 2 || !strings.EqualFold(v[:2], "&h") {
		return rgba{}, false
	}
	n, err := strconv.ParseUint(v[2:], 16, 32)
	if err != nil {
		return rgba{}, false
	}
	return rgba{
		R: uint8(n),
		G: uint8(n >> 8),
		B: uint8(n >> 16),
		A: 255 - uint8(n>>24),
	}, true
}

// normalizeColor returns the canonical #rrggbb form, or the input unchanged
// when it cannot be parsed.
func normalizeColor(value string) string {
	c, ok := parseColor(value)
	if !ok {
		return value
	}
	return c.hex()
}

func (c rgba) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c rgba) ass() string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.B, c.G, c.R)
}

// vttClass maps a color onto one of the WebVTT default classes.
func (c rgba) vttClass() (string, bool) {
	for _, name := range vttColorClasses {
		if namedColors[name] == c {
			return name, true
		}
	}
	return "", false
}
