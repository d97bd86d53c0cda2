package convert

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mgpai22/subconv/internal/subtitle"
)

// UnsupportedFormatError reports an unknown format selection key.
type UnsupportedFormatError struct {
	Direction string // "input" or "output"
	Key       string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf(
		"unsupported %s format %q (supported: %s)",
		e.Direction,
		e.Key,
		strings.Join(keysFor(e.Direction), ", "),
	)
}

// OutputFormat pairs a generator with the options its key implies.
type OutputFormat struct {
	Key       string
	Generator subtitle.Generator
	// ForceStyles turns style emission on regardless of the caller's choice.
	ForceStyles bool
}

var inputFormats = map[string]subtitle.Parser{
	"vtt": subtitle.VTTParser{},
	"tt":  subtitle.TTParser{},
	"srt": subtitle.SRTParser{},
	"ass": subtitle.ASSParser{},
}

var outputFormats = map[string]OutputFormat{
	"srt":        {Key: "srt", Generator: subtitle.SRTGenerator{}},
	"srt-styled": {Key: "srt-styled", Generator: subtitle.SRTGenerator{}, ForceStyles: true},
	"ass":        {Key: "ass", Generator: subtitle.ASSGenerator{}, ForceStyles: true},
	"vtt":        {Key: "vtt", Generator: subtitle.VTTGenerator{}},
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// LookupInput returns the parser registered for key.
func LookupInput(key string) (subtitle.Parser, error) {
	p, ok := inputFormats[normalizeKey(key)]
	if !ok {
		return nil, &UnsupportedFormatError{Direction: "input", Key: key}
	}
	return p, nil
}

// LookupOutput returns the generator registered for key.
func LookupOutput(key string) (OutputFormat, error) {
	f, ok := outputFormats[normalizeKey(key)]
	if !ok {
		return OutputFormat{}, &UnsupportedFormatError{Direction: "output", Key: key}
	}
	return f, nil
}

// InputKeys lists the input selection keys in sorted order.
func InputKeys() []string {
	return sortedKeys(inputFormats)
}

// OutputKeys lists the output selection keys in sorted order.
func OutputKeys() []string {
	return sortedKeys(outputFormats)
}

func keysFor(direction string) []string {
	if direction == "input" {
		return InputKeys()
	}
	return OutputKeys()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// InputKeyForPath infers an input key from a file extension.
func InputKeyForPath(path string) (string, bool) {
	f, ok := subtitle.FormatFromExtension(path)
	if !ok {
		return "", false
	}
	_, registered := inputFormats[string(f)]
	return string(f), registered
}

// OutputKeyForPath infers an output key from a file extension.
func OutputKeyForPath(path string) (string, bool) {
	f, ok := subtitle.FormatFromExtension(path)
	if !ok {
		return "", false
	}
	_, registered := outputFormats[string(f)]
	return string(f), registered
}

// OutputPath derives an output file name from the input path and key,
// e.g. "movie.vtt" with "srt-styled" becomes "movie.srt".
func OutputPath(inputPath, key string) string {
	f, err := LookupOutput(key)
	if err != nil {
		return ""
	}
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + subtitle.ExtensionForFormat(f.Generator.Format())
}
