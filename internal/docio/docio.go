package docio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stdio marks a path that refers to stdin or stdout.
const Stdio = "-"

func isStdio(path string) bool {
	return path == "" || path == Stdio
}

// ReadInput reads a subtitle document from path, or from stdin when path is
// empty or "-", and decodes it to a UTF-8 string.
func ReadInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if isStdio(path) {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
	}
	return Decode(data)
}

// Decode converts raw bytes to UTF-8 text. A UTF-16 byte order mark selects
// UTF-16; a UTF-8 byte order mark is removed; anything else is read as UTF-8
// with invalid sequences replaced.
func Decode(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if !hasBOM(data) && looksUTF16(data) {
		decoder = utf16Decoder(data)
	}
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode input: %w", err)
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

// looksUTF16 spots BOM-less UTF-16 by the NUL bytes ASCII text leaves in
// every other position.
func looksUTF16(data []byte) bool {
	if len(data) < 4 || len(data)%2 != 0 {
		return false
	}
	return (data[0] == 0) != (data[1] == 0) && (data[2] == 0) != (data[3] == 0)
}

func utf16Decoder(data []byte) transform.Transformer {
	if data[0] == 0 {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
}

// WriteOutput writes content to path, creating parent directories, or to
// stdout when path is empty or "-".
func WriteOutput(path, content string, stdout io.Writer) error {
	if isStdio(path) {
		if _, err := io.WriteString(stdout, content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := ensureDir(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
