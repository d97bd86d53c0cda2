package docio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func encodeUTF16(t *testing.T, s string, endian unicode.Endianness, bom unicode.BOMPolicy) []byte {
	t.Helper()
	out, err := unicode.UTF16(endian, bom).NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func TestDecode(t *testing.T) {
	const text = "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nCafé\n"

	tests := []struct {
		name string
		data []byte
	}{
		{"utf8", []byte(text)},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{"utf16le bom", encodeUTF16(t, text, unicode.LittleEndian, unicode.UseBOM)},
		{"utf16be bom", encodeUTF16(t, text, unicode.BigEndian, unicode.UseBOM)},
		{"utf16le no bom", encodeUTF16(t, text, unicode.LittleEndian, unicode.IgnoreBOM)},
		{"utf16be no bom", encodeUTF16(t, text, unicode.BigEndian, unicode.IgnoreBOM)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != text {
				t.Errorf("got %q, want %q", got, text)
			}
		})
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	got, err := Decode([]byte("ok \xff text"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok \ufffd text" {
		t.Errorf("got %q", got)
	}
}

func TestReadInput(t *testing.T) {
	got, err := ReadInput("", strings.NewReader("from stdin"))
	if err != nil || got != "from stdin" {
		t.Fatalf("stdin: got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "in.srt")
	if err := os.WriteFile(path, []byte("from file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = ReadInput(path, nil)
	if err != nil || got != "from file" {
		t.Fatalf("file: got %q, %v", got, err)
	}

	if _, err := ReadInput(filepath.Join(t.TempDir(), "missing.srt"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	if err := WriteOutput(Stdio, "to stdout", &stdout); err != nil {
		t.Fatalf("stdout: %v", err)
	}
	if stdout.String() != "to stdout" {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "a", "b", "out.ass")
	if err := WriteOutput(path, "to file", nil); err != nil {
		t.Fatalf("file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "to file" {
		t.Fatalf("unexpected file content %q, %v", data, err)
	}
}
