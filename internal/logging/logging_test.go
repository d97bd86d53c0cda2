package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	quiet := NewLogger(false)
	if quiet.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Error("non-verbose logger should not emit info")
	}
	if !quiet.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Error("non-verbose logger should emit warnings")
	}

	loud := NewLogger(true)
	if !loud.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should emit debug")
	}
}

func TestFromZapKeepsFields(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Infow("converted document", "cues", 3, "output_format", "srt")

	records := observed.All()
	if len(records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(records))
	}
	fields := records[0].ContextMap()
	if fields["cues"] != int64(3) || fields["output_format"] != "srt" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Warnw("ignored", "key", "value")
	logger.Sync()
}
