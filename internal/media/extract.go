package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subconv/internal/docio"
	"github.com/mgpai22/subconv/internal/logging"
)

// demux target for a source codec: ffmpeg codec/muxer name and the input
// format key the result is parsed with
type demuxTarget struct {
	codec    string
	muxer    string
	ext      string
	inputKey string
}

var (
	webvttTarget = demuxTarget{codec: "webvtt", muxer: "webvtt", ext: ".vtt", inputKey: "vtt"}
	assTarget    = demuxTarget{codec: "ass", muxer: "ass", ext: ".ass", inputKey: "ass"}
)

// text subtitle codecs ffmpeg can transcode; ASS sources keep their styling
var subtitleCodecs = map[string]demuxTarget{
	"ass":       assTarget,
	"ssa":       assTarget,
	"subrip":    webvttTarget,
	"srt":       webvttTarget,
	"webvtt":    webvttTarget,
	"mov_text":  webvttTarget,
	"text":      webvttTarget,
	"ttml":      webvttTarget,
	"microdvd":  webvttTarget,
	"subviewer": webvttTarget,
}

func targetFor(codec string) demuxTarget {
	if t, ok := subtitleCodecs[codec]; ok {
		return t
	}
	return webvttTarget
}

// Extracted is a subtitle track pulled out of a container.
type Extracted struct {
	Text string
	// InputKey selects the parser for Text.
	InputKey string
	Stream   SubtitleStream
}

// Extractor demuxes subtitle streams with ffmpeg.
type Extractor struct {
	ffmpegPath string
	logger     *logging.Logger
}

func NewExtractor(ffmpegPath string, logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extractor{ffmpegPath: ffmpegPath, logger: logger}
}

func (e *Extractor) command(mediaPath, outputPath string, stream SubtitleStream) *ffmpeg.Stream {
	target := targetFor(stream.Codec)
	return ffmpeg.Input(mediaPath).
		Output(outputPath, ffmpeg.KwArgs{
			"map": fmt.Sprintf("0:s:%d", stream.Index),
			"c:s": target.codec,
			"f":   target.muxer,
		}).
		OverWriteOutput().
		SetFfmpegPath(e.ffmpegPath)
}

// Extract writes the selected subtitle stream to a temporary file and returns
// its decoded text. Image-based streams cannot be converted.
func (e *Extractor) Extract(
	ctx context.Context,
	mediaPath string,
	stream SubtitleStream,
) (*Extracted, error) {
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", mediaPath)
	}
	if stream.Codec != "" && !stream.Text() {
		return nil, fmt.Errorf(
			"subtitle stream %d uses %s, an image or unsupported codec",
			stream.Index,
			stream.Codec,
		)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "subconv-extract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	target := targetFor(stream.Codec)
	outputPath := filepath.Join(tempDir, "stream"+target.ext)

	e.logger.Infow("Extracting subtitle stream",
		"media", mediaPath,
		"stream", stream.Index,
		"codec", stream.Codec,
		"language", stream.Language,
	)

	if err := e.command(mediaPath, outputPath, stream).Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	text, err := docio.ReadInput(outputPath, nil)
	if err != nil {
		return nil, err
	}
	return &Extracted{Text: text, InputKey: target.inputKey, Stream: stream}, nil
}

// SelectStream picks the stream at index, or reports what is available.
func SelectStream(streams []SubtitleStream, index int) (SubtitleStream, error) {
	if len(streams) == 0 {
		return SubtitleStream{}, fmt.Errorf("no subtitle streams found")
	}
	if index < 0 || index >= len(streams) {
		return SubtitleStream{}, fmt.Errorf(
			"subtitle stream %d out of range: file has %d subtitle streams",
			index,
			len(streams),
		)
	}
	return streams[index], nil
}
