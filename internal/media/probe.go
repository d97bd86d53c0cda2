package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const probeTimeout = 30 * time.Second

// SubtitleStream describes one subtitle track inside a media container.
type SubtitleStream struct {
	// Index is the position among subtitle streams, as used by "0:s:N".
	Index    int
	Codec    string
	Language string
	Title    string
	Default  bool
}

// Text reports whether the stream holds text that can be converted.
func (s SubtitleStream) Text() bool {
	_, ok := subtitleCodecs[s.Codec]
	return ok
}

type probeOutput struct {
	Streams []struct {
		CodecType   string            `json:"codec_type"`
		CodecName   string            `json:"codec_name"`
		Tags        map[string]string `json:"tags"`
		Disposition map[string]int    `json:"disposition"`
	} `json:"streams"`
}

// ProbeSubtitles lists the subtitle streams of a media file with ffprobe.
func ProbeSubtitles(ctx context.Context, path string) ([]SubtitleStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := ffmpeg.ProbeWithTimeout(path, probeTimeout, ffmpeg.KwArgs{
		"select_streams": "s",
	})
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(data string) ([]SubtitleStream, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var streams []SubtitleStream
	for _, s := range probe.Streams {
		if s.CodecType != "subtitle" {
			continue
		}
		streams = append(streams, SubtitleStream{
			Index:    len(streams),
			Codec:    strings.ToLower(s.CodecName),
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
			Default:  s.Disposition["default"] == 1,
		})
	}
	return streams, nil
}
