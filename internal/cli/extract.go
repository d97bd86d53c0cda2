package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subconv/internal/convert"
	"github.com/mgpai22/subconv/internal/ffmpeg"
	"github.com/mgpai22/subconv/internal/media"
)

func newExtractCmd(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [media_file]",
		Short: "Extract a subtitle track from a media file and convert it",
		Long: `Extract a text subtitle stream from a media container with ffmpeg and
run it through the normal conversion pipeline.

ASS tracks keep their styling; other text tracks are read as WebVTT.
Image-based tracks (PGS, VobSub) cannot be converted.

Examples:
  subconv extract movie.mkv --list
  subconv extract movie.mkv --stream 1 -o movie.srt
  subconv extract movie.mp4 --output-format ass --timestamp-skew -250`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(ctx, cmd, args)
		},
	}

	cmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream index (0 = first subtitle stream)")
	cmd.Flags().
		Bool("list", false, "List subtitle streams and exit")
	addPipelineFlags(cmd)
	return cmd
}

func runExtract(ctx *commandContext, cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("media file: %w", err)
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := ctx.log()

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	streams, probeErr := media.ProbeSubtitles(runCtx, mediaPath)
	list, _ := cmd.Flags().GetBool("list")
	if list {
		if probeErr != nil {
			return probeErr
		}
		printStreams(cmd, streams)
		return nil
	}

	index := intFlag(cmd, "stream", cfg.Media.Stream)
	if index < 0 {
		return fmt.Errorf("stream must not be negative, got %d", index)
	}
	var stream media.SubtitleStream
	if probeErr != nil {
		logger.Warnw("Could not probe subtitle streams, extracting as WebVTT",
			"error", probeErr,
		)
		stream = media.SubtitleStream{Index: index}
	} else if stream, err = media.SelectStream(streams, index); err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	outputKey, err := resolveOutputFormat(cmd, cfg, outputPath)
	if err != nil {
		return err
	}
	if _, err := convert.LookupOutput(outputKey); err != nil {
		return err
	}
	opts, err := pipelineOptions(runCtx, cmd, cfg, outputKey)
	if err != nil {
		return err
	}

	ffmpegPath, err := ffmpeg.Locate(cfg.Media.FFmpegPath)
	if err != nil {
		return err
	}

	extracted, err := media.NewExtractor(ffmpegPath, logger).Extract(runCtx, mediaPath, stream)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	opts.InputFormat = extracted.InputKey

	res, err := convert.New(logger).Convert(runCtx, extracted.Text, opts)
	if err != nil {
		return err
	}

	logger.Infow("Extraction complete",
		"stream", stream.Index,
		"cues", len(res.Document.Cues),
	)
	return writeResult(cmd, outputPath, res)
}

func printStreams(cmd *cobra.Command, streams []media.SubtitleStream) {
	out := cmd.OutOrStdout()
	if len(streams) == 0 {
		fmt.Fprintln(out, "No subtitle streams found")
		return
	}

	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		note := ""
		if !s.Text() {
			note = "not convertible"
		} else if s.Default {
			note = "default"
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.Codec,
			orDash(s.Language),
			orDash(s.Title),
			note,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stream", "Codec", "Language", "Title", "Note"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
