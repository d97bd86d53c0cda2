package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subconv/internal/convert"
	"github.com/mgpai22/subconv/internal/docio"
)

func newConvertCmd(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input_file]",
		Short: "Convert a subtitle document to another format",
		Long: `Convert a subtitle document between formats.

Input formats: vtt, tt, srt, ass. Output formats: srt, srt-styled, ass, vtt.
srt-styled and ass always carry style markup; --styles turns it on for srt
and vtt. Input is read from stdin and output written to stdout unless files
are given. Formats are inferred from file extensions when not set.

Examples:
  subconv convert --input-format vtt --output-format srt < in.vtt > out.srt
  subconv convert captions.ttml -o captions.ass
  subconv convert in.vtt --output-format srt --timestamp-skew 500
  subconv convert in.srt -o out.srt --target-language japanese --provider openai`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(ctx, cmd, args)
		},
	}

	cmd.Flags().
		StringP("input", "i", "", "Input file path (default: stdin)")
	cmd.Flags().
		String("input-format", "", "Input format: "+strings.Join(convert.InputKeys(), ", "))
	addPipelineFlags(cmd)
	return cmd
}

func runConvert(ctx *commandContext, cmd *cobra.Command, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := ctx.log()

	inputPath, _ := cmd.Flags().GetString("input")
	if len(args) == 1 {
		if inputPath != "" && inputPath != args[0] {
			return fmt.Errorf("input given twice: %q and %q", inputPath, args[0])
		}
		inputPath = args[0]
	}
	outputPath, _ := cmd.Flags().GetString("output")

	inputKey := stringFlag(cmd, "input-format", cfg.Convert.InputFormat)
	if inputKey == "" {
		key, ok := convert.InputKeyForPath(inputPath)
		if !ok {
			return fmt.Errorf(
				"input format is required: use --input-format (%s) or an input file with a known extension",
				strings.Join(convert.InputKeys(), ", "),
			)
		}
		inputKey = key
	}
	outputKey, err := resolveOutputFormat(cmd, cfg, outputPath)
	if err != nil {
		return err
	}
	if _, err := convert.LookupInput(inputKey); err != nil {
		return err
	}
	if _, err := convert.LookupOutput(outputKey); err != nil {
		return err
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	opts, err := pipelineOptions(runCtx, cmd, cfg, outputKey)
	if err != nil {
		return err
	}
	opts.InputFormat = inputKey

	logger.Infow("Starting conversion",
		"input", displayPath(inputPath),
		"output", displayPath(outputPath),
		"input_format", inputKey,
		"output_format", outputKey,
		"timestamp_skew", opts.TimestampSkew,
		"translate", opts.Translator != nil,
	)

	if (inputPath == "" || inputPath == docio.Stdio) && isTerminal(cmd.InOrStdin()) {
		return errors.New("no input: pass an input file or pipe a document on stdin")
	}
	text, err := docio.ReadInput(inputPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	res, err := convert.New(logger).Convert(runCtx, text, opts)
	if err != nil {
		return err
	}

	logger.Infow("Conversion complete", "cues", len(res.Document.Cues))
	return writeResult(cmd, outputPath, res)
}

func displayPath(path string) string {
	if path == "" || path == docio.Stdio {
		return "<stdio>"
	}
	return path
}
