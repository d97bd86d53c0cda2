package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subconv/internal/config"
	"github.com/mgpai22/subconv/internal/convert"
	"github.com/mgpai22/subconv/internal/docio"
	"github.com/mgpai22/subconv/internal/translate"
)

// registers the flags shared by every command that renders a document
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().
		String("output-format", "", "Output format: "+strings.Join(convert.OutputKeys(), ", "))
	cmd.Flags().
		Int64("timestamp-skew", 0, "Shift every cue by this many milliseconds (negative moves earlier)")
	cmd.Flags().
		Bool("styles", false, "Emit style markup for srt and vtt output")
	cmd.Flags().
		String("title", "", "Script title for ass output")

	cmd.Flags().
		StringP("target-language", "t", "", "Translate cue text to this language")
	cmd.Flags().
		StringP("language", "l", "", "Source language hint for translation")
	cmd.Flags().
		Bool("overlay", false, "Keep the original text below the translation")
	cmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	cmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	cmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	cmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	cmd.Flags().
		Int("batch-size", 0, "Number of cues per translation request")
	cmd.Flags().
		String("prompt", "", "Additional instructions for the translation model")
}

// stringFlag returns the flag value when set on the command line, else the
// config fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(v)
	}
	return fallback
}

func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}

func boolFlag(cmd *cobra.Command, name string, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return fallback
}

// resolveOutputFormat picks the output key from the flag, the config file or
// the output file extension, in that order.
func resolveOutputFormat(cmd *cobra.Command, cfg *config.Config, outputPath string) (string, error) {
	if key := stringFlag(cmd, "output-format", cfg.Convert.OutputFormat); key != "" {
		return key, nil
	}
	if key, ok := convert.OutputKeyForPath(outputPath); ok {
		return key, nil
	}
	return "", fmt.Errorf(
		"output format is required: use --output-format (%s) or an output file with a known extension",
		strings.Join(convert.OutputKeys(), ", "),
	)
}

// pipelineOptions builds conversion options from flags and config. Input
// format is left to the caller.
func pipelineOptions(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	outputKey string,
) (convert.Options, error) {
	skew := cfg.Convert.TimestampSkew()
	if cmd.Flags().Changed("timestamp-skew") {
		ms, _ := cmd.Flags().GetInt64("timestamp-skew")
		skew = time.Duration(ms) * time.Millisecond
	}

	opts := convert.Options{
		OutputFormat:  outputKey,
		TimestampSkew: skew,
		EnableStyles:  boolFlag(cmd, "styles", cfg.Convert.EnableStyles),
		Title:         stringFlag(cmd, "title", ""),
	}

	tr, docOpts, err := buildTranslator(ctx, cmd, cfg)
	if err != nil {
		return convert.Options{}, err
	}
	opts.Translator = tr
	opts.Translation = docOpts
	return opts, nil
}

func buildTranslator(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
) (translate.Translator, translate.DocumentOptions, error) {
	targetLang := stringFlag(cmd, "target-language", "")
	if targetLang == "" {
		return nil, translate.DocumentOptions{}, nil
	}
	inputLang := stringFlag(cmd, "language", "")
	if inputLang != "" && strings.EqualFold(inputLang, targetLang) {
		return nil, translate.DocumentOptions{}, fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(
		strings.ToLower(stringFlag(cmd, "provider", cfg.Translate.Provider)),
	)
	model := stringFlag(cmd, "model", cfg.Translate.Model)
	if !boolFlag(cmd, "model-override", cfg.Translate.ModelOverride) {
		if err := translate.ValidateModel(provider, model); err != nil {
			return nil, translate.DocumentOptions{}, err
		}
	}

	apiKey := stringFlag(cmd, "api-key", cfg.APIKeyFor(provider))
	if apiKey == "" {
		return nil, translate.DocumentOptions{}, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	concurrency := intFlag(cmd, "concurrency", cfg.Translate.Concurrency)
	if concurrency <= 0 {
		return nil, translate.DocumentOptions{}, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	batchSize := intFlag(cmd, "batch-size", cfg.Translate.BatchSize)
	if batchSize <= 0 {
		return nil, translate.DocumentOptions{}, fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	tr, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         stringFlag(cmd, "prompt", cfg.Translate.Prompt),
		BatchSize:      batchSize,
	})
	if err != nil {
		return nil, translate.DocumentOptions{}, fmt.Errorf("failed to create translator: %w", err)
	}

	return tr, translate.DocumentOptions{
		Concurrency: concurrency,
		Overlay:     boolFlag(cmd, "overlay", false),
	}, nil
}

// writeResult sends output to stdout or a file and reports file writes on
// stderr.
func writeResult(cmd *cobra.Command, outputPath string, res *convert.Result) error {
	if err := docio.WriteOutput(outputPath, res.Output, cmd.OutOrStdout()); err != nil {
		return err
	}
	if outputPath == "" || outputPath == docio.Stdio {
		return nil
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Subtitles written: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d\n", len(res.Document.Cues))
	fmt.Fprintf(out, "  Format: %s\n", res.Format.Key)
	return nil
}
