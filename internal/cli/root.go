package cli

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subconv/internal/config"
	"github.com/mgpai22/subconv/internal/logging"
)

// state shared by every command of one invocation
type commandContext struct {
	verbose    bool
	configFlag string
	logger     *logging.Logger

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configPath, _, c.configErr = config.Load(
			strings.TrimSpace(c.configFlag),
		)
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *logging.Logger {
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	return c.logger
}

func newRootCmd() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "subconv",
		Short: "Convert timed-text subtitles between formats",
		Long: `Subconv converts subtitle documents between WebVTT, TTML, SubRip and
Advanced SubStation Alpha.

Cues can be shifted in time, translated with an AI provider, and rendered
with or without style markup. Subtitle tracks can also be pulled straight
out of media containers with ffmpeg.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.logger = logging.NewLogger(ctx.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.log().Sync()
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().
		StringVar(&ctx.configFlag, "config", "", "Config file (default: ~/.config/subconv/config.toml)")

	rootCmd.AddCommand(
		newConvertCmd(ctx),
		newExtractCmd(ctx),
		newFormatsCmd(),
		newConfigCmd(ctx),
	)
	return rootCmd
}

func Execute() error {
	return newRootCmd().Execute()
}
