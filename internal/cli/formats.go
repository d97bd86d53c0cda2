package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subconv/internal/convert"
)

var formatDescriptions = map[string]string{
	"vtt":        "WebVTT",
	"tt":         "TTML / DFXP timed text",
	"srt":        "SubRip",
	"srt-styled": "SubRip with <b>/<i>/<u>/<font> markup",
	"ass":        "Advanced SubStation Alpha (styled)",
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input and output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Input formats:")
			fmt.Fprintln(out, formatTable(convert.InputKeys()))
			fmt.Fprintln(out, "Output formats:")
			fmt.Fprintln(out, formatTable(convert.OutputKeys()))
			return nil
		},
	}
}

func formatTable(keys []string) string {
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, formatDescriptions[key]})
	}
	return renderTable([]string{"Key", "Format"}, rows, nil)
}
