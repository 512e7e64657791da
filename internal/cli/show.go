package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jexcli/jex/internal/model"
	"github.com/jexcli/jex/internal/output"
	"github.com/jexcli/jex/internal/render"
)

// showResult is the wire payload for show: the rendered document plus what
// produced it.
type showResult struct {
	Key     string `json:"key"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

var showCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Render one issue to the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		key, err := model.ParseKey(args[0])
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		formatName, _ := cmd.Flags().GetString("format")
		format, err := model.ParseFormat(formatName)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		exporter, err := getExporter(cmd)
		if err != nil {
			return err
		}

		content, err := exporter.ExportOne(cmd.Context(), key, format)
		if err != nil {
			return cmdErr(err, exportErrCode(err))
		}

		display := content
		if format == model.FormatMarkdown && term.IsTerminal(int(os.Stdout.Fd())) {
			if pretty, err := render.Preview(content); err == nil {
				display = pretty
			}
		}

		w.Success(showResult{Key: key, Format: string(format), Content: content}, display)
		return nil
	},
}

func init() {
	showCmd.Flags().StringP("format", "f", string(model.FormatMarkdown), "Display format: xml, json, markdown, raw")
	rootCmd.AddCommand(showCmd)
}
