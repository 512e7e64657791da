package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/model"
)

// formatInfo mirrors the wire shape served by the HTTP API's formats route.
type formatInfo struct {
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	MediaType   string `json:"media_type"`
	Description string `json:"description"`
}

var formatsCmd = &cobra.Command{
	Use:         "formats",
	Short:       "List supported export formats",
	Annotations: map[string]string{"skipClient": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		w := getWriter(cmd)

		infos := make([]formatInfo, 0, len(model.Formats()))
		for _, f := range model.Formats() {
			infos = append(infos, formatInfo{
				Name:        string(f),
				Extension:   f.Extension(),
				MediaType:   f.ContentType(),
				Description: f.Description(),
			})
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%-10s %-10s %-18s %s\n", "Format", "Extension", "Media type", "Description")
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 78))
		for _, info := range infos {
			fmt.Fprintf(&b, "%-10s %-10s %-18s %s\n",
				info.Name, info.Extension, info.MediaType, info.Description)
		}

		w.Success(infos, strings.TrimRight(b.String(), "\n"))
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
