package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/history"
	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/model"
	"github.com/jexcli/jex/internal/output"
)

// exportedFile describes one file written by an export run.
type exportedFile struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

var exportCmd = &cobra.Command{
	Use:   "export KEY [KEY...]",
	Short: "Export issues to XML, JSON, Markdown, or the raw tracker payload",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		formatName, _ := cmd.Flags().GetString("format")
		outDir, _ := cmd.Flags().GetString("out")
		toStdout, _ := cmd.Flags().GetBool("stdout")

		format, err := model.ParseFormat(formatName)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		keys := make([]string, 0, len(args))
		for _, arg := range args {
			key, err := model.ParseKey(arg)
			if err != nil {
				return cmdErr(err, output.ErrValidation)
			}
			keys = append(keys, key)
		}

		if toStdout && len(keys) > 1 {
			return cmdErr(
				fmt.Errorf("--stdout accepts a single issue key, got %d", len(keys)),
				output.ErrValidation,
			)
		}

		exporter, err := getExporter(cmd)
		if err != nil {
			return err
		}

		results := exporter.ExportMany(cmd.Context(), keys, format)

		if toStdout {
			res := results[keys[0]]
			if res.Err != nil {
				return cmdErr(res.Err, exportErrCode(res.Err))
			}
			fmt.Fprint(os.Stdout, res.Content)
			return nil
		}

		journal := openJournal(w)
		if journal != nil {
			defer journal.Close()
		}

		var (
			written    []exportedFile
			failures   = make(map[string]error)
			totalBytes int
		)

		for _, key := range keys {
			res := results[key]
			if res.Err != nil {
				failures[key] = res.Err
				recordRun(journal, w, &history.Run{
					IssueKey: key,
					Format:   string(format),
					Error:    res.Err.Error(),
				})
				continue
			}

			path := filepath.Join(outDir, fmt.Sprintf("%s_export%s", key, format.Extension()))
			if err := os.WriteFile(path, []byte(res.Content), 0o644); err != nil {
				failures[key] = fmt.Errorf("writing file: %w", err)
				recordRun(journal, w, &history.Run{
					IssueKey: key,
					Format:   string(format),
					Error:    err.Error(),
				})
				continue
			}

			written = append(written, exportedFile{Key: key, Path: path, Bytes: len(res.Content)})
			totalBytes += len(res.Content)
			recordRun(journal, w, &history.Run{
				IssueKey: key,
				Format:   string(format),
				OutPath:  path,
				Bytes:    len(res.Content),
				OK:       true,
			})
		}

		if len(failures) > 0 {
			// Successful keys are already on disk and journaled; the exit
			// code still signals the failed ones.
			msg := fmt.Sprintf("exported %d of %d issues; %d failed:",
				len(written), len(keys), len(failures))
			for _, key := range keys {
				if err, ok := failures[key]; ok {
					msg += fmt.Sprintf("\n  %s: %v", key, err)
				}
			}
			return cmdErr(fmt.Errorf("%s", msg), batchErrCode(failures))
		}

		var message string
		if len(written) == 1 {
			message = fmt.Sprintf("Exported %s to %s (%s)",
				written[0].Key, written[0].Path, humanize.Bytes(uint64(written[0].Bytes)))
		} else {
			message = fmt.Sprintf("Exported %d issues to %s (%s)",
				len(written), outDir, humanize.Bytes(uint64(totalBytes)))
		}

		w.Success(written, message)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(model.FormatXML), "Export format: xml, json, markdown, raw")
	exportCmd.Flags().StringP("out", "o", ".", "Directory for exported files")
	exportCmd.Flags().Bool("stdout", false, "Print the payload instead of writing a file (single key only)")
	rootCmd.AddCommand(exportCmd)
}

// exportErrCode maps a single-issue export error to an output code.
func exportErrCode(err error) output.ErrorCode {
	switch {
	case errors.Is(err, jira.ErrNotFound):
		return output.ErrNotFound
	case errors.Is(err, jira.ErrUpstream):
		return output.ErrUpstream
	default:
		return output.ErrGeneral
	}
}

// batchErrCode classifies a batch of failures: upstream trouble wins,
// otherwise not-found when every key was missing.
func batchErrCode(failures map[string]error) output.ErrorCode {
	allNotFound := len(failures) > 0
	for _, err := range failures {
		if errors.Is(err, jira.ErrUpstream) {
			return output.ErrUpstream
		}
		if !errors.Is(err, jira.ErrNotFound) {
			allNotFound = false
		}
	}
	if allNotFound {
		return output.ErrNotFound
	}
	return output.ErrGeneral
}
