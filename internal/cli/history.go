package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/config"
	"github.com/jexcli/jex/internal/history"
	"github.com/jexcli/jex/internal/output"
	"github.com/jexcli/jex/internal/render"
)

const maxDetailWidth = 48

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "Show recent export runs from the local journal",
	Annotations: map[string]string{"skipClient": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		limit, _ := cmd.Flags().GetInt("limit")

		conn, err := journalDB()
		if err != nil {
			return cmdErr(fmt.Errorf("opening journal: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		runs, err := history.ListRuns(conn, limit)
		if err != nil {
			return cmdErr(fmt.Errorf("reading journal: %w", err), output.ErrGeneral)
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		if jsonMode {
			if runs == nil {
				runs = []*history.Run{}
			}
			w.Success(runs, "")
			return nil
		}

		if len(runs) == 0 {
			quiet, _ := cmd.Flags().GetBool("quiet")
			w.Success(nil, render.EmptyState(
				"No export runs recorded.",
				"Run one with: jex export KEY",
				quiet,
			))
			return nil
		}

		w.Success(runs, renderRunTable(runs))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

// journalDB opens the export journal, creating and migrating it as needed.
func journalDB() (*sql.DB, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := history.Open(path)
	if err != nil {
		return nil, err
	}

	if err := history.Initialize(conn); err != nil {
		conn.Close()
		return nil, err
	}

	if err := history.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// openJournal is the best-effort variant used by export: a journal problem
// warns and disables journaling instead of failing the run.
func openJournal(w *output.Writer) *sql.DB {
	conn, err := journalDB()
	if err != nil {
		w.Warn("export journal disabled: %v", err)
		return nil
	}
	return conn
}

func recordRun(conn *sql.DB, w *output.Writer, run *history.Run) {
	if conn == nil {
		return
	}
	if _, err := history.RecordRun(conn, run); err != nil {
		w.Warn("recording export run: %v", err)
	}
}

func runStatus(run *history.Run) string {
	if run.OK {
		return "✔ ok"
	}
	return "✘ failed"
}

// runDetail shows where a run landed, or why it failed.
func runDetail(run *history.Run) string {
	if run.OK {
		if run.OutPath == "" {
			return "(stdout)"
		}
		return run.OutPath
	}
	return render.Truncate(run.Error, maxDetailWidth)
}

func runWhen(run *history.Run) string {
	t, err := time.Parse(time.RFC3339, run.CreatedAt)
	if err != nil {
		return run.CreatedAt
	}
	return humanize.Time(t)
}

func runToRow(run *history.Run) []string {
	return []string{
		strconv.Itoa(run.ID),
		run.IssueKey,
		run.Format,
		runStatus(run),
		humanize.Bytes(uint64(run.Bytes)),
		runDetail(run),
		runWhen(run),
	}
}

// renderRunTable renders journal entries as a formatted table, falling
// back to aligned plain text when colors are disabled.
func renderRunTable(runs []*history.Run) string {
	if !render.ColorsEnabled() {
		return renderPlainRunTable(runs)
	}

	headers := []string{"ID", "Issue", "Format", "Status", "Size", "Detail", "When"}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, runToRow(run))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}

			if row < 0 || row >= len(runs) {
				return s
			}

			switch col {
			case 1: // Issue
				return s.Foreground(lipgloss.Color("15")).Bold(true)
			case 3: // Status
				if runs[row].OK {
					return s.Foreground(lipgloss.Color("10"))
				}
				return s.Foreground(lipgloss.Color("9"))
			default:
				return s
			}
		})

	return t.Render()
}

func renderPlainRunTable(runs []*history.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-6s %-12s %-10s %-10s %-10s %-48s %s\n",
		"ID", "Issue", "Format", "Status", "Size", "Detail", "When")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 110))

	for _, run := range runs {
		row := runToRow(run)
		fmt.Fprintf(&b, "%-6s %-12s %-10s %-10s %-10s %-48s %s\n",
			row[0], row[1], row[2], row[3], row[4], row[5], row[6])
	}

	return b.String()
}
