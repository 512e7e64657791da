package cli

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/config"
	"github.com/jexcli/jex/internal/history"
	"github.com/jexcli/jex/internal/output"
)

type configInfo struct {
	Path          string `json:"path"`
	FileExists    bool   `json:"file_exists"`
	Server        string `json:"server"`
	Email         string `json:"email"`
	TokenSet      bool   `json:"token_set"`
	Listen        string `json:"listen"`
	JournalPath   string `json:"journal_path"`
	JournalBytes  int64  `json:"journal_bytes"`
	SchemaVersion int    `json:"schema_version"`
	JexHomeEnv    string `json:"jex_home_env"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display resolved configuration",
	Annotations: map[string]string{"skipClient": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		path, err := config.FilePath()
		if err != nil {
			return cmdErr(fmt.Errorf("locating config: %w", err), output.ErrGeneral)
		}

		exists, err := config.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking config: %w", err), output.ErrGeneral)
		}

		info := configInfo{
			Path:       path,
			FileExists: exists,
			Server:     cfg.Server,
			Email:      cfg.Email,
			TokenSet:   cfg.Token != "",
			Listen:     cfg.Listen,
			JexHomeEnv: os.Getenv("JEX_HOME"),
		}

		journalPath, err := config.HistoryPath()
		if err != nil {
			return cmdErr(fmt.Errorf("locating journal: %w", err), output.ErrGeneral)
		}
		info.JournalPath = journalPath

		if stat, err := os.Stat(journalPath); err == nil {
			info.JournalBytes = stat.Size()

			conn, err := history.Open(journalPath)
			if err != nil {
				return cmdErr(fmt.Errorf("opening journal: %w", err), output.ErrGeneral)
			}
			defer conn.Close()

			sv, err := history.SchemaVersion(conn)
			if err != nil {
				return cmdErr(fmt.Errorf("reading journal schema: %w", err), output.ErrGeneral)
			}
			info.SchemaVersion = sv
		}

		if !exists && cfg.Server == "" {
			w.Warn("No configuration found. Run 'jex init' or set JIRA_API_URL, JIRA_API_USER, and JIRA_API_TOKEN.")
		}

		w.Success(info, formatConfigHuman(info))

		return nil
	},
}

func formatValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatConfigHuman(info configInfo) string {
	path := info.Path
	if !info.FileExists {
		path = fmt.Sprintf("%s (not found)", info.Path)
	}

	token := "(not set)"
	if info.TokenSet {
		token = "(set)"
	}

	journal := fmt.Sprintf("%s (not created)", info.JournalPath)
	if info.JournalBytes > 0 {
		journal = fmt.Sprintf("%s (%s, schema v%d)",
			info.JournalPath, humanize.Bytes(uint64(info.JournalBytes)), info.SchemaVersion)
	}

	lines := fmt.Sprintf("Config file:     %s\n", path)
	lines += fmt.Sprintf("Server:          %s\n", formatValue(info.Server))
	lines += fmt.Sprintf("Email:           %s\n", formatValue(info.Email))
	lines += fmt.Sprintf("API token:       %s\n", token)
	lines += fmt.Sprintf("Listen address:  %s\n", formatValue(info.Listen))
	lines += fmt.Sprintf("Journal:         %s\n", journal)
	lines += fmt.Sprintf("JEX_HOME:        %s", formatValue(info.JexHomeEnv))

	return lines
}

func init() {
	rootCmd.AddCommand(configCmd)
}
