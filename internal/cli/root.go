package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/config"
	"github.com/jexcli/jex/internal/export"
	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const cfgKey contextKey = "cfg"

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err  error
	Code output.ErrorCode
}

func (e *CmdError) Error() string { return e.Err.Error() }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

var rootCmd = &cobra.Command{
	Use:     "jex",
	Short:   "Export Jira issues with comments, links, and related work",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve()
		if err != nil {
			return cmdErr(fmt.Errorf("loading config: %w", err), output.ErrGeneral)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), cfgKey, cfg))

		if _, ok := cmd.Annotations["skipClient"]; ok {
			return nil
		}

		if err := cfg.Validate(); err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

// getExporter builds a tracker-backed exporter from the resolved configuration.
func getExporter(cmd *cobra.Command) (*export.Exporter, error) {
	cfg := getCfg(cmd)

	client, err := jira.NewClient(jira.Config{
		Server: cfg.Server,
		Email:  cfg.Email,
		Token:  cfg.Token,
	})
	if err != nil {
		return nil, cmdErr(fmt.Errorf("connecting to tracker: %w", err), output.ErrGeneral)
	}

	return export.New(client), nil
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.Error(ce.Err, ce.Code)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}
