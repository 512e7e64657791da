package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/export"
	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/output"
	"github.com/jexcli/jex/internal/web"
)

const defaultListenAddr = ":8000"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the export HTTP API",
	// The API accepts per-request credentials, so the server may start
	// without any configured; requests then must carry their own.
	Annotations: map[string]string{"skipClient": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Listen
		}
		if addr == "" {
			addr = defaultListenAddr
		}

		factory := func(jc jira.Config) (export.Client, error) {
			return jira.NewClient(jc)
		}

		srv := web.NewServer(cfg, factory, version)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w.Info("Listening on %s", addr)
		if err := srv.Run(ctx, addr); err != nil {
			return cmdErr(fmt.Errorf("server: %w", err), output.ErrGeneral)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, else :8000)")
	rootCmd.AddCommand(serveCmd)
}
