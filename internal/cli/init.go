package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jexcli/jex/internal/output"
)

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Configure tracker credentials",
	Annotations: map[string]string{"skipClient": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		server, _ := cmd.Flags().GetString("server")
		email, _ := cmd.Flags().GetString("email")
		token, _ := cmd.Flags().GetString("token")

		// Flag values win; resolved values (file + environment) pre-fill
		// the rest so re-running init edits instead of starting over.
		if server == "" {
			server = cfg.Server
		}
		if email == "" {
			email = cfg.Email
		}
		if token == "" {
			token = cfg.Token
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		if jsonMode {
			if server == "" {
				return cmdErr(fmt.Errorf("--server is required in JSON mode"), output.ErrValidation)
			}
			if email == "" {
				return cmdErr(fmt.Errorf("--email is required in JSON mode"), output.ErrValidation)
			}
			if token == "" {
				return cmdErr(fmt.Errorf("--token is required in JSON mode"), output.ErrValidation)
			}
		}

		if !jsonMode && (server == "" || email == "" || token == "") {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Tracker URL").
						Description("e.g. mycompany.atlassian.net").
						Value(&server).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("server URL is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("Account email").
						Value(&email).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("email is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("API token").
						EchoMode(huh.EchoModePassword).
						Value(&token).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("API token is required")
							}
							return nil
						}),
				),
			)

			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
		}

		cfg.Server = server
		cfg.Email = email
		cfg.Token = token

		path, err := cfg.Write()
		if err != nil {
			return cmdErr(fmt.Errorf("saving config: %w", err), output.ErrGeneral)
		}

		w.Success(struct {
			Path   string `json:"path"`
			Server string `json:"server"`
			Email  string `json:"email"`
		}{
			Path:   path,
			Server: cfg.Server,
			Email:  cfg.Email,
		}, fmt.Sprintf("Configuration saved to %s", path))

		w.Info("Try: jex export DEMO-1")

		return nil
	},
}

func init() {
	initCmd.Flags().String("server", "", "Tracker base URL")
	initCmd.Flags().String("email", "", "Tracker account email")
	initCmd.Flags().String("token", "", "Tracker API token")
	rootCmd.AddCommand(initCmd)
}
