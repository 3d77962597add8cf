package cli

import (
	"fmt"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and session status",
	RunE:  runStatus,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the effective settings, or change them with flags.

Examples:
  taskboard config
  taskboard config --token-store sqlite
  taskboard --api-url http://localhost:8000 config`,
	RunE: runConfig,
}

var (
	configTokenStore    string
	configConfirmDelete bool
)

func init() {
	configCmd.Flags().StringVar(&configTokenStore, "token-store", "", "Where to keep the token: file or sqlite")
	configCmd.Flags().BoolVar(&configConfirmDelete, "confirm-delete", true, "Ask before deleting")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "Server:    %s\n", application.Client.BaseURL())
	var health map[string]interface{}
	if err := application.Client.Get(ctx, "/health", &health, nil); err != nil && api.IsNetwork(err) {
		fmt.Fprintf(out, "Reachable: no (%s)\n", errorMessage(err))
		return nil
	}
	fmt.Fprintln(out, "Reachable: yes")

	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		fmt.Fprintln(out, "Status:    Not logged in")
		return nil
	}
	u := application.Session.Snapshot().Profile
	fmt.Fprintf(out, "User:      %s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	if id := currentContext(ctx); id != 0 {
		fmt.Fprintf(out, "Context:   project #%d\n", id)
	}
	fmt.Fprintln(out, "Status:    ✓ Logged in")
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	changed := false
	if cmd.Flags().Changed("token-store") {
		cfg.TokenStore = configTokenStore
		changed = true
	}
	if cmd.Flags().Changed("confirm-delete") {
		cfg.ConfirmDelete = configConfirmDelete
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Config saved")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
