package cli

import (
	"fmt"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget everything stored locally",
	Long: `Remove the stored token and the project context from this machine.
Nothing on the server is touched.`,
	RunE: runClear,
}

var clearForce bool

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !clearForce && !newPrompter(cmd).confirm("Are you sure you want to clear local data?") {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	fmt.Fprintln(out, "🧹 Clearing local data...")
	application.Logout()
	if err := clearContext(cmd.Context()); err != nil {
		logger.Warn("Failed to clear context", logger.F("error", err))
	}
	fmt.Fprintln(out, "Local data cleared.")
	return nil
}
