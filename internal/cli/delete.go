package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID.

Examples:
  taskboard task delete 12
  taskboard task rm 12 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	t, err := loadTask(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Check config
	if cfg.ConfirmDelete && !deleteForce {
		fmt.Fprintf(out, "About to delete: \"%s\" (ID: %d)\n", t.Title, t.ID)
		if !newPrompter(cmd).confirm("Are you sure?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := application.Tasks.Delete(cmd.Context(), t.ID); err != nil {
		return fmt.Errorf("failed to delete task: %s", errorMessage(err))
	}

	fmt.Fprintf(out, "🗑️  Deleted: \"%s\"\n", t.Title)
	return nil
}
