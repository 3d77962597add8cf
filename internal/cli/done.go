package cli

import (
	"fmt"

	"github.com/existflow/taskboard/internal/model"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as completed",
	Long: `Mark a task as completed.

Examples:
  taskboard task done 12
  taskboard task done 12 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var doneUndo bool

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Mark task as pending again")
}

func runDone(cmd *cobra.Command, args []string) error {
	t, err := loadTask(cmd, args[0])
	if err != nil {
		return err
	}

	status := model.StatusCompleted
	if doneUndo {
		status = model.StatusPending
	}
	if _, err := application.Tasks.Update(cmd.Context(), t.ID, model.TaskUpdate{Status: &status}); err != nil {
		return fmt.Errorf("failed to update task: %s", errorMessage(err))
	}

	if doneUndo {
		fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened: \"%s\"\n", t.Title)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: \"%s\"\n", t.Title)
	}
	return nil
}
