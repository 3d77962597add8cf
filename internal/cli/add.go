package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to a project.

Examples:
  taskboard task add "Buy groceries" --project 3
  taskboard task add "Write report" -P 3 --status in-progress
  taskboard task add "Call plumber"          # uses the project context`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addProject     int64
	addDescription string
	addStatus      string
)

func init() {
	addCmd.Flags().Int64VarP(&addProject, "project", "P", 0, "Project id (defaults to the context)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", "", "Initial status (pending, in-progress, completed)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	title := strings.Join(args, " ")

	// Use context if no project specified
	projectID := addProject
	if projectID == 0 {
		projectID = currentContext(ctx)
	}
	if projectID == 0 {
		return fmt.Errorf("no project given, pass --project or set one with 'taskboard context set'")
	}

	req := model.TaskCreate{Title: title, Description: addDescription, ProjectID: projectID}
	if addStatus != "" {
		status, err := model.ParseStatus(addStatus)
		if err != nil {
			return err
		}
		req.Status = status
	}

	if _, err := authorize(cmd, func(uid int64) string { return app.TasksPath(uid, projectID) }); err != nil {
		return err
	}

	t, err := application.Tasks.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create task: %s", errorMessage(err))
	}

	if err := application.Projects.Fetch(ctx, storeAllProjects); err != nil {
		logger.Warn("Failed to load project names", logger.F("error", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to [%s]: \"%s\" (id: %d)\n", projectName(projectID), t.Title, t.ID)
	return nil
}
