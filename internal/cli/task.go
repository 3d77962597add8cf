package cli

import (
	"fmt"

	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks",
	Long:    `Add, list, edit and complete tasks inside projects.`,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Change a task's title, description or status",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var (
	editTitle       string
	editDescription string
	editStatus      string
)

func init() {
	taskEditCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	taskEditCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	taskEditCmd.Flags().StringVarP(&editStatus, "status", "s", "", "New status (pending, in-progress, completed)")

	taskCmd.AddCommand(addCmd)
	taskCmd.AddCommand(listCmd)
	taskCmd.AddCommand(doneCmd)
	taskCmd.AddCommand(deleteCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskShowCmd)
}

// loadTask fetches a task and enters its detail path
func loadTask(cmd *cobra.Command, raw string) (*model.Task, error) {
	id, err := parseID(raw, "task")
	if err != nil {
		return nil, err
	}
	uid, err := authorize(cmd, app.ProjectsPath)
	if err != nil {
		return nil, err
	}
	t, err := application.Tasks.Get(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("task not found: %s", errorMessage(err))
	}
	application.Nav.Navigate(app.TaskPath(uid, t.ProjectID, t.ID))
	return t, nil
}

func projectName(id int64) string {
	if p, ok := application.Projects.Find(id); ok {
		return p.Name
	}
	return fmt.Sprintf("#%d", id)
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	var req model.TaskUpdate
	if cmd.Flags().Changed("title") {
		req.Title = &editTitle
	}
	if cmd.Flags().Changed("description") {
		req.Description = &editDescription
	}
	if cmd.Flags().Changed("status") {
		status, err := model.ParseStatus(editStatus)
		if err != nil {
			return err
		}
		req.Status = &status
	}
	if req.Title == nil && req.Description == nil && req.Status == nil {
		return fmt.Errorf("nothing to change, pass --title, --description or --status")
	}

	t, err := loadTask(cmd, args[0])
	if err != nil {
		return err
	}
	updated, err := application.Tasks.Update(cmd.Context(), t.ID, req)
	if err != nil {
		return fmt.Errorf("failed to update task: %s", errorMessage(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated: \"%s\" [%s]\n", updated.Title, updated.Status.Label())
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	t, err := loadTask(cmd, args[0])
	if err != nil {
		return err
	}
	if err := application.Projects.Fetch(cmd.Context(), storeAllProjects); err != nil {
		logger.Warn("Failed to load project names", logger.F("error", err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s %s\n", statusIcon(t.Status), t.Title)
	fmt.Fprintf(out, "  ID:       %d\n", t.ID)
	fmt.Fprintf(out, "  Project:  %s\n", projectName(t.ProjectID))
	fmt.Fprintf(out, "  Status:   %s\n", t.Status.Label())
	if created := t.Created(); !created.IsZero() {
		fmt.Fprintf(out, "  Created:  %s\n", created.Format("Jan 2, 2006 15:04"))
	}
	if t.Description != "" {
		fmt.Fprintf(out, "\n  %s\n", t.Description)
	}
	fmt.Fprintln(out)
	return nil
}
