package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/db"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/store"
	"github.com/spf13/cobra"
)

// contextKey is the client_state row holding the current project id
const contextKey = "current_project"

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage project context",
	Long: `Set or view the current project context.

When a context is set, task commands use that project by default.

Examples:
  taskboard context              # Show current context
  taskboard context set 3        # Use project 3
  taskboard context clear        # Forget the context`,
	RunE: runContextShow,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [project-id]",
	Short: "Set the current project context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current context",
	RunE:  runContextClear,
}

func init() {
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextClearCmd)
}

// currentContext returns the context project id, or 0 when none is set
func currentContext(ctx context.Context) int64 {
	database, err := db.OpenDefault()
	if err != nil {
		logger.Warn("Failed to open state database", logger.F("error", err))
		return 0
	}
	defer func() {
		_ = database.Close()
	}()

	raw, err := database.GetState(ctx, contextKey)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.Warn("Failed to read context", logger.F("error", err))
		}
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func setContext(ctx context.Context, projectID int64) error {
	database, err := db.OpenDefault()
	if err != nil {
		return err
	}
	defer func() {
		_ = database.Close()
	}()
	return database.SetState(ctx, contextKey, strconv.FormatInt(projectID, 10))
}

func clearContext(ctx context.Context) error {
	database, err := db.OpenDefault()
	if err != nil {
		return err
	}
	defer func() {
		_ = database.Close()
	}()
	return database.DeleteState(ctx, contextKey)
}

func runContextShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	id := currentContext(ctx)
	if id == 0 {
		fmt.Fprintln(out, "📥 No project context set")
		return nil
	}

	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}
	if err := application.Projects.Fetch(ctx, store.ProjectFilter{}); err != nil {
		return err
	}
	project, ok := application.Projects.Find(id)
	if !ok {
		fmt.Fprintf(out, "⚠️  Context set to #%d but project not found\n", id)
		return nil
	}

	if err := application.Tasks.Fetch(ctx, store.TaskFilter{ProjectID: id}); err != nil {
		return err
	}
	fmt.Fprintf(out, "📁 Current context: %s (#%d, %d tasks)\n", project.Name, id, len(application.Tasks.Snapshot().Items))
	return nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}
	if err := application.Projects.Fetch(ctx, store.ProjectFilter{}); err != nil {
		return err
	}
	project, ok := application.Projects.Find(id)
	if !ok {
		return fmt.Errorf("project not found: %d", id)
	}

	if err := setContext(ctx, id); err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "📁 Switched to: %s\n", project.Name)
	return nil
}

func runContextClear(cmd *cobra.Command, args []string) error {
	if err := clearContext(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "📥 Context cleared")
	return nil
}
