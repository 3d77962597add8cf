package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/store"
	"github.com/existflow/taskboard/internal/view"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list, and manage projects for organizing tasks.`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new project for organizing tasks.

Examples:
  taskboard project new "Work"
  taskboard project new "Garden" --description "Vegetables and herbs"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	RunE:    runProjectList,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit [project-id]",
	Short: "Rename a project or change its description",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectEdit,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a project and its tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectDelete,
}

var (
	projectDescription string
	projectEditName    string
	projectSearch      string
	projectForce       bool
)

func init() {
	projectNewCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "Project description")
	projectListCmd.Flags().StringVarP(&projectSearch, "search", "s", "", "Only projects whose name or description contains this")
	projectEditCmd.Flags().StringVarP(&projectEditName, "name", "n", "", "New name")
	projectEditCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "New description")
	projectDeleteCmd.Flags().BoolVarP(&projectForce, "force", "f", false, "Do not ask for confirmation")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}

	name := strings.Join(args, " ")
	p, err := application.Projects.Create(cmd.Context(), model.ProjectCreate{
		Name:        name,
		Description: projectDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %s", errorMessage(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created project: %s (id: %d)\n", p.Name, p.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := application.Projects.Fetch(ctx, store.ProjectFilter{}); err != nil {
		return err
	}
	if err := application.Tasks.Fetch(ctx, store.TaskFilter{}); err != nil {
		return err
	}

	projects := view.FilterProjects(application.Projects.Snapshot().Items, projectSearch)
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	groups := view.GroupTasksByProject(application.Tasks.Snapshot().Items)
	current := currentContext(ctx)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-6s  %-24s  %s\n", "ID", "Name", "Open/Total")
	fmt.Fprintln(out, strings.Repeat("─", 50))

	totalOpen := 0
	for _, p := range projects {
		counts := view.CountByStatus(groups[p.ID])
		open := view.TaskCount(groups, p.ID) - counts[model.StatusCompleted]
		totalOpen += open
		marker := " "
		if p.ID == current {
			marker = "❯"
		}
		fmt.Fprintf(out, "%s %-6d  %-24s  %d/%d\n", marker, p.ID, truncate(p.Name, 24), open, view.TaskCount(groups, p.ID))
	}

	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "  %d projects, %d open tasks\n\n", len(projects), totalOpen)
	return nil
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}

	var req model.ProjectUpdate
	if cmd.Flags().Changed("name") {
		req.Name = &projectEditName
	}
	if cmd.Flags().Changed("description") {
		req.Description = &projectDescription
	}
	if req.Name == nil && req.Description == nil {
		return fmt.Errorf("nothing to change, pass --name or --description")
	}

	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}
	p, err := application.Projects.Update(cmd.Context(), id, req)
	if err != nil {
		return fmt.Errorf("failed to update project: %s", errorMessage(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated project: %s (id: %d)\n", p.Name, p.ID)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}
	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := application.Projects.Fetch(ctx, store.ProjectFilter{}); err != nil {
		return err
	}
	project, ok := application.Projects.Find(id)
	if !ok {
		return fmt.Errorf("project not found: %d", id)
	}

	if cfg.ConfirmDelete && !projectForce {
		fmt.Fprintf(out, "About to delete project \"%s\" and all of its tasks\n", project.Name)
		if !newPrompter(cmd).confirm("Are you sure?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := application.Projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %s", errorMessage(err))
	}
	application.Tasks.DropProject(id)
	if currentContext(ctx) == id {
		_ = clearContext(ctx)
	}

	fmt.Fprintf(out, "🗑️  Deleted project: %s\n", project.Name)
	return nil
}
