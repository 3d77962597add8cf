package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/store"
	"github.com/existflow/taskboard/internal/view"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, optionally filtered by project, status or text.

Examples:
  taskboard task list
  taskboard task list --project 3
  taskboard task list --status pending --search invoice`,
	RunE: runList,
}

var storeAllProjects = store.ProjectFilter{}

var (
	listProject int64
	listStatus  string
	listSearch  string
	listAll     bool
)

func init() {
	listCmd.Flags().Int64VarP(&listProject, "project", "P", 0, "Filter by project id (defaults to the context)")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status (pending, in-progress, completed)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Only tasks whose title or description contains this")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Ignore the project context")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	filter := store.TaskFilter{ProjectID: listProject}
	if filter.ProjectID == 0 && !listAll {
		filter.ProjectID = currentContext(ctx)
	}
	status := view.StatusAll
	if listStatus != "" {
		s, err := model.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		status = s
		filter.Status = s
	}

	target := app.ProjectsPath
	if filter.ProjectID != 0 {
		pid := filter.ProjectID
		target = func(uid int64) string { return app.TasksPath(uid, pid) }
	}
	if _, err := authorize(cmd, target); err != nil {
		return err
	}

	if err := application.Projects.Fetch(ctx, storeAllProjects); err != nil {
		return err
	}
	if err := application.Tasks.Fetch(ctx, filter); err != nil {
		return err
	}

	tasks := view.FilterTasks(application.Tasks.Snapshot().Items, listSearch, status)
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found. Add one with: taskboard task add \"Your task\" --project <id>")
		return nil
	}

	if filter.ProjectID != 0 {
		printTasks(out, projectName(filter.ProjectID), tasks)
		return nil
	}
	printTasksByProject(out, tasks)
	return nil
}

func printTasks(out io.Writer, name string, tasks []model.Task) {
	counts := view.CountByStatus(tasks)
	open := len(tasks) - counts[model.StatusCompleted]

	fmt.Fprintf(out, "\n📁 %s (%d open)\n", name, open)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	for _, t := range tasks {
		printTask(out, t)
	}
	fmt.Fprintln(out)
}

func printTasksByProject(out io.Writer, tasks []model.Task) {
	groups := view.GroupTasksByProject(tasks)

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		printTasks(out, projectName(id), groups[id])
	}
}

func statusIcon(s model.TaskStatus) string {
	switch s {
	case model.StatusCompleted:
		return "[x]"
	case model.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func printTask(out io.Writer, t model.Task) {
	fmt.Fprintf(out, "  %s  %-6d  %-40s  %s\n", statusIcon(t.Status), t.ID, truncate(t.Title, 40), t.Status.Label())
}
