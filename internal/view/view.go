// Package view derives what the screens display from store snapshots. Nothing
// here mutates its input.
package view

import (
	"strings"

	"github.com/existflow/taskboard/internal/model"
)

// StatusAll disables status filtering
const StatusAll model.TaskStatus = "all"

func matches(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FilterProjects keeps projects whose name or description contains term,
// ignoring case. An empty term keeps everything.
func FilterProjects(items []model.Project, term string) []model.Project {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Project, 0, len(items))
	for _, p := range items {
		if term == "" || matches(term, p.Name, p.Description) {
			out = append(out, p)
		}
	}
	return out
}

// FilterTasks keeps tasks whose title or description contains term and whose
// status equals status. StatusAll or "" skips the status check.
func FilterTasks(items []model.Task, term string, status model.TaskStatus) []model.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Task, 0, len(items))
	for _, t := range items {
		if term != "" && !matches(term, t.Title, t.Description) {
			continue
		}
		if status != StatusAll && status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// GroupTasksByProject buckets tasks by project id, keeping their order
func GroupTasksByProject(items []model.Task) map[int64][]model.Task {
	groups := make(map[int64][]model.Task)
	for _, t := range items {
		groups[t.ProjectID] = append(groups[t.ProjectID], t)
	}
	return groups
}

// TaskCount returns how many tasks a project has in groups
func TaskCount(groups map[int64][]model.Task, projectID int64) int {
	return len(groups[projectID])
}

// CountByStatus tallies tasks per status
func CountByStatus(items []model.Task) map[model.TaskStatus]int {
	counts := make(map[model.TaskStatus]int, len(model.Statuses))
	for _, s := range model.Statuses {
		counts[s] = 0
	}
	for _, t := range items {
		counts[t.Status]++
	}
	return counts
}

// NextStatusFilter cycles all -> pending -> in progress -> completed -> all
func NextStatusFilter(current model.TaskStatus) model.TaskStatus {
	if current == StatusAll || current == "" {
		return model.Statuses[0]
	}
	for i, s := range model.Statuses {
		if s == current && i+1 < len(model.Statuses) {
			return model.Statuses[i+1]
		}
	}
	return StatusAll
}

// StatusFilterLabel is the text shown for a status filter
func StatusFilterLabel(status model.TaskStatus) string {
	if status == StatusAll || status == "" {
		return "All"
	}
	return status.Label()
}
