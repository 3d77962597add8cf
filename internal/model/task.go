package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in progress"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every valid status in workflow order
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns a short human label
func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Next cycles pending -> in progress -> completed -> pending
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// ParseStatus accepts the wire values plus the CLI-friendly spellings
// "in-progress", "in_progress", "progress" and "done".
func ParseStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "in progress", "in-progress", "in_progress", "progress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown task status %q (want pending, in-progress or completed)", s)
}

// Task represents a single unit of work inside a project
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	ProjectID   int64      `json:"project_id"`
	UserID      int64      `json:"user_id"`
	CreatedAt   string     `json:"created_at"`
}

// EntityID returns the server-assigned identity
func (t Task) EntityID() int64 {
	return t.ID
}

// Created parses CreatedAt
func (t *Task) Created() time.Time {
	return parseTimestamp(t.CreatedAt)
}

// IsDone returns true if the task is completed
func (t *Task) IsDone() bool {
	return t.Status == StatusCompleted
}

// TaskCreate is the body of POST /tasks/
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status,omitempty"`
	ProjectID   int64      `json:"project_id"`
}

// TaskUpdate is the body of PUT /tasks/{id}. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}
