package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/existflow/taskboard/internal/guard"
)

const (
	// HomePath sends everyone where they belong: login or their projects
	HomePath     = "/"
	LoginPath    = guard.LoginPath
	RegisterPath = guard.RegisterPath
)

// Screen identifies what a path shows
type Screen int

const (
	ScreenUnknown Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenProjects
	ScreenTasks
	ScreenTask
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenProjects:
		return "projects"
	case ScreenTasks:
		return "tasks"
	case ScreenTask:
		return "task"
	default:
		return "unknown"
	}
}

// Route is a parsed navigation path
type Route struct {
	Screen    Screen
	UserID    int64
	ProjectID int64
	TaskID    int64
}

// ProjectsPath is the project list of user uid
func ProjectsPath(uid int64) string {
	return guard.LandingPath(uid)
}

// TasksPath is the task list of project pid
func TasksPath(uid, pid int64) string {
	return fmt.Sprintf("/user/%d/projects/%d/tasks", uid, pid)
}

// TaskPath is the detail page of task tid
func TaskPath(uid, pid, tid int64) string {
	return fmt.Sprintf("/user/%d/projects/%d/tasks/%d", uid, pid, tid)
}

// ParsePath recognises the paths built by the helpers above
func ParsePath(path string) Route {
	path = strings.TrimSuffix(path, "/")
	switch path {
	case LoginPath:
		return Route{Screen: ScreenLogin}
	case RegisterPath:
		return Route{Screen: ScreenRegister}
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	// user/{uid}/projects[/{pid}/tasks[/{tid}]]
	if len(parts) < 3 || parts[0] != "user" || parts[2] != "projects" {
		return Route{}
	}
	ids := make([]int64, 0, 3)
	for _, i := range []int{1, 3, 5} {
		if i >= len(parts) {
			break
		}
		id, err := strconv.ParseInt(parts[i], 10, 64)
		if err != nil || id <= 0 {
			return Route{}
		}
		ids = append(ids, id)
	}

	switch {
	case len(parts) == 3:
		return Route{Screen: ScreenProjects, UserID: ids[0]}
	case len(parts) == 5 && parts[4] == "tasks":
		return Route{Screen: ScreenTasks, UserID: ids[0], ProjectID: ids[1]}
	case len(parts) == 6 && parts[4] == "tasks":
		return Route{Screen: ScreenTask, UserID: ids[0], ProjectID: ids[1], TaskID: ids[2]}
	}
	return Route{}
}
