package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/existflow/taskboard/internal/testserver"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type harness struct {
	t    *testing.T
	ts   *testserver.TestServer
	home string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ts := testserver.New(t)
	home := t.TempDir()
	t.Setenv("TASKBOARD_HOME", home)
	t.Setenv("TASKBOARD_API_URL", ts.URL())
	return &harness{t: t, ts: ts, home: home}
}

func (h *harness) runWithInput(input string, args ...string) (string, error) {
	h.t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := Execute()
	return buf.String(), err
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	return h.runWithInput("", args...)
}

func (h *harness) login() {
	h.t.Helper()
	_, err := h.run("auth", "login", "--email", "ada@example.com", "--password", testserver.DefaultPassword)
	require.NoError(h.t, err)
}

func TestAuth_LoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("auth", "login", "--email", "ada@example.com", "--password", testserver.DefaultPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ada Lovelace")

	tokenFile := filepath.Join(h.home, "auth_token")
	_, err = os.Stat(tokenFile)
	require.NoError(t, err)

	out, err = h.run("auth", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	out, err = h.run("auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = h.run("auth", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	out, err = h.run("auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestAuth_LoginPromptsForMissingFields(t *testing.T) {
	h := newHarness(t)

	out, err := h.runWithInput("ada@example.com\n"+testserver.DefaultPassword+"\n", "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Logged in as Ada Lovelace")
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("auth", "login", "--email", "ada@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect email or password")
}

func TestAuth_RegisterValidatesLocally(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("auth", "register", "--name", "Bob", "--email", "bob@example.com", "--password", "abc12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must be at least 6 characters")

	_, err = h.run("auth", "register", "--name", "Bob", "--email", "bob@example.com",
		"--password", "abcdef", "--confirm-password", "abcdeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")

	assert.Zero(t, h.ts.Hits(http.MethodPost, "/auth/register"))
}

func TestAuth_RegisterThenLogin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("auth", "register", "--name", "Bob", "--email", "bob@example.com", "--password", "abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created for Bob")

	_, err = h.run("auth", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	out, err = h.run("auth", "login", "-e", "bob@example.com", "-p", "abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Bob")
}

func TestAuth_TokenAdoptsExternalToken(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("auth", "token")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")

	token := h.ts.Token()
	out, err = h.run("auth", "token", token)
	require.NoError(t, err)
	assert.Contains(t, out, "Token accepted for Ada Lovelace")

	out, err = h.run("auth", "token")
	require.NoError(t, err)
	assert.Equal(t, token, strings.TrimSpace(out))
}

func TestRevokedTokenSignsOut(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.ts.RevokeTokens()

	_, err := h.run("project", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	_, err = os.Stat(filepath.Join(h.home, "auth_token"))
	assert.True(t, os.IsNotExist(err))
}

func TestProjects(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")

	out, err = h.run("project", "new", "Home", "Renovation", "--description", "Kitchen first")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project: Home Renovation")

	_, err = h.run("project", "new", "Taxes")
	require.NoError(t, err)

	out, err = h.run("project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Home Renovation")
	assert.Contains(t, out, "Taxes")
	assert.Contains(t, out, "2 projects, 0 open tasks")

	out, err = h.run("project", "list", "--search", "kitchen")
	require.NoError(t, err)
	assert.Contains(t, out, "Home Renovation")
	assert.NotContains(t, out, "Taxes")

	id := projectIDByName(t, h, "Taxes")

	out, err = h.run("project", "edit", id, "--name", "Taxes 2026")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated project: Taxes 2026")

	_, err = h.run("project", "edit", id)
	assert.Error(t, err)

	out, err = h.runWithInput("n\n", "project", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = h.runWithInput("y\n", "project", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted project: Taxes 2026")

	_, err = h.run("project", "delete", "9999", "--force")
	assert.Error(t, err)
}

func projectIDByName(t *testing.T, h *harness, name string) string {
	t.Helper()
	out, err := h.run("project", "list")
	require.NoError(t, err)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, name) {
			fields := strings.Fields(strings.TrimPrefix(line, "❯"))
			require.NotEmpty(t, fields)
			return fields[0]
		}
	}
	t.Fatalf("project %q not listed:\n%s", name, out)
	return ""
}

func taskIDByTitle(t *testing.T, h *harness, title string) string {
	t.Helper()
	out, err := h.run("task", "list", "--all")
	require.NoError(t, err)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, title) {
			fields := strings.Fields(line)
			// "[ ]" splits into two fields
			for i, f := range fields {
				if f == "]" || strings.HasSuffix(f, "]") {
					return fields[i+1]
				}
			}
		}
	}
	t.Fatalf("task %q not listed:\n%s", title, out)
	return ""
}

func TestProjects_RenamedProjectShownOnTasks(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, err := h.run("project", "new", "Garden")
	require.NoError(t, err)
	pid := projectIDByName(t, h, "Garden")

	_, err = h.run("task", "add", "Prune roses", "--project", pid)
	require.NoError(t, err)
	tid := taskIDByTitle(t, h, "Prune roses")

	out, err := h.run("project", "edit", pid, "--name", "Allotment")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated project: Allotment")

	out, err = h.run("task", "show", tid)
	require.NoError(t, err)
	assert.Contains(t, out, "Project:  Allotment")

	out, err = h.run("task", "list", "--project", pid)
	require.NoError(t, err)
	assert.Contains(t, out, "Allotment")
}

func TestTasks_ShowWithoutProjectNames(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, err := h.run("project", "new", "Garden")
	require.NoError(t, err)
	pid := projectIDByName(t, h, "Garden")
	_, err = h.run("task", "add", "Prune roses", "--project", pid)
	require.NoError(t, err)
	tid := taskIDByTitle(t, h, "Prune roses")

	h.ts.FailNext(http.MethodGet, "/projects/", http.StatusInternalServerError, "db down")
	out, err := h.run("task", "show", tid)
	require.NoError(t, err)
	assert.Contains(t, out, "Prune roses")
	assert.Contains(t, out, "Project:  #"+pid)
}

func TestTasks(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, err := h.run("project", "new", "Garden")
	require.NoError(t, err)
	pid := projectIDByName(t, h, "Garden")

	_, err = h.run("task", "add", "Plant", "tomatoes")
	require.Error(t, err, "no project and no context")

	out, err := h.run("context", "set", pid)
	require.NoError(t, err)
	assert.Contains(t, out, "Switched to: Garden")

	out, err = h.run("task", "add", "Plant", "tomatoes", "--description", "after the frost")
	require.NoError(t, err)
	assert.Contains(t, out, "Added to [Garden]: \"Plant tomatoes\"")

	_, err = h.run("task", "add", "Water beds", "--project", pid, "--status", "in-progress")
	require.NoError(t, err)

	out, err = h.run("task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Garden (2 open)")
	assert.Contains(t, out, "Plant tomatoes")
	assert.Contains(t, out, "[~]")

	out, err = h.run("task", "list", "--status", "in-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Water beds")
	assert.NotContains(t, out, "Plant tomatoes")

	out, err = h.run("task", "list", "--search", "FROST")
	require.NoError(t, err)
	assert.Contains(t, out, "Plant tomatoes")
	assert.NotContains(t, out, "Water beds")

	id := taskIDByTitle(t, h, "Plant tomatoes")

	out, err = h.run("task", "done", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Completed: \"Plant tomatoes\"")

	out, err = h.run("task", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Plant tomatoes")
	assert.Contains(t, out, "Project:  Garden")
	assert.Contains(t, out, "after the frost")

	out, err = h.run("task", "done", id, "--undo")
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened")

	out, err = h.run("task", "edit", id, "--title", "Plant peppers", "--status", "in progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated: \"Plant peppers\" [In progress]")

	_, err = h.run("task", "edit", id, "--status", "someday")
	assert.Error(t, err)

	out, err = h.run("task", "delete", id, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: \"Plant peppers\"")

	_, err = h.run("task", "show", id)
	assert.Error(t, err)

	out, err = h.run("context")
	require.NoError(t, err)
	assert.Contains(t, out, "Current context: Garden")

	out, err = h.run("context", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Context cleared")
}

func TestStatus_ShowsNormalizedServerURL(t *testing.T) {
	h := newHarness(t)
	t.Setenv("TASKBOARD_API_URL", h.ts.URL()+"/")

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Server:    "+h.ts.URL()+"\n")
	assert.Contains(t, out, "Reachable: yes")
}

func TestStatusAndConfig(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Reachable: yes")
	assert.Contains(t, out, "Not logged in")

	h.login()
	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	out, err = h.run("config", "--confirm-delete=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Config saved")
	assert.Contains(t, out, "confirm_delete: false")

	_, err = h.run("config", "--token-store", "cloud")
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("clear", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Local data cleared.")

	_, err = h.run("auth", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}
