package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/existflow/taskboard/internal/config"
	"github.com/existflow/taskboard/internal/guard"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/session"
	"github.com/existflow/taskboard/internal/store"
	"github.com/existflow/taskboard/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *session.MemoryTokenStore, *testserver.TestServer) {
	t.Helper()
	ts := testserver.New(t)
	cfg := config.DefaultConfig()
	cfg.APIURL = ts.URL()
	cfg.RequestTimeout = 5 * time.Second
	tokens := session.NewMemoryTokenStore()
	a := NewWithTokens(cfg, tokens)
	t.Cleanup(func() { _ = a.Close() })
	return a, tokens, ts
}

func countLoginRedirects(a *App) *int {
	n := 0
	a.Nav.Subscribe(func(path string) {
		if path == LoginPath {
			n++
		}
	})
	return &n
}

func TestApp_LoginLandsOnProjects(t *testing.T) {
	a, _, ts := newTestApp(t)

	res, err := a.Login(context.Background(), "ada@example.com", testserver.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, ProjectsPath(ts.User.ID), a.Nav.Path())
	assert.Equal(t, ts.User.ID, a.UserID())
	assert.Equal(t, res.Token, a.Client.AuthToken())
}

func TestApp_UnauthorizedFromAnyStoreSignsOutOnce(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		call func(a *App) error
	}{
		{"projects fetch", func(a *App) error { return a.Projects.Fetch(ctx, store.ProjectFilter{}) }},
		{"tasks fetch", func(a *App) error { return a.Tasks.Fetch(ctx, store.TaskFilter{}) }},
		{"project create", func(a *App) error {
			_, err := a.Projects.Create(ctx, model.ProjectCreate{Name: "x"})
			return err
		}},
		{"task delete", func(a *App) error { return a.Tasks.Delete(ctx, 1) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a, tokens, ts := newTestApp(t)
			_, err := a.Login(ctx, "ada@example.com", testserver.DefaultPassword)
			require.NoError(t, err)

			logouts := 0
			a.Session.Subscribe(func(s session.Snapshot) {
				if !s.HasToken() {
					logouts++
				}
			})
			redirects := countLoginRedirects(a)

			ts.RevokeTokens()
			require.Error(t, tc.call(a))

			assert.Equal(t, 1, logouts)
			assert.Equal(t, 1, *redirects)
			assert.Equal(t, LoginPath, a.Nav.Path())
			assert.Empty(t, a.Client.AuthToken())
			persisted, _ := tokens.Load(ctx)
			assert.Empty(t, persisted)
		})
	}
}

func TestApp_UnauthorizedClearsResourceStores(t *testing.T) {
	a, _, ts := newTestApp(t)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", testserver.DefaultPassword)
	require.NoError(t, err)

	_, err = a.Projects.Create(ctx, model.ProjectCreate{Name: "kept until 401"})
	require.NoError(t, err)

	ts.FailNext(http.MethodGet, "/projects/", http.StatusUnauthorized, "Could not validate credentials")
	require.Error(t, a.Projects.Fetch(ctx, store.ProjectFilter{}))
	assert.Empty(t, a.Projects.Snapshot().Items)
}

func TestApp_CloseDetachesPolicy(t *testing.T) {
	a, _, ts := newTestApp(t)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", testserver.DefaultPassword)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	ts.RevokeTokens()
	require.Error(t, a.Projects.Fetch(ctx, store.ProjectFilter{}))
	assert.True(t, a.Session.Snapshot().HasToken())
}

func TestApp_StartResolvesThroughGuard(t *testing.T) {
	a, tokens, ts := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, ts.Token()))

	restored, err := a.Start(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	d, err := a.Guard.Enter(ctx, HomePath)
	require.NoError(t, err)
	assert.Equal(t, guard.Redirect, d.Kind)
	assert.Equal(t, ProjectsPath(ts.User.ID), d.Target)
	assert.Equal(t, 1, ts.Hits(http.MethodGet, "/auth/me"))
}

func TestApp_StartWithRevokedTokenEndsOnLogin(t *testing.T) {
	a, tokens, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "expired"))

	_, err := a.Start(ctx)
	require.NoError(t, err)

	d, err := a.Guard.Enter(ctx, ProjectsPath(1))
	require.Error(t, err)
	assert.Equal(t, guard.Redirect, d.Kind)
	assert.Equal(t, LoginPath, d.Target)
	assert.Equal(t, LoginPath, a.Nav.Path())
	persisted, _ := tokens.Load(ctx)
	assert.Empty(t, persisted)
}

func countLogouts(a *App) *int {
	n := 0
	a.Session.Subscribe(func(snap session.Snapshot) {
		if !snap.HasToken() && snap.Lifecycle == session.Idle {
			n++
		}
	})
	return &n
}

func TestApp_RevokedTokenSignsOutOnce(t *testing.T) {
	a, tokens, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "expired"))
	_, err := a.Start(ctx)
	require.NoError(t, err)

	redirects := countLoginRedirects(a)
	logouts := countLogouts(a)

	d, err := a.Guard.Enter(ctx, HomePath)
	require.Error(t, err)
	assert.Equal(t, LoginPath, d.Target)
	assert.Equal(t, 1, *redirects)
	assert.Equal(t, 1, *logouts)
}

func TestApp_ResolveServerErrorClearsStores(t *testing.T) {
	a, _, ts := newTestApp(t)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", testserver.DefaultPassword)
	require.NoError(t, err)
	_, err = a.Projects.Create(ctx, model.ProjectCreate{Name: "previous session"})
	require.NoError(t, err)

	require.NoError(t, a.Session.SetTokenAndPersist(ctx, ts.Token()))
	ts.FailNext(http.MethodGet, "/auth/me", http.StatusInternalServerError, "db down")
	redirects := countLoginRedirects(a)

	_, err = a.Guard.Enter(ctx, HomePath)
	require.Error(t, err)
	assert.Empty(t, a.Projects.Snapshot().Items)
	assert.Empty(t, a.Tasks.Snapshot().Items)
	assert.False(t, a.Session.Snapshot().HasToken())
	assert.Equal(t, 1, *redirects)
	assert.Equal(t, LoginPath, a.Nav.Path())
}

func TestApp_Logout(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", testserver.DefaultPassword)
	require.NoError(t, err)

	a.Logout()
	assert.Equal(t, LoginPath, a.Nav.Path())
	assert.Zero(t, a.UserID())
	assert.Equal(t, guard.Redirect, a.Guard.Evaluate(ProjectsPath(1)).Kind)
}
