// Package app wires the client together: HTTP adapter, session, resource
// stores, route guard and navigation, plus the global 401 policy.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/config"
	"github.com/existflow/taskboard/internal/db"
	"github.com/existflow/taskboard/internal/guard"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/session"
	"github.com/existflow/taskboard/internal/store"
)

// App is the composition root shared by the CLI and the TUI
type App struct {
	Config   *config.Config
	Client   *api.Client
	Session  *session.Store
	Projects *store.ProjectStore
	Tasks    *store.TaskStore
	Guard    *guard.Guard
	Nav      *Navigator

	database  *db.DB
	detach    func()
	closeOnce sync.Once
}

// New builds an App from cfg, choosing the durable token store it names
func New(cfg *config.Config) (*App, error) {
	var (
		tokens   session.TokenStore
		database *db.DB
	)
	switch cfg.TokenStore {
	case config.TokenStoreSQLite:
		d, err := db.OpenDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to open state database: %w", err)
		}
		database = d
		tokens = session.NewDBTokenStore(d)
	default:
		dir, err := config.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		tokens = session.NewFileTokenStore(dir)
	}

	a := NewWithTokens(cfg, tokens)
	a.database = database
	return a, nil
}

// NewWithTokens builds an App around an explicit token store
func NewWithTokens(cfg *config.Config, tokens session.TokenStore) *App {
	client := api.NewClient(cfg.APIURL, cfg.RequestTimeout)
	sess := session.NewStore(client, tokens)
	nav := NewNavigator(HomePath)

	a := &App{
		Config:   cfg,
		Client:   client,
		Session:  sess,
		Projects: store.NewProjectStore(client, sess),
		Tasks:    store.NewTaskStore(client, sess),
		Nav:      nav,
	}
	a.Guard = guard.New(sess, nav, a.signOut)
	a.detach = client.OnUnauthorized(a.handleUnauthorized)
	return a
}

// handleUnauthorized is the one place a 401 is turned into a sign-out
func (a *App) handleUnauthorized() {
	logger.Warn("Server rejected credentials, signing out")
	a.signOut()
}

func (a *App) signOut() {
	a.Session.LogoutAndClear()
	a.Projects.Reset()
	a.Tasks.Reset()
	a.Nav.Redirect(LoginPath)
}

// Start restores a persisted session. The profile is still unresolved
// afterwards; evaluating HomePath through the guard resolves it.
func (a *App) Start(ctx context.Context) (bool, error) {
	return a.Session.RestoreSession(ctx)
}

// Login signs in and lands on the user's projects
func (a *App) Login(ctx context.Context, email, password string) (*session.LoginResult, error) {
	res, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.Nav.Reset(ProjectsPath(res.Profile.ID))
	return res, nil
}

// Logout signs out and returns to the login page
func (a *App) Logout() {
	a.signOut()
}

// UserID returns the resolved profile id, or 0
func (a *App) UserID() int64 {
	if p := a.Session.Snapshot().Profile; p != nil {
		return p.ID
	}
	return 0
}

// Close detaches the 401 observer and releases the state database
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.detach()
		if a.database != nil {
			err = a.database.Close()
		}
	})
	return err
}
