// Package testserver is an in-memory stand-in for the task backend. It speaks
// the same JSON API so the client can be exercised end to end in tests and in
// local demos without the real service.
package testserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

type user struct {
	model.User
	passwordHash []byte
}

type fault struct {
	status int
	detail string
}

// Backend is the fake API. All state lives in memory behind one mutex.
type Backend struct {
	echo *echo.Echo

	mu       sync.Mutex
	users    map[int64]*user
	tokens   map[string]int64
	projects []model.Project
	tasks    []model.Task
	nextID   int64
	hits     map[string]int
	faults   map[string][]fault
}

// NewBackend creates an empty backend
func NewBackend() *Backend {
	b := &Backend{
		users:  make(map[int64]*user),
		tokens: make(map[string]int64),
		hits:   make(map[string]int),
		faults: make(map[string][]fault),
	}
	b.setupEcho()
	return b
}

func (b *Backend) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			route := req.Method + " " + c.Path()

			b.mu.Lock()
			b.hits[route]++
			var injected *fault
			if queue := b.faults[route]; len(queue) > 0 {
				f := queue[0]
				injected = &f
				b.faults[route] = queue[1:]
			}
			b.mu.Unlock()

			if injected != nil {
				return c.JSON(injected.status, map[string]string{"detail": injected.detail})
			}

			err := next(c)
			logger.Debug("Fake backend request",
				logger.F("route", route),
				logger.F("uri", req.RequestURI),
				logger.F("status", c.Response().Status),
				logger.F("duration", time.Since(start)))
			return err
		}
	})
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := e.Group("/auth")
	auth.POST("/register", b.handleRegister)
	auth.POST("/login", b.handleLogin)
	auth.GET("/me", b.handleMe, b.authMiddleware)

	projects := e.Group("/projects", b.authMiddleware)
	projects.GET("/", b.handleListProjects)
	projects.POST("/", b.handleCreateProject)
	projects.GET("/:id", b.handleGetProject)
	projects.PUT("/:id", b.handleUpdateProject)
	projects.DELETE("/:id", b.handleDeleteProject)

	tasks := e.Group("/tasks", b.authMiddleware)
	tasks.GET("/", b.handleListTasks)
	tasks.POST("/", b.handleCreateTask)
	tasks.GET("/:id", b.handleGetTask)
	tasks.PUT("/:id", b.handleUpdateTask)
	tasks.DELETE("/:id", b.handleDeleteTask)

	b.echo = e
}

// Handler returns the HTTP handler
func (b *Backend) Handler() http.Handler {
	return b.echo
}

// Start serves the backend on addr until it fails
func (b *Backend) Start(addr string) error {
	return b.echo.Start(addr)
}

// Hits returns how many requests reached route, e.g. Hits("GET", "/auth/me")
func (b *Backend) Hits(method, route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+route]
}

// FailNext makes the next request to route answer status with detail instead
// of being handled. Calls queue up.
func (b *Backend) FailNext(method, route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + route
	b.faults[key] = append(b.faults[key], fault{status: status, detail: detail})
}

// RevokeTokens invalidates every issued token
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]int64)
}

// AddUser creates an account directly and returns it
func (b *Backend) AddUser(name, email, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if u.Email == email {
			return model.User{}, fmt.Errorf("email already registered")
		}
	}
	u := &user{
		User: model.User{
			ID:        b.allocID(),
			Name:      name,
			Email:     email,
			CreatedAt: now(),
		},
		passwordHash: hash,
	}
	b.users[u.ID] = u
	return u.User, nil
}

// IssueToken creates a session token for userID without going through login
func (b *Backend) IssueToken(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueTokenLocked(userID)
}

func (b *Backend) issueTokenLocked(userID int64) string {
	tokenBytes := make([]byte, 32)
	_, _ = rand.Read(tokenBytes)
	token := hex.EncodeToString(tokenBytes)
	b.tokens[token] = userID
	return token
}

// allocID hands out ids from one sequence shared by all entity kinds
func (b *Backend) allocID() int64 {
	b.nextID++
	return b.nextID
}

func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}
