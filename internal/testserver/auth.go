package testserver

import (
	"net/http"
	"strings"

	"github.com/existflow/taskboard/internal/model"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const userIDKey = "user_id"

// authMiddleware resolves the bearer token to a user id
func (b *Backend) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth {
			return detail(c, http.StatusUnauthorized, "Not authenticated")
		}

		b.mu.Lock()
		userID, ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			return detail(c, http.StatusUnauthorized, "Could not validate credentials")
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

func currentUser(c echo.Context) int64 {
	return c.Get(userIDKey).(int64)
}

func (b *Backend) handleRegister(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return detail(c, http.StatusUnprocessableEntity, "name, email and password are required")
	}

	u, err := b.AddUser(req.Name, req.Email, req.Password)
	if err != nil {
		return detail(c, http.StatusBadRequest, "Email already registered")
	}
	return c.JSON(http.StatusCreated, u)
}

func (b *Backend) handleLogin(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid request body")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if u.Email != req.Email {
			continue
		}
		if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
			break
		}
		return c.JSON(http.StatusOK, model.TokenResponse{
			AccessToken: b.issueTokenLocked(u.ID),
			TokenType:   "bearer",
		})
	}
	return detail(c, http.StatusUnauthorized, "Incorrect email or password")
}

func (b *Backend) handleMe(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[currentUser(c)]
	if !ok {
		return detail(c, http.StatusUnauthorized, "Could not validate credentials")
	}
	return c.JSON(http.StatusOK, u.User)
}
