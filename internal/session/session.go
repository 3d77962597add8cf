package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
)

var (
	// ErrNoToken is returned when an operation needs a token and none is held
	ErrNoToken = errors.New("not logged in")
	// ErrSessionChanged is returned when the session was replaced or cleared
	// while a profile request was in flight; the response is discarded.
	ErrSessionChanged = errors.New("session changed during request")
)

// LoginResult is what a successful login yields
type LoginResult struct {
	Token   string
	Profile *model.User
}

// Store owns the session: token, resolved profile and the auth lifecycle.
// It is the only writer of session state and of the client's auth header.
type Store struct {
	client *api.Client
	tokens TokenStore

	mu        sync.Mutex
	token     string
	profile   *model.User
	lifecycle Lifecycle
	lastError string

	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// NewStore creates an empty session bound to client and durable token storage
func NewStore(client *api.Client, tokens TokenStore) *Store {
	return &Store{client: client, tokens: tokens}
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Token:     s.token,
		Lifecycle: s.lifecycle,
		LastError: s.lastError,
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	return snap
}

// Token returns the current bearer token, or ""
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// AuthHeader returns the per-request Authorization header for the current
// token, or an empty header when logged out.
func (s *Store) AuthHeader() http.Header {
	h := http.Header{}
	if token := s.Token(); token != "" {
		h.Set("Authorization", api.BearerValue(token))
	}
	return h
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies fn under the lock and then notifies subscribers outside it
func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) begin() {
	s.update(func() {
		s.lifecycle = Resolving
		s.lastError = ""
	})
}

func (s *Store) fail(err error, fallback string) error {
	msg := api.DisplayMessage(err)
	if msg == "" {
		msg = fallback
	}
	s.update(func() {
		s.lifecycle = Failed
		s.lastError = msg
	})
	return err
}

// Login exchanges credentials for a token, installs it on the client, fetches
// the profile and persists the token.
func (s *Store) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}

	s.begin()
	email = strings.TrimSpace(email)
	log := logger.WithFields(logger.F("email", email))
	log.Info("Logging in")

	var tok model.TokenResponse
	err := s.client.Post(ctx, "/auth/login", model.LoginRequest{Email: email, Password: password}, &tok, nil)
	if err != nil {
		log.Warn("Login failed", logger.F("error", err))
		return nil, s.fail(fmt.Errorf("login failed: %w", err), "login failed")
	}
	if tok.AccessToken == "" {
		return nil, s.fail(errors.New("login failed: server returned no token"), "login failed")
	}

	previous := s.client.AuthToken()
	s.client.SetAuthToken(tok.AccessToken)

	var user model.User
	h := http.Header{}
	h.Set("Authorization", api.BearerValue(tok.AccessToken))
	if err := s.client.Get(ctx, "/auth/me", &user, h); err != nil {
		// a 401 here has already logged the session out
		if s.Token() == previous {
			s.client.SetAuthToken(previous)
		}
		log.Warn("Profile fetch after login failed", logger.F("error", err))
		return nil, s.fail(fmt.Errorf("failed to load profile: %w", err), "login failed")
	}

	if err := s.tokens.Save(ctx, tok.AccessToken); err != nil {
		log.Warn("Failed to persist token", logger.F("error", err))
	}

	s.update(func() {
		s.token = tok.AccessToken
		s.profile = &user
		s.lifecycle = Ready
		s.lastError = ""
	})

	log.Info("Logged in", logger.F("userID", user.ID))
	return &LoginResult{Token: tok.AccessToken, Profile: &user}, nil
}

// Register creates an account. The form is validated locally first. It does
// not log in; callers follow up with Login.
func (s *Store) Register(ctx context.Context, form RegisterForm) (*model.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	s.begin()
	req := model.RegisterRequest{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	}
	logger.Info("Registering account", logger.F("email", req.Email))

	var user model.User
	if err := s.client.Post(ctx, "/auth/register", req, &user, nil); err != nil {
		logger.Warn("Registration failed", logger.F("error", err))
		return nil, s.fail(fmt.Errorf("register failed: %w", err), "register failed")
	}

	s.update(func() {
		s.lifecycle = Ready
		s.lastError = ""
	})

	logger.Info("Account registered", logger.F("userID", user.ID))
	return &user, nil
}

// ResolveProfile fetches the profile for the current token. It is used when a
// token was restored from storage and the profile is not yet known.
func (s *Store) ResolveProfile(ctx context.Context) (*model.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoToken
	}

	s.begin()
	logger.Debug("Resolving profile")

	var user model.User
	h := http.Header{}
	h.Set("Authorization", api.BearerValue(token))
	if err := s.client.Get(ctx, "/auth/me", &user, h); err != nil {
		logger.Warn("Profile resolution failed", logger.F("error", err))
		return nil, s.fail(fmt.Errorf("failed to resolve profile: %w", err), "failed to resolve profile")
	}

	var changed bool
	s.update(func() {
		if s.token != token {
			changed = true
			return
		}
		s.profile = &user
		s.lifecycle = Ready
		s.lastError = ""
	})
	if changed {
		logger.Debug("Discarding profile for replaced session")
		return nil, ErrSessionChanged
	}

	logger.Info("Profile resolved", logger.F("userID", user.ID))
	return &user, nil
}

// LogoutAndClear forgets the token and profile everywhere: memory, durable
// storage and the client's default header. Safe to call when logged out.
func (s *Store) LogoutAndClear() {
	if err := s.tokens.Clear(context.Background()); err != nil {
		logger.Warn("Failed to clear persisted token", logger.F("error", err))
	}
	s.client.SetAuthToken("")

	var had bool
	s.update(func() {
		had = s.token != ""
		s.token = ""
		s.profile = nil
		s.lifecycle = Idle
		s.lastError = ""
	})
	if had {
		logger.Info("Logged out")
	}
}

// RestoreSession seeds the token from durable storage. The profile is still
// unknown afterwards and must be resolved. Returns whether a token was found.
func (s *Store) RestoreSession(ctx context.Context) (bool, error) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to restore session: %w", err)
	}
	if token == "" {
		logger.Debug("No persisted session")
		return false, nil
	}

	s.client.SetAuthToken(token)
	s.update(func() {
		s.token = token
		s.profile = nil
	})
	logger.Debug("Session restored from storage")
	return true, nil
}

// SetTokenAndPersist adopts token (for example one issued out of band),
// persisting it and installing it on the client. An empty token behaves like
// clearing it. The profile is reset and must be resolved again.
func (s *Store) SetTokenAndPersist(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	var err error
	if token == "" {
		err = s.tokens.Clear(ctx)
	} else {
		err = s.tokens.Save(ctx, token)
	}
	if err != nil {
		logger.Warn("Failed to persist token", logger.F("error", err))
	}

	s.client.SetAuthToken(token)
	s.update(func() {
		s.token = token
		s.profile = nil
	})
	return err
}
