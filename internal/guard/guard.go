package guard

import (
	"context"
	"errors"
	"sync"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/session"
)

// Session is the part of the session store the guard reads and drives
type Session interface {
	Snapshot() session.Snapshot
	ResolveProfile(ctx context.Context) (*model.User, error)
	LogoutAndClear()
}

// Redirector moves the user to another path
type Redirector interface {
	Redirect(path string)
}

// Guard wraps the decision table with the resolve-once rule: while a token's
// profile is being fetched, only the first Loading decision carries Resolve.
type Guard struct {
	sess    Session
	nav     Redirector
	signOut func()

	mu        sync.Mutex
	inFlight  bool
	resolving string
}

// New creates a guard. signOut runs when a profile resolution fails; when nil
// the guard logs the session out and redirects nav (which may also be nil) to
// the login path itself.
func New(sess Session, nav Redirector, signOut func()) *Guard {
	g := &Guard{sess: sess, nav: nav, signOut: signOut}
	if g.signOut == nil {
		g.signOut = g.logout
	}
	return g
}

func (g *Guard) logout() {
	g.sess.LogoutAndClear()
	if g.nav != nil {
		g.nav.Redirect(LoginPath)
	}
}

// Evaluate decides for path against the current session
func (g *Guard) Evaluate(path string) Decision {
	snap := g.sess.Snapshot()

	var d Decision
	if IsPublic(path) {
		d = DecidePublic(snap)
	} else {
		d = Decide(snap, path)
	}
	if d.Kind != Loading {
		return d
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight && g.resolving == snap.Token {
		return d
	}
	g.inFlight = true
	g.resolving = snap.Token
	token := snap.Token
	d.Resolve = func(ctx context.Context) error {
		return g.resolve(ctx, token)
	}
	return d
}

func (g *Guard) resolve(ctx context.Context, token string) error {
	_, err := g.sess.ResolveProfile(ctx)

	g.mu.Lock()
	if g.resolving == token {
		g.inFlight = false
	}
	g.mu.Unlock()

	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrSessionChanged) || errors.Is(err, session.ErrNoToken) {
		logger.Debug("Session changed while resolving profile")
		return err
	}

	// cleared or replaced meanwhile, e.g. by the 401 observer
	if g.sess.Snapshot().Token != token {
		logger.Debug("Session already cleared", logger.F("error", err))
		return err
	}

	logger.Warn("Profile resolution failed, signing out", logger.F("error", err))
	g.signOut()
	return err
}

// Enter evaluates path, runs the profile resolution if this call is the one
// that owns it, and evaluates again. When another caller owns the resolution
// the Loading decision is returned as is.
func (g *Guard) Enter(ctx context.Context, path string) (Decision, error) {
	d := g.Evaluate(path)
	if d.Kind != Loading || d.Resolve == nil {
		return d, nil
	}
	err := d.Resolve(ctx)
	return g.Evaluate(path), err
}
