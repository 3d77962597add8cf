// Package guard decides, for a navigation path and the current session,
// whether to show the path, redirect, or wait for the profile to resolve.
package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/taskboard/internal/session"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
)

// Kind is what the caller should do with a path
type Kind int

const (
	PassThrough Kind = iota
	Redirect
	Loading
)

func (k Kind) String() string {
	switch k {
	case PassThrough:
		return "pass"
	case Redirect:
		return "redirect"
	case Loading:
		return "loading"
	default:
		return "unknown"
	}
}

// Decision is the guard's answer for one path. Target is set for redirects.
// Resolve is set on at most one Loading decision per token: whoever receives
// it must run it.
type Decision struct {
	Kind    Kind
	Target  string
	Resolve func(ctx context.Context) error
}

// LandingPath is where an authenticated user with profile id uid starts
func LandingPath(uid int64) string {
	return fmt.Sprintf("/user/%d/projects", uid)
}

// InScope reports whether path is the landing path of uid or below it
func InScope(uid int64, path string) bool {
	landing := LandingPath(uid)
	path = strings.TrimSuffix(path, "/")
	return path == landing || strings.HasPrefix(path, landing+"/")
}

// IsPublic reports whether path is one of the login or register pages
func IsPublic(path string) bool {
	path = strings.TrimSuffix(path, "/")
	return path == LoginPath || path == RegisterPath
}

// Decide applies the guard table for an authenticated section path
func Decide(snap session.Snapshot, path string) Decision {
	switch {
	case !snap.HasToken():
		return Decision{Kind: Redirect, Target: LoginPath}
	case !snap.HasProfile():
		return Decision{Kind: Loading}
	case !InScope(snap.Profile.ID, path):
		return Decision{Kind: Redirect, Target: LandingPath(snap.Profile.ID)}
	default:
		return Decision{Kind: PassThrough}
	}
}

// DecidePublic applies the table for the login and register pages: a fully
// signed-in user is sent to the landing path, everyone else stays.
func DecidePublic(snap session.Snapshot) Decision {
	if snap.HasToken() && snap.HasProfile() {
		return Decision{Kind: Redirect, Target: LandingPath(snap.Profile.ID)}
	}
	return Decision{Kind: PassThrough}
}
