package session

import "github.com/existflow/taskboard/internal/model"

// Lifecycle is the state of the most recent auth operation
type Lifecycle int

const (
	Idle Lifecycle = iota
	Resolving
	Ready
	Failed
)

func (l Lifecycle) String() string {
	switch l {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// AuthState is the coarse view of a session that screens care about
type AuthState int

const (
	Unauthenticated AuthState = iota
	ResolvingProfile
	Authenticated
)

func (a AuthState) String() string {
	switch a {
	case Unauthenticated:
		return "unauthenticated"
	case ResolvingProfile:
		return "resolving"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session. Only the Store writes session
// state; everything else reads snapshots.
type Snapshot struct {
	Token     string
	Profile   *model.User
	Lifecycle Lifecycle
	LastError string
}

// HasToken reports whether a bearer token is held
func (s Snapshot) HasToken() bool {
	return s.Token != ""
}

// HasProfile reports whether the profile for the token has been resolved
func (s Snapshot) HasProfile() bool {
	return s.Profile != nil
}

// State derives the coarse auth state
func (s Snapshot) State() AuthState {
	switch {
	case !s.HasToken():
		return Unauthenticated
	case !s.HasProfile():
		return ResolvingProfile
	default:
		return Authenticated
	}
}
