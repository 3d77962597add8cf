package guard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu        sync.Mutex
	snap      session.Snapshot
	calls     int
	err       error
	profile   *model.User
	release   chan struct{}
	loggedOut int
	// clearOnFail empties the session before failing, the way the 401
	// observer does
	clearOnFail bool
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) ResolveProfile(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		if f.clearOnFail {
			f.snap = session.Snapshot{}
		}
		return nil, f.err
	}
	f.snap.Profile = f.profile
	return f.profile, nil
}

func (f *fakeSession) LogoutAndClear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut++
	f.snap = session.Snapshot{}
}

type recorder struct {
	paths []string
}

func (r *recorder) Redirect(path string) {
	r.paths = append(r.paths, path)
}

func TestDecide_Table(t *testing.T) {
	profile := &model.User{ID: 5}
	cases := []struct {
		name   string
		snap   session.Snapshot
		path   string
		kind   Kind
		target string
	}{
		{"no token", session.Snapshot{}, "/user/5/projects", Redirect, LoginPath},
		{"no token any path", session.Snapshot{}, "/anything", Redirect, LoginPath},
		{"token without profile", session.Snapshot{Token: "t"}, "/user/5/projects", Loading, ""},
		{"out of scope", session.Snapshot{Token: "t", Profile: profile}, "/user/7/projects", Redirect, "/user/5/projects"},
		{"root", session.Snapshot{Token: "t", Profile: profile}, "/", Redirect, "/user/5/projects"},
		{"prefix but not sub-path", session.Snapshot{Token: "t", Profile: profile}, "/user/5/projectsx", Redirect, "/user/5/projects"},
		{"landing", session.Snapshot{Token: "t", Profile: profile}, "/user/5/projects", PassThrough, ""},
		{"nested", session.Snapshot{Token: "t", Profile: profile}, "/user/5/projects/3/tasks", PassThrough, ""},
		{"trailing slash", session.Snapshot{Token: "t", Profile: profile}, "/user/5/projects/", PassThrough, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.snap, tc.path)
			assert.Equal(t, tc.kind, d.Kind)
			assert.Equal(t, tc.target, d.Target)
			assert.Nil(t, d.Resolve)
		})
	}
}

func TestDecidePublic(t *testing.T) {
	signedIn := session.Snapshot{Token: "t", Profile: &model.User{ID: 5}}
	d := DecidePublic(signedIn)
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, "/user/5/projects", d.Target)

	assert.Equal(t, PassThrough, DecidePublic(session.Snapshot{}).Kind)
	assert.Equal(t, PassThrough, DecidePublic(session.Snapshot{Token: "t"}).Kind)
}

func TestEvaluate_LoginPageWhenSignedIn(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t", Profile: &model.User{ID: 5}}}
	g := New(sess, nil, nil)

	d := g.Evaluate("/login")
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, "/user/5/projects", d.Target)

	assert.Equal(t, PassThrough, g.Evaluate("/user/5/projects/3/tasks").Kind)
}

func TestEvaluate_ResolvesOncePerToken(t *testing.T) {
	sess := &fakeSession{
		snap:    session.Snapshot{Token: "t"},
		profile: &model.User{ID: 5},
		release: make(chan struct{}),
	}
	g := New(sess, nil, nil)

	first := g.Evaluate("/user/5/projects")
	require.Equal(t, Loading, first.Kind)
	require.NotNil(t, first.Resolve)

	done := make(chan error)
	go func() { done <- first.Resolve(context.Background()) }()

	for i := 0; i < 3; i++ {
		d := g.Evaluate("/user/5/projects")
		assert.Equal(t, Loading, d.Kind)
		assert.Nil(t, d.Resolve)
	}

	close(sess.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, sess.calls)
	assert.Equal(t, PassThrough, g.Evaluate("/user/5/projects").Kind)
}

func TestEvaluate_FailureLogsOutAndRedirects(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t"}, err: errors.New("401")}
	nav := &recorder{}
	g := New(sess, nav, nil)

	d := g.Evaluate("/user/5/projects")
	require.NotNil(t, d.Resolve)
	require.Error(t, d.Resolve(context.Background()))

	assert.Equal(t, 1, sess.loggedOut)
	assert.Equal(t, []string{LoginPath}, nav.paths)

	next := g.Evaluate("/user/5/projects")
	assert.Equal(t, Redirect, next.Kind)
	assert.Equal(t, LoginPath, next.Target)
}

func TestEvaluate_FailureUsesSignOut(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t"}, err: errors.New("503")}
	nav := &recorder{}
	signedOut := 0
	g := New(sess, nav, func() { signedOut++ })

	d := g.Evaluate("/user/5/projects")
	require.Error(t, d.Resolve(context.Background()))

	assert.Equal(t, 1, signedOut)
	assert.Zero(t, sess.loggedOut)
	assert.Empty(t, nav.paths)
}

func TestEvaluate_FailureAfterSessionClearedDoesNotSignOutAgain(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t"}, err: errors.New("401"), clearOnFail: true}
	nav := &recorder{}
	signedOut := 0
	g := New(sess, nav, func() { signedOut++ })

	d := g.Evaluate("/user/5/projects")
	require.Error(t, d.Resolve(context.Background()))

	assert.Zero(t, signedOut)
	assert.Empty(t, nav.paths)
	assert.Equal(t, LoginPath, g.Evaluate("/user/5/projects").Target)
}

func TestEvaluate_NewTokenGetsNewResolution(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "a"}}
	g := New(sess, nil, nil)

	require.NotNil(t, g.Evaluate("/user/1/projects").Resolve)

	sess.mu.Lock()
	sess.snap = session.Snapshot{Token: "b"}
	sess.mu.Unlock()

	assert.NotNil(t, g.Evaluate("/user/1/projects").Resolve)
}

func TestEvaluate_SessionChangedDoesNotLogOut(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t"}, err: session.ErrSessionChanged}
	nav := &recorder{}
	g := New(sess, nav, nil)

	d := g.Evaluate("/user/1/projects")
	require.ErrorIs(t, d.Resolve(context.Background()), session.ErrSessionChanged)
	assert.Zero(t, sess.loggedOut)
	assert.Empty(t, nav.paths)
}

func TestEnter(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t"}, profile: &model.User{ID: 5}}
	g := New(sess, nil, nil)

	d, err := g.Enter(context.Background(), "/user/5/projects/3/tasks")
	require.NoError(t, err)
	assert.Equal(t, PassThrough, d.Kind)
	assert.Equal(t, 1, sess.calls)

	d, err = g.Enter(context.Background(), "/user/9/projects")
	require.NoError(t, err)
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, "/user/5/projects", d.Target)
	assert.Equal(t, 1, sess.calls)
}

func TestEnter_Failure(t *testing.T) {
	sess := &fakeSession{snap: session.Snapshot{Token: "t"}, err: errors.New("expired")}
	g := New(sess, nil, nil)

	d, err := g.Enter(context.Background(), "/user/5/projects")
	require.Error(t, err)
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, LoginPath, d.Target)
}

func TestInScope(t *testing.T) {
	assert.True(t, InScope(5, "/user/5/projects"))
	assert.True(t, InScope(5, "/user/5/projects/3/tasks/9"))
	assert.False(t, InScope(5, "/user/50/projects"))
	assert.False(t, InScope(5, "/user/5"))
	assert.True(t, IsPublic("/login/"))
	assert.False(t, IsPublic("/user/5/projects"))
}
