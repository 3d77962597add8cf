package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/existflow/taskboard/internal/model"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the password of the account created by New
const DefaultPassword = "secret123"

// TestServer is a running Backend with one registered account
type TestServer struct {
	*Backend
	Server *httptest.Server
	User   model.User
}

// New starts a backend on a local port with the account ada@example.com and
// stops it when the test ends.
func New(t *testing.T) *TestServer {
	t.Helper()

	backend := NewBackend()
	u, err := backend.AddUser("Ada Lovelace", "ada@example.com", DefaultPassword)
	require.NoError(t, err)

	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	return &TestServer{Backend: backend, Server: server, User: u}
}

// URL returns the base URL of the running server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Token issues a valid token for the default account
func (ts *TestServer) Token() string {
	return ts.IssueToken(ts.User.ID)
}
