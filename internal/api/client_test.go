package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, 0)
	client.SetHTTPClient(server.Client())
	return client
}

func TestClient_SetAuthTokenInstallsAndRemovesHeader(t *testing.T) {
	var seen []string
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.Get(ctx, "/a", nil, nil))

	client.SetAuthToken("t1")
	assert.Equal(t, "t1", client.AuthToken())
	require.NoError(t, client.Get(ctx, "/b", nil, nil))

	client.SetAuthToken("")
	assert.Equal(t, "", client.AuthToken())
	require.NoError(t, client.Get(ctx, "/c", nil, nil))

	assert.Equal(t, []string{"", "Bearer t1", ""}, seen)
}

func TestClient_PerCallHeadersOverrideDefaults(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer call", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusNoContent)
	})

	client.SetAuthToken("default")
	h := http.Header{}
	h.Set("Authorization", BearerValue("call"))
	require.NoError(t, client.Get(context.Background(), "/", nil, h))
}

func TestClient_DoEncodesAndDecodesJSON(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/", r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Work", in["name"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 7, "name": in["name"]})
	})

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	err := client.Post(context.Background(), "/projects/", map[string]string{"name": "Work"}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Work", out.Name)
}

func TestClient_HTTPErrorCarriesDetail(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Email already registered"}`))
	})

	err := client.Post(context.Background(), "/auth/register", map[string]string{}, nil, nil)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Email already registered", httpErr.Message())
	assert.Equal(t, "Email already registered", DisplayMessage(err))
}

func TestHTTPError_ValidationListDetail(t *testing.T) {
	err := &HTTPError{Status: 422, Body: []byte(`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`)}
	assert.Equal(t, "field required; too short", err.Message())

	plain := &HTTPError{Status: 500, Body: []byte("oops")}
	assert.Equal(t, "oops", plain.Message())

	empty := &HTTPError{Status: 404}
	assert.Equal(t, "Not Found", empty.Message())
}

func TestClient_UnauthorizedObserver(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	calls := 0
	detach := client.OnUnauthorized(func() {
		calls++
		// observers may call back into the client
		client.SetAuthToken("")
	})

	err := client.Get(context.Background(), "/auth/me", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, calls)

	detach()
	detach()

	_ = client.Get(context.Background(), "/auth/me", nil, nil)
	assert.Equal(t, 1, calls)
}

func TestClient_DetachRemovesOnlyItsObserver(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var a, b int
	detachA := client.OnUnauthorized(func() { a++ })
	client.OnUnauthorized(func() { b++ })
	detachA()

	_ = client.Get(context.Background(), "/", nil, nil)
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, 0)
	err := client.Get(context.Background(), "/projects/", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, 0, StatusCode(err))
}
