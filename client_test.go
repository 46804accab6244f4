// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqkit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqkit/reqkit/request"
	"github.com/reqkit/reqkit/transport"
	"github.com/reqkit/reqkit/upload"
)

func TestNewPanicsOnNilSession(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestOptionPanics(t *testing.T) {
	assert.Panics(t, func() { WithPlugins(nil) })
	assert.Panics(t, func() { WithQueue(nil) })
	assert.Panics(t, func() { WithAuthorizer(nil) })
}

func TestUploadStampsClientDefaults(t *testing.T) {
	session := transport.NewSession()
	queue := transport.Sync()
	plugin := request.PluginFunc(func(*http.Request) {})
	auth := AuthorizerFunc(func(h http.Header) error {
		h.Set("Authorization", "Bearer t")
		return nil
	})

	client := New(session,
		WithBaseURL("https://api.example.com"),
		WithPlugins(plugin, plugin),
		WithQueue(queue),
		WithAuthorizer(auth),
	)
	assert.Same(t, session, client.Session())

	r, err := Upload[string](client, "POST", "/v1/reports", upload.FromData([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", r.BaseURL)
	assert.Equal(t, 2, r.Plugins.Len())
	assert.Equal(t, queue, r.Queue)
	assert.NotNil(t, r.Authorize)

	u, err := r.URL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/reports", u)
}

func TestUploadInvalidMethod(t *testing.T) {
	client := New(transport.NewSession())
	_, err := Upload[string](client, "BAD METHOD", "/x", upload.FromData(nil))
	assert.Error(t, err)
}

func TestClientEndToEnd(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("stored"))
	}))
	defer server.Close()

	var mu sync.Mutex
	var observed []string
	client := New(transport.NewSession(),
		WithBaseURL(server.URL),
		WithPlugins(request.PluginFunc(func(r *http.Request) {
			mu.Lock()
			observed = append(observed, r.URL.Path)
			mu.Unlock()
		})),
		WithAuthorizer(AuthorizerFunc(func(h http.Header) error {
			h.Set("Authorization", "Bearer token-1")
			return nil
		})),
	)

	r, err := Upload[string](client, "POST", "/v1/reports", upload.FromData([]byte("payload")))
	require.NoError(t, err)
	r.Parse = request.Text()
	r.RequiresAuth = true

	done := make(chan string, 1)
	r.Perform(
		func(v string) { done <- v },
		func(err error) { t.Errorf("unexpected failure: %v", err) },
	)

	select {
	case v := <-done:
		assert.Equal(t, "stored", v)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	assert.Equal(t, "/v1/reports", gotPath)
	assert.Equal(t, "Bearer token-1", gotAuth)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/v1/reports"}, observed)
}
