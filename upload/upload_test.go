// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqkit/reqkit/request"
	"github.com/reqkit/reqkit/transport"
)

// recordingSession wraps a real session and records which
// task-creation operation each send used.
type recordingSession struct {
	transport.Session
	mu    sync.Mutex
	calls []string
}

func newRecordingSession(opts ...transport.SessionOption) *recordingSession {
	return &recordingSession{Session: transport.NewSession(opts...)}
}

func (s *recordingSession) record(op string) {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	s.mu.Unlock()
}

func (s *recordingSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *recordingSession) UploadFile(ctx context.Context, r transport.Request, path string) (*transport.Task, error) {
	s.record("file")
	return s.Session.UploadFile(ctx, r, path)
}

func (s *recordingSession) UploadData(ctx context.Context, r transport.Request, data []byte) (*transport.Task, error) {
	s.record("data")
	return s.Session.UploadData(ctx, r, data)
}

func (s *recordingSession) UploadStream(ctx context.Context, r transport.Request, body io.Reader) (*transport.Task, error) {
	s.record("stream")
	return s.Session.UploadStream(ctx, r, body)
}

func (s *recordingSession) UploadMultipart(ctx context.Context, r transport.Request, form *transport.Form, memoryThreshold int64) (*transport.Task, error) {
	s.record("multipart")
	return s.Session.UploadMultipart(ctx, r, form, memoryThreshold)
}

type outcome struct {
	mu       sync.Mutex
	value    string
	err      error
	success  int
	failure  int
	resolved chan struct{}
}

func newOutcome() *outcome {
	return &outcome{resolved: make(chan struct{})}
}

func (o *outcome) onSuccess(v string) {
	o.mu.Lock()
	o.value = v
	o.success++
	o.mu.Unlock()
	close(o.resolved)
}

func (o *outcome) onFailure(err error) {
	o.mu.Lock()
	o.err = err
	o.failure++
	o.mu.Unlock()
	close(o.resolved)
}

func (o *outcome) wait(t *testing.T) {
	t.Helper()
	select {
	case <-o.resolved:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func (o *outcome) counts() (success, failure int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.success, o.failure
}

func echoServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTextRequest(t *testing.T, session transport.Session, url string, src Source) *Request[string] {
	t.Helper()
	r, err := New[string](session, "POST", url, src)
	require.NoError(t, err)
	r.Parse = request.Text()
	return r
}

func TestNewPanicsOnNilSession(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = New[string](nil, "POST", "/x", FromData(nil))
	})
}

func TestNewInvalidMethod(t *testing.T) {
	_, err := New[string](transport.NewSession(), "BAD METHOD", "/x", FromData(nil))
	assert.Error(t, err)
}

func TestWithContext(t *testing.T) {
	r := newTextRequest(t, transport.NewSession(), "/x", FromData(nil))
	assert.Panics(t, func() { r.WithContext(nil) })
	assert.Same(t, r, r.WithContext(context.Background()))
	assert.NotNil(t, r.Session())
}

func TestPerformMultipartIsNoOpForOtherVariants(t *testing.T) {
	sources := map[string]Source{
		"File":   FromFile("/tmp/anything"),
		"Data":   FromData([]byte("x")),
		"Stream": FromStream(strings.NewReader("x")),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			session := newRecordingSession()
			r := newTextRequest(t, session, "http://example.com/upload", src)

			o := newOutcome()
			encoded := false
			task := r.PerformMultipart(o.onSuccess, o.onFailure, 0, func(error) { encoded = true })

			assert.Nil(t, task, "no task for non-multipart source")
			success, failure := o.counts()
			assert.Zero(t, success, "no callback for non-multipart source")
			assert.Zero(t, failure)
			assert.False(t, encoded)
			assert.Empty(t, session.Calls(), "transport must not be contacted")
		})
	}
}

func TestPerformMultipartMergesParams(t *testing.T) {
	var fields map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	session := newRecordingSession()
	r := newTextRequest(t, session, server.URL, MultipartForm(func(f *transport.Form) {}))
	r.Params["a"] = "1"

	o := newOutcome()
	var encodeErr error
	encoded := make(chan struct{})
	task := r.PerformMultipart(o.onSuccess, o.onFailure, 0, func(err error) {
		encodeErr = err
		close(encoded)
	})
	require.NotNil(t, task)
	<-encoded
	assert.NoError(t, encodeErr)

	o.wait(t)
	success, failure := o.counts()
	assert.Equal(t, 1, success)
	assert.Zero(t, failure)
	assert.Equal(t, "ok", o.value)
	assert.Equal(t, map[string][]string{"a": {"1"}}, fields,
		"form body must contain exactly one part per flat parameter")
	assert.Equal(t, []string{"multipart"}, session.Calls())
}

func TestPerformMultipartStringifiesParams(t *testing.T) {
	var fields map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	r := newTextRequest(t, transport.NewSession(), server.URL, MultipartForm(func(f *transport.Form) {
		f.AppendValue("extra", "part")
	}))
	r.Params["count"] = 42
	r.Params["flag"] = true

	o := newOutcome()
	r.PerformMultipart(o.onSuccess, o.onFailure, 0, nil)
	o.wait(t)

	assert.Equal(t, []string{"42"}, fields["count"])
	assert.Equal(t, []string{"true"}, fields["flag"])
	assert.Equal(t, []string{"part"}, fields["extra"])
}

func TestPerformMultipartEncodingFailure(t *testing.T) {
	session := newRecordingSession()
	r := newTextRequest(t, session, "http://example.com", MultipartForm(func(f *transport.Form) {
		f.AppendFile("doc", "/nonexistent/path/doc.pdf")
	}))

	o := newOutcome()
	var encodeErr error
	task := r.PerformMultipart(o.onSuccess, o.onFailure, 0, func(err error) { encodeErr = err })

	assert.Nil(t, task, "encoding failure must produce no partial task")
	o.wait(t)
	success, failure := o.counts()
	assert.Zero(t, success)
	assert.Equal(t, 1, failure)
	assert.Error(t, encodeErr)
	assert.Equal(t, request.KindEncoding, request.Classify(o.err))
}

func TestPerformStubSuccess(t *testing.T) {
	session := newRecordingSession()
	r := newTextRequest(t, session, "http://example.com", FromData([]byte("x")))
	r.Stub = request.StubSuccess("canned")

	o := newOutcome()
	task := r.Perform(o.onSuccess, o.onFailure)

	// Stubbed sends resolve synchronously: no waiting, no live task,
	// no transport contact.
	assert.Nil(t, task)
	success, failure := o.counts()
	assert.Equal(t, 1, success)
	assert.Zero(t, failure)
	assert.Equal(t, "canned", o.value)
	assert.Empty(t, session.Calls())
}

func TestPerformStubFailure(t *testing.T) {
	session := newRecordingSession()
	r := newTextRequest(t, session, "http://example.com", FromData([]byte("x")))
	cause := errors.New("canned failure")
	r.Stub = request.StubFailure[string](cause)

	o := newOutcome()
	task := r.Perform(o.onSuccess, o.onFailure)

	assert.Nil(t, task)
	success, failure := o.counts()
	assert.Zero(t, success)
	assert.Equal(t, 1, failure)
	assert.Same(t, cause, o.err)
	assert.Empty(t, session.Calls())
}

func TestPerformStubMultipart(t *testing.T) {
	session := newRecordingSession()
	r := newTextRequest(t, session, "http://example.com", MultipartForm(func(f *transport.Form) {}))
	r.Stub = request.StubSuccess("canned")

	o := newOutcome()
	task := r.PerformMultipart(o.onSuccess, o.onFailure, 0, nil)

	assert.Nil(t, task)
	success, _ := o.counts()
	assert.Equal(t, 1, success)
	assert.Empty(t, session.Calls())
}

func TestPerformFileSource(t *testing.T) {
	server := echoServer(t, "stored")
	session := newRecordingSession()

	dir := t.TempDir()
	path := dir + "/payload.pdf"
	require.NoError(t, writeFile(path, "%PDF-1.7 content"))

	r := newTextRequest(t, session, server.URL, FromFile(path))
	o := newOutcome()
	task := r.Perform(o.onSuccess, o.onFailure)
	require.NotNil(t, task)

	o.wait(t)
	assert.Equal(t, "stored", o.value)
	assert.Equal(t, []string{"file"}, session.Calls())
}

func TestPerformStreamSource(t *testing.T) {
	server := echoServer(t, "stored")
	session := newRecordingSession()

	r := newTextRequest(t, session, server.URL, FromStream(strings.NewReader("streamed")))
	o := newOutcome()
	task := r.Perform(o.onSuccess, o.onFailure)
	require.NotNil(t, task)

	o.wait(t)
	assert.Equal(t, "stored", o.value)
	assert.Equal(t, []string{"stream"}, session.Calls())
}

func TestPerformQueryEncodesParams(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))
	r.Params["a"] = 1

	o := newOutcome()
	r.Perform(o.onSuccess, o.onFailure)
	o.wait(t)

	assert.Equal(t, "a=1", query)
}

func TestPerformManualStartResumesTask(t *testing.T) {
	server := echoServer(t, "ok")
	session := newRecordingSession(transport.WithManualStart())
	require.False(t, session.StartsImmediately())

	r := newTextRequest(t, session, server.URL, FromData([]byte("x")))
	o := newOutcome()
	task := r.Perform(o.onSuccess, o.onFailure)
	require.NotNil(t, task)

	// The completion can only arrive because Perform resumed the task
	// after wiring the completion path.
	o.wait(t)
	assert.Equal(t, "ok", o.value)
}

func TestPerformValidationParsesErrorModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`{"message":"no such report"}`))
	}))
	defer server.Close()

	t.Run("ErrorModel", func(t *testing.T) {
		r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))
		r.ParseError = func(data []byte) error {
			return &apiError{Message: string(data)}
		}

		o := newOutcome()
		r.Perform(o.onSuccess, o.onFailure)
		o.wait(t)

		var apiErr *apiError
		require.ErrorAs(t, o.err, &apiErr)
		assert.Contains(t, apiErr.Message, "no such report")
	})
	t.Run("Fallback", func(t *testing.T) {
		r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))

		o := newOutcome()
		r.Perform(o.onSuccess, o.onFailure)
		o.wait(t)

		var typed *request.Error
		require.ErrorAs(t, o.err, &typed)
		assert.Equal(t, request.KindValidation, typed.Kind)
		assert.Equal(t, 404, typed.StatusCode)
		assert.Equal(t, []byte(`{"message":"no such report"}`), typed.Body)
	})
}

type apiError struct {
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

func TestPerformParsingFailure(t *testing.T) {
	server := echoServer(t, "not json")

	r, err := New[map[string]string](transport.NewSession(), "POST", server.URL, FromData([]byte("x")))
	require.NoError(t, err)
	r.Parse = request.JSON[map[string]string]()

	failed := make(chan error, 1)
	r.Perform(
		func(map[string]string) { t.Error("unexpected success") },
		func(err error) { failed <- err },
	)

	select {
	case err := <-failed:
		assert.Equal(t, request.KindParsing, request.Classify(err))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func TestPerformUnderlyingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	r := newTextRequest(t, transport.NewSession(transport.WithDoer(&http.Client{})), url, FromData([]byte("x")))
	o := newOutcome()
	r.Perform(o.onSuccess, o.onFailure)
	o.wait(t)

	assert.Equal(t, request.KindUnderlying, request.Classify(o.err))
}

func TestPerformMissingParser(t *testing.T) {
	server := echoServer(t, "ok")
	r, err := New[string](transport.NewSession(), "POST", server.URL, FromData([]byte("x")))
	require.NoError(t, err)

	o := newOutcome()
	r.Perform(o.onSuccess, o.onFailure)
	o.wait(t)

	assert.Equal(t, request.KindConfiguration, request.Classify(o.err))
}

func TestPerformAuthorization(t *testing.T) {
	t.Run("MissingAuthorizer", func(t *testing.T) {
		session := newRecordingSession()
		r := newTextRequest(t, session, "http://example.com", FromData([]byte("x")))
		r.RequiresAuth = true

		o := newOutcome()
		task := r.Perform(o.onSuccess, o.onFailure)

		assert.Nil(t, task)
		_, failure := o.counts()
		assert.Equal(t, 1, failure)
		assert.Equal(t, request.KindConfiguration, request.Classify(o.err))
		assert.Empty(t, session.Calls(), "misconfigured request must not reach the transport")
	})
	t.Run("Applied", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))
		r.RequiresAuth = true
		r.Authorize = func(h http.Header) error {
			h.Set("Authorization", "Bearer token-1")
			return nil
		}

		o := newOutcome()
		r.Perform(o.onSuccess, o.onFailure)
		o.wait(t)

		assert.Equal(t, "Bearer token-1", auth)
	})
}

func TestPerformPluginNotifiedBeforeCompletion(t *testing.T) {
	server := echoServer(t, "ok")
	r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))

	var mu sync.Mutex
	var order []string
	r.Plugins.PushBack(request.PluginFunc(func(req *http.Request) {
		mu.Lock()
		order = append(order, "plugin:"+req.Method)
		mu.Unlock()
	}))

	o := newOutcome()
	r.Perform(func(v string) {
		mu.Lock()
		order = append(order, "completion")
		mu.Unlock()
		o.onSuccess(v)
	}, o.onFailure)
	o.wait(t)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
	assert.Equal(t, "plugin:POST", order[0])
	assert.Equal(t, "completion", order[1])
}

func TestPerformCollectingTimeline(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := echoServer(t, "ok")
		r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))

		got := make(chan *request.Response[string], 1)
		task := r.PerformCollectingTimeline(func(resp *request.Response[string]) { got <- resp })
		require.NotNil(t, task)

		select {
		case resp := <-got:
			assert.True(t, resp.Succeeded())
			assert.Equal(t, "ok", resp.Value)
			assert.Equal(t, 200, resp.StatusCode)
			assert.Equal(t, []byte("ok"), resp.Body)
			assert.True(t, resp.Timeline.Started())
			assert.True(t, resp.Timeline.Ended())
			assert.GreaterOrEqual(t, resp.Timeline.Duration(), time.Duration(0))
		case <-time.After(5 * time.Second):
			t.Fatal("timed out")
		}
	})
	t.Run("Stubbed", func(t *testing.T) {
		r := newTextRequest(t, transport.NewSession(), "http://example.com", FromData(nil))
		r.Stub = request.StubSuccess("canned")

		var resp *request.Response[string]
		task := r.PerformCollectingTimeline(func(got *request.Response[string]) { resp = got })

		assert.Nil(t, task)
		require.NotNil(t, resp, "stubbed sends resolve synchronously")
		assert.Equal(t, "canned", resp.Value)
		assert.False(t, resp.Timeline.Started(), "stubbed sends carry a zero timeline")
	})
}

func TestPerformSyncQueueDelivery(t *testing.T) {
	server := echoServer(t, "ok")
	r := newTextRequest(t, transport.NewSession(), server.URL, FromData([]byte("x")))
	r.Queue = transport.Sync()

	o := newOutcome()
	r.Perform(o.onSuccess, o.onFailure)
	o.wait(t)

	assert.Equal(t, "ok", o.value)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
