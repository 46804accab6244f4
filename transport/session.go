// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// A Doer implements a Do method in the same manner as the Go standard
// library http.Client from the net/http package.
type Doer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth, retries) configured on
	// the Doer.
	//
	// The Do method must follow the contract documented on the Go
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Request is the pre-build request plan handed to a Session when
// creating an upload task: everything about the outgoing request except
// its body, which is supplied by the session operation.
type Request struct {
	// Method specifies the HTTP method. An empty string means POST.
	Method string

	// URL is the absolute URL to send the request to.
	URL string

	// Header contains the request header fields to send. It may be
	// nil.
	Header http.Header
}

// A Session creates upload tasks keyed by payload source. One session
// is typically shared by every request issued through a client; the
// request layer only reads it and never mutates it.
type Session interface {
	// UploadFile creates a task sending the contents of the file at
	// path as the request body.
	UploadFile(ctx context.Context, r Request, path string) (*Task, error)

	// UploadData creates a task sending the given bytes as the request
	// body.
	UploadData(ctx context.Context, r Request, data []byte) (*Task, error)

	// UploadStream creates a task streaming the request body from
	// body. The body is sent with unknown length.
	UploadStream(ctx context.Context, r Request, body io.Reader) (*Task, error)

	// UploadMultipart encodes form into a multipart body, spooling to
	// disk above memoryThreshold bytes, and creates a task sending it.
	// Encoding failures are reported before any task exists.
	UploadMultipart(ctx context.Context, r Request, form *Form, memoryThreshold int64) (*Task, error)

	// StartsImmediately reports whether tasks created by the session
	// are resumed on creation. When false, the caller must resume each
	// task explicitly.
	StartsImmediately() bool
}

// An HTTPSession is the shipped Session implementation. It builds
// http.Request values for each payload source and delegates all actual
// I/O to an injected Doer; the zero configuration uses a retrying HTTP
// client.
type HTTPSession struct {
	doer        Doer
	manualStart bool
}

// A SessionOption configures an HTTPSession during NewSession.
type SessionOption func(*HTTPSession)

// WithDoer injects the HTTP client used to send requests.
func WithDoer(d Doer) SessionOption {
	if d == nil {
		panic("transport: nil doer")
	}
	return func(s *HTTPSession) {
		s.doer = d
	}
}

// WithManualStart configures the session to leave new tasks suspended
// until Resume is called on them.
func WithManualStart() SessionOption {
	return func(s *HTTPSession) {
		s.manualStart = true
	}
}

// NewSession creates an HTTPSession. Without options the session sends
// through a retrying HTTP client and starts tasks immediately.
func NewSession(opts ...SessionOption) *HTTPSession {
	s := &HTTPSession{}
	for _, opt := range opts {
		opt(s)
	}
	if s.doer == nil {
		rc := retryablehttp.NewClient()
		rc.Logger = nil
		s.doer = rc.StandardClient()
	}
	return s
}

// StartsImmediately reports whether the session resumes tasks on
// creation.
func (s *HTTPSession) StartsImmediately() bool {
	return !s.manualStart
}

// UploadFile creates a task sending the file at path. The Content-Type
// header, when not already set, is sniffed from the file contents, and
// the request carries the file size as its content length.
func (s *HTTPSession) UploadFile(ctx context.Context, r Request, path string) (*Task, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: stat upload file %q", path)
	}

	contentType := ""
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}

	open := func() (io.ReadCloser, error) {
		return os.Open(path)
	}
	body, err := open()
	if err != nil {
		return nil, errors.Wrapf(err, "transport: open upload file %q", path)
	}

	return s.newTask(ctx, r, body, open, info.Size(), contentType)
}

// UploadData creates a task sending data as the request body. The
// Content-Type header, when not already set, is sniffed from the data.
func (s *HTTPSession) UploadData(ctx context.Context, r Request, data []byte) (*Task, error) {
	contentType := ""
	if len(data) > 0 {
		contentType = mimetype.Detect(data).String()
	}

	getBody := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	body, _ := getBody()

	return s.newTask(ctx, r, body, getBody, int64(len(data)), contentType)
}

// UploadStream creates a task streaming the request body from body.
// The content length is unknown, so the request is typically sent with
// chunked transfer encoding.
func (s *HTTPSession) UploadStream(ctx context.Context, r Request, body io.Reader) (*Task, error) {
	if body == nil {
		return nil, errors.New("transport: nil stream body")
	}

	rc, ok := body.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(body)
	}

	return s.newTask(ctx, r, rc, nil, -1, "")
}

// UploadMultipart encodes form and creates a task sending the encoded
// body with the multipart content type. Bodies larger than
// memoryThreshold bytes are spooled to a temporary file which is
// removed once the body is closed.
func (s *HTTPSession) UploadMultipart(ctx context.Context, r Request, form *Form, memoryThreshold int64) (*Task, error) {
	if form == nil {
		return nil, errors.New("transport: nil form")
	}

	body, contentType, size, err := form.encode(memoryThreshold)
	if err != nil {
		return nil, err
	}

	return s.newTask(ctx, r, body, nil, size, contentType)
}

func (s *HTTPSession) newTask(ctx context.Context, r Request, body io.ReadCloser, getBody func() (io.ReadCloser, error), length int64, contentType string) (*Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := r.Method
	if method == "" {
		method = "POST"
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, method, r.URL, nil)
	if err != nil {
		cancel()
		_ = body.Close()
		return nil, errors.Wrap(err, "transport: build request")
	}

	req.Body = body
	req.GetBody = getBody
	req.ContentLength = length
	for k, vs := range r.Header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	task := newTask(s.doer, req, cancel)
	if !s.manualStart {
		task.Resume()
	}
	return task, nil
}
