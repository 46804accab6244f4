// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	urlpkg "net/url"

	"github.com/reqkit/reqkit/request"
	"github.com/reqkit/reqkit/transport"
)

// A Request is a typed upload request. It extends the shared request
// state with a payload Source and a transport Session, and translates
// the active source variant into the matching task-creation call.
//
// The session is required: New panics when handed a nil session, so a
// constructed Request can always reach its transport.
type Request[T any] struct {
	*request.Base[T]

	// Source describes where the upload payload comes from.
	Source Source

	// Authorize, when non-nil, is applied to the outgoing headers of
	// requests marked RequiresAuth.
	Authorize func(h http.Header) error

	session transport.Session
	ctx     context.Context
}

// New returns a new upload Request for the given session, method,
// target path and payload source. The session must be non-nil.
func New[T any](session transport.Session, method, path string, src Source) (*Request[T], error) {
	if session == nil {
		panic("upload: nil session")
	}
	base, err := request.New[T](method, path)
	if err != nil {
		return nil, err
	}
	return &Request[T]{
		Base:    base,
		Source:  src,
		session: session,
		ctx:     context.Background(),
	}, nil
}

// Session returns the transport session the request sends through.
func (r *Request[T]) Session() transport.Session {
	return r.session
}

// WithContext sets the context governing the request's tasks and
// returns r for chaining. The context must be non-nil.
func (r *Request[T]) WithContext(ctx context.Context) *Request[T] {
	if ctx == nil {
		panic("upload: nil context")
	}
	r.ctx = ctx
	return r
}

// Perform sends the upload and delivers the outcome through exactly one
// of the two callbacks, on the request's delivery queue.
//
// A stubbed request resolves synchronously with the canned outcome and
// returns no live task. Otherwise Perform builds the transport call for
// the active source variant, notifies the plugins with the underlying
// request, wires validation and response conversion, resumes the task
// when the session does not start tasks itself, and returns the live
// task handle.
func (r *Request[T]) Perform(onSuccess func(T), onFailure func(err error)) *transport.Task {
	if r.Stub != nil {
		r.deliverStub(onSuccess, onFailure)
		return nil
	}

	task, err := r.createTask(0)
	if err != nil {
		onFailure(err)
		return nil
	}
	return r.dispatch(task, func(res *transport.Result) {
		v, err := r.outcome(res)
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(v)
	})
}

// PerformCollectingTimeline sends the upload exactly as Perform does,
// but delivers a single combined response carrying the parsed value or
// error together with the raw response metadata and the send timeline.
func (r *Request[T]) PerformCollectingTimeline(completion func(resp *request.Response[T])) *transport.Task {
	if r.Stub != nil {
		v, err := r.Stub.Outcome()
		completion(&request.Response[T]{Value: v, Err: err})
		return nil
	}

	task, err := r.createTask(0)
	if err != nil {
		completion(&request.Response[T]{Err: err})
		return nil
	}
	return r.dispatch(task, func(res *transport.Result) {
		resp := &request.Response[T]{
			StatusCode: res.StatusCode(),
			Header:     res.Header(),
			Body:       res.Body,
			Timeline:   request.Timeline{Start: res.Start, End: res.End},
		}
		resp.Value, resp.Err = r.outcome(res)
		completion(resp)
	})
}

// PerformMultipart sends a multipart upload with an explicit memory
// threshold for body encoding. For any source variant other than
// Multipart it silently does nothing: no callback fires and no task is
// created.
//
// The request's flat parameters are merged into the form as stringified
// UTF-8 fields before the source's builder function runs. On encoding
// failure, encodingDone (if non-nil) and the failure callback both
// receive the error, and no task exists. On encoding success,
// encodingDone receives nil and the send proceeds as in Perform.
func (r *Request[T]) PerformMultipart(onSuccess func(T), onFailure func(err error), memoryThreshold int64, encodingDone func(err error)) *transport.Task {
	if r.Source.kind != Multipart {
		return nil
	}
	if r.Stub != nil {
		r.deliverStub(onSuccess, onFailure)
		return nil
	}

	task, err := r.createTask(memoryThreshold)
	if err != nil {
		if encodingDone != nil {
			encodingDone(err)
		}
		onFailure(err)
		return nil
	}
	if encodingDone != nil {
		encodingDone(nil)
	}
	return r.dispatch(task, func(res *transport.Result) {
		v, err := r.outcome(res)
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(v)
	})
}

func (r *Request[T]) deliverStub(onSuccess func(T), onFailure func(err error)) {
	v, err := r.Stub.Outcome()
	if err != nil {
		onFailure(err)
		return
	}
	onSuccess(v)
}

// dispatch wires the post-creation pipeline in its guaranteed order:
// plugin notification, then validation, then the completion callback on
// the delivery queue, then an explicit resume for sessions that do not
// start tasks themselves.
func (r *Request[T]) dispatch(task *transport.Task, handle func(*transport.Result)) *transport.Task {
	r.Plugins.Notify(task.Request())
	task.Validate(transport.AcceptStatus(200, 299))
	task.Response(r.queue(), handle)
	if !r.session.StartsImmediately() {
		task.Resume()
	}
	return task
}

// createTask matches the active source variant to the session's
// task-creation API. Errors are typed: configuration failures from the
// request itself, encoding failures from payload construction.
func (r *Request[T]) createTask(memoryThreshold int64) (*transport.Task, error) {
	treq, err := r.buildTransportRequest()
	if err != nil {
		return nil, err
	}

	var task *transport.Task
	switch r.Source.kind {
	case File:
		task, err = r.session.UploadFile(r.ctx, treq, r.Source.path)
	case Data:
		task, err = r.session.UploadData(r.ctx, treq, r.Source.data)
	case Stream:
		task, err = r.session.UploadStream(r.ctx, treq, r.Source.stream)
	case Multipart:
		form := &transport.Form{}
		r.mergeParams(form)
		r.Source.build(form)
		task, err = r.session.UploadMultipart(r.ctx, treq, form, memoryThreshold)
	default:
		return nil, &request.Error{Kind: request.KindConfiguration, Cause: fmt.Errorf("unknown source kind %d", int(r.Source.kind))}
	}
	if err != nil {
		return nil, &request.Error{Kind: request.KindEncoding, Cause: err}
	}
	return task, nil
}

// mergeParams adds the request's flat parameters to the form, each
// value stringified via its natural text representation.
func (r *Request[T]) mergeParams(form *transport.Form) {
	for k, v := range r.Params {
		form.AppendValue(k, fmt.Sprint(v))
	}
}

func (r *Request[T]) buildTransportRequest() (transport.Request, error) {
	target, err := r.URL()
	if err != nil {
		return transport.Request{}, &request.Error{Kind: request.KindConfiguration, Cause: err}
	}

	// Multipart sends carry the parameters in the form body; every
	// other variant query-encodes them.
	if r.Source.kind != Multipart && len(r.Params) > 0 {
		parsed, err := urlpkg.Parse(target)
		if err != nil {
			return transport.Request{}, &request.Error{Kind: request.KindConfiguration, Cause: err}
		}
		q := parsed.Query()
		for k, vs := range r.QueryValues() {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		parsed.RawQuery = q.Encode()
		target = parsed.String()
	}

	header := make(http.Header, len(r.Header))
	for k, vs := range r.Header {
		header[k] = append([]string(nil), vs...)
	}
	if r.RequiresAuth {
		if r.Authorize == nil {
			return transport.Request{}, &request.Error{
				Kind:  request.KindConfiguration,
				Cause: errors.New("authorization required but no authorizer configured"),
			}
		}
		if err := r.Authorize(header); err != nil {
			return transport.Request{}, &request.Error{Kind: request.KindConfiguration, Cause: err}
		}
	}

	return transport.Request{Method: r.Method, URL: target, Header: header}, nil
}

// outcome maps a terminal task result to the parsed success model or a
// typed error, consulting the caller's error parser for rejected
// responses.
func (r *Request[T]) outcome(res *transport.Result) (T, error) {
	var zero T
	if res.Err != nil {
		var status *transport.StatusError
		if errors.As(res.Err, &status) {
			if r.ParseError != nil {
				if model := r.ParseError(status.Body); model != nil {
					return zero, model
				}
			}
			return zero, &request.Error{
				Kind:       request.KindValidation,
				Cause:      res.Err,
				StatusCode: status.StatusCode,
				Body:       status.Body,
			}
		}
		return zero, &request.Error{Kind: request.KindUnderlying, Cause: res.Err}
	}

	if r.Parse == nil {
		return zero, &request.Error{Kind: request.KindConfiguration, Cause: errors.New("no response parser configured")}
	}
	v, err := r.Parse(res.Body)
	if err != nil {
		return zero, &request.Error{
			Kind:       request.KindParsing,
			Cause:      err,
			StatusCode: res.StatusCode(),
			Body:       res.Body,
		}
	}
	return v, nil
}

func (r *Request[T]) queue() transport.Queue {
	if r.Queue != nil {
		return r.Queue
	}
	return transport.Async()
}
