// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upload

import (
	"io"

	"github.com/reqkit/reqkit/transport"
)

// A Kind identifies the payload source variant of an upload Source.
type Kind int

const (
	// File identifies a payload read from a file path.
	File Kind = iota
	// Data identifies a payload supplied as an in-memory buffer.
	Data
	// Stream identifies a payload streamed from a reader.
	Stream
	// Multipart identifies a payload built as a multipart form.
	Multipart
	// kindSentinel provides the total number of kinds typed as a Kind.
	kindSentinel
)

var kindNames = []string{
	"File",
	"Data",
	"Stream",
	"Multipart",
}

// Kinds returns a slice containing all payload source kinds.
func Kinds() []Kind {
	return []Kind{File, Data, Stream, Multipart}
}

// Name returns the name of the kind.
func (k Kind) Name() string {
	return kindNames[int(k)]
}

// String returns the name of the kind.
func (k Kind) String() string {
	return k.Name()
}

// A Source describes how an upload's payload originates. Exactly one
// variant is active per request instance, fixed by the constructor
// used; a Source is immutable after construction.
type Source struct {
	kind   Kind
	path   string
	data   []byte
	stream io.Reader
	build  func(*transport.Form)
}

// FromFile returns a Source reading the payload from the file at path.
// The file is opened when the upload is performed, not when the source
// is constructed.
func FromFile(path string) Source {
	return Source{kind: File, path: path}
}

// FromData returns a Source supplying the payload from an in-memory
// buffer.
func FromData(data []byte) Source {
	return Source{kind: Data, data: data}
}

// FromStream returns a Source streaming the payload from r. The reader
// is consumed once, by the first perform call.
func FromStream(r io.Reader) Source {
	if r == nil {
		panic("upload: nil stream")
	}
	return Source{kind: Stream, stream: r}
}

// MultipartForm returns a Source whose payload is a multipart form
// assembled by build. The request's flat parameters are merged into the
// form, as stringified fields, before build runs.
func MultipartForm(build func(f *transport.Form)) Source {
	if build == nil {
		panic("upload: nil form builder")
	}
	return Source{kind: Multipart, build: build}
}

// Kind returns the active payload source variant.
func (s Source) Kind() Kind {
	return s.kind
}
