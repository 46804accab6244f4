// Copyright 2026 The reqkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// DefaultMemoryThreshold is the encoded form size, in bytes, above
// which multipart encoding spools to a temporary file instead of
// holding the whole body in memory.
const DefaultMemoryThreshold int64 = 10 << 20

type partKind int

const (
	valuePart partKind = iota
	dataPart
	filePart
	readerPart
)

type part struct {
	kind        partKind
	name        string
	fileName    string
	contentType string
	value       string
	data        []byte
	path        string
	reader      io.Reader
}

// A Form accumulates the parts of a multipart form body in append
// order. A Form is built up by the caller-supplied builder function
// (and by the request's flat parameters, merged in first), then encoded
// once by the session when the upload task is created.
type Form struct {
	parts []part
}

// AppendValue appends an ordinary form field with the given name and
// UTF-8 value.
func (f *Form) AppendValue(name, value string) {
	f.parts = append(f.parts, part{kind: valuePart, name: name, value: value})
}

// AppendData appends a file part with the given field name, file name
// and in-memory contents. The part content type is sniffed from the
// data.
func (f *Form) AppendData(name, fileName string, data []byte) {
	f.parts = append(f.parts, part{kind: dataPart, name: name, fileName: fileName, data: data})
}

// AppendFile appends a file part read from path. The part file name is
// the base name of path and the content type is sniffed from the file
// contents. A missing or unreadable file surfaces as an encoding error
// when the form is encoded.
func (f *Form) AppendFile(name, path string) {
	f.parts = append(f.parts, part{kind: filePart, name: name, fileName: filepath.Base(path), path: path})
}

// AppendReader appends a file part streamed from r with an explicit
// file name and content type. An empty content type defaults to
// application/octet-stream.
func (f *Form) AppendReader(name, fileName, contentType string, r io.Reader) {
	if r == nil {
		panic("transport: nil part reader")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, part{kind: readerPart, name: name, fileName: fileName, contentType: contentType, reader: r})
}

// Len returns the number of parts appended so far.
func (f *Form) Len() int {
	return len(f.parts)
}

// encode writes the multipart body, keeping it in memory up to
// threshold bytes and spooling to a temporary file beyond that. The
// returned body removes any spool file when closed.
func (f *Form) encode(threshold int64) (body io.ReadCloser, contentType string, size int64, err error) {
	if threshold <= 0 {
		threshold = DefaultMemoryThreshold
	}

	sp := &spool{threshold: threshold}
	defer func() {
		if err != nil {
			sp.discard()
		}
	}()

	mw := multipart.NewWriter(sp)
	for _, p := range f.parts {
		if err = writePart(mw, p); err != nil {
			return nil, "", 0, err
		}
	}
	if err = mw.Close(); err != nil {
		return nil, "", 0, errors.Wrap(err, "transport: finish multipart body")
	}

	body, err = sp.body()
	if err != nil {
		return nil, "", 0, err
	}
	return body, mw.FormDataContentType(), sp.n, nil
}

func writePart(mw *multipart.Writer, p part) error {
	switch p.kind {
	case valuePart:
		if err := mw.WriteField(p.name, p.value); err != nil {
			return errors.Wrapf(err, "transport: write form field %q", p.name)
		}
		return nil
	case dataPart:
		ct := mimetype.Detect(p.data).String()
		pw, err := createPart(mw, p.name, p.fileName, ct)
		if err != nil {
			return err
		}
		_, err = pw.Write(p.data)
		return errors.Wrapf(err, "transport: write form part %q", p.name)
	case filePart:
		mt, err := mimetype.DetectFile(p.path)
		if err != nil {
			return errors.Wrapf(err, "transport: detect content type of %q", p.path)
		}
		file, err := os.Open(p.path)
		if err != nil {
			return errors.Wrapf(err, "transport: open form file %q", p.path)
		}
		defer func() {
			_ = file.Close()
		}()
		pw, err := createPart(mw, p.name, p.fileName, mt.String())
		if err != nil {
			return err
		}
		_, err = io.Copy(pw, file)
		return errors.Wrapf(err, "transport: copy form file %q", p.path)
	case readerPart:
		pw, err := createPart(mw, p.name, p.fileName, p.contentType)
		if err != nil {
			return err
		}
		_, err = io.Copy(pw, p.reader)
		return errors.Wrapf(err, "transport: copy form part %q", p.name)
	default:
		return errors.Errorf("transport: unknown part kind %d", p.kind)
	}
}

func createPart(mw *multipart.Writer, name, fileName, contentType string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		escapeQuotes(name), escapeQuotes(fileName)))
	h.Set("Content-Type", contentType)
	pw, err := mw.CreatePart(h)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: create form part %q", name)
	}
	return pw, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// spool buffers writes in memory until the threshold is exceeded, then
// moves everything written so far to a temporary file and keeps writing
// there.
type spool struct {
	threshold int64
	n         int64
	buf       bytes.Buffer
	file      *os.File
}

func (s *spool) Write(p []byte) (int, error) {
	if s.file == nil && s.n+int64(len(p)) > s.threshold {
		file, err := os.CreateTemp("", "reqkit-form-*")
		if err != nil {
			return 0, errors.Wrap(err, "transport: create form spool file")
		}
		if _, err := file.Write(s.buf.Bytes()); err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
			return 0, errors.Wrap(err, "transport: spool form body")
		}
		s.file = file
		s.buf.Reset()
	}

	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.buf.Write(p)
	}
	s.n += int64(n)
	if err != nil {
		return n, errors.Wrap(err, "transport: write form body")
	}
	return n, nil
}

func (s *spool) body() (io.ReadCloser, error) {
	if s.file == nil {
		return io.NopCloser(bytes.NewReader(s.buf.Bytes())), nil
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		s.discard()
		return nil, errors.Wrap(err, "transport: rewind form spool file")
	}
	return &spoolBody{file: s.file}, nil
}

func (s *spool) discard() {
	if s.file != nil {
		_ = s.file.Close()
		_ = os.Remove(s.file.Name())
		s.file = nil
	}
}

// spoolBody reads back a spooled form body and removes the temporary
// file on Close.
type spoolBody struct {
	file *os.File
}

func (b *spoolBody) Read(p []byte) (int, error) {
	return b.file.Read(p)
}

func (b *spoolBody) Close() error {
	err := b.file.Close()
	if rmErr := os.Remove(b.file.Name()); err == nil {
		err = rmErr
	}
	return err
}
