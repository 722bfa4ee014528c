package headinject

import (
	"context"
	"errors"
	"io"
)

// ErrWriterClosed is returned by Writer.Write after Close.
var ErrWriterClosed = errors.New("writer closed")

// Writer is an io.WriteCloser that injects a payload into the HTML document
// written to it and forwards the result to a destination writer.
//
// Close must be called once the document is complete: it flushes withheld
// bytes, writes the padding if no tag was found, and releases the session.
type Writer struct {
	dst      io.Writer
	session  *Session
	err      error
	closed   bool
	injected bool
}

// NewWriter returns a Writer forwarding to dst. The payload is borrowed until
// Close returns.
func NewWriter(dst io.Writer, payload []byte) *Writer {
	return &Writer{dst: dst, session: NewSession(payload)}
}

// Write injects into p and forwards the bytes that are ready. It reports
// len(p) on success because withheld bytes are kept by the session.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	out := w.session.Write(p)
	w.injected = out.Injected()
	if _, err := out.WriteTo(w.dst); err != nil {
		w.err = err
		return 0, err
	}
	return len(p), nil
}

// Close ends the document, forwards the remaining bytes and releases the
// session. It returns the first error seen by the Writer.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	defer w.session.Release()

	if w.err != nil {
		return w.err
	}
	out := w.session.End()
	w.injected = out.Injected()
	if _, err := out.WriteTo(w.dst); err != nil {
		w.err = err
	}
	return w.err
}

// Injected reports whether the payload has been written.
func (w *Writer) Injected() bool {
	return w.injected
}

// Inject copies an HTML document from src to dst, inserting payload before
// its first head closing tag. It returns the number of bytes written to dst.
// The context is checked between reads.
func Inject(ctx context.Context, dst io.Writer, src io.Reader, payload []byte, opts ...Option) (int64, error) {
	cfg := config{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return 0, err
		}
	}

	session := NewSession(payload)
	defer session.Release()

	buf := make([]byte, cfg.bufferSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			out := session.Write(buf[:n])
			m, err := out.WriteTo(dst)
			written += m
			if err != nil {
				return written, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}

	out := session.End()
	m, err := out.WriteTo(dst)
	written += m
	return written, err
}
