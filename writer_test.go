package headinject_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/zoobzio/headinject"
	injecttest "github.com/zoobzio/headinject/testing"
)

const page = "<!doctype html><html><head><title>shop</title></head><body><p>hi</p></body></html>"

func TestWriter(t *testing.T) {
	var out bytes.Buffer
	w := headinject.NewWriter(&out, []byte(testPayload))

	for _, chunk := range injecttest.SplitEvery([]byte(page), 5) {
		n, err := w.Write(chunk)
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		if n != len(chunk) {
			t.Fatalf("Write() = %d, want %d", n, len(chunk))
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	want := injecttest.Expected([]byte(page), []byte(testPayload))
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("output = %q, want %q", out.Bytes(), want)
	}
	if !w.Injected() {
		t.Error("Injected() = false")
	}
}

func TestWriter_Padding(t *testing.T) {
	var out bytes.Buffer
	w := headinject.NewWriter(&out, []byte(testPayload))
	if _, err := io.WriteString(w, "<p>fragment</p>"); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if out.String() != "<p>fragment</p>"+strings.Repeat(" ", len(testPayload)) {
		t.Errorf("output = %q", out.String())
	}
	if w.Injected() {
		t.Error("Injected() = true")
	}
}

func TestWriter_Closed(t *testing.T) {
	w := headinject.NewWriter(io.Discard, []byte(testPayload))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := w.Write([]byte("x")); !errors.Is(err, headinject.ErrWriterClosed) {
		t.Errorf("Write() after Close = %v, want ErrWriterClosed", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriter_DestinationError(t *testing.T) {
	boom := errors.New("boom")
	w := headinject.NewWriter(failingWriter{boom}, []byte(testPayload))

	if _, err := w.Write([]byte("abc")); !errors.Is(err, boom) {
		t.Fatalf("Write() = %v, want boom", err)
	}
	if _, err := w.Write([]byte("def")); !errors.Is(err, boom) {
		t.Errorf("second Write() = %v, want boom", err)
	}
	if err := w.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() = %v, want boom", err)
	}
}

func TestInject(t *testing.T) {
	var out bytes.Buffer
	n, err := headinject.Inject(context.Background(), &out, strings.NewReader(page), []byte(testPayload), headinject.WithBufferSize(7))
	if err != nil {
		t.Fatalf("Inject() error: %v", err)
	}
	want := injecttest.Expected([]byte(page), []byte(testPayload))
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("output = %q, want %q", out.Bytes(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("Inject() = %d, want %d", n, len(want))
	}
}

func TestInject_MatchesSession(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	payload := []byte(testPayload)

	for _, doc := range []string{page, "<html><body></body></html>", "</he</HEAD >", ""} {
		var viaInject bytes.Buffer
		if _, err := headinject.Inject(context.Background(), &viaInject, iotest.OneByteReader(strings.NewReader(doc)), payload); err != nil {
			t.Fatalf("Inject() error: %v", err)
		}

		s := headinject.NewSession(payload)
		viaSession := injecttest.DriveSession(t, s, injecttest.SplitRandom(rng, []byte(doc), 4))
		s.Release()

		if !bytes.Equal(viaInject.Bytes(), viaSession) {
			t.Errorf("%q: Inject %q, Session %q", doc, viaInject.Bytes(), viaSession)
		}
	}
}

func TestInject_InvalidBufferSize(t *testing.T) {
	_, err := headinject.Inject(context.Background(), io.Discard, strings.NewReader(page), nil, headinject.WithBufferSize(0))
	if !errors.Is(err, headinject.ErrInvalidBufferSize) {
		t.Errorf("Inject() = %v, want ErrInvalidBufferSize", err)
	}
}

func TestInject_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	n, err := headinject.Inject(ctx, &out, strings.NewReader(page), []byte(testPayload))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Inject() = %v, want context.Canceled", err)
	}
	if n != 0 || out.Len() != 0 {
		t.Errorf("wrote %d bytes after cancellation", n)
	}
}

func TestInject_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := headinject.Inject(context.Background(), io.Discard, iotest.ErrReader(boom), []byte(testPayload))
	if !errors.Is(err, boom) {
		t.Errorf("Inject() = %v, want boom", err)
	}
}

func TestPool(t *testing.T) {
	pool := headinject.NewPool([]byte(testPayload))

	for _, doc := range []string{page, "<p>no head</p>", page} {
		s := pool.Get()
		got := injecttest.DriveSession(t, s, injecttest.SplitEvery([]byte(doc), 3))
		pool.Put(s)

		want := injecttest.Expected([]byte(doc), []byte(testPayload))
		if !bytes.Equal(got, want) {
			t.Errorf("%q: got %q, want %q", doc, got, want)
		}
	}
}

func TestPool_PutInvalidatesOutput(t *testing.T) {
	pool := headinject.NewPool([]byte(testPayload))
	s := pool.Get()
	out := s.Write([]byte("<p>"))
	pool.Put(s)

	if out.Valid() {
		t.Error("output survived Put")
	}
}

func TestPool_PutReleased(t *testing.T) {
	pool := headinject.NewPool([]byte(testPayload))
	s := pool.Get()
	s.Release()

	defer func() {
		r := recover()
		if err, ok := r.(*headinject.ContractError); !ok || !errors.Is(err, headinject.ErrSessionReleased) {
			t.Errorf("recovered %v, want ErrSessionReleased", r)
		}
	}()
	pool.Put(s)
}

func BenchmarkInject(b *testing.B) {
	doc := []byte(strings.Repeat("<div>filler</div>", 4096) + "</head>")
	payload := []byte(testPayload)
	b.SetBytes(int64(len(doc)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = headinject.Inject(context.Background(), io.Discard, bytes.NewReader(doc), payload)
	}
}
