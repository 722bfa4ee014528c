package testing

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/zoobzio/headinject"
)

func TestExpected(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"a</head>b", "a<p></head>b"},
		{"a</ HEAD\t>b</head>", "a<p></ HEAD\t>b</head>"},
		{"a</header>", "a</header>   "},
		{"", "   "},
	}
	for _, tt := range tests {
		if got := Expected([]byte(tt.doc), []byte("<p>")); string(got) != tt.want {
			t.Errorf("Expected(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestSplitRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	doc := []byte("0123456789abcdef")

	for i := 0; i < 100; i++ {
		parts := 1 + rng.IntN(10)
		chunks := SplitRandom(rng, doc, parts)
		if len(chunks) != parts {
			t.Fatalf("SplitRandom() = %d chunks, want %d", len(chunks), parts)
		}
		if got := bytes.Join(chunks, nil); !bytes.Equal(got, doc) {
			t.Fatalf("chunks join to %q", got)
		}
	}
}

func TestSplitEvery(t *testing.T) {
	chunks := SplitEvery([]byte("abcdefg"), 3)
	if len(chunks) != 3 || string(chunks[2]) != "g" {
		t.Errorf("SplitEvery() = %q", chunks)
	}
}

func TestDriveSession(t *testing.T) {
	s := TestSnippet(t).NewSession()
	defer s.Release()

	got := DriveSession(t, s, SplitEvery([]byte("<head></head>"), 2))
	if !bytes.Contains(got, []byte("DD_RUM")) || !bytes.HasSuffix(got, []byte("</head>")) {
		t.Errorf("DriveSession() = %q", got)
	}
}

func TestDriveInjector(t *testing.T) {
	in := headinject.NewInjector([]byte("<p>"))
	got := DriveInjector(t, in, [][]byte{[]byte("x</"), []byte("head>")})
	if string(got) != "x<p></head>" {
		t.Errorf("DriveInjector() = %q", got)
	}
}

func TestWithin(t *testing.T) {
	chunk := []byte("abcdef")
	if !within(chunk[2:4], chunk) {
		t.Error("sub-slice not detected")
	}
	if within([]byte("cd"), chunk) {
		t.Error("separate memory reported as aliasing")
	}
}
