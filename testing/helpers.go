// Package testing provides test utilities for headinject.
package testing

import (
	"iter"
	"math/rand/v2"
	"regexp"
	"slices"
	"testing"
	"unsafe"

	"github.com/zoobzio/headinject"
)

// MinimalConfig is the smallest configuration document accepted by
// headinject, in JSON.
const MinimalConfig = `{"majorVersion":5,"rum":{"applicationId":"xxx","clientToken":"xxx"}}`

// FullConfig sets every known setting and one unknown setting, in JSON.
const FullConfig = `{
  "majorVersion": 6,
  "rum": {
    "applicationId": "app-1234",
    "clientToken": "pub0123456789abcdef",
    "site": "datadoghq.eu",
    "service": "shop",
    "env": "prod",
    "version": "1.2.3",
    "trackUserInteractions": true,
    "trackResources": true,
    "trackLongTask": false,
    "defaultPrivacyLevel": "mask-user-input",
    "sessionSampleRate": 100,
    "sessionReplaySampleRate": 20,
    "allowedTracingUrls": ["https://api.example.com"]
  }
}`

// TestSnippet returns the snippet for the settings of MinimalConfig and fails
// the test on error.
func TestSnippet(tb testing.TB) *headinject.Snippet {
	tb.Helper()
	cfg := &headinject.Configuration{
		MajorVersion: 5,
		RUM: headinject.RumConfiguration{
			ApplicationID: "xxx",
			ClientToken:   "xxx",
		},
	}
	s, err := headinject.GenerateSnippet(cfg)
	if err != nil {
		tb.Fatalf("GenerateSnippet: %v", err)
	}
	return s
}

// headTag matches the closing head tag the way Locator does.
var headTag = regexp.MustCompile(`(?i)</\s*head\s*>`)

// Expected returns the document headinject must produce for doc and payload:
// the payload inserted before the first closing head tag, or doc followed by
// len(payload) spaces.
func Expected(doc, payload []byte) []byte {
	out := make([]byte, 0, len(doc)+len(payload))
	if loc := headTag.FindIndex(doc); loc != nil {
		out = append(out, doc[:loc[0]]...)
		out = append(out, payload...)
		return append(out, doc[loc[0]:]...)
	}
	out = append(out, doc...)
	for range payload {
		out = append(out, ' ')
	}
	return out
}

// SplitRandom cuts doc into parts chunks at random offsets. Empty
// chunks are allowed.
func SplitRandom(rng *rand.Rand, doc []byte, parts int) [][]byte {
	cuts := make([]int, 0, parts+1)
	cuts = append(cuts, 0)
	for i := 1; i < parts; i++ {
		cuts = append(cuts, rng.IntN(len(doc)+1))
	}
	cuts = append(cuts, len(doc))
	slices.Sort(cuts)

	chunks := make([][]byte, 0, parts)
	for i := 1; i < len(cuts); i++ {
		chunks = append(chunks, doc[cuts[i-1]:cuts[i]])
	}
	return chunks
}

// SplitEvery cuts doc into chunks of size bytes, the last one possibly
// shorter.
func SplitEvery(doc []byte, size int) [][]byte {
	var chunks [][]byte
	for len(doc) > size {
		chunks = append(chunks, doc[:size])
		doc = doc[size:]
	}
	return append(chunks, doc)
}

// DriveInjector writes every chunk to in, ends it, and returns the
// concatenated output. Each chunk is copied first so slices marked
// FromIncomingChunk can be checked to alias the chunk they came from.
func DriveInjector(tb testing.TB, in *headinject.Injector, chunks [][]byte) []byte {
	tb.Helper()
	var out []byte
	for i, chunk := range chunks {
		owned := append([]byte(nil), chunk...)
		res := in.Write(owned)
		if res.Len() > headinject.MaxSlices {
			tb.Fatalf("chunk %d: %d slices", i, res.Len())
		}
		out = collect(tb, out, owned, res.All())
	}
	res := in.End()
	return collect(tb, out, nil, res.All())
}

// DriveSession is DriveInjector for a Session. The session is ended but not
// released.
func DriveSession(tb testing.TB, s *headinject.Session, chunks [][]byte) []byte {
	tb.Helper()
	var out []byte
	for _, chunk := range chunks {
		owned := append([]byte(nil), chunk...)
		o := s.Write(owned)
		out = collect(tb, out, owned, o.All())
	}
	o := s.End()
	return collect(tb, out, nil, o.All())
}

func collect(tb testing.TB, out, chunk []byte, slices iter.Seq2[int, headinject.Slice]) []byte {
	tb.Helper()
	for i, sl := range slices {
		if sl.Len() == 0 {
			tb.Errorf("slice %d is empty", i)
		}
		if sl.FromIncomingChunk && !within(sl.Bytes, chunk) {
			tb.Errorf("slice %d is marked FromIncomingChunk but does not alias the chunk", i)
		}
		if !sl.FromIncomingChunk && len(chunk) > 0 && within(sl.Bytes, chunk) {
			tb.Errorf("slice %d aliases the chunk but is not marked FromIncomingChunk", i)
		}
		out = append(out, sl.Bytes...)
	}
	return out
}

// within reports whether b lies inside the memory of chunk.
func within(b, chunk []byte) bool {
	if len(b) == 0 || len(chunk) == 0 {
		return false
	}
	start := uintptr(unsafe.Pointer(unsafe.SliceData(chunk)))
	end := start + uintptr(len(chunk))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return p >= start && p+uintptr(len(b)) <= end
}
