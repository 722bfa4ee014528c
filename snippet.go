package headinject

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf16"
	"unicode/utf8"
)

// Headers hosts use to coordinate injection across proxies.
const (
	// HeaderInjectionPending is set on forwarded requests to tell upstream
	// services that injection will happen downstream.
	HeaderInjectionPending = "x-datadog-rum-injection-pending"

	// HeaderInjected is set on responses whose body already carries the snippet.
	HeaderInjected = "x-datadog-rum-injected"
)

const cdnHost = "https://www.datadoghq-browser-agent.com"

// siteRegions maps Datadog sites to their CDN region.
var siteRegions = map[string]string{
	"datadoghq.com":     "us1",
	"us3.datadoghq.com": "us3",
	"us5.datadoghq.com": "us5",
	"datadoghq.eu":      "eu1",
	"ap1.datadoghq.com": "ap1",
}

const (
	snippetHead = "\n<script>\n" +
		"(function(h,o,u,n,d) {\n" +
		"  h=h[d]=h[d]||{q:[],onReady:function(c){h.q.push(c)}}\n" +
		"  d=o.createElement(u);d.async=1;d.src=n\n" +
		"  n=o.getElementsByTagName(u)[0];n.parentNode.insertBefore(d,n)\n" +
		"})(window,document,'script','"
	snippetInit = "','DD_RUM')\n" +
		"window.DD_RUM.onReady(function() {\n" +
		"  window.DD_RUM.init("
	snippetTail = ");\n" +
		"});\n" +
		"</script>\n"
)

// Snippet is the script tag that loads and initializes the Browser SDK. It is
// immutable once created and safe for concurrent use; sessions borrow its
// bytes.
type Snippet struct {
	content     []byte
	fingerprint string
}

// GenerateSnippet validates cfg and renders its snippet.
func GenerateSnippet(cfg *Configuration) (*Snippet, error) {
	return generateSnippet(context.Background(), cfg)
}

// NewSnippet decodes a configuration document with c and renders its snippet.
func NewSnippet(c Codec, data []byte) (*Snippet, error) {
	cfg, err := ParseConfiguration(c, data)
	if err != nil {
		emitSnippetRejected(context.Background(), err)
		return nil, err
	}
	return generateSnippet(context.Background(), cfg)
}

func generateSnippet(ctx context.Context, cfg *Configuration) (*Snippet, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		emitSnippetRejected(ctx, err)
		return nil, err
	}

	url, err := cdnURL(cfg.MajorVersion, cfg.site())
	if err != nil {
		emitSnippetRejected(ctx, err)
		return nil, err
	}

	settings, err := cfg.RUM.MarshalJSON()
	if err != nil {
		err = newParseError("rum", err)
		emitSnippetRejected(ctx, err)
		return nil, err
	}

	content := make([]byte, 0, len(snippetHead)+len(url)+len(snippetInit)+len(settings)+len(snippetTail))
	content = append(content, snippetHead...)
	content = append(content, url...)
	content = append(content, snippetInit...)
	content = appendEscapedNonASCII(content, settings)
	content = append(content, snippetTail...)

	s := &Snippet{
		content:     content,
		fingerprint: fingerprint(content),
	}

	emitSnippetCreated(ctx, cfg, len(content), s.fingerprint, time.Since(start))
	return s, nil
}

// cdnURL returns the SDK bundle location for a major version and site.
func cdnURL(majorVersion uint32, site string) (string, error) {
	if site == "ddog-gov.com" {
		return fmt.Sprintf("%s/datadog-rum-v%d.js", cdnHost, majorVersion), nil
	}
	region, ok := siteRegions[site]
	if !ok {
		return "", newValidationError(ErrUnsupportedSite, "site", site)
	}
	return fmt.Sprintf("%s/%s/v%d/datadog-rum.js", cdnHost, region, majorVersion), nil
}

// appendEscapedNonASCII copies JSON text to dst, replacing every non-ASCII
// character with \u escapes of its UTF-16 code units. The page encoding is
// unknown, so the snippet must be pure ASCII.
func appendEscapedNonASCII(dst, src []byte) []byte {
	for len(src) > 0 {
		if src[0] < utf8.RuneSelf {
			dst = append(dst, src[0])
			src = src[1:]
			continue
		}
		r, size := utf8.DecodeRune(src)
		src = src[size:]
		for _, unit := range utf16.Encode([]rune{r}) {
			dst = fmt.Appendf(dst, `\u%04x`, unit)
		}
	}
	return dst
}

// Bytes returns a copy of the snippet.
func (s *Snippet) Bytes() []byte {
	return append([]byte(nil), s.content...)
}

// String returns the snippet text.
func (s *Snippet) String() string {
	return string(s.content)
}

// Length returns the snippet size in bytes. Hosts add it to a response's
// announced content length before streaming the body through a Session.
func (s *Snippet) Length() int {
	return len(s.content)
}

// Fingerprint returns the hex BLAKE2b-256 digest of the snippet.
func (s *Snippet) Fingerprint() string {
	return s.fingerprint
}

// NewSession creates a Session injecting this snippet.
func (s *Snippet) NewSession() *Session {
	return NewSession(s.content)
}

// NewWriter returns a Writer injecting this snippet into dst.
func (s *Snippet) NewWriter(dst io.Writer) *Writer {
	return NewWriter(dst, s.content)
}

// NewPool returns a Pool of sessions injecting this snippet.
func (s *Snippet) NewPool() *Pool {
	return NewPool(s.content)
}
