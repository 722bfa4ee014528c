package headinject

import (
	"errors"
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

// loader renders the expected snippet around a CDN URL and settings object.
func loader(url, settings string) string {
	return `
<script>
(function(h,o,u,n,d) {
  h=h[d]=h[d]||{q:[],onReady:function(c){h.q.push(c)}}
  d=o.createElement(u);d.async=1;d.src=n
  n=o.getElementsByTagName(u)[0];n.parentNode.insertBefore(d,n)
})(window,document,'script','` + url + `','DD_RUM')
window.DD_RUM.onReady(function() {
  window.DD_RUM.init(` + settings + `);
});
</script>
`
}

const us1v5 = "https://www.datadoghq-browser-agent.com/us1/v5/datadog-rum.js"

func TestGenerateSnippet(t *testing.T) {
	tests := []struct {
		name string
		cfg  Configuration
		want string
	}{
		{
			name: "minimal",
			cfg: Configuration{MajorVersion: 5, RUM: RumConfiguration{
				ClientToken:   "foo",
				ApplicationID: "bar",
			}},
			want: loader(us1v5, `{"applicationId":"bar","clientToken":"foo"}`),
		},
		{
			name: "optional settings",
			cfg: Configuration{MajorVersion: 5, RUM: RumConfiguration{
				ClientToken:         "foo",
				ApplicationID:       "bar",
				Site:                ptr("datadoghq.com"),
				DefaultPrivacyLevel: ptr(PrivacyMask),
				TrackResources:      ptr(true),
				SessionSampleRate:   ptr(float32(42.42)),
			}},
			want: loader(us1v5, `{"applicationId":"bar","clientToken":"foo","site":"datadoghq.com","trackResources":true,"defaultPrivacyLevel":"mask","sessionSampleRate":42.42}`),
		},
		{
			name: "unicode values",
			cfg: Configuration{MajorVersion: 5, RUM: RumConfiguration{
				ClientToken:   "foo",
				ApplicationID: "☺ € é",
				Site:          ptr("datadoghq.com"),
			}},
			want: loader(us1v5, `{"applicationId":"\u263a \u20ac \u00e9","clientToken":"foo","site":"datadoghq.com"}`),
		},
		{
			name: "astral plane",
			cfg: Configuration{MajorVersion: 5, RUM: RumConfiguration{
				ClientToken:   "foo",
				ApplicationID: "😊",
			}},
			want: loader(us1v5, `{"applicationId":"\ud83d\ude0a","clientToken":"foo"}`),
		},
		{
			name: "unknown settings",
			cfg: Configuration{MajorVersion: 5, RUM: RumConfiguration{
				ApplicationID: "foo",
				ClientToken:   "bar",
				Site:          ptr("datadoghq.com"),
				Other: map[string]any{
					"newopt2": true,
					"newopt":  "value",
				},
			}},
			want: loader(us1v5, `{"applicationId":"foo","clientToken":"bar","site":"datadoghq.com","newopt":"value","newopt2":true}`),
		},
		{
			name: "html is not escaped",
			cfg: Configuration{MajorVersion: 6, RUM: RumConfiguration{
				ApplicationID: "a<b>&c",
				ClientToken:   "t",
				Site:          ptr("datadoghq.eu"),
			}},
			want: loader("https://www.datadoghq-browser-agent.com/eu1/v6/datadog-rum.js", `{"applicationId":"a<b>&c","clientToken":"t","site":"datadoghq.eu"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := GenerateSnippet(&tt.cfg)
			if err != nil {
				t.Fatalf("GenerateSnippet() error: %v", err)
			}
			if got := s.String(); got != tt.want {
				t.Errorf("GenerateSnippet() =\n%s\nwant\n%s", got, tt.want)
			}
			if s.Length() != len(tt.want) {
				t.Errorf("Length() = %d, want %d", s.Length(), len(tt.want))
			}
		})
	}
}

func TestGenerateSnippet_Invalid(t *testing.T) {
	_, err := GenerateSnippet(&Configuration{MajorVersion: 5, RUM: RumConfiguration{
		ApplicationID: "a",
		ClientToken:   "b",
		Site:          ptr("datadoghq.com.example"),
	}})
	if !errors.Is(err, ErrUnsupportedSite) {
		t.Errorf("error = %v, want ErrUnsupportedSite", err)
	}
	if ErrorCode(err) != CodeUnsupportedSite {
		t.Errorf("ErrorCode() = %d, want %d", ErrorCode(err), CodeUnsupportedSite)
	}
}

func TestCDNURL(t *testing.T) {
	tests := []struct {
		version uint32
		site    string
		want    string
	}{
		{5, "datadoghq.com", "https://www.datadoghq-browser-agent.com/us1/v5/datadog-rum.js"},
		{6, "us3.datadoghq.com", "https://www.datadoghq-browser-agent.com/us3/v6/datadog-rum.js"},
		{5, "us5.datadoghq.com", "https://www.datadoghq-browser-agent.com/us5/v5/datadog-rum.js"},
		{5, "datadoghq.eu", "https://www.datadoghq-browser-agent.com/eu1/v5/datadog-rum.js"},
		{6, "ap1.datadoghq.com", "https://www.datadoghq-browser-agent.com/ap1/v6/datadog-rum.js"},
		{5, "ddog-gov.com", "https://www.datadoghq-browser-agent.com/datadog-rum-v5.js"},
	}
	for _, tt := range tests {
		got, err := cdnURL(tt.version, tt.site)
		if err != nil {
			t.Errorf("cdnURL(%d, %q) error: %v", tt.version, tt.site, err)
			continue
		}
		if got != tt.want {
			t.Errorf("cdnURL(%d, %q) = %q, want %q", tt.version, tt.site, got, tt.want)
		}
	}

	_, err := cdnURL(5, "foo.com")
	var ce *ConfigError
	if !errors.As(err, &ce) || !errors.Is(err, ErrUnsupportedSite) {
		t.Fatalf("cdnURL(foo.com) error = %v, want ErrUnsupportedSite", err)
	}
	if ce.Value != "foo.com" {
		t.Errorf("Value = %v, want foo.com", ce.Value)
	}
}

func TestSnippet_Accessors(t *testing.T) {
	s, err := GenerateSnippet(&Configuration{MajorVersion: 5, RUM: RumConfiguration{ApplicationID: "a", ClientToken: "b"}})
	if err != nil {
		t.Fatalf("GenerateSnippet() error: %v", err)
	}

	if len(s.Fingerprint()) != 64 {
		t.Errorf("Fingerprint() = %q, want 64 hex characters", s.Fingerprint())
	}
	again, _ := GenerateSnippet(&Configuration{MajorVersion: 5, RUM: RumConfiguration{ApplicationID: "a", ClientToken: "b"}})
	if again.Fingerprint() != s.Fingerprint() {
		t.Error("equal configurations have different fingerprints")
	}

	b := s.Bytes()
	b[0] = 'X'
	if strings.HasPrefix(s.String(), "X") {
		t.Error("Bytes() returned the internal buffer")
	}

	for _, c := range s.String() {
		if c > 0x7f {
			t.Fatalf("snippet contains non-ASCII %q", c)
		}
	}
}

func TestSnippet_NewSession(t *testing.T) {
	s, err := GenerateSnippet(&Configuration{MajorVersion: 5, RUM: RumConfiguration{ApplicationID: "a", ClientToken: "b"}})
	if err != nil {
		t.Fatalf("GenerateSnippet() error: %v", err)
	}

	session := s.NewSession()
	defer session.Release()

	out := session.Write([]byte("<head></head>")).AppendTo(nil)
	out = session.End().AppendTo(out)
	if want := "<head>" + s.String() + "</head>"; string(out) != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestHeaders(t *testing.T) {
	if HeaderInjectionPending != "x-datadog-rum-injection-pending" {
		t.Errorf("HeaderInjectionPending = %q", HeaderInjectionPending)
	}
	if HeaderInjected != "x-datadog-rum-injected" {
		t.Errorf("HeaderInjected = %q", HeaderInjected)
	}
}
