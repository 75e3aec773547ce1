package weburl

import (
	"errors"
	"net"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain gets https", "example.com", "https://example.com"},
		{"domain with path gets https", "example.com/about", "https://example.com/about"},
		{"https kept", "https://example.com", "https://example.com"},
		{"http kept", "http://example.com", "http://example.com"},
		{"uppercase scheme kept", "HTTPS://Example.com", "HTTPS://Example.com"},
		{"whitespace trimmed", "  example.com \n", "https://example.com"},
		{"empty stays empty", "   ", ""},
		{"ftp is not a scheme we keep", "ftp.example.com", "https://ftp.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSameHost(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://example.com", "https://example.com/about", true},
		{"https://example.com", "http://example.com/about", true},
		{"https://example.com", "https://EXAMPLE.com/x", true},
		{"https://example.com", "https://www.example.com", false},
		{"https://example.com", "https://example.com:8443/", false},
		{"https://example.com", "mailto:me@example.com", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := SameHost(tt.a, tt.b); got != tt.want {
				t.Errorf("SameHost(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStripFragmentAndQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/contact#top", "https://example.com/contact"},
		{"https://example.com/search?q=go", "https://example.com/search"},
		{"https://example.com/a?x=1#frag", "https://example.com/a"},
		{"https://example.com/a#frag?x=1", "https://example.com/a"},
		{"https://example.com/", "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := StripFragmentAndQuery(tt.in); got != tt.want {
				t.Errorf("StripFragmentAndQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		allowPrivate bool
		wantErr      error
	}{
		{name: "valid https URL", url: "https://go.dev/doc/effective_go"},
		{name: "valid http URL", url: "http://example.com"},
		{name: "ftp rejected", url: "ftp://example.com", wantErr: ErrUnsupportedScheme},
		{name: "localhost rejected", url: "https://localhost:8080", wantErr: ErrPrivateHost},
		{name: "127.0.0.1 rejected", url: "https://127.0.0.1/path", wantErr: ErrPrivateHost},
		{name: ".local domain rejected", url: "https://myserver.local/api", wantErr: ErrPrivateHost},
		{name: ".internal domain rejected", url: "https://app.internal/api", wantErr: ErrPrivateHost},
		{name: "private IP 192.168.x.x rejected", url: "https://192.168.1.1/path", wantErr: ErrPrivateHost},
		{name: "private IP 10.x.x.x rejected", url: "https://10.0.0.1/path", wantErr: ErrPrivateHost},
		{name: "loopback allowed when private hosts allowed", url: "http://127.0.0.1:8080/", allowPrivate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, tt.allowPrivate)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateURL(%q) unexpected error: %v", tt.url, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateURL(%q) error = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}

	if err := ValidateURL("not-a-url", true); err == nil {
		t.Error("expected error for URL without scheme")
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		// IPv4 private ranges
		{"192.168.1.1", true},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true},

		// IPv4 public
		{"8.8.8.8", false},
		{"1.1.1.1", false},

		// CGNAT
		{"100.64.0.1", true},

		// IPv6
		{"::1", true},
		{"::ffff:192.168.1.1", true},
		{"::ffff:8.8.8.8", false},
		{"fe80::1", true},
		{"fc00::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP: %s", tt.ip)
			}
			if got := IsPrivateIP(ip); got != tt.expected {
				t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
