// Package weburl provides URL normalization and validation for scanned sites.
// It implements SSRF prevention including private IP detection and DNS rebinding
// protection.
package weburl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// DefaultScheme is prepended to URLs entered without one.
const DefaultScheme = "https"

var (
	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("only http and https URLs are allowed")

	// ErrPrivateHost is returned for localhost, local domains and private IPs.
	ErrPrivateHost = errors.New("private or local hosts are not allowed")
)

// Pre-compiled CIDR networks for private/reserved IP ranges.
// These are parsed once at package initialization for efficiency.
var (
	cgnat    *net.IPNet // 100.64.0.0/10 - Carrier-grade NAT
	v6unique *net.IPNet // fc00::/7 - IPv6 unique local
	v6link   *net.IPNet // fe80::/10 - IPv6 link-local
)

func init() {
	var err error

	_, cgnat, err = net.ParseCIDR("100.64.0.0/10")
	if err != nil {
		panic("invalid CGNAT CIDR: " + err.Error())
	}

	_, v6unique, err = net.ParseCIDR("fc00::/7")
	if err != nil {
		panic("invalid IPv6 unique local CIDR: " + err.Error())
	}

	_, v6link, err = net.ParseCIDR("fe80::/10")
	if err != nil {
		panic("invalid IPv6 link-local CIDR: " + err.Error())
	}
}

// Normalize trims surrounding whitespace and prepends "https://" when the
// value carries no http or https scheme. Empty input stays empty.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return DefaultScheme + "://" + raw
}

// Host returns the host component (including any port) of a URL, or an
// empty string when the URL cannot be parsed.
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// SameHost reports whether two URLs share the same host component.
// Comparison is case-insensitive and an empty host never matches.
func SameHost(a, b string) bool {
	ha, hb := Host(a), Host(b)
	return ha != "" && strings.EqualFold(ha, hb)
}

// StripFragmentAndQuery drops everything from the first '#' and then from the
// first '?' of a URL string.
func StripFragmentAndQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}

// IsHTTP reports whether the URL uses the http or https scheme.
func IsHTTP(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}

// ValidateURL validates a URL before it is fetched.
// It requires an http or https scheme and a host. Unless allowPrivate is set
// it also blocks localhost, local domains and private IPs (SSRF prevention).
func ValidateURL(rawURL string, allowPrivate bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if !IsHTTP(parsed) {
		return ErrUnsupportedScheme
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	if allowPrivate {
		return nil
	}

	lowHost := strings.ToLower(host)
	if lowHost == "localhost" || lowHost == "127.0.0.1" || lowHost == "::1" {
		return ErrPrivateHost
	}

	if strings.HasSuffix(lowHost, ".local") || strings.HasSuffix(lowHost, ".internal") {
		return ErrPrivateHost
	}

	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return ErrPrivateHost
	}

	return nil
}

// IsPrivateIP checks if an IP is in private/reserved ranges.
// It handles IPv4, IPv6, and IPv6-mapped IPv4 addresses.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	// IPv6-mapped IPv4 addresses (::ffff:x.x.x.x) are re-checked as IPv4.
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}

	return cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip)
}
