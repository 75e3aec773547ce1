// Package weburl provides URL normalization and validation for scanned sites.
//
// # Overview
//
// Every URL typed into the dashboard passes through this package before it
// is fetched or written into an artifact. Normalization coerces user input to
// an absolute URL; validation keeps the scanner away from internal networks.
//
// # Normalization
//
// Normalize trims whitespace and prepends "https://" when no http or https
// scheme is present:
//
//	example.com/about → https://example.com/about
//	http://example.com → http://example.com
//
// StripFragmentAndQuery removes "#..." and "?..." suffixes, and SameHost
// compares the host component (including port) of two URLs.
//
// # URL Validation
//
// ValidateURL checks URLs against these criteria:
//
//   - Requires an http or https scheme and a host
//   - Unless private hosts are allowed:
//   - Blocks localhost variants (localhost, 127.0.0.1, ::1)
//   - Blocks local domains (.local, .internal)
//   - Blocks private IP ranges (RFC 1918, CGNAT, link-local)
//
// # IP Address Handling
//
// The IsPrivateIP function detects private/reserved IP addresses including:
//
//   - IPv4 private ranges (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - IPv4 loopback (127.0.0.0/8)
//   - IPv4 link-local (169.254.0.0/16)
//   - CGNAT range (100.64.0.0/10)
//   - IPv6 loopback (::1)
//   - IPv6 unique local (fc00::/7)
//   - IPv6 link-local (fe80::/10)
//   - IPv6-mapped IPv4 addresses (::ffff:x.x.x.x)
//
// CIDRs are pre-compiled at package initialization.
//
// # Usage
//
//	seed := weburl.Normalize(input)
//	if err := weburl.ValidateURL(seed, false); err != nil {
//	    return err
//	}
package weburl
