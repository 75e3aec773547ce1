package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/c360studio/authorityguard/source/weburl"
)

// maxRedirects bounds how many redirects a single fetch may follow.
const maxRedirects = 5

// FetchResult contains the result of fetching a web page.
type FetchResult struct {
	URL         string
	FinalURL    string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Fetcher performs the single GET a scan or inspection needs.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	maxContentSize int64
	allowPrivate   bool
}

// NewFetcher creates a new web fetcher. Unless allowPrivate is set, the
// fetcher refuses to connect to private addresses, including addresses
// reached through DNS or redirects.
func NewFetcher(timeout time.Duration, userAgent string, maxContentSize int64, allowPrivate bool) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if maxContentSize <= 0 {
		maxContentSize = DefaultMaxContentSize
	}

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}

	dialContext := dialer.DialContext
	if !allowPrivate {
		// Resolve first and validate every IP to prevent DNS rebinding.
		dialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}

			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("DNS lookup failed: %w", err)
			}

			for _, ipAddr := range ips {
				if weburl.IsPrivateIP(ipAddr.IP) {
					return nil, fmt.Errorf("connection to private IP %s: %w", ipAddr.IP, weburl.ErrPrivateHost)
				}
			}

			for _, ipAddr := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ipAddr.IP.String(), port))
				if err == nil {
					return conn, nil
				}
			}

			return nil, fmt.Errorf("failed to connect to any resolved IP")
		}
	}

	transport := &http.Transport{
		DialContext:           dialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				if err := weburl.ValidateURL(req.URL.String(), allowPrivate); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		userAgent:      userAgent,
		maxContentSize: maxContentSize,
		allowPrivate:   allowPrivate,
	}
}

// Fetch retrieves the page at urlStr. Any failure, including a non-2xx
// status, is returned as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResult, error) {
	if err := weburl.ValidateURL(urlStr, f.allowPrivate); err != nil {
		return nil, &FetchError{URL: urlStr, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &FetchError{URL: urlStr, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: urlStr, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxContentSize+1))
	if err != nil {
		return nil, &FetchError{URL: urlStr, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxContentSize {
		return nil, &FetchError{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("content too large (exceeds %d bytes)", f.maxContentSize),
		}
	}

	return &FetchResult{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
