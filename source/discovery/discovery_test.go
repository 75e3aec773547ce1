package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDiscoverer returns a Discoverer that may reach httptest servers.
func newTestDiscoverer(t *testing.T, opts Options) (*Discoverer, *Metrics) {
	t.Helper()
	opts.AllowPrivateHosts = true
	metrics := NewMetrics(prometheus.NewRegistry())
	d, err := New(opts, metrics, slog.Default())
	require.NoError(t, err)
	return d, metrics
}

// servePage starts a server answering every request with the given HTML.
func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCollect_SameDomainScenario(t *testing.T) {
	d, _ := newTestDiscoverer(t, Options{})

	page := `<html><body>
		<a href="/about">About</a>
		<a href="https://example.com/contact#top">Contact</a>
		<a href="https://other.com/x">Elsewhere</a>
	</body></html>`

	base, err := url.Parse("https://example.com")
	require.NoError(t, err)

	result, err := d.collect(base, "https://example.com", strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com",
		"https://example.com/about",
		"https://example.com/contact",
	}, result.Candidates)
	assert.False(t, result.Insufficient)
	assert.False(t, result.Truncated)
}

func TestCollect_FiltersAndStrips(t *testing.T) {
	d, _ := newTestDiscoverer(t, Options{})

	page := `<html><body>
		<a href="/docs?page=2">Docs</a>
		<a href="/docs#install">Docs again</a>
		<a href="mailto:team@example.com">Mail</a>
		<a href="javascript:void(0)">Noop</a>
		<a href="//example.com/pricing">Pricing</a>
		<a href="https://sub.example.com/blog">Blog</a>
		<a href="  /team  ">Team</a>
		<a>No href</a>
	</body></html>`

	base, err := url.Parse("https://example.com/")
	require.NoError(t, err)

	result, err := d.collect(base, "https://example.com/", strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com",
		"https://example.com/docs",
		"https://example.com/pricing",
		"https://example.com/team",
	}, result.Candidates)

	for _, c := range result.Candidates {
		assert.NotContains(t, c, "#")
		assert.NotContains(t, c, "?")
	}
}

func TestCollect_CapsAtFifty(t *testing.T) {
	d, _ := newTestDiscoverer(t, Options{})

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, `<a href="/page-%d">p</a>`, i)
	}
	sb.WriteString("</body></html>")

	base, err := url.Parse("https://example.com")
	require.NoError(t, err)

	result, err := d.collect(base, "https://example.com", strings.NewReader(sb.String()))
	require.NoError(t, err)

	require.Len(t, result.Candidates, MaxCandidates)
	assert.True(t, result.Truncated)
	assert.Equal(t, "https://example.com", result.Candidates[0])
	assert.Equal(t, "https://example.com/page-0", result.Candidates[1])
	assert.Equal(t, "https://example.com/page-48", result.Candidates[49])
}

func TestCollect_Exclude(t *testing.T) {
	d, _ := newTestDiscoverer(t, Options{Exclude: []string{"/wp-admin/**", "**/*.pdf"}})

	page := `<a href="/wp-admin/options.php">Admin</a>
		<a href="/files/brochure.pdf">PDF</a>
		<a href="/services">Services</a>`

	base, err := url.Parse("https://example.com")
	require.NoError(t, err)

	result, err := d.collect(base, "https://example.com", strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com", "https://example.com/services"}, result.Candidates)
}

func TestNew_InvalidExcludePattern(t *testing.T) {
	_, err := New(Options{Exclude: []string{"/[unclosed"}}, nil, nil)
	require.Error(t, err)
}

func TestDiscover_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="/about">About</a><a href="/contact?ref=nav#form">Contact</a><a href="https://other.com/x">x</a>`))
	}))
	defer srv.Close()

	d, metrics := newTestDiscoverer(t, Options{})

	result, err := d.Discover(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/", result.Seed)
	assert.Equal(t, []string{srv.URL, srv.URL + "/about", srv.URL + "/contact"}, result.Candidates)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scans.WithLabelValues(OutcomeOK)))
}

func TestDiscover_Insufficient(t *testing.T) {
	srv := servePage(t, `<html><body><a href="https://other.com/">elsewhere</a></body></html>`)
	d, metrics := newTestDiscoverer(t, Options{})

	result, err := d.Discover(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, result.Insufficient)
	assert.Equal(t, []string{srv.URL}, result.Candidates)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scans.WithLabelValues(OutcomeInsufficient)))
}

func TestDiscover_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	d, metrics := newTestDiscoverer(t, Options{})

	result, err := d.Discover(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, result)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Error(), "HTTP 403")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.scans.WithLabelValues(OutcomeFetchError)))
}

func TestDiscover_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	d, _ := newTestDiscoverer(t, Options{Timeout: 50 * time.Millisecond})

	_, err := d.Discover(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.True(t, fetchErr.Timeout(), "expected timeout, got %v", err)
}

func TestDiscover_ContentTooLarge(t *testing.T) {
	srv := servePage(t, strings.Repeat("a", 2048))
	d, _ := newTestDiscoverer(t, Options{MaxContentSize: 1024})

	_, err := d.Discover(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content too large")
}

func TestDiscover_EmptySeed(t *testing.T) {
	d, _ := newTestDiscoverer(t, Options{})

	_, err := d.Discover(context.Background(), "   ")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestDiscover_PrivateHostBlocked(t *testing.T) {
	srv := servePage(t, `<a href="/a">a</a>`)

	d, err := New(Options{}, nil, nil)
	require.NoError(t, err)

	_, err = d.Discover(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}
