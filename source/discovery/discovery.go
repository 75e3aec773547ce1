package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/authorityguard/source/weburl"
)

const (
	// DefaultTimeout is the fixed fetch timeout for a scan.
	DefaultTimeout = 5 * time.Second

	// DefaultUserAgent is a desktop browser UA; some sites block obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxContentSize caps the fetched page body.
	DefaultMaxContentSize = 5 << 20

	// MaxCandidates is the upper bound of a CandidateSet.
	MaxCandidates = 50

	// MinCandidates is the size below which a scan is reported as insufficient.
	MinCandidates = 2
)

// Options configures a Discoverer. Zero values fall back to the defaults.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	MaxCandidates     int
	MaxContentSize    int64
	AllowPrivateHosts bool

	// Exclude holds doublestar patterns matched against a candidate's path.
	Exclude []string
}

// Result is the outcome of one successful scan.
type Result struct {
	// Seed is the normalized seed URL that was fetched.
	Seed string `json:"seed"`

	// Candidates starts with the seed, followed by same-host links in the
	// order they appear in the document.
	Candidates []string `json:"candidates"`

	// Insufficient is set when fewer than MinCandidates were found and the
	// caller should fall back to manual entry.
	Insufficient bool `json:"insufficient"`

	// Truncated is set when more distinct links existed than the cap allowed.
	Truncated bool `json:"truncated"`
}

// Discoverer scans a single page for same-domain links.
type Discoverer struct {
	fetcher       *Fetcher
	maxCandidates int
	exclude       []string
	metrics       *Metrics
	logger        *slog.Logger
}

// New creates a Discoverer. It fails only on malformed exclude patterns.
func New(opts Options, metrics *Metrics, logger *slog.Logger) (*Discoverer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	maxCandidates := opts.MaxCandidates
	if maxCandidates <= 0 || maxCandidates > MaxCandidates {
		maxCandidates = MaxCandidates
	}

	return &Discoverer{
		fetcher:       NewFetcher(opts.Timeout, opts.UserAgent, opts.MaxContentSize, opts.AllowPrivateHosts),
		maxCandidates: maxCandidates,
		exclude:       opts.Exclude,
		metrics:       metrics,
		logger:        logger,
	}, nil
}

// Fetcher returns the fetcher used for scans so other readers of a single
// page share its timeout, user agent and SSRF rules.
func (d *Discoverer) Fetcher() *Fetcher {
	return d.fetcher
}

// Discover fetches seedURL once and returns the same-domain links found on
// it. A non-nil error is always a *FetchError and no partial result is
// returned with it.
func (d *Discoverer) Discover(ctx context.Context, seedURL string) (*Result, error) {
	seed := weburl.Normalize(seedURL)
	if seed == "" {
		d.metrics.observeScan(OutcomeFetchError, 0)
		return nil, &FetchError{URL: seedURL, Err: errors.New("empty URL")}
	}

	base, err := url.Parse(seed)
	if err != nil {
		d.metrics.observeScan(OutcomeFetchError, 0)
		return nil, &FetchError{URL: seed, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	d.logger.Debug("Scanning seed page", "seed", seed)

	start := time.Now()
	page, err := d.fetcher.Fetch(ctx, seed)
	d.metrics.observeFetch(time.Since(start))
	if err != nil {
		d.metrics.observeScan(OutcomeFetchError, 0)
		d.logger.Warn("Scan failed", "seed", seed, "error", err)
		return nil, err
	}

	result, err := d.collect(base, seed, bytes.NewReader(page.Body))
	if err != nil {
		d.metrics.observeScan(OutcomeFetchError, 0)
		d.logger.Warn("Scan failed", "seed", seed, "error", err)
		return nil, &FetchError{URL: seed, StatusCode: page.StatusCode, Err: fmt.Errorf("parse html: %w", err)}
	}

	outcome := OutcomeOK
	if result.Insufficient {
		outcome = OutcomeInsufficient
	}
	d.metrics.observeScan(outcome, len(result.Candidates))

	d.logger.Info("Scan completed",
		"seed", seed,
		"candidates", len(result.Candidates),
		"insufficient", result.Insufficient,
		"truncated", result.Truncated)

	return result, nil
}

// collect extracts candidates from an HTML body. base is the parsed seed
// used to resolve relative links and to filter by host.
func (d *Discoverer) collect(base *url.URL, seed string, body io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	set := newCandidateSet(d.maxCandidates)
	set.add(strings.TrimRight(weburl.StripFragmentAndQuery(seed), "/"))

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}

		link := base.ResolveReference(ref)
		if !weburl.IsHTTP(link) || !strings.EqualFold(link.Host, base.Host) {
			return true
		}
		if d.excluded(link.Path) {
			return true
		}

		return set.add(weburl.StripFragmentAndQuery(link.String()))
	})

	return &Result{
		Seed:         seed,
		Candidates:   set.items,
		Insufficient: len(set.items) < MinCandidates,
		Truncated:    set.truncated,
	}, nil
}

// excluded matches path against the exclude patterns. Both sides are
// compared without their leading slash.
func (d *Discoverer) excluded(path string) bool {
	path = strings.TrimPrefix(path, "/")
	for _, pattern := range d.exclude {
		if ok, _ := doublestar.Match(strings.TrimPrefix(pattern, "/"), path); ok {
			return true
		}
	}
	return false
}

// candidateSet is an insertion-ordered set with a fixed capacity.
type candidateSet struct {
	limit     int
	seen      map[string]struct{}
	items     []string
	truncated bool
}

func newCandidateSet(limit int) *candidateSet {
	return &candidateSet{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
		items: make([]string, 0, limit),
	}
}

// add inserts value and reports whether more values may still be added.
func (s *candidateSet) add(value string) bool {
	if _, ok := s.seen[value]; ok {
		return true
	}
	if len(s.items) >= s.limit {
		s.truncated = true
		return false
	}
	s.seen[value] = struct{}{}
	s.items = append(s.items, value)
	return true
}
