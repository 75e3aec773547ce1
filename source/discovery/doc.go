// Package discovery finds sitemap candidates by scanning a single page.
//
// # Overview
//
// A scan fetches one seed page with a short timeout and a desktop browser
// user agent, collects every <a href> on it, resolves each against the seed
// and keeps the http(s) links whose host equals the seed's host. Fragments and
// query strings are stripped before deduplication. The scan is intentionally
// shallow: no retries, no pagination, no recursion.
//
// # Candidate Order
//
// The seed (trailing slashes removed) is always the first candidate. Links
// follow in document order and the set stops growing at MaxCandidates (50),
// so the surviving candidates are deterministic for a given page.
//
// # Failure Modes
//
// Discover returns a *FetchError for network errors, timeouts, non-2xx
// statuses, oversized bodies and HTML parse failures. A successful scan that
// found fewer than MinCandidates links sets Result.Insufficient; callers use
// both signals to switch to manual entry.
//
// # Exclusions
//
// Options.Exclude takes doublestar patterns matched against a link's path:
//
//	/wp-admin/**   drops every admin page
//	**/*.pdf       drops document downloads
//
// # Usage
//
//	d, err := discovery.New(discovery.Options{}, discovery.NewMetrics(reg), logger)
//	if err != nil {
//	    return err
//	}
//	result, err := d.Discover(ctx, "example.com")
//	var fetchErr *discovery.FetchError
//	if errors.As(err, &fetchErr) {
//	    // fall back to manual entry
//	}
package discovery
