// Package artifact renders the four text artifacts the dashboard produces:
// a robots.txt body, a sitemap, a JSON-LD identity block and an HTML head
// metadata block. Generators are pure functions of their input; empty fields
// render as placeholders or empty values, never as errors.
package artifact
