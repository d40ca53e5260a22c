// Package location defines the value types shared across the module:
// a Location (pathname, query, hash, out-of-band state) and a Params
// mapping from string keys to string, number or boolean values.
package location

import (
	"strings"
)

// Params maps parameter names to values. Values are strings, numbers
// or booleans. Keys are unique and merges are last-write-wins; no
// ordering is semantically meaningful.
type Params map[string]any

// Clone returns a shallow copy of p. A nil receiver clones to an
// empty, non-nil mapping.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge overlays sources onto p in order, later sources winning on
// key collisions, and returns p.
func (p Params) Merge(sources ...Params) Params {
	for _, src := range sources {
		for k, v := range src {
			p[k] = v
		}
	}
	return p
}

// Location is a navigable position: a slash-delimited pathname, a
// query string without the leading "?", a fragment without the
// leading "#", and an opaque state mapping attached out-of-band (not
// visible in the URL text).
type Location struct {
	Path   string
	Search string
	Hash   string
	State  Params
}

// Parse splits a relative URL string into a Location. State is always
// nil; it never travels in the URL text.
func Parse(raw string) Location {
	rest, hash, _ := strings.Cut(raw, "#")
	path, search, _ := strings.Cut(rest, "?")
	return Location{Path: path, Search: search, Hash: hash}
}

// String renders the URL text form of l. State is omitted.
func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.Path)
	if l.Search != "" {
		b.WriteByte('?')
		b.WriteString(l.Search)
	}
	if l.Hash != "" {
		b.WriteByte('#')
		b.WriteString(l.Hash)
	}
	return b.String()
}

// NormalizePath strips repeated leading and trailing slashes, keeping
// a single leading slash, so matchers always receive a canonical form
// regardless of trailing-slash variance in the input.
func NormalizePath(path string) string {
	return "/" + strings.Trim(path, "/")
}
