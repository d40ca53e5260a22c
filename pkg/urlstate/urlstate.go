// Package urlstate converts between Locations and parameter mappings.
//
// The Extractor merges the four parameter sources of a Location with a
// fixed precedence, lowest to highest:
//
//	state < hash < search < pathname
//
// The pathname is the most specific, most intentional part of a URL
// and wins every collision; state is the most ambient and loses. The
// hash < search ordering is the observed behavior of the system this
// engine models; deployments that use fragments for finer-grained UI
// state than query strings may want the opposite, but the order is
// kept as-is here.
//
// The Builder is the inverse: it splits a mapping into pathname-owned
// keys (declared by the pattern) and a query-string remainder.
package urlstate

import (
	"strings"

	"github.com/davidsavoie1/params-router/pkg/location"
	"github.com/davidsavoie1/params-router/pkg/pattern"
	"github.com/davidsavoie1/params-router/pkg/query"
)

// Destination is where a navigation or link points. It is a closed
// set: Literal passes a URL string through untouched, Values is an
// explicit parameter mapping, and Updater derives the next mapping
// from the current one.
type Destination interface {
	isDestination()
}

// Literal is a URL string used verbatim; it is not re-validated or
// re-encoded.
type Literal string

// Values is an explicit parameter mapping destination.
type Values location.Params

// Updater computes the next parameter mapping from the current one.
type Updater func(current location.Params) location.Params

func (Literal) isDestination() {}
func (Values) isDestination()  {}
func (Updater) isDestination() {}

// Extractor derives parameter mappings from Locations.
type Extractor struct {
	// Codec decodes search and hash strings. Defaults to the coercing
	// codec when nil.
	Codec query.Codec
}

func (e *Extractor) codec() query.Codec {
	if e.Codec == nil {
		return query.Coercing{}
	}
	return e.Codec
}

// ExtractAll merges every parameter source of loc against m. A
// pathname that does not satisfy the pattern contributes an empty
// mapping; that is a normal outcome at this layer, not an error.
func (e *Extractor) ExtractAll(loc location.Location, m *pattern.Matcher) location.Params {
	codec := e.codec()
	params := make(location.Params)
	params.Merge(
		loc.State,
		codec.Decode(loc.Hash),
		codec.Decode(loc.Search),
		e.ExtractOwn(loc, m),
	)
	return params
}

// ExtractOwn derives the pathname parameters of loc only, exclusive
// of search, hash and state. A nil matcher yields an empty mapping;
// there is nothing to extract.
func (e *Extractor) ExtractOwn(loc location.Location, m *pattern.Matcher) location.Params {
	params := make(location.Params)
	if m == nil {
		return params
	}
	caps := m.Match(location.NormalizePath(loc.Path))
	for k, v := range caps {
		params[k] = v
	}
	return params
}

// Builder produces relative URL strings from destinations.
type Builder struct {
	// Codec encodes the query-string remainder. Defaults to the
	// coercing codec when nil.
	Codec query.Codec

	// Extractor resolves the current parameters handed to an Updater.
	// Defaults to an extractor sharing Codec.
	Extractor *Extractor
}

func (b *Builder) codec() query.Codec {
	if b.Codec == nil {
		return query.Coercing{}
	}
	return b.Codec
}

func (b *Builder) extractor() *Extractor {
	if b.Extractor == nil {
		return &Extractor{Codec: b.Codec}
	}
	return b.Extractor
}

// BuildURL resolves dest against m into a relative URL string
// beginning with "/". current is the location an Updater is resolved
// against. Keys declared by the pattern form the pathname; everything
// else becomes the query string. A missing required segment surfaces
// as a *pattern.MismatchError.
func (b *Builder) BuildURL(dest Destination, m *pattern.Matcher, current location.Location) (string, error) {
	if m == nil {
		m = pattern.Default()
	}

	var params location.Params
	switch d := dest.(type) {
	case Literal:
		return string(d), nil
	case Values:
		params = location.Params(d)
	case Updater:
		params = d(b.extractor().ExtractAll(current, m))
	default:
		params = location.Params{}
	}

	owned, rest := splitOwned(params, m)
	path, err := m.Stringify(owned)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if qs := b.codec().Encode(rest); qs != "" {
		path += "?" + qs
	}
	return path, nil
}

// splitOwned partitions params into the keys the pattern declares
// (named segments plus the catch-all capture) and the remainder.
func splitOwned(params location.Params, m *pattern.Matcher) (owned, rest location.Params) {
	ownedKeys := make(map[string]bool, len(m.Names())+1)
	for _, name := range m.Names() {
		ownedKeys[name] = true
	}
	if w := m.Wildcard(); w != "" {
		ownedKeys[w] = true
	}

	owned = make(location.Params, len(ownedKeys))
	rest = make(location.Params)
	for k, v := range params {
		if ownedKeys[k] {
			owned[k] = v
		} else {
			rest[k] = v
		}
	}
	return owned, rest
}
