// Package scope composes URL patterns and parameters across nested
// routing scopes.
//
// A Scope is one level of a routing hierarchy. Its own pattern is
// concatenated after its ancestor chain's pattern, and a trailing
// catch-all lets it match a prefix of the pathname, leaving the
// remainder for further-nested descendants. Neither side needs to
// know the other's literal pattern text: a descendant only relies on
// its ancestor's pattern being prepended.
//
// Scopes are pure derivations: Derive is a function of its inputs and
// a scope is never mutated. Re-derive on every location change.
//
//	c := scope.NewComposer(hist)
//	admin, _ := c.Derive(scope.Path("/admin"), nil, nil)
//	users, _ := c.Derive(scope.Path("/users/:userId"), admin, nil)
//	users.Params["userId"] // pathname-derived, this level only
package scope

import (
	"errors"
	"fmt"

	"github.com/davidsavoie1/params-router/pkg/history"
	"github.com/davidsavoie1/params-router/pkg/location"
	"github.com/davidsavoie1/params-router/pkg/pattern"
	"github.com/davidsavoie1/params-router/pkg/query"
	"github.com/davidsavoie1/params-router/pkg/urlstate"
)

// ErrNoHistory reports a navigation attempted on a composer that was
// created without a history.
var ErrNoHistory = errors.New("scope: no history")

// Spec declares a scope's own pattern contribution: either a literal
// path template, or a list of parameter names expanded into a chain
// of nested optional groups so partial paths still match.
type Spec struct {
	Pattern string
	Params  []string
}

// Path declares a literal path-template contribution.
func Path(template string) Spec { return Spec{Pattern: template} }

// ParamNames declares a contribution of independently optional named
// segments, in order. An empty list contributes nothing.
func ParamNames(names ...string) Spec { return Spec{Params: names} }

// template resolves the spec to its template text.
func (s Spec) template() string {
	if len(s.Params) > 0 {
		return pattern.FromParams(s.Params...)
	}
	return s.Pattern
}

// Composer derives scopes against a navigation subsystem and a query
// codec.
type Composer struct {
	hist  history.History
	ext   *urlstate.Extractor
	build *urlstate.Builder
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithCodec sets the query codec used for extraction and building.
func WithCodec(codec query.Codec) ComposerOption {
	return func(c *Composer) {
		c.ext.Codec = codec
		c.build.Codec = codec
	}
}

// NewComposer creates a Composer. hist supplies the ambient location
// when Derive, GoTo or Href are called without an explicit one, and
// receives the navigations GoTo commits.
func NewComposer(hist history.History, opts ...ComposerOption) *Composer {
	c := &Composer{hist: hist, ext: &urlstate.Extractor{}}
	c.build = &urlstate.Builder{Extractor: c.ext}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scope is one derived level of the routing hierarchy.
type Scope struct {
	// OwnPattern is this scope's private pattern contribution.
	OwnPattern string

	// RootPattern is the ancestor chain's pattern concatenated with
	// OwnPattern.
	RootPattern string

	// Params are the pathname-derived parameters visible strictly at
	// this level, matched from the pathname the ancestor chain left
	// over. A segment name reused by an ancestor keeps this level's
	// value here; the ancestor's value stays in RootParams.
	Params location.Params

	// RootParams are the pathname parameters attributable to the
	// ancestor chain alone. They are recomputed from the ancestor
	// pattern, not copied, so they stay consistent regardless of how
	// the ancestor was derived.
	RootParams location.Params

	// Rest is the unmatched trailing pathname left for descendants,
	// "" when the pathname was fully consumed.
	Rest string

	all      location.Params
	full     *pattern.Matcher
	composer *Composer
}

// Derive computes the scope for spec nested under parent at loc. A
// nil parent means a root scope; a nil loc means the ambient current
// location. Derivation is pure and side-effect-free: equal inputs
// yield equal scopes.
func (c *Composer) Derive(spec Spec, parent *Scope, loc *location.Location) (*Scope, error) {
	own := spec.template()

	parentRoot := ""
	if parent != nil {
		parentRoot = parent.RootPattern
	}
	rootPattern := parentRoot + own

	full, err := pattern.Compile(rootPattern + "(*)")
	if err != nil {
		return nil, fmt.Errorf("deriving scope %q: %w", own, err)
	}
	ancestor, err := pattern.Compile(parentRoot + "(*)")
	if err != nil {
		return nil, fmt.Errorf("deriving scope %q: %w", own, err)
	}
	ownFull, err := pattern.Compile(own + "(*)")
	if err != nil {
		return nil, fmt.Errorf("deriving scope %q: %w", own, err)
	}

	at := c.resolve(loc)

	all := c.ext.ExtractAll(at, full)
	rest, _ := all[full.Wildcard()].(string)
	delete(all, full.Wildcard())

	rootParams := c.ext.ExtractOwn(at, ancestor)
	parentRest, _ := rootParams[ancestor.Wildcard()].(string)
	delete(rootParams, ancestor.Wildcard())

	// Match the own pattern against the pathname the ancestor chain
	// left over, so a segment name reused across levels keeps this
	// level's value instead of being shadowed by the ancestor's.
	params := c.ext.ExtractOwn(location.Location{Path: parentRest}, ownFull)
	delete(params, ownFull.Wildcard())

	return &Scope{
		OwnPattern:  own,
		RootPattern: rootPattern,
		Params:      params,
		RootParams:  rootParams,
		Rest:        rest,
		all:         all,
		full:        full,
		composer:    c,
	}, nil
}

// resolve returns loc, or the ambient current location when loc is
// nil.
func (c *Composer) resolve(loc *location.Location) location.Location {
	if loc != nil {
		return *loc
	}
	if c.hist != nil {
		return c.hist.Location()
	}
	return location.Location{}
}

// All returns the fully merged parameter mapping at this scope:
// pathname, search, hash and state, with the usual precedence. The
// catch-all capture is not included.
func (s *Scope) All() location.Params {
	return s.all.Clone()
}

// Matcher returns the compiled matcher for the scope's full pattern
// (root pattern plus trailing catch-all).
func (s *Scope) Matcher() *pattern.Matcher {
	return s.full
}

// NavigateOption configures GoTo.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	replace bool
}

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *navigateOptions) {
		o.replace = true
	}
}

// Href resolves dest into a relative URL string without navigating,
// for passive link generation. Parameter destinations are merged over
// the scope's RootParams first, so links never silently drop the
// parameters the ancestor chain needs to keep matching.
func (s *Scope) Href(dest urlstate.Destination) (string, error) {
	resolved, err := s.destination(dest)
	if err != nil {
		return "", err
	}
	return s.composer.build.BuildURL(resolved, s.full, s.composer.resolve(nil))
}

// GoTo resolves dest exactly like Href and commits the navigation.
// It fails with ErrNoHistory when the composer has no history to
// commit to.
func (s *Scope) GoTo(dest urlstate.Destination, opts ...NavigateOption) error {
	if s.composer.hist == nil {
		return ErrNoHistory
	}

	var options navigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	url, err := s.Href(dest)
	if err != nil {
		return err
	}

	if options.replace {
		s.composer.hist.Replace(url)
	} else {
		s.composer.hist.Push(url)
	}
	return nil
}

// destination applies the ancestor-defaults merge to parameter
// destinations. Literals pass through; an Updater is resolved against
// the current ambient parameters of this scope before merging.
func (s *Scope) destination(dest urlstate.Destination) (urlstate.Destination, error) {
	switch d := dest.(type) {
	case urlstate.Literal:
		return d, nil
	case urlstate.Values:
		merged := s.RootParams.Clone().Merge(location.Params(d))
		return urlstate.Values(merged), nil
	case urlstate.Updater:
		current := s.composer.ext.ExtractAll(s.composer.resolve(nil), s.full)
		delete(current, s.full.Wildcard())
		next := d(current)
		merged := s.RootParams.Clone().Merge(next)
		return urlstate.Values(merged), nil
	default:
		return nil, fmt.Errorf("scope: unsupported destination %T", dest)
	}
}
