// Package pattern compiles path templates into reusable matchers.
//
// A template is a plain pathname with three extensions:
//
//	:name    named segment, matches one path segment
//	*        catch-all, matches the remainder (capture key "rest")
//	*name    named catch-all
//	( ... )  optional group, may nest
//
// Examples:
//
//	/users/:id            matches /users/7       → {id: "7"}
//	/files*path           matches /files/a/b     → {path: "/a/b"}
//	(/:id(/:tab))         matches /7, /7/x and the empty path
//
// Compiled matchers are cached by source string. Compiling the same
// source twice returns the same *Matcher, so pattern identity is the
// source text.
package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// WildcardKey is the capture key used by an unnamed catch-all (*).
const WildcardKey = "rest"

// MismatchError reports a stringify call that is missing a required
// named segment.
type MismatchError struct {
	Pattern string
	Param   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("pattern %q: missing required param %q", e.Pattern, e.Param)
}

type tokenKind int

const (
	tokenStatic tokenKind = iota
	tokenParam
	tokenWildcard
	tokenGroup
)

// token is one element of a compiled template. Groups carry their
// contents in sub.
type token struct {
	kind tokenKind
	text string // static text, or param/wildcard capture name
	sub  []token
}

// Matcher is the compiled form of a path template.
type Matcher struct {
	src      string
	tokens   []token
	names    []string
	wildcard string
}

// cache holds compiled matchers keyed by source string. It is
// append-only and never evicted; pattern vocabularies are small and
// static in practice. LoadOrStore gives the idempotent insert-or-fetch
// the cache needs, so duplicate compilation under concurrent access is
// harmless.
var cache sync.Map // string -> *Matcher

// Compile parses src and returns its matcher. Repeated calls with the
// same source return the same instance. An empty source compiles to a
// bare catch-all that matches any path and declares no named segments.
func Compile(src string) (*Matcher, error) {
	if src == "" {
		src = "(*)"
	}
	if m, ok := cache.Load(src); ok {
		return m.(*Matcher), nil
	}

	p := &parser{src: src}
	tokens, err := p.parseSeq(false)
	if err != nil {
		return nil, err
	}

	m := &Matcher{src: src, tokens: tokens}
	collectNames(tokens, m)

	actual, _ := cache.LoadOrStore(src, m)
	return actual.(*Matcher), nil
}

// MustCompile is like Compile but panics on a malformed template.
// Intended for patterns known at compile time.
func MustCompile(src string) *Matcher {
	m, err := Compile(src)
	if err != nil {
		panic("pattern: " + err.Error())
	}
	return m
}

// Default returns the catch-all matcher used when no pattern is
// supplied.
func Default() *Matcher {
	return MustCompile("(*)")
}

// FromParams expands a list of parameter names into a template of
// nested optional groups, one per name, in order. Each name becomes
// independently optional, so partial paths still match:
//
//	FromParams("id", "tab") → "(/:id(/:tab))"
//
// An empty list yields the empty template.
func FromParams(names ...string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString("(/:")
		b.WriteString(name)
	}
	for range names {
		b.WriteByte(')')
	}
	return b.String()
}

// Source returns the template text the matcher was compiled from.
func (m *Matcher) Source() string { return m.src }

// Names returns the declared named-segment names in template order.
// Catch-all capture keys are not included; see Wildcard.
func (m *Matcher) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Wildcard returns the catch-all capture key, or "" if the template
// has no catch-all.
func (m *Matcher) Wildcard() string { return m.wildcard }

// Match tests path against the template. It returns the captured
// segments, or nil if the path does not satisfy the template. A nil
// result is a normal negative outcome, not an error.
func (m *Matcher) Match(path string) map[string]string {
	caps := make(map[string]string)
	if !matchFrom(m.tokens, 0, path, 0, caps) {
		return nil
	}
	return caps
}

// Stringify renders the template using values from params. Named
// segments are required at the top level; a missing one fails with
// *MismatchError. Inside an optional group a missing name drops the
// whole group instead. Catch-all captures default to the empty string
// so optional trailing groups collapse cleanly. Keys that the template
// does not declare are ignored.
func (m *Matcher) Stringify(params map[string]any) (string, error) {
	var b strings.Builder
	if err := renderSeq(m.tokens, params, &b, m.src); err != nil {
		return "", err
	}
	return b.String(), nil
}

// parser scans a template source left to right.
type parser struct {
	src string
	pos int
}

// parseSeq parses tokens until end of input, or until an unconsumed
// ')' when inside a group.
func (p *parser) parseSeq(inGroup bool) ([]token, error) {
	var toks []token
	var static []byte
	flush := func() {
		if len(static) > 0 {
			toks = append(toks, token{kind: tokenStatic, text: string(static)})
			static = nil
		}
	}

	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case ':':
			flush()
			p.pos++
			name := p.readName()
			if name == "" {
				return nil, fmt.Errorf("pattern %q: empty segment name at offset %d", p.src, p.pos)
			}
			toks = append(toks, token{kind: tokenParam, text: name})
		case '*':
			flush()
			p.pos++
			name := p.readName()
			if name == "" {
				name = WildcardKey
			}
			toks = append(toks, token{kind: tokenWildcard, text: name})
		case '(':
			flush()
			p.pos++
			sub, err := p.parseSeq(true)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != ')' {
				return nil, fmt.Errorf("pattern %q: unclosed group", p.src)
			}
			p.pos++
			toks = append(toks, token{kind: tokenGroup, sub: sub})
		case ')':
			if !inGroup {
				return nil, fmt.Errorf("pattern %q: unexpected ')' at offset %d", p.src, p.pos)
			}
			flush()
			return toks, nil
		default:
			static = append(static, c)
			p.pos++
		}
	}

	if inGroup {
		return nil, fmt.Errorf("pattern %q: unclosed group", p.src)
	}
	flush()
	return toks, nil
}

// readName consumes a capture name: letters, digits and underscore.
func (p *parser) readName() string {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isNameChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// collectNames walks the token tree recording declared names and the
// first catch-all key.
func collectNames(toks []token, m *Matcher) {
	for _, t := range toks {
		switch t.kind {
		case tokenParam:
			m.names = append(m.names, t.text)
		case tokenWildcard:
			if m.wildcard == "" {
				m.wildcard = t.text
			}
		case tokenGroup:
			collectNames(t.sub, m)
		}
	}
}

// matchFrom matches toks[ti:] against path[pos:] with backtracking.
// Captures are rolled back on failure by each frame, so an abandoned
// group attempt leaves no stray keys behind.
func matchFrom(toks []token, ti int, path string, pos int, caps map[string]string) bool {
	if ti == len(toks) {
		return pos == len(path)
	}

	switch t := toks[ti]; t.kind {
	case tokenStatic:
		if strings.HasPrefix(path[pos:], t.text) {
			return matchFrom(toks, ti+1, path, pos+len(t.text), caps)
		}
		return false

	case tokenParam:
		end := pos
		for end < len(path) && path[end] != '/' {
			end++
		}
		if end == pos {
			return false
		}
		caps[t.text] = path[pos:end]
		if matchFrom(toks, ti+1, path, end, caps) {
			return true
		}
		delete(caps, t.text)
		return false

	case tokenWildcard:
		// Greedy: prefer the longest capture, give back as needed.
		for end := len(path); end >= pos; end-- {
			caps[t.text] = path[pos:end]
			if matchFrom(toks, ti+1, path, end, caps) {
				return true
			}
		}
		delete(caps, t.text)
		return false

	case tokenGroup:
		// Prefer taking the group so trailing optional segments are
		// consumed when present.
		spliced := make([]token, 0, len(t.sub)+len(toks)-ti-1)
		spliced = append(spliced, t.sub...)
		spliced = append(spliced, toks[ti+1:]...)
		if matchFrom(spliced, 0, path, pos, caps) {
			return true
		}
		return matchFrom(toks, ti+1, path, pos, caps)
	}

	return false
}

// renderSeq renders toks into b. Missing top-level params are an
// error; groups handle their own members via renderGroup.
func renderSeq(toks []token, params map[string]any, b *strings.Builder, src string) error {
	for _, t := range toks {
		switch t.kind {
		case tokenStatic:
			b.WriteString(t.text)
		case tokenParam:
			v, ok := params[t.text]
			if !ok || v == nil {
				return &MismatchError{Pattern: src, Param: t.text}
			}
			b.WriteString(formatValue(v))
		case tokenWildcard:
			if v, ok := params[t.text]; ok && v != nil {
				b.WriteString(formatValue(v))
			}
		case tokenGroup:
			var sub strings.Builder
			if renderGroup(t.sub, params, &sub, src) {
				b.WriteString(sub.String())
			}
		}
	}
	return nil
}

// renderGroup renders an optional group. It reports false when any
// directly contained named segment is absent, which drops the group.
func renderGroup(toks []token, params map[string]any, b *strings.Builder, src string) bool {
	for _, t := range toks {
		switch t.kind {
		case tokenStatic:
			b.WriteString(t.text)
		case tokenParam:
			v, ok := params[t.text]
			if !ok || v == nil {
				return false
			}
			b.WriteString(formatValue(v))
		case tokenWildcard:
			if v, ok := params[t.text]; ok && v != nil {
				b.WriteString(formatValue(v))
			}
		case tokenGroup:
			var sub strings.Builder
			if renderGroup(t.sub, params, &sub, src) {
				b.WriteString(sub.String())
			}
		}
	}
	return true
}

// formatValue renders a parameter value as path text.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
