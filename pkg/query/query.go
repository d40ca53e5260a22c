// Package query is the default query-string codec. Decoding coerces
// numeric-looking and boolean-looking values into numbers and
// booleans; everything else stays a string. Encoding is the inverse,
// with deterministic key order.
package query

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/davidsavoie1/params-router/pkg/location"
)

// Codec decodes and encodes typed key-value query strings. The
// extractor and builder consume this interface; Coercing is the
// default implementation.
type Codec interface {
	Decode(raw string) location.Params
	Encode(params location.Params) string
}

// Coercing is a Codec backed by net/url with type coercion.
type Coercing struct{}

// Decode parses a raw query string (no leading "?") into params.
// A malformed string yields an empty mapping rather than an error, so
// one bad source never aborts a whole extraction. When a key repeats,
// the first value wins.
func (Coercing) Decode(raw string) location.Params {
	params := make(location.Params)
	if raw == "" {
		return params
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return params
	}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		params[key] = coerce(vals[0])
	}
	return params
}

// Encode renders params as a query string without the leading "?".
// Keys are sorted, which net/url guarantees.
func (Coercing) Encode(params location.Params) string {
	if len(params) == 0 {
		return ""
	}
	values := make(url.Values, len(params))
	for key, v := range params {
		values.Set(key, format(v))
	}
	return values.Encode()
}

// coerce turns numeric-looking and boolean-looking strings into their
// typed forms. Only literal "true"/"false" become booleans; ParseBool
// would also accept "1" and "t", which must stay numeric and textual.
func coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// format is the inverse of coerce.
func format(v any) string {
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
