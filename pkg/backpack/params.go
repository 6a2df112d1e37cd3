package backpack

import (
	"fmt"
	"net/url"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Params is the parameter mapping of a single request. The same mapping is
// signed and then sent as query string (GET) or JSON body (POST/DELETE).
type Params map[string]any

// Set stores v under key. nil values, typed nil pointers included, are
// ignored so they never reach the wire; non-nil pointers are dereferenced.
func (p Params) Set(key string, v any) Params {
	if v = deref(v); v != nil {
		p[key] = v
	}
	return p
}

// SetString stores s under key unless it is empty.
func (p Params) SetString(key, s string) Params {
	if s != "" {
		p[key] = s
	}
	return p
}

// compact returns a copy of p without nil entries (typed nil pointers included).
func (p Params) compact() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if v = deref(v); v != nil {
			out[k] = v
		}
	}
	return out
}

// Values converts p to a url.Values for use as a query string.
func (p Params) Values() url.Values {
	vals := url.Values{}
	for k, v := range p.compact() {
		vals.Set(k, formatValue(v))
	}
	return vals
}

func deref(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *bool:
		if t == nil {
			return nil
		}
		return *t
	case *int:
		if t == nil {
			return nil
		}
		return *t
	case *int64:
		if t == nil {
			return nil
		}
		return *t
	case *uint32:
		if t == nil {
			return nil
		}
		return *t
	case *uint64:
		if t == nil {
			return nil
		}
		return *t
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

// formatValue renders a parameter value the way the exchange expects it in
// both the signing string and the query string.
func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Capitalize upper-cases the first rune of s and leaves the rest untouched
// ("limit" -> "Limit", "bid" -> "Bid").
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Ptr returns a pointer to v, for optional request fields.
func Ptr[T any](v T) *T {
	return &v
}
