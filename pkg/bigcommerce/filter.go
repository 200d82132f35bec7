package bigcommerce

import (
	"net/url"
	"slices"
	"strings"
)

type param struct {
	key   string
	value string
}

// Filter is an ordered set of query parameters.
//
// Filter is a value: Add, Set, Without and WithDefault return a new Filter and never
// modify the receiver, so a Filter handed to one call cannot be changed by another.
type Filter struct {
	params []param
}

func NewFilter() Filter { return Filter{} }

// Add appends key=value, keeping earlier values for the same key.
func (f Filter) Add(key, value string) Filter {
	out := make([]param, len(f.params), len(f.params)+1)
	copy(out, f.params)
	return Filter{params: append(out, param{key: key, value: value})}
}

// Set replaces every value of key with value. The key keeps its first position.
func (f Filter) Set(key, value string) Filter {
	out := make([]param, 0, len(f.params)+1)
	replaced := false
	for _, p := range f.params {
		if p.key != key {
			out = append(out, p)
			continue
		}
		if !replaced {
			out = append(out, param{key: key, value: value})
			replaced = true
		}
	}
	if !replaced {
		out = append(out, param{key: key, value: value})
	}
	return Filter{params: out}
}

// WithDefault adds key=value only when key is absent.
func (f Filter) WithDefault(key, value string) Filter {
	if f.Has(key) {
		return f
	}
	return f.Add(key, value)
}

// Without drops every value of the given keys.
func (f Filter) Without(keys ...string) Filter {
	out := make([]param, 0, len(f.params))
	for _, p := range f.params {
		if !slices.Contains(keys, p.key) {
			out = append(out, p)
		}
	}
	return Filter{params: out}
}

// Has reports exact key presence.
func (f Filter) Has(key string) bool {
	for _, p := range f.params {
		if p.key == key {
			return true
		}
	}
	return false
}

// Get returns the first value of key.
func (f Filter) Get(key string) string {
	for _, p := range f.params {
		if p.key == key {
			return p.value
		}
	}
	return ""
}

func (f Filter) Len() int { return len(f.params) }

// Encode renders the query string in insertion order.
// Commas stay literal so list parameters read as include=a,b.
func (f Filter) Encode() string {
	if len(f.params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range f.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(queryEscape(p.value))
	}
	return b.String()
}

func (f Filter) String() string { return f.Encode() }

func queryEscape(s string) string {
	s = url.QueryEscape(s)
	s = strings.ReplaceAll(s, "%2C", ",")
	return strings.ReplaceAll(s, "%3A", ":")
}
