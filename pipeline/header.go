package pipeline

import (
	"net/http"
	"sort"
	"strings"
)

// Header is an ordered header mapping with case-insensitive names.
// Names keep the case they were last set with. The zero value is ready to use.
type Header struct {
	entries []headerEntry
	index   map[string]int
}

type headerEntry struct {
	name  string
	value string
}

// NewHeader builds a Header from name/value pairs.
func NewHeader(pairs ...string) *Header {
	h := &Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

// HeaderFromHTTP converts a net/http header. Repeated values are joined
// with ", " and names are added in sorted order.
func HeaderFromHTTP(src http.Header) *Header {
	h := &Header{}
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Set(name, strings.Join(src[name], ", "))
	}
	return h
}

// Get returns the value for name, or "".
func (h *Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup returns the value for name and whether it is present.
func (h *Header) Lookup(name string) (string, bool) {
	if h == nil || h.index == nil {
		return "", false
	}
	i, ok := h.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return h.entries[i].value, true
}

// Has reports whether name is present.
func (h *Header) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Set writes name, replacing any value stored under a case variant of it.
// A replaced header keeps its position.
func (h *Header) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	key := strings.ToLower(name)
	if i, ok := h.index[key]; ok {
		h.entries[i] = headerEntry{name: name, value: value}
		return
	}
	h.index[key] = len(h.entries)
	h.entries = append(h.entries, headerEntry{name: name, value: value})
}

// Del removes name.
func (h *Header) Del(name string) {
	if h.index == nil {
		return
	}
	key := strings.ToLower(name)
	i, ok := h.index[key]
	if !ok {
		return
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	delete(h.index, key)
	for k, pos := range h.index {
		if pos > i {
			h.index[k] = pos - 1
		}
	}
}

// Len returns the number of headers.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Range calls fn for each header in order until fn returns false.
func (h *Header) Range(fn func(name, value string) bool) {
	if h == nil {
		return
	}
	for _, e := range h.entries {
		if !fn(e.name, e.value) {
			return
		}
	}
}

// Keys returns the header names in order.
func (h *Header) Keys() []string {
	keys := make([]string, 0, h.Len())
	h.Range(func(name, _ string) bool {
		keys = append(keys, name)
		return true
	})
	return keys
}

// Merge sets every entry of m, in sorted key order.
func (h *Header) Merge(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Set(k, m[k])
	}
}

// Clone returns a deep copy.
func (h *Header) Clone() *Header {
	c := &Header{}
	h.Range(func(name, value string) bool {
		c.Set(name, value)
		return true
	})
	return c
}

// ToHTTP converts to a net/http header, keeping each name's case.
func (h *Header) ToHTTP() http.Header {
	out := make(http.Header, h.Len())
	h.Range(func(name, value string) bool {
		out[name] = []string{value}
		return true
	})
	return out
}
