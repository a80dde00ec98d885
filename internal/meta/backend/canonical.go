package backend

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// CanonicalizePath normalizes a request path so that equivalent requests
// match the same stored record. Two transformations apply:
//
//   - when the append-slash convention is enabled and the path component
//     does not end in a filename, a trailing slash is appended
//   - query-string parameters are sorted lexicographically by key and
//     re-encoded, so /x/?b=2&a=1 and /x/?a=1&b=2 canonicalize identically
//
// The function is idempotent.
func CanonicalizePath(raw string, appendSlash bool) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if appendSlash && u.Path != "" && !strings.HasSuffix(u.Path, "/") {
		// A final component with an extension is treated as a filename
		// and left alone.
		if !strings.Contains(path.Base(u.Path), ".") {
			u.Path += "/"
		}
	}

	if u.RawQuery != "" {
		u.RawQuery = sortQuery(u.RawQuery)
	}

	return u.String()
}

// sortQuery re-encodes a query string with its key-value pairs ordered
// lexicographically by key. Pairs sharing a key keep their relative order.
func sortQuery(rawQuery string) string {
	type pair struct {
		key, value string
		hasValue   bool
	}

	var pairs []pair
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, found := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			value = v
		}
		pairs = append(pairs, pair{key: key, value: value, hasValue: found})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].key < pairs[j].key
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		if p.hasValue {
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(p.value))
		}
	}
	return b.String()
}
