package cache

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// Key builds a stable cache key from a request's method, path, query
// params and serialized body. Params are sorted so equivalent requests
// produce the same key regardless of map iteration order. The path
// always leads the key so prefix wildcards over API paths keep working.
func Key(method, path string, params map[string]string, body []byte) string {
	key := path

	if len(params) > 0 {
		parts := make([]string, 0, len(params))
		for k, v := range params {
			parts = append(parts, k+"="+v)
		}
		sort.Strings(parts)
		q := strings.Join(parts, "&")
		// Hash oversized query strings so keys stay bounded. The path
		// prefix is preserved either way.
		if len(q) > 100 {
			q = fmt.Sprintf("q_%x", md5.Sum([]byte(q)))
		}
		key += "?" + q
	}

	// GET requests without a body are the common case and get the bare
	// path-shaped key. Anything else is disambiguated by method and a
	// digest of the body.
	if method != "GET" || len(body) > 0 {
		key += fmt.Sprintf("#%s:%x", method, md5.Sum(body))
	}

	return key
}
