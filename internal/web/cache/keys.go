package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// KeyGenerator derives cache keys from requests. Only the path and the
// parameters that change a rendered document take part in the key.
type KeyGenerator struct {
	// Params lists exact query parameter names that affect the document
	Params []string
	// ParamPrefixes lists parameter families such as "fields[" or "page["
	ParamPrefixes []string
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultKeyGenerator returns a generator for JSON:API read requests
func DefaultKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		Params:        []string{"include"},
		ParamPrefixes: []string{"fields[", "page["},
		Prefix:        "doc:",
	}
}

// GenerateKey generates a cache key for the given request
func (kg *KeyGenerator) GenerateKey(r *http.Request) string {
	parts := []string{r.Method, r.URL.Path}

	// Sort query parameters for consistent keys
	query := kg.Query(r)
	var queryParts []string
	for key, values := range query {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		for _, value := range sorted {
			queryParts = append(queryParts, key+"="+value)
		}
	}
	sort.Strings(queryParts)
	parts = append(parts, strings.Join(queryParts, "&"))

	// Join parts and hash for a shorter key
	hash := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return kg.Prefix + hex.EncodeToString(hash[:16])
}

// Query returns the request parameters that take part in the key, with
// fields lists in canonical order. Anything a document echoes from the
// query, such as pagination links, must come from it: requests sharing a key
// share one cached body.
func (kg *KeyGenerator) Query(r *http.Request) url.Values {
	out := url.Values{}
	for key, values := range r.URL.Query() {
		if !kg.relevant(key) {
			continue
		}
		for _, value := range values {
			out.Add(key, canonicalList(key, value))
		}
	}
	return out
}

func (kg *KeyGenerator) relevant(param string) bool {
	for _, name := range kg.Params {
		if param == name {
			return true
		}
	}
	for _, prefix := range kg.ParamPrefixes {
		if strings.HasPrefix(param, prefix) {
			return true
		}
	}
	return false
}

// canonicalList sorts comma separated fields values, whose order does not
// change the rendered document. Include order decides included order and is
// kept.
func canonicalList(param, value string) string {
	if !strings.HasPrefix(param, "fields[") {
		return value
	}
	items := strings.Split(value, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	sort.Strings(items)
	return strings.Join(items, ",")
}
