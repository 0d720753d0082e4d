package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// NormalizeURL ensures the URL starts with http:// or https://.
// Bare hostnames default to http, matching what a user typing a
// domain into a browser would get.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "http://" + trimmed
}

// CacheKey derives the store key for a normalized URL.
func CacheKey(normalizedURL string) string {
	sum := md5.Sum([]byte(normalizedURL))
	return "verdict:" + hex.EncodeToString(sum[:])
}
