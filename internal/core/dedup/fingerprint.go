package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

const (
	// contentPrefixLen bounds hashing cost and ignores trailing boilerplate.
	contentPrefixLen = 5000
	digestHexLen     = 32
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeURL canonicalizes a URL for duplicate comparison: lower-cased,
// fragment stripped, trailing slash stripped, `www.` dropped after the
// scheme. Scheme itself is preserved.
func NormalizeURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return ""
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	u = strings.Replace(u, "://www.", "://", 1)
	return u
}

// HostPath returns the portion of a normalized URL after the scheme
// separator; it is what the substring duplicate fallback matches on.
func HostPath(normalized string) string {
	if i := strings.Index(normalized, "://"); i >= 0 {
		return normalized[i+3:]
	}
	return normalized
}

// Fingerprint derives the content hash used for set-membership dedup:
// lower-cased, whitespace-collapsed, truncated content, salted with the
// URL's host when present so identical text at different domains is not a
// duplicate.
func Fingerprint(content, rawURL string) string {
	normalized := whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(content)), " ")
	if len(normalized) > contentPrefixLen {
		normalized = normalized[:contentPrefixLen]
	}
	if rawURL != "" {
		if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil && u.Host != "" {
			normalized = strings.ToLower(u.Host) + ":" + normalized
		}
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:digestHexLen]
}
