// Package resolve turns possibly-relative PDF links into absolute URLs
// against the page they were found on.
//
// Resolution is a textual join. Dot segments ("./", "../") are kept as
// written rather than collapsed, so "../a.pdf" on /docs/index.html becomes
// /docs/../a.pdf.
package resolve

import (
	"errors"
	"strings"
)

// ErrEmptyURL is returned by NormalizeBase for blank input.
var ErrEmptyURL = errors.New("URL is empty")

const defaultScheme = "https"

// NormalizeBase validates a caller-supplied page URL. An http:// or
// https:// prefix is lowercased; any other input gets https:// prepended
// and defaulted is true so the caller can warn about it.
func NormalizeBase(raw string) (base string, defaulted bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, ErrEmptyURL
	}
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"http://", "https://"} {
		if strings.HasPrefix(lower, prefix) {
			return prefix + raw[len(prefix):], false, nil
		}
	}
	return defaultScheme + "://" + raw, true, nil
}

// IsAbsolute reports whether link already starts with http:// or https://.
func IsAbsolute(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}

// Resolve returns link as an absolute URL relative to base. Rules apply in
// order: absolute links pass through, protocol-relative links take the
// base scheme, root-relative links take the base scheme and host, and
// everything else is appended to the base directory.
func Resolve(base, link string) string {
	if IsAbsolute(link) {
		return link
	}
	scheme, host, path := split(base)
	switch {
	case strings.HasPrefix(link, "//"):
		return scheme + ":" + link
	case strings.HasPrefix(link, "/"):
		return scheme + "://" + host + link
	default:
		return scheme + "://" + host + Dir(path) + link
	}
}

// Dir returns path up to and including its last slash, or "/" when path
// has none.
func Dir(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "/"
	}
	return path[:i+1]
}

// split breaks base into scheme, host (with any port or userinfo), and
// path. Query and fragment are dropped from the path. A base without
// "://" is treated as a bare host under the default scheme.
func split(base string) (scheme, host, path string) {
	scheme = defaultScheme
	rest := base
	if i := strings.Index(base, "://"); i >= 0 {
		scheme, rest = base[:i], base[i+3:]
	}
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		return scheme, rest, ""
	}
	host, rest = rest[:end], rest[end:]
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}
	return scheme, host, rest
}
