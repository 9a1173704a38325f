// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"strconv"
	"strings"
)

// fallbackName is used when a URL has no usable last segment.
const fallbackName = "download.pdf"

// FileName derives a destination file name from a URL: the last path
// segment with any query or fragment removed.
func FileName(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		slash := strings.Index(s, "/")
		if slash < 0 {
			return fallbackName
		}
		s = s[slash:]
	}
	name := s[strings.LastIndex(s, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return fallbackName
	}
	return name
}

// NumberedName returns name for n == 0 and "<stem>_<n>.pdf" otherwise,
// where stem is name without a trailing .pdf in any case.
func NumberedName(name string, n int) string {
	if n == 0 {
		return name
	}
	stem := name
	if len(stem) >= 4 && strings.EqualFold(stem[len(stem)-4:], ".pdf") {
		stem = stem[:len(stem)-4]
	}
	return stem + "_" + strconv.Itoa(n) + ".pdf"
}
