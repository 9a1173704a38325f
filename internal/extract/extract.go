// Package extract finds PDF links in fetched page content.
//
// The default extractor is a textual scan of href attributes. It does not
// build a document tree, so it can pick up links inside comments or
// scripts and misses PDFs referenced from other attributes. The HTML
// extractor walks a parsed tree instead and is selected by name.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/pdiddy/pdflinks/internal/resolve"
	"github.com/pdiddy/pdflinks/pkg/types"
)

// Parser names accepted by New.
const (
	ParserRegex = "regex"
	ParserHTML  = "html"
)

// ErrUnknownParser is returned by New for an unrecognized parser name.
var ErrUnknownParser = errors.New("unknown parser")

// Extractor returns the distinct candidate PDF hrefs in page, sorted
// ascending. Values are returned as written, not yet resolved.
type Extractor interface {
	Extract(page []byte) []string
}

// New returns the extractor registered under name. An empty name selects
// the regex extractor.
func New(name string) (Extractor, error) {
	switch name {
	case "", ParserRegex:
		return Regex{}, nil
	case ParserHTML:
		return HTML{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownParser, name, ParserRegex, ParserHTML)
	}
}

// pdfSuffix matches a value ending in .pdf, optionally followed by a query.
var pdfSuffix = regexp.MustCompile(`(?i)\.pdf(\?.*)?$`)

// IsPDFLink reports whether an href value points at a PDF by its suffix.
func IsPDFLink(href string) bool {
	return pdfSuffix.MatchString(href)
}

// BuildLinkSet resolves candidates against base and returns them deduped
// and sorted by their absolute form.
func BuildLinkSet(base string, candidates []string) types.LinkSet {
	resolved := make([]string, 0, len(candidates))
	for _, c := range candidates {
		resolved = append(resolved, resolve.Resolve(base, c))
	}
	return types.NewLinkSet(resolved)
}

// distinct dedupes and sorts values in place.
func distinct(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	sort.Strings(values)
	out := values[:1]
	for _, v := range values[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
