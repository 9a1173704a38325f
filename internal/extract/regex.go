package extract

import "regexp"

// hrefPattern matches an href attribute whose quoted value ends in .pdf,
// optionally followed by a query string. The attribute name must start
// the input or follow whitespace so that data-href and similar are not
// matched. Group 1 holds a double-quoted value, group 2 a single-quoted one.
var hrefPattern = regexp.MustCompile(
	`(?i)(?:^|\s)href\s*=\s*(?:"([^"]*\.pdf(?:\?[^"]*)?)"|'([^']*\.pdf(?:\?[^']*)?)')`,
)

// Regex scans raw page text with a regular expression.
type Regex struct{}

// Extract implements Extractor.
func (Regex) Extract(page []byte) []string {
	var out []string
	for _, m := range hrefPattern.FindAllSubmatch(page, -1) {
		v := m[1]
		if v == nil {
			v = m[2]
		}
		out = append(out, string(v))
	}
	return distinct(out)
}
