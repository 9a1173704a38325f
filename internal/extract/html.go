package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTML walks a parsed document and collects href attributes on any
// element. Attribute values are entity-decoded by the parser, and text
// inside comments or scripts is never considered.
type HTML struct{}

// Extract implements Extractor. Malformed markup is tolerated by the
// parser; a parse failure yields no links.
func (HTML) Extract(page []byte) []string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Namespace == "" && strings.EqualFold(a.Key, "href") && IsPDFLink(a.Val) {
					out = append(out, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return distinct(out)
}
