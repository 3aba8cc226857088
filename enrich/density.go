package enrich

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// contentNode pairs a chosen DOM subtree with its plain-text rendering,
// used as the markdown conversion fallback.
type contentNode struct {
	node *html.Node
	text string
}

// findContent picks the subtree most likely to hold the article body.
// Semantic landmarks win when present; otherwise the densest candidate
// under <body> is chosen, and as a last resort the whole body text.
func findContent(doc *html.Node, minLen int) *contentNode {
	if n := bestLandmark(doc, minLen); n != nil {
		return n
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}

	if best := findDensestNode(body, minLen); best != nil {
		return &contentNode{node: best, text: collectText(best)}
	}

	text := collectText(body)
	if len(text) < minLen {
		return nil
	}
	return &contentNode{node: body, text: text}
}

// bestLandmark scans <main> then <article> elements and returns the
// non-boilerplate one with the most text, or nil when none qualifies.
func bestLandmark(doc *html.Node, minLen int) *contentNode {
	for _, tag := range []atom.Atom{atom.Main, atom.Article} {
		var best *contentNode
		for _, n := range findAllByTag(doc, tag) {
			if isBoilerplate(n) {
				continue
			}
			text := collectText(n)
			if len(text) < minLen {
				continue
			}
			if best == nil || len(text) > len(best.text) {
				best = &contentNode{node: n, text: text}
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// nodeScore holds density analysis for a DOM subtree.
type nodeScore struct {
	node     *html.Node
	textLen  int
	density  float64
	linkDens float64 // fraction of text inside <a> tags
}

// findDensestNode walks the DOM and finds the node with highest content
// density, skipping boilerplate and link-heavy (navigation) subtrees.
func findDensestNode(root *html.Node, minLen int) *html.Node {
	var candidates []nodeScore

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if isBoilerplate(n) {
			return
		}
		if !isContentTag(n.DataAtom) && n.DataAtom != atom.Body {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}

		text := collectText(n)
		textLen := len(text)
		if textLen < minLen {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}

		markupLen := len(renderNode(n))
		if markupLen == 0 {
			markupLen = 1
		}
		linkDens := float64(len(collectLinkText(n))) / float64(textLen)

		candidates = append(candidates, nodeScore{
			node:     n,
			textLen:  textLen,
			density:  float64(textLen) / float64(markupLen),
			linkDens: linkDens,
		})

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var best *nodeScore
	var bestScore float64
	for i := range candidates {
		c := &candidates[i]
		if c.linkDens > 0.5 {
			continue // mostly links - probably navigation
		}
		score := c.density * logScale(c.textLen) * (1 - c.linkDens)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return best.node
}

// logScale returns a log-based scale factor for text length.
func logScale(n int) float64 {
	if n <= 0 {
		return 0
	}
	scale := 1.0
	v := n
	for v > 100 {
		scale += 1
		v /= 2
	}
	return scale
}

// boilerplateTags are skipped wholesale during extraction.
var boilerplateTags = map[atom.Atom]bool{
	atom.Nav:    true,
	atom.Footer: true,
	atom.Header: true,
	atom.Aside:  true,
	atom.Form:   true,
}

// boilerplateMarkers flag id/class values that identify chrome, not content.
var boilerplateMarkers = []string{
	"nav", "footer", "sidebar", "menu", "banner", "advert", "promo",
	"cookie", "subscribe", "newsletter", "comment", "related", "share",
}

// isBoilerplate reports whether a node is site chrome rather than content.
func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if boilerplateTags[n.DataAtom] {
		return true
	}
	marker := strings.ToLower(getAttr(n, "id") + " " + getAttr(n, "class"))
	if marker == " " {
		return false
	}
	for _, m := range boilerplateMarkers {
		if strings.Contains(marker, m) {
			return true
		}
	}
	return false
}

// isContentTag reports whether a tag can plausibly hold an article body.
func isContentTag(a atom.Atom) bool {
	switch a {
	case atom.Article, atom.Main, atom.Section, atom.Div, atom.P:
		return true
	}
	return false
}

// collectText extracts the visible text of a subtree, whitespace-joined,
// skipping script/style payloads and boilerplate descendants.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
			if isBoilerplate(n) {
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// collectLinkText extracts text only from <a> elements.
func collectLinkText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node, bool)
	f = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c, inLink)
		}
	}
	f(n, false)
	return sb.String()
}

// renderNode serializes a subtree back to HTML.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// findBody returns the <body> element from a parsed document.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

// findAllByTag finds all elements with a specific tag.
func findAllByTag(root *html.Node, tag atom.Atom) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == tag {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

// getAttr returns the value of an attribute on a node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
