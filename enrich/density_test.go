package enrich

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseHTML(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestCollectText_SkipsScriptsAndJoins(t *testing.T) {
	// WHAT: Script payloads are excluded and text nodes join with spaces.
	doc := parseHTML(t, `<html><body><p>one</p><script>var x=1;</script><p>two</p></body></html>`)
	got := collectText(doc)
	if got != "one two" {
		t.Errorf("got %q", got)
	}
}

func TestCollectLinkText(t *testing.T) {
	// WHAT: Only anchor text is collected.
	doc := parseHTML(t, `<html><body><p>intro <a href="/x">link one</a> middle <a href="/y">link two</a></p></body></html>`)
	got := collectLinkText(doc)
	if got != "link onelink two" {
		t.Errorf("got %q", got)
	}
}

func TestIsBoilerplate(t *testing.T) {
	// WHAT: Chrome tags and marker classes are flagged, content is not.
	doc := parseHTML(t, `<html><body>
<nav id="n">x</nav>
<div class="cookie-banner" id="c">x</div>
<div class="story" id="s">x</div>
</body></html>`)
	byID := map[string]*html.Node{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if id := getAttr(n, "id"); id != "" {
			byID[id] = n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !isBoilerplate(byID["n"]) {
		t.Error("nav not flagged")
	}
	if !isBoilerplate(byID["c"]) {
		t.Error("cookie banner not flagged")
	}
	if isBoilerplate(byID["s"]) {
		t.Error("story flagged as boilerplate")
	}
}

func TestLogScale(t *testing.T) {
	// WHAT: The scale grows with length and is zero for empty text.
	if logScale(0) != 0 {
		t.Error("zero length should scale to 0")
	}
	if logScale(50) != 1 {
		t.Errorf("short text: %v", logScale(50))
	}
	if logScale(10000) <= logScale(200) {
		t.Error("scale should grow with length")
	}
}

func TestFindDensestNode_IgnoresLinkHeavyNodes(t *testing.T) {
	// WHAT: A subtree whose text is mostly links never wins.
	doc := parseHTML(t, `<html><body>
<div><a href="/1">aaaaaaaaaaaaaaaaaaaaaaaaa</a><a href="/2">bbbbbbbbbbbbbbbbbbbbbbbbb</a></div>
<div><p>ccccccccccccccccccccccccc ddddddddddddddddddddddddd</p></div>
</body></html>`)
	body := findBody(doc)
	best := findDensestNode(body, 30)
	if best == nil {
		t.Fatal("no candidate chosen")
	}
	if text := collectText(best); !strings.Contains(text, "ccccc") {
		t.Errorf("picked link-heavy node: %q", text)
	}
}
