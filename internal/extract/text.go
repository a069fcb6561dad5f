package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textLines reduces a selection to plain text: one entry per non-empty,
// trimmed text fragment, in document order. Script and style bodies are
// skipped so inline JS never leaks into the token stream.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	for _, node := range sel.Nodes {
		collectText(node, &lines)
	}
	return lines
}

func collectText(n *html.Node, out *[]string) {
	switch n.Type {
	case html.TextNode:
		for _, line := range strings.Split(n.Data, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				*out = append(*out, t)
			}
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

// documentLines reduces the whole page, preferring body when present.
func documentLines(doc *goquery.Document) []string {
	if body := doc.Find("body"); body.Length() > 0 {
		return textLines(body)
	}
	return textLines(doc.Selection)
}
