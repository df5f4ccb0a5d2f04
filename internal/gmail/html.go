package gmail

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText extracts the visible text of an HTML document. Text nodes are
// trimmed and joined with newlines; script, style and other non-visible
// markup contribute nothing. Malformed input that the parser rejects yields
// the empty string rather than an error.
func HTMLToText(content string) string {
	if content == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var texts []string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style", "script", "noscript", "iframe", "head", "meta", "link":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				texts = append(texts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return strings.TrimSpace(strings.Join(texts, "\n"))
}
