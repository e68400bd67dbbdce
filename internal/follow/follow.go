// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package follow harvests outbound links from a downloaded page so the
// crawler can widen its frontier.
package follow

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Links collects the <a href> targets of a page. Relative references
// are resolved against pageURL, fragments are dropped, and only
// http(s) targets survive. Links back into the source page itself
// (comment anchors, print views) are excluded, as are duplicates;
// order of first appearance is preserved.
func Links(pageURL string, body []byte) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil || root == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			if target := resolve(base, href(n)); target != "" && !seen[target] {
				seen[target] = true
				out = append(out, target)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return out
}

func href(n *html.Node) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "href") {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// resolve turns one href into an absolute, fragment-free URL, or ""
// when the target is unusable or points back into the source page.
func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""

	target := abs.String()
	if target == base.String() {
		return ""
	}
	// bruh.com/some-recipe links to bruh.com/some-recipe/comments and
	// friends; those never lead anywhere new. A root-path base gets no
	// such treatment or it would swallow the whole site.
	if base.Path != "" && base.Path != "/" && strings.HasPrefix(target, base.String()) {
		return ""
	}
	return target
}
