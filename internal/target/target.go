// Package target resolves where a review fragment should be committed.
//
// Hosts hand over the HTML of the heading the user opened the review from.
// The heading's edit link encodes the page title and the numeric section
// index as query parameters; without a usable link the target falls back to
// the current document with an unresolved section, which blocks commit.
package target

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/glosskit/gloss/pkg/domain"
)

// ResolveFromHeading extracts the edit target from a heading HTML fragment.
func ResolveFromHeading(headingHTML, fallbackTitle string) domain.Target {
	t := domain.Target{PageTitle: fallbackTitle}

	root, err := html.Parse(strings.NewReader(headingHTML))
	if err != nil {
		return t
	}

	link := findEditLink(root)
	if link == "" {
		return t
	}

	query := linkQuery(link)
	if title := query.Get("title"); title != "" {
		t.PageTitle = title
	}
	if s := query.Get("section"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			t.SectionID = &n
		}
	}
	return t
}

// findEditLink walks the parsed fragment and returns the href of the best
// candidate anchor. An anchor carrying the qe-target class wins; otherwise
// the first anchor whose href mentions action=edit is used.
func findEditLink(root *html.Node) string {
	var preferred, fallback string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if preferred != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if href != "" {
				if hasClass(n, "qe-target") {
					preferred = href
					return
				}
				if fallback == "" && strings.Contains(href, "action=edit") {
					fallback = href
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if preferred != "" {
		return preferred
	}
	return fallback
}

// linkQuery pulls the query parameters out of an href. ParseQuery reports an
// error on bad escapes but still returns everything it could decode, which
// is enough here.
func linkQuery(href string) url.Values {
	if u, err := url.Parse(href); err == nil {
		q, _ := url.ParseQuery(u.RawQuery)
		return q
	}
	if i := strings.IndexByte(href, '?'); i >= 0 {
		q, _ := url.ParseQuery(href[i+1:])
		return q
	}
	return url.Values{}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}
