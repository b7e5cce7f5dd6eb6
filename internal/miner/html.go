package miner

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MineHTML extracts candidate names from an HTML page: every name attribute
// value plus the identifiers of inline scripts. It also returns the resolved
// URLs of external scripts for the caller to fetch.
func MineHTML(body string, pageURL *url.URL) (names []string, scriptSrcs []*url.URL) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, nil
	}

	doc.Find("[name]").Each(func(_ int, s *goquery.Selection) {
		if name, ok := s.Attr("name"); ok && name != "" {
			names = append(names, name)
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			ref, err := url.Parse(src)
			if err != nil {
				return
			}
			scriptSrcs = append(scriptSrcs, pageURL.ResolveReference(ref))
			return
		}
		names = append(names, MineJS(s.Text())...)
	})

	return names, scriptSrcs
}
