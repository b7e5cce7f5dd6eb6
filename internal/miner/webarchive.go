package miner

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/paramseeker/internal/models"
)

var portSuffixRe = regexp.MustCompile(`:\d+$`)

// mineWebArchive asks the Wayback CDX API which query parameters were ever
// recorded for the host.
func (m *Miner) mineWebArchive(ctx context.Context, netloc string) []string {
	domain := portSuffixRe.ReplaceAllString(netloc, "")
	cdxURL, err := url.Parse("http://web.archive.org/cdx/search/cdx" +
		"?url=" + url.QueryEscape(domain) +
		"&collapse=urlkey&matchType=prefix&fl=original&limit=-1000")
	if err != nil {
		return nil
	}

	resp := m.client.DoWithRetry(ctx, models.NewRequest("GET", cdxURL, nil, ""))
	if resp == nil {
		m.logger.Debug().Str("domain", domain).Msg("Web archive lookup failed")
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(resp.BodyText(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		recorded, err := url.Parse(line)
		if err != nil || recorded.RawQuery == "" {
			continue
		}
		for _, pair := range strings.Split(recorded.RawQuery, "&") {
			name := pair
			if idx := strings.Index(pair, "="); idx >= 0 {
				name = pair[:idx]
			}
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
