// Package miner scrapes additional candidate names from the content the
// targets already serve: HTML attributes, script identifiers, JSON keys and
// the Wayback Machine's record of query parameters.
package miner

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// nonASCIIRe strips bytes that cannot appear in a parameter name anyway.
var nonASCIIRe = regexp.MustCompile(`[^\x00-\x7F]+`)

// Miner mines per-host candidate names from baseline responses and the
// resources they reference.
type Miner struct {
	client *httpclient.Client
	cfg    config.MinerConfig
	logger zerolog.Logger
}

// New creates a Miner.
func New(client *httpclient.Client, cfg config.MinerConfig, logger zerolog.Logger) *Miner {
	return &Miner{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "miner").Logger(),
	}
}

// Mine inspects every request's baseline and returns the names discovered per
// netloc, sorted for stable downstream chunking.
func (m *Miner) Mine(ctx context.Context, infos []*models.RequestInfo) map[string][]string {
	found := make(map[string]map[string]bool)
	add := func(netloc, name string) {
		name = nonASCIIRe.ReplaceAllString(name, "")
		if name == "" {
			return
		}
		if found[netloc] == nil {
			found[netloc] = make(map[string]bool)
		}
		found[netloc][name] = true
	}

	fetchBudget := m.cfg.MaxScriptFetches
	archiveDone := make(map[string]bool)

	for _, info := range infos {
		if ctx.Err() != nil {
			break
		}
		contentType := strings.ToLower(info.Baseline.Header("Content-Type"))

		switch {
		case strings.Contains(contentType, "text/html"):
			names, scriptSrcs := MineHTML(info.Baseline.BodyText(), info.Request.URL)
			for _, name := range names {
				add(info.Netloc, name)
			}
			for _, src := range scriptSrcs {
				if fetchBudget <= 0 {
					break
				}
				fetchBudget--
				for _, name := range m.mineScriptURL(ctx, src) {
					add(info.Netloc, name)
				}
			}
		case strings.Contains(contentType, "application/json"):
			for _, name := range MineJSON(info.Baseline.BodyText()) {
				add(info.Netloc, name)
			}
		case strings.Contains(contentType, "javascript"):
			for _, name := range MineJS(info.Baseline.BodyText()) {
				add(info.Netloc, name)
			}
		}

		if m.cfg.MineWebArchive && !archiveDone[info.Netloc] {
			archiveDone[info.Netloc] = true
			for _, name := range m.mineWebArchive(ctx, info.Netloc) {
				add(info.Netloc, name)
			}
		}
	}

	result := make(map[string][]string, len(found))
	for netloc, names := range found {
		list := make([]string, 0, len(names))
		for name := range names {
			list = append(list, name)
		}
		sort.Strings(list)
		result[netloc] = list
		m.logger.Debug().Str("netloc", netloc).Int("count", len(list)).Msg("Mined candidate names")
	}
	return result
}

// mineScriptURL fetches an external script and mines its identifiers.
func (m *Miner) mineScriptURL(ctx context.Context, src *url.URL) []string {
	req := models.NewRequest("GET", src, nil, "")
	resp := m.client.DoWithRetry(ctx, req)
	if resp == nil {
		m.logger.Debug().Str("src", src.String()).Msg("Could not fetch script")
		return nil
	}
	return MineJS(resp.BodyText())
}
