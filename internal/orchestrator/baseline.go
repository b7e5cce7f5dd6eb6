package orchestrator

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aleister1102/paramseeker/internal/analyzer"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// FetchBaselines obtains the reference response for every request
// concurrently. This is a strict phase barrier: it completes before any
// probing starts, and requests that never answered are dropped here so they
// cannot spawn useless probe work later.
func FetchBaselines(ctx context.Context, client *httpclient.Client, infos []*models.RequestInfo, threads int, logger zerolog.Logger) []*models.RequestInfo {
	if threads < 1 {
		threads = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for _, info := range infos {
		info := info
		g.Go(func() error {
			resp := client.DoWithRetry(gctx, info.Request.Clone())
			if resp != nil {
				info.SetBaseline(resp, analyzer.CountHTMLTags(resp.BodyText()))
			}
			return nil
		})
	}
	// Workers never return errors; the group only limits concurrency.
	_ = g.Wait()

	alive := make([]*models.RequestInfo, 0, len(infos))
	for _, info := range infos {
		if info.Baseline == nil {
			logger.Warn().
				Str("method", info.Request.Method).
				Str("url", info.OriginURL).
				Msg("No baseline response, request dropped")
			continue
		}
		alive = append(alive, info)
	}

	if len(alive) == 0 {
		logger.Error().Msg("Could not obtain a baseline for any request")
	}
	return alive
}
