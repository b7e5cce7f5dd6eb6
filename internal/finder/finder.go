// Package finder implements the per-surface probing logic: how candidate
// names are injected into a request, how chunks are sized for a surface, and
// how analyzer output becomes a verdict.
package finder

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/analyzer"
	"github.com/aleister1102/paramseeker/internal/bucket"
	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// Canary value length caps per surface kind.
const (
	maxParamValueLen  = 35
	maxHeaderValueLen = 18
	maxCookieValueLen = 30
)

// breakerChars are the metacharacters appended to every canary. They tend to
// surface quoting bugs, template evaluation and error pages on the server.
const breakerChars = "'\"`%${|\\"

// encodedBreaker is the percent-encoded form used on surfaces where the raw
// characters would be re-encoded or rejected in transit.
var encodedBreaker = url.QueryEscape(breakerChars)

// Finder is the capability set every surface implements.
type Finder interface {
	// Surface tags the injection location this finder probes.
	Surface() models.Surface

	// IsSearchable reports whether the request can carry this surface's
	// probes at all.
	IsSearchable(info *models.RequestInfo) bool

	// SetupCanary draws the canary for this surface on the request. It is a
	// no-op when one exists already.
	SetupCanary(info *models.RequestInfo)

	// DetermineBucketSize claims the (host, surface) cache slot and runs the
	// sizing search when this caller won the claim.
	DetermineBucketSize(ctx context.Context, info *models.RequestInfo)

	// SetBucketSize copies the cached host bucket onto the request, minus
	// what the original request already consumes on this surface.
	SetBucketSize(info *models.RequestInfo)

	// WordChunks partitions the candidate names into bucket-sized chunks.
	WordChunks(info *models.RequestInfo) [][]string

	// Probe injects names into a copy of the request, sends it and grades
	// the response.
	Probe(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict
}

// base carries the collaborators shared by all finders.
type base struct {
	client     *httpclient.Client
	analyzer   *analyzer.Analyzer
	cache      *bucket.Cache
	controller *bucket.Controller
	cfg        config.FinderConfig
	logger     zerolog.Logger
}

// Deps bundles the collaborators injected into each finder.
type Deps struct {
	Client     *httpclient.Client
	Analyzer   *analyzer.Analyzer
	Cache      *bucket.Cache
	Controller *bucket.Controller
	Config     config.FinderConfig
	Logger     zerolog.Logger
}

func newBase(deps Deps, component string) base {
	return base{
		client:     deps.Client,
		analyzer:   deps.Analyzer,
		cache:      deps.Cache,
		controller: deps.Controller,
		cfg:        deps.Config,
		logger:     deps.Logger.With().Str("component", component).Logger(),
	}
}

// verdict turns an analyzer result into the common verdict shape: no reasons
// discards the chunk, reasons on a single name confirm it, reasons on a
// larger chunk ask for a split.
func (b *base) verdict(info *models.RequestInfo, surface models.Surface, names []string, resp *models.Response, reasons []models.Reason) models.Verdict {
	if len(reasons) == 0 {
		return models.Discard()
	}
	if len(names) == 1 {
		b.logger.Info().
			Str("surface", surface.String()).
			Str("name", names[0]).
			Str("url", info.OriginURL).
			Msg("Hidden parameter found")
		return models.Hit(&models.Finding{
			URL:      info.OriginURL,
			Surface:  surface,
			Name:     names[0],
			Reasons:  reasons,
			Response: resp,
		})
	}
	return models.Split()
}

// retryVerdict logs a transport failure and re-queues the chunk.
func (b *base) retryVerdict(info *models.RequestInfo) models.Verdict {
	b.logger.Warn().
		Str("url", info.OriginURL).
		Msg("Probe failed after retries, chunk re-queued")
	return models.Retry()
}

// setupCanary draws an independent canary for the surface unless one exists.
func setupCanary(info *models.RequestInfo, surface models.Surface, maxValueLen int, breaker string) {
	if _, ok := info.Canary(surface); ok {
		return
	}
	info.SetCanary(surface, models.Canary{
		Base:    models.RandomToken(maxValueLen - len(breaker)),
		Breaker: breaker,
	})
}
