// Package orchestrator wires the discovery engine together: baselines,
// canaries, bucket sizing, chunk generation and the probe scheduler.
package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/analyzer"
	"github.com/aleister1102/paramseeker/internal/bucket"
	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/finder"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
	"github.com/aleister1102/paramseeker/internal/scheduler"
)

// ErrNoRequests is returned when no target request survived preparation.
var ErrNoRequests = errors.New("no usable target requests")

// Wordlists carries the loaded, deduplicated candidate names per surface
// kind.
type Wordlists struct {
	Params  []string
	Headers []string
	Cookies []string
}

// Orchestrator drives a full discovery run over a set of prepared requests.
type Orchestrator struct {
	cfg      config.FinderConfig
	client   *httpclient.Client
	analyzer *analyzer.Analyzer
	cache    *bucket.Cache
	finders  []finder.Finder
	logger   zerolog.Logger
}

// New assembles the engine. Finders are registered according to the find
// flags; the bucket cache is owned here so every run is isolated.
func New(cfg config.FinderConfig, words Wordlists, client *httpclient.Client, logger zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		client:   client,
		analyzer: analyzer.New(logger),
		cache:    bucket.NewCache(),
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}

	deps := finder.Deps{
		Client:     client,
		Analyzer:   o.analyzer,
		Cache:      o.cache,
		Controller: bucket.NewController(client, logger),
		Config:     cfg,
		Logger:     logger,
	}

	if cfg.FindHeaders || cfg.FindAll {
		o.finders = append(o.finders, finder.NewHeaderFinder(deps, words.Headers))
	}
	if cfg.FindParams || cfg.FindAll {
		o.finders = append(o.finders,
			finder.NewURLFinder(deps, words.Params),
			finder.NewBodyFormFinder(deps, words.Params),
			finder.NewBodyJSONFinder(deps, words.Params),
		)
	}
	if cfg.FindCookies || cfg.FindAll {
		o.finders = append(o.finders, finder.NewCookieFinder(deps, words.Cookies))
	}

	return o
}

// Run executes the engine over requests that already carry baselines and
// returns the results tree.
func (o *Orchestrator) Run(ctx context.Context, infos []*models.RequestInfo) (models.Results, error) {
	if len(infos) == 0 {
		return nil, ErrNoRequests
	}

	o.setupCanaries(infos)

	o.logger.Info().Int("requests", len(infos)).Msg("Determining bucket sizes")
	o.setupBucketSizes(ctx, infos)

	o.logger.Info().Msg("Searching for hidden parameters")
	pool := scheduler.NewPool(o.cfg.Threads, o.logger)
	seeded := o.seedChunks(pool, infos)
	if seeded == 0 {
		o.logger.Warn().Msg("No probe work generated, nothing to do")
		return models.NewResults(), nil
	}

	findings, err := pool.Run(ctx)
	if err != nil {
		return nil, err
	}

	results := models.NewResults()
	for _, f := range findings {
		results.Add(f)
	}
	return results, nil
}

// setupCanaries draws the per-surface canaries for every searchable pair.
func (o *Orchestrator) setupCanaries(infos []*models.RequestInfo) {
	for _, f := range o.finders {
		for _, info := range infos {
			if f.IsSearchable(info) {
				f.SetupCanary(info)
			}
		}
	}
}

// setupBucketSizes resolves one bucket per (host, surface) through a worker
// pool, then copies the cached values onto every request.
func (o *Orchestrator) setupBucketSizes(ctx context.Context, infos []*models.RequestInfo) {
	type job struct {
		f    finder.Finder
		info *models.RequestInfo
	}

	threads := o.cfg.Threads
	if threads < 1 {
		threads = 1
	}

	jobs := make(chan job)
	go func() {
		defer close(jobs)
		for _, info := range infos {
			for _, f := range o.finders {
				if !f.IsSearchable(info) {
					continue
				}
				select {
				case jobs <- job{f: f, info: info}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				j.f.DetermineBucketSize(ctx, j.info)
			}
		}()
	}
	wg.Wait()

	for _, info := range infos {
		for _, f := range o.finders {
			if !f.IsSearchable(info) {
				continue
			}
			f.SetBucketSize(info)
			o.logger.Debug().
				Str("surface", f.Surface().String()).
				Str("url", info.OriginURL).
				Int("bucket", info.Bucket(f.Surface())).
				Msg("Bucket size set")
		}
	}
}

// seedChunks pushes the initial word chunks for every searchable pair and
// returns how many chunks were queued. Pairs without a usable bucket are
// logged and skipped without aborting the run.
func (o *Orchestrator) seedChunks(pool *scheduler.Pool, infos []*models.RequestInfo) int {
	seeded := 0
	for _, f := range o.finders {
		for _, info := range infos {
			if !f.IsSearchable(info) {
				o.logger.Debug().
					Str("surface", f.Surface().String()).
					Str("url", info.OriginURL).
					Msg("Request not searchable for surface")
				continue
			}
			if info.Bucket(f.Surface()) <= 0 {
				o.logger.Error().
					Str("surface", f.Surface().String()).
					Str("url", info.OriginURL).
					Msg("Could not determine bucket size, skipping request for surface")
				continue
			}
			for priority, chunk := range f.WordChunks(info) {
				pool.Push(priority, f.Surface(), f.Probe, info, chunk)
				seeded++
			}
		}
	}
	return seeded
}
