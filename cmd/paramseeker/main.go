package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/logger"
	"github.com/aleister1102/paramseeker/internal/miner"
	"github.com/aleister1102/paramseeker/internal/orchestrator"
	"github.com/aleister1102/paramseeker/internal/reporter"
	"github.com/aleister1102/paramseeker/internal/requestparser"
	"github.com/aleister1102/paramseeker/internal/wordlist"
)

func main() {
	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.ConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Could not load config: %v", err)
	}
	applyFlags(gCfg, flags)

	appLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		appLogger.Error().Err(err).Msg("Configuration validation failed")
		os.Exit(1)
	}

	words, err := loadWordlists(gCfg)
	if err != nil {
		appLogger.Error().Err(err).Msg("Could not load wordlists")
		os.Exit(1)
	}

	client, err := httpclient.New(gCfg.HTTPClientConfig, appLogger)
	if err != nil {
		appLogger.Error().Err(err).Msg("Could not build HTTP client")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	appLogger.Info().Msg("Preparing target requests")
	infos, failed, err := requestparser.Prepare(ctx, client, requestparser.Options{
		URL:     flags.URL,
		Method:  flags.Method,
		RawPath: flags.RawRequests,
		Body:    flags.Body,
		Headers: flags.Headers,
		Threads: gCfg.FinderConfig.Threads,
	}, appLogger)
	if err != nil {
		appLogger.Error().Err(err).Msg("Could not prepare requests")
		os.Exit(1)
	}
	if len(failed) > 0 {
		appLogger.Warn().Strs("targets", failed).Msg("Targets could not be prepared")
	}
	if len(infos) == 0 {
		appLogger.Error().Msg("No target request could be prepared")
		os.Exit(1)
	}

	appLogger.Info().Int("requests", len(infos)).Msg("Fetching baseline responses")
	infos = orchestrator.FetchBaselines(ctx, client, infos, gCfg.FinderConfig.Threads, appLogger)
	if len(infos) == 0 {
		os.Exit(1)
	}

	if !gCfg.MinerConfig.Disabled {
		appLogger.Info().Msg("Mining candidate names from page content")
		mined := miner.New(client, gCfg.MinerConfig, appLogger).Mine(ctx, infos)
		for _, info := range infos {
			info.AdditionalNames = mined[info.Netloc]
		}
	}

	orch := orchestrator.New(gCfg.FinderConfig, words, client, appLogger)
	results, err := orch.Run(ctx, infos)
	if err != nil {
		appLogger.Error().Err(err).Msg("Discovery run failed")
		os.Exit(1)
	}

	if err := reporter.New(gCfg.ReporterConfig, appLogger).Report(results); err != nil {
		appLogger.Error().Err(err).Msg("Could not write report")
		os.Exit(1)
	}

	appLogger.Info().
		Int("findings", results.Total()).
		Dur("elapsed", time.Since(start)).
		Msg("Done")
}

// applyFlags lays the command line over the loaded config.
func applyFlags(cfg *config.GlobalConfig, flags AppFlags) {
	cfg.HTTPClientConfig.Retry = flags.Retry
	cfg.HTTPClientConfig.TimeoutSeconds = flags.Timeout
	cfg.HTTPClientConfig.DelaySeconds = flags.Delay
	cfg.HTTPClientConfig.Proxy = flags.Proxy
	cfg.HTTPClientConfig.FollowRedirects = flags.FollowRedirects

	cfg.FinderConfig.Threads = flags.Threads
	cfg.FinderConfig.FindAll = flags.FindAll
	cfg.FinderConfig.FindHeaders = flags.FindHeaders
	cfg.FinderConfig.FindParams = flags.FindParams
	cfg.FinderConfig.FindCookies = flags.FindCookies
	cfg.FinderConfig.HeaderBucket = flags.HeaderBucket
	cfg.FinderConfig.ParamBucket = flags.ParamBucket
	cfg.FinderConfig.CookieBucket = flags.CookieBucket
	cfg.FinderConfig.DisableDynamicHeaders = flags.DisableDynamicHeaders
	cfg.FinderConfig.DisableDynamicParams = flags.DisableDynamicParams
	cfg.FinderConfig.DisableDynamicCookies = flags.DisableDynamicCookies

	if flags.HeaderWordlists != "" {
		cfg.WordlistConfig.HeaderWordlists = wordlist.SplitPaths(flags.HeaderWordlists)
	}
	if flags.ParamWordlists != "" {
		cfg.WordlistConfig.ParamWordlists = wordlist.SplitPaths(flags.ParamWordlists)
	}
	if flags.CookieWordlists != "" {
		cfg.WordlistConfig.CookieWordlists = wordlist.SplitPaths(flags.CookieWordlists)
	}

	cfg.MinerConfig.Disabled = cfg.MinerConfig.Disabled || flags.DisableMining
	cfg.ReporterConfig.Format = config.OutputFormat(flags.OutputFormat)
	cfg.ReporterConfig.OutputFile = flags.Output
	cfg.LogConfig.Verbosity = flags.Verbosity
}

// loadWordlists reads the lists for every enabled surface and applies the
// per-surface name filters.
func loadWordlists(cfg *config.GlobalConfig) (orchestrator.Wordlists, error) {
	var words orchestrator.Wordlists
	fc := cfg.FinderConfig

	if fc.FindAll || fc.FindParams {
		params, err := wordlist.Load(cfg.WordlistConfig.ParamWordlists)
		if err != nil {
			return words, err
		}
		words.Params = params
	}
	if fc.FindAll || fc.FindHeaders {
		headers, err := wordlist.Load(cfg.WordlistConfig.HeaderWordlists)
		if err != nil {
			return words, err
		}
		words.Headers = wordlist.FilterHeaderNames(headers)
	}
	if fc.FindAll || fc.FindCookies {
		cookies, err := wordlist.Load(cfg.WordlistConfig.CookieWordlists)
		if err != nil {
			return words, err
		}
		words.Cookies = wordlist.FilterCookieNames(cookies)
	}
	return words, nil
}
