// Package reporter renders the results tree into the table, json and light
// output formats.
package reporter

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/models"
)

// Reporter writes results to stdout or the configured output file.
type Reporter struct {
	cfg    config.ReporterConfig
	logger zerolog.Logger
}

// New creates a Reporter.
func New(cfg config.ReporterConfig, logger zerolog.Logger) *Reporter {
	return &Reporter{
		cfg:    cfg,
		logger: logger.With().Str("component", "reporter").Logger(),
	}
}

// Report formats the results and writes them out.
func (r *Reporter) Report(results models.Results) error {
	var rendered string
	var err error

	switch r.cfg.Format {
	case config.FormatTable:
		rendered = FormatTable(results)
	case config.FormatJSON:
		rendered, err = FormatJSON(results)
	case config.FormatLight, "":
		rendered = FormatLight(results, r.cfg.TermWidth)
	default:
		return fmt.Errorf("unknown output format %q", r.cfg.Format)
	}
	if err != nil {
		return err
	}

	if r.cfg.OutputFile != "" {
		if err := os.WriteFile(r.cfg.OutputFile, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.logger.Info().Str("path", r.cfg.OutputFile).Msg("Report written")
		return nil
	}

	fmt.Println()
	fmt.Println(rendered)
	return nil
}

// sortedURLs returns the tree's URLs in stable order.
func sortedURLs(results models.Results) []string {
	urls := make([]string, 0, len(results))
	for u := range results {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// surfacesOf returns the surfaces present for a URL in report order.
func surfacesOf(bySurface map[models.Surface][]models.Finding) []models.Surface {
	var surfaces []models.Surface
	for _, s := range models.AllSurfaces {
		if len(bySurface[s]) > 0 {
			surfaces = append(surfaces, s)
		}
	}
	return surfaces
}
