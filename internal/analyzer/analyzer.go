// Package analyzer decides whether a probe response diverges from the
// baseline and explains why.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/models"
)

// Analyzer compares probe responses against a request's baseline. It is
// stateless and safe for concurrent use.
type Analyzer struct {
	logger zerolog.Logger
}

// New creates an Analyzer.
func New(logger zerolog.Logger) *Analyzer {
	return &Analyzer{logger: logger.With().Str("component", "analyzer").Logger()}
}

// Analyze runs the divergence checks appropriate for the surface and returns
// the reasons that fired. An empty slice means the response matches the
// baseline as far as the engine can tell.
func (a *Analyzer) Analyze(info *models.RequestInfo, probe *models.Response, surface models.Surface) []models.Reason {
	var reasons []models.Reason

	a.checkStatusCode(&reasons, info.Baseline, probe)
	a.checkContentType(&reasons, info.Baseline, probe)
	a.checkContentLength(&reasons, info, probe)

	canary, ok := info.Canary(surface)
	if !ok {
		return reasons
	}

	switch surface {
	case models.SurfaceURL, models.SurfaceBodyForm, models.SurfaceBodyJSON:
		a.checkReflection(&reasons, models.ReasonParamValueReflection, canary.Base,
			info.Baseline.BodyText(), probe.BodyText(), true)
	case models.SurfaceHeader:
		a.checkReflection(&reasons, models.ReasonHeaderValueReflection, canary.Base,
			info.Baseline.RawText(), probe.RawText(), false)
	case models.SurfaceCookie:
		a.checkReflection(&reasons, models.ReasonCookieValueReflection, canary.Base,
			info.Baseline.RawText(), probe.RawText(), false)
	}

	return reasons
}

func (a *Analyzer) checkStatusCode(reasons *[]models.Reason, baseline, probe *models.Response) {
	if baseline.StatusCode != probe.StatusCode {
		*reasons = append(*reasons, models.Reason{
			Kind:  models.ReasonDiffStatusCode,
			Value: fmt.Sprintf("%d (%d)", probe.StatusCode, baseline.StatusCode),
		})
	}
}

func (a *Analyzer) checkContentType(reasons *[]models.Reason, baseline, probe *models.Response) {
	baseCT := baseline.Header("Content-Type")
	probeCT := probe.Header("Content-Type")

	if normalizeContentType(baseCT) != normalizeContentType(probeCT) {
		*reasons = append(*reasons, models.Reason{
			Kind:  models.ReasonDiffContentType,
			Value: fmt.Sprintf("%s (%s)", probeCT, baseCT),
		})
	}
}

// checkContentLength compares body sizes. HTML baselines vary in whitespace,
// so for them the structural tag count replaces the raw length comparison.
func (a *Analyzer) checkContentLength(reasons *[]models.Reason, info *models.RequestInfo, probe *models.Response) {
	if info.BaselineTagCount > 0 {
		probeTags := CountHTMLTags(probe.BodyText())
		if probeTags != info.BaselineTagCount {
			*reasons = append(*reasons, models.Reason{
				Kind:  models.ReasonDiffHTMLTagsCount,
				Value: fmt.Sprintf("%d (%d)", probeTags, info.BaselineTagCount),
			})
		}
		return
	}

	baseLen := info.Baseline.ContentLength()
	probeLen := probe.ContentLength()
	if baseLen != probeLen {
		*reasons = append(*reasons, models.Reason{
			Kind:  models.ReasonDiffContentLength,
			Value: fmt.Sprintf("%s (%s)", probeLen, baseLen),
		})
	}
}

// checkReflection reports how often the canary prefix shows up in the probe
// text. For URL and body params, occurrences embedded in absolute or
// protocol-relative URLs are excluded so links that merely echo the request
// URL do not count.
func (a *Analyzer) checkReflection(reasons *[]models.Reason, kind models.ReasonKind, canaryBase, baselineText, probeText string, excludeURLs bool) {
	if canaryBase == "" {
		return
	}

	probeCount := countReflections(canaryBase, probeText, excludeURLs)
	if probeCount == 0 {
		return
	}
	baselineCount := countReflections(canaryBase, baselineText, excludeURLs)

	*reasons = append(*reasons, models.Reason{
		Kind:  kind,
		Value: fmt.Sprintf("%d (%d)", probeCount, baselineCount),
	})
}

// normalizeContentType lowercases the value and strips whitespace around its
// ;-separated parameters so cosmetic differences do not register as
// divergence.
func normalizeContentType(v string) string {
	parts := strings.Split(strings.ToLower(v), ";")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return strings.Join(parts, ";")
}
