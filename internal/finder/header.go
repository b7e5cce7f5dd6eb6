package finder

import (
	"context"
	"regexp"
	"strings"

	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// headerNameRe is the shape of a legal probe header name.
var headerNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// HeaderFinder probes candidate names as request headers. Unlike the byte
// surfaces it budgets by header count, and every probe carries a cache buster
// so intermediate caches cannot mask header-dependent behavior.
type HeaderFinder struct {
	base
	wordlist   []string
	maxNameLen int
}

// NewHeaderFinder builds the header finder over the headers wordlist.
func NewHeaderFinder(deps Deps, wordlist []string) *HeaderFinder {
	filtered := make([]string, 0, len(wordlist))
	for _, w := range wordlist {
		if headerNameRe.MatchString(w) {
			filtered = append(filtered, w)
		}
	}
	return &HeaderFinder{
		base:       newBase(deps, "header-finder"),
		wordlist:   filtered,
		maxNameLen: longestWord(filtered),
	}
}

func (f *HeaderFinder) Surface() models.Surface {
	return models.SurfaceHeader
}

func (f *HeaderFinder) IsSearchable(info *models.RequestInfo) bool {
	return len(f.wordlist) > 0
}

func (f *HeaderFinder) SetupCanary(info *models.RequestInfo) {
	setupCanary(info, models.SurfaceHeader, maxHeaderValueLen, breakerChars)
}

func (f *HeaderFinder) DetermineBucketSize(ctx context.Context, info *models.RequestInfo) {
	if !f.cache.Begin(info.Netloc, models.SurfaceHeader) {
		return
	}
	if f.cfg.DisableDynamicHeaders {
		f.cache.Store(info.Netloc, models.SurfaceHeader, f.cfg.HeaderBucket)
		return
	}
	// The sizing search runs in header-count units for this surface.
	size, ok := f.controller.OptimalSize(ctx, info, 1, f.addRandomHeaders)
	if !ok {
		f.cache.Store(info.Netloc, models.SurfaceHeader, 0)
		return
	}
	f.cache.Store(info.Netloc, models.SurfaceHeader, size+f.preexistingCount(info))
}

func (f *HeaderFinder) SetBucketSize(info *models.RequestInfo) {
	size, done := f.cache.Get(info.Netloc, models.SurfaceHeader)
	if !done || size == 0 {
		info.SetBucket(models.SurfaceHeader, 0)
		return
	}
	info.SetBucket(models.SurfaceHeader, size-f.preexistingCount(info))
}

func (f *HeaderFinder) WordChunks(info *models.RequestInfo) [][]string {
	bucket := info.Bucket(models.SurfaceHeader)
	if bucket <= 0 {
		return nil
	}

	// Header names compare case-insensitively.
	existing := make(map[string]bool)
	for name := range info.Request.Headers {
		existing[strings.ToLower(name)] = true
	}

	merged := mergeCandidates(f.wordlist, filterNames(info.AdditionalNames, headerNameRe), nil)
	words := make([]string, 0, len(merged))
	for _, w := range merged {
		if !existing[strings.ToLower(w)] {
			words = append(words, w)
		}
	}
	return chunkByCount(words, bucket)
}

func (f *HeaderFinder) Probe(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict {
	req := info.Request.Clone()
	canary, _ := info.Canary(models.SurfaceHeader)
	for _, name := range names {
		req.Headers.Set(name, canary.Value())
	}
	httpclient.AddCacheBuster(req)

	resp := f.client.DoWithRetry(ctx, req)
	if resp == nil {
		return f.retryVerdict(info)
	}

	reasons := f.analyzer.Analyze(info, resp, models.SurfaceHeader)
	return f.verdict(info, models.SurfaceHeader, names, resp, reasons)
}

func (f *HeaderFinder) preexistingCount(info *models.RequestInfo) int {
	return len(info.Request.Headers)
}

// addRandomHeaders pads the request with count unique random headers for
// bucket sizing. The cache buster rides along like on real probes.
func (f *HeaderFinder) addRandomHeaders(req *models.Request, count int) {
	nameLen := f.maxNameLen
	if nameLen == 0 {
		nameLen = 10
	}
	added := 0
	for added < count {
		name := models.RandomToken(nameLen)
		if req.Headers.Get(name) != "" {
			continue
		}
		req.Headers.Set(name, models.RandomToken(maxHeaderValueLen))
		added++
	}
	httpclient.AddCacheBuster(req)
}

func filterNames(names []string, re *regexp.Regexp) []string {
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if re.MatchString(name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
