package finder

import (
	"context"
	"strings"

	"github.com/aleister1102/paramseeker/internal/models"
)

// URLFinder probes candidate names as query-string parameters.
type URLFinder struct {
	base
	wordlist   []string
	maxNameLen int
	minChunk   int
}

// NewURLFinder builds the query-string finder over the params wordlist.
func NewURLFinder(deps Deps, wordlist []string) *URLFinder {
	maxNameLen := longestWord(wordlist)
	return &URLFinder{
		base:       newBase(deps, "url-finder"),
		wordlist:   wordlist,
		maxNameLen: maxNameLen,
		// [?&]name=value
		minChunk: 1 + maxNameLen + 1 + maxParamValueLen,
	}
}

func (f *URLFinder) Surface() models.Surface {
	return models.SurfaceURL
}

func (f *URLFinder) IsSearchable(info *models.RequestInfo) bool {
	return len(f.wordlist) > 0
}

func (f *URLFinder) SetupCanary(info *models.RequestInfo) {
	setupCanary(info, models.SurfaceURL, maxParamValueLen, encodedBreaker)
}

func (f *URLFinder) DetermineBucketSize(ctx context.Context, info *models.RequestInfo) {
	if !f.cache.Begin(info.Netloc, models.SurfaceURL) {
		return
	}
	if f.cfg.DisableDynamicParams {
		f.cache.Store(info.Netloc, models.SurfaceURL, f.cfg.ParamBucket)
		return
	}
	size, ok := f.controller.OptimalSize(ctx, info, f.minChunk, f.addRandomParam)
	if !ok {
		f.cache.Store(info.Netloc, models.SurfaceURL, 0)
		return
	}
	f.cache.Store(info.Netloc, models.SurfaceURL, size+f.preexistingSize(info))
}

func (f *URLFinder) SetBucketSize(info *models.RequestInfo) {
	size, done := f.cache.Get(info.Netloc, models.SurfaceURL)
	if !done || size == 0 {
		info.SetBucket(models.SurfaceURL, 0)
		return
	}
	info.SetBucket(models.SurfaceURL, size-f.preexistingSize(info))
}

func (f *URLFinder) WordChunks(info *models.RequestInfo) [][]string {
	bucket := info.Bucket(models.SurfaceURL)
	if bucket <= 0 {
		return nil
	}
	canary, _ := info.Canary(models.SurfaceURL)
	valueLen := len(canary.Value())

	words := mergeCandidates(f.wordlist, info.AdditionalNames, queryKeys(info.Request.URL.RawQuery))
	return chunkByCost(words, bucket, func(w string) int {
		// [?&]name=value
		return 1 + len(w) + 1 + valueLen
	})
}

func (f *URLFinder) Probe(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict {
	req := info.Request.Clone()
	canary, _ := info.Canary(models.SurfaceURL)
	addQueryParams(req, names, canary.Value())

	resp := f.client.DoWithRetry(ctx, req)
	if resp == nil {
		return f.retryVerdict(info)
	}

	reasons := f.analyzer.Analyze(info, resp, models.SurfaceURL)
	return f.verdict(info, models.SurfaceURL, names, resp, reasons)
}

// preexistingSize is what the original request already spends on this
// surface: its query string.
func (f *URLFinder) preexistingSize(info *models.RequestInfo) int {
	return len(info.Request.URL.RawQuery)
}

// addRandomParam pads the query with one parameter of roughly the given
// byte size for bucket sizing.
func (f *URLFinder) addRandomParam(req *models.Request, size int) {
	// [?&] and [=] take two of the budgeted bytes.
	if size < 3 {
		size = 3
	}
	req.AppendQuery(models.RandomToken(size - 2))
}

// addQueryParams appends name=value pairs with pre-encoded values.
func addQueryParams(req *models.Request, names []string, value string) {
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+value)
	}
	req.AppendQuery(strings.Join(pairs, "&"))
}

func longestWord(words []string) int {
	longest := 0
	for _, w := range words {
		if len(w) > longest {
			longest = len(w)
		}
	}
	return longest
}
