package finder

import (
	"context"
	"strings"

	"github.com/aleister1102/paramseeker/internal/models"
)

// bodylessMethods never carry a request body worth probing.
var bodylessMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"OPTIONS": true,
	"TRACE":   true,
	"CONNECT": true,
}

// BodyFormFinder probes candidate names as form-encoded body fields.
type BodyFormFinder struct {
	base
	wordlist   []string
	maxNameLen int
	minChunk   int
}

// NewBodyFormFinder builds the form-body finder over the params wordlist.
func NewBodyFormFinder(deps Deps, wordlist []string) *BodyFormFinder {
	maxNameLen := longestWord(wordlist)
	return &BodyFormFinder{
		base:       newBase(deps, "body-form-finder"),
		wordlist:   wordlist,
		maxNameLen: maxNameLen,
		// [&]name=value
		minChunk: 1 + maxNameLen + 1 + maxParamValueLen,
	}
}

func (f *BodyFormFinder) Surface() models.Surface {
	return models.SurfaceBodyForm
}

// IsSearchable accepts requests whose method can carry a body and whose body,
// when present, parses as form-encoded pairs.
func (f *BodyFormFinder) IsSearchable(info *models.RequestInfo) bool {
	if bodylessMethods[info.Request.Method] {
		return false
	}
	if info.Request.Body != "" && len(formPairs(info.Request.Body)) == 0 {
		return false
	}
	return len(f.wordlist) > 0
}

func (f *BodyFormFinder) SetupCanary(info *models.RequestInfo) {
	setupCanary(info, models.SurfaceBodyForm, maxParamValueLen, encodedBreaker)
}

func (f *BodyFormFinder) DetermineBucketSize(ctx context.Context, info *models.RequestInfo) {
	if !f.cache.Begin(info.Netloc, models.SurfaceBodyForm) {
		return
	}
	if f.cfg.DisableDynamicParams {
		f.cache.Store(info.Netloc, models.SurfaceBodyForm, f.cfg.ParamBucket)
		return
	}
	size, ok := f.controller.OptimalSize(ctx, info, f.minChunk, f.addRandomParam)
	if !ok {
		f.cache.Store(info.Netloc, models.SurfaceBodyForm, 0)
		return
	}
	f.cache.Store(info.Netloc, models.SurfaceBodyForm, size+f.preexistingSize(info))
}

func (f *BodyFormFinder) SetBucketSize(info *models.RequestInfo) {
	size, done := f.cache.Get(info.Netloc, models.SurfaceBodyForm)
	if !done || size == 0 {
		info.SetBucket(models.SurfaceBodyForm, 0)
		return
	}
	info.SetBucket(models.SurfaceBodyForm, size-f.preexistingSize(info))
}

func (f *BodyFormFinder) WordChunks(info *models.RequestInfo) [][]string {
	bucket := info.Bucket(models.SurfaceBodyForm)
	if bucket <= 0 {
		return nil
	}
	canary, _ := info.Canary(models.SurfaceBodyForm)
	valueLen := len(canary.Value())

	existing := make(map[string]bool)
	for _, pair := range formPairs(info.Request.Body) {
		existing[pair[0]] = true
	}

	words := mergeCandidates(f.wordlist, info.AdditionalNames, existing)
	return chunkByCost(words, bucket, func(w string) int {
		return 1 + len(w) + 1 + valueLen
	})
}

func (f *BodyFormFinder) Probe(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict {
	req := info.Request.Clone()
	canary, _ := info.Canary(models.SurfaceBodyForm)
	addFormParams(req, names, canary.Value())

	resp := f.client.DoWithRetry(ctx, req)
	if resp == nil {
		return f.retryVerdict(info)
	}

	reasons := f.analyzer.Analyze(info, resp, models.SurfaceBodyForm)
	return f.verdict(info, models.SurfaceBodyForm, names, resp, reasons)
}

func (f *BodyFormFinder) preexistingSize(info *models.RequestInfo) int {
	return len(info.Request.Body)
}

func (f *BodyFormFinder) addRandomParam(req *models.Request, size int) {
	if size < 2 {
		size = 2
	}
	appendFormBody(req, models.RandomToken(size-1)+"=")
}

// addFormParams appends name=value pairs to the form body and makes sure the
// content type matches what the body now is.
func addFormParams(req *models.Request, names []string, value string) {
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+value)
	}
	appendFormBody(req, strings.Join(pairs, "&"))
	if req.Headers.Get("Content-Type") == "" {
		req.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
	}
}

func appendFormBody(req *models.Request, fragment string) {
	if fragment == "" {
		return
	}
	if req.Body == "" {
		req.Body = fragment
	} else {
		req.Body += "&" + fragment
	}
}
