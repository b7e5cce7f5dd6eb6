package finder

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aleister1102/paramseeker/internal/models"
)

// jsonPairOverhead approximates the serialized cost of one inserted
// `, "name": "value"` member beyond the name and value bytes, including the
// escaping the breaker characters pick up.
const jsonPairOverhead = 12

// BodyJSONFinder probes candidate names as top-level keys of a JSON object
// body.
type BodyJSONFinder struct {
	base
	wordlist   []string
	maxNameLen int
	minChunk   int
}

// NewBodyJSONFinder builds the JSON-body finder over the params wordlist.
func NewBodyJSONFinder(deps Deps, wordlist []string) *BodyJSONFinder {
	maxNameLen := longestWord(wordlist)
	return &BodyJSONFinder{
		base:       newBase(deps, "body-json-finder"),
		wordlist:   wordlist,
		maxNameLen: maxNameLen,
		minChunk:   jsonPairOverhead + maxNameLen + maxParamValueLen,
	}
}

func (f *BodyJSONFinder) Surface() models.Surface {
	return models.SurfaceBodyJSON
}

// IsSearchable requires the body to parse as a JSON object; arrays and
// scalars have no keys to extend.
func (f *BodyJSONFinder) IsSearchable(info *models.RequestInfo) bool {
	if bodylessMethods[info.Request.Method] {
		return false
	}
	if jsonObject(info.Request.Body) == nil {
		return false
	}
	return len(f.wordlist) > 0
}

func (f *BodyJSONFinder) SetupCanary(info *models.RequestInfo) {
	setupCanary(info, models.SurfaceBodyJSON, maxParamValueLen, breakerChars)
}

func (f *BodyJSONFinder) DetermineBucketSize(ctx context.Context, info *models.RequestInfo) {
	if !f.cache.Begin(info.Netloc, models.SurfaceBodyJSON) {
		return
	}
	if f.cfg.DisableDynamicParams {
		f.cache.Store(info.Netloc, models.SurfaceBodyJSON, f.cfg.ParamBucket)
		return
	}
	size, ok := f.controller.OptimalSize(ctx, info, f.minChunk, f.addRandomParam)
	if !ok {
		f.cache.Store(info.Netloc, models.SurfaceBodyJSON, 0)
		return
	}
	f.cache.Store(info.Netloc, models.SurfaceBodyJSON, size+f.preexistingSize(info))
}

func (f *BodyJSONFinder) SetBucketSize(info *models.RequestInfo) {
	size, done := f.cache.Get(info.Netloc, models.SurfaceBodyJSON)
	if !done || size == 0 {
		info.SetBucket(models.SurfaceBodyJSON, 0)
		return
	}
	if size < f.minChunk {
		size = f.minChunk
	}
	info.SetBucket(models.SurfaceBodyJSON, size-f.preexistingSize(info))
}

func (f *BodyJSONFinder) WordChunks(info *models.RequestInfo) [][]string {
	bucket := info.Bucket(models.SurfaceBodyJSON)
	if bucket <= 0 {
		return nil
	}
	canary, _ := info.Canary(models.SurfaceBodyJSON)
	valueLen := len(canary.Value())

	existing := make(map[string]bool)
	for key := range jsonObject(info.Request.Body) {
		existing[key] = true
	}

	words := mergeCandidates(f.wordlist, info.AdditionalNames, existing)
	return chunkByCost(words, bucket, func(w string) int {
		return jsonPairOverhead + len(w) + valueLen
	})
}

func (f *BodyJSONFinder) Probe(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict {
	req := info.Request.Clone()
	canary, _ := info.Canary(models.SurfaceBodyJSON)
	if err := addJSONParams(req, names, canary.Value()); err != nil {
		f.logger.Error().Err(err).Str("url", info.OriginURL).Msg("Failed to extend JSON body")
		return models.Discard()
	}

	resp := f.client.DoWithRetry(ctx, req)
	if resp == nil {
		return f.retryVerdict(info)
	}

	reasons := f.analyzer.Analyze(info, resp, models.SurfaceBodyJSON)
	return f.verdict(info, models.SurfaceBodyJSON, names, resp, reasons)
}

func (f *BodyJSONFinder) preexistingSize(info *models.RequestInfo) int {
	return len(info.Request.Body)
}

func (f *BodyJSONFinder) addRandomParam(req *models.Request, size int) {
	if size <= jsonPairOverhead {
		size = jsonPairOverhead + 1
	}
	// Errors cannot happen here: the surface was vetted by IsSearchable.
	_ = addJSONParams(req, []string{models.RandomToken(size - jsonPairOverhead)}, "")
}

// addJSONParams inserts new top-level keys, leaving existing ones untouched.
func addJSONParams(req *models.Request, names []string, value string) error {
	obj := jsonObject(req.Body)
	if obj == nil {
		return errors.New("request body is not a JSON object")
	}
	for _, name := range names {
		if _, exists := obj[name]; exists {
			continue
		}
		obj[name] = value
	}
	encoded, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	req.Body = string(encoded)
	req.Headers.Set("Content-Type", "application/json")
	return nil
}

// jsonObject decodes the body as a JSON object, returning nil for anything
// else.
func jsonObject(body string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil
	}
	return obj
}
