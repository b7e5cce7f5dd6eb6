package finder

import (
	"context"
	"strings"

	"github.com/aleister1102/paramseeker/internal/models"
)

// CookieFinder probes candidate names as cookies appended to the Cookie
// header. Probes are built from a clone of the original request, so canary
// cookies never contaminate the baseline or other probes.
type CookieFinder struct {
	base
	wordlist   []string
	maxNameLen int
	minChunk   int
}

// NewCookieFinder builds the cookie finder over the cookies wordlist.
func NewCookieFinder(deps Deps, wordlist []string) *CookieFinder {
	filtered := make([]string, 0, len(wordlist))
	for _, w := range wordlist {
		if validCookieName(w) {
			filtered = append(filtered, w)
		}
	}
	maxNameLen := longestWord(filtered)
	return &CookieFinder{
		base:       newBase(deps, "cookie-finder"),
		wordlist:   filtered,
		maxNameLen: maxNameLen,
		// "; name=value"
		minChunk: 2 + maxNameLen + 1 + maxCookieValueLen,
	}
}

func (f *CookieFinder) Surface() models.Surface {
	return models.SurfaceCookie
}

func (f *CookieFinder) IsSearchable(info *models.RequestInfo) bool {
	return len(f.wordlist) > 0
}

func (f *CookieFinder) SetupCanary(info *models.RequestInfo) {
	setupCanary(info, models.SurfaceCookie, maxCookieValueLen, breakerChars)
}

func (f *CookieFinder) DetermineBucketSize(ctx context.Context, info *models.RequestInfo) {
	if !f.cache.Begin(info.Netloc, models.SurfaceCookie) {
		return
	}
	if f.cfg.DisableDynamicCookies {
		f.cache.Store(info.Netloc, models.SurfaceCookie, f.cfg.CookieBucket)
		return
	}
	size, ok := f.controller.OptimalSize(ctx, info, f.minChunk, f.addRandomCookie)
	if !ok {
		f.cache.Store(info.Netloc, models.SurfaceCookie, 0)
		return
	}
	f.cache.Store(info.Netloc, models.SurfaceCookie, size+f.preexistingSize(info))
}

func (f *CookieFinder) SetBucketSize(info *models.RequestInfo) {
	size, done := f.cache.Get(info.Netloc, models.SurfaceCookie)
	if !done || size == 0 {
		info.SetBucket(models.SurfaceCookie, 0)
		return
	}
	info.SetBucket(models.SurfaceCookie, size-f.preexistingSize(info))
}

func (f *CookieFinder) WordChunks(info *models.RequestInfo) [][]string {
	bucket := info.Bucket(models.SurfaceCookie)
	if bucket <= 0 {
		return nil
	}
	canary, _ := info.Canary(models.SurfaceCookie)
	valueLen := len(canary.Value())

	words := mergeCandidates(f.wordlist, filterCookieNames(info.AdditionalNames), cookieKeys(info.Request.Cookie()))
	return chunkByCost(words, bucket, func(w string) int {
		// "; name=value"
		return 2 + len(w) + 1 + valueLen
	})
}

func (f *CookieFinder) Probe(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict {
	req := info.Request.Clone()
	canary, _ := info.Canary(models.SurfaceCookie)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+canary.Value())
	}
	req.AppendCookies(strings.Join(pairs, "; "))

	resp := f.client.DoWithRetry(ctx, req)
	if resp == nil {
		return f.retryVerdict(info)
	}

	reasons := f.analyzer.Analyze(info, resp, models.SurfaceCookie)
	return f.verdict(info, models.SurfaceCookie, names, resp, reasons)
}

func (f *CookieFinder) preexistingSize(info *models.RequestInfo) int {
	return len(info.Request.Cookie())
}

func (f *CookieFinder) addRandomCookie(req *models.Request, size int) {
	req.AppendCookies(models.RandomToken(size))
}

// cookieKeys extracts cookie names from a raw Cookie header value.
func cookieKeys(header string) map[string]bool {
	keys := make(map[string]bool)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		if idx := strings.Index(part, "="); idx >= 0 {
			name = part[:idx]
		}
		if name != "" {
			keys[name] = true
		}
	}
	return keys
}

// validCookieName rejects names that would corrupt the Cookie header.
func validCookieName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "=,;")
}

func filterCookieNames(names []string) []string {
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if validCookieName(name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
