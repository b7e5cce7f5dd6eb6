package finder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/paramseeker/internal/analyzer"
	"github.com/aleister1102/paramseeker/internal/bucket"
	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

func testDeps(t *testing.T, cfg config.FinderConfig) Deps {
	t.Helper()
	client, err := httpclient.New(config.HTTPClientConfig{Retry: 2, TimeoutSeconds: 5}, zerolog.Nop())
	require.NoError(t, err)
	return Deps{
		Client:     client,
		Analyzer:   analyzer.New(zerolog.Nop()),
		Cache:      bucket.NewCache(),
		Controller: bucket.NewController(client, zerolog.Nop()),
		Config:     cfg,
		Logger:     zerolog.Nop(),
	}
}

func requestInfo(t *testing.T, method, rawURL, body string) *models.RequestInfo {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	info := models.NewRequestInfo(models.NewRequest(method, u, nil, body))
	// Matches what httptest sends for a plain Write([]byte("hello")).
	info.SetBaseline(&models.Response{
		StatusCode: 200,
		Headers: http.Header{
			"Content-Type":   []string{"text/plain; charset=utf-8"},
			"Content-Length": []string{"5"},
		},
		Body: []byte("hello"),
	}, 0)
	return info
}

func TestSetupCanary_BreakerAndLength(t *testing.T) {
	cfg := config.FinderConfig{Threads: 1, ParamBucket: 2048, HeaderBucket: 64, CookieBucket: 2048}
	deps := testDeps(t, cfg)

	tests := []struct {
		name        string
		finder      Finder
		surface     models.Surface
		breaker     string
		maxValueLen int
	}{
		{"url", NewURLFinder(deps, []string{"debug"}), models.SurfaceURL, encodedBreaker, maxParamValueLen},
		{"body form", NewBodyFormFinder(deps, []string{"debug"}), models.SurfaceBodyForm, encodedBreaker, maxParamValueLen},
		{"body json", NewBodyJSONFinder(deps, []string{"debug"}), models.SurfaceBodyJSON, breakerChars, maxParamValueLen},
		{"header", NewHeaderFinder(deps, []string{"X-Debug"}), models.SurfaceHeader, breakerChars, maxHeaderValueLen},
		{"cookie", NewCookieFinder(deps, []string{"session_debug"}), models.SurfaceCookie, breakerChars, maxCookieValueLen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := requestInfo(t, "POST", "http://example.com/", `{"a":1}`)
			tt.finder.SetupCanary(info)

			canary, ok := info.Canary(tt.surface)
			require.True(t, ok)
			assert.Equal(t, tt.breaker, canary.Breaker, "canary suffix is the surface's fixed breaker")
			assert.True(t, strings.HasSuffix(canary.Value(), tt.breaker))
			assert.LessOrEqual(t, len(canary.Value()), tt.maxValueLen)
			assert.NotEmpty(t, canary.Base)

			// A second setup keeps the existing draw.
			before := canary
			tt.finder.SetupCanary(info)
			after, _ := info.Canary(tt.surface)
			assert.Equal(t, before, after)
		})
	}
}

func TestSetupCanary_IndependentPerSurface(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	info := requestInfo(t, "POST", "http://example.com/", "")

	NewURLFinder(deps, []string{"debug"}).SetupCanary(info)
	NewCookieFinder(deps, []string{"debug"}).SetupCanary(info)

	urlCanary, _ := info.Canary(models.SurfaceURL)
	cookieCanary, _ := info.Canary(models.SurfaceCookie)
	assert.NotEqual(t, urlCanary.Base, cookieCanary.Base)
}

func TestURLFinder_WordChunks(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	wordlist := []string{"alpha", "beta", "gamma", "delta", "existing"}
	f := NewURLFinder(deps, wordlist)

	info := requestInfo(t, "GET", "http://example.com/page?existing=1", "")
	f.SetupCanary(info)
	canary, _ := info.Canary(models.SurfaceURL)

	// Room for exactly two words of cost 1+len(w)+1+len(canary) each.
	cost := 1 + 5 + 1 + len(canary.Value())
	info.SetBucket(models.SurfaceURL, 2*cost)

	chunks := f.WordChunks(info)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"alpha", "beta"}, chunks[0])
	assert.Equal(t, []string{"gamma", "delta"}, chunks[1])

	// Conservation: every non-preexisting word lands in exactly one chunk.
	seen := make(map[string]int)
	for _, chunk := range chunks {
		for _, w := range chunk {
			seen[w]++
		}
	}
	assert.NotContains(t, seen, "existing", "names already on the surface are not probed")
	for _, w := range []string{"alpha", "beta", "gamma", "delta"} {
		assert.Equal(t, 1, seen[w])
	}
}

func TestURLFinder_ProbeReflectionHit(t *testing.T) {
	// The server echoes the debug parameter value, the baseline said hello.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.URL.Query().Get("debug"); v != "" {
			w.Write([]byte("hello " + v))
			return
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewURLFinder(deps, []string{"debug", "foo"})

	info := requestInfo(t, "GET", server.URL+"/echo?x=1", "")
	f.SetupCanary(info)

	t.Run("chunk with the secret splits", func(t *testing.T) {
		verdict := f.Probe(context.Background(), info, []string{"debug", "foo"})
		assert.Equal(t, models.VerdictSplit, verdict.Kind)
	})

	t.Run("isolated secret hits with reflection reason", func(t *testing.T) {
		verdict := f.Probe(context.Background(), info, []string{"debug"})
		require.Equal(t, models.VerdictHit, verdict.Kind)
		require.NotNil(t, verdict.Finding)
		assert.Equal(t, "debug", verdict.Finding.Name)
		assert.Equal(t, models.SurfaceURL, verdict.Finding.Surface)

		var reflection *models.Reason
		for i := range verdict.Finding.Reasons {
			if verdict.Finding.Reasons[i].Kind == models.ReasonParamValueReflection {
				reflection = &verdict.Finding.Reasons[i]
			}
		}
		require.NotNil(t, reflection)
		assert.Equal(t, "1 (0)", reflection.Value)
	})

	t.Run("chunk without the secret discards", func(t *testing.T) {
		verdict := f.Probe(context.Background(), info, []string{"foo"})
		assert.Equal(t, models.VerdictDiscard, verdict.Kind)
	})
}

func TestURLFinder_ProbeTransportFailureRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewURLFinder(deps, []string{"debug"})

	info := requestInfo(t, "GET", serverURL+"/", "")
	f.SetupCanary(info)

	verdict := f.Probe(context.Background(), info, []string{"debug"})
	assert.Equal(t, models.VerdictRetry, verdict.Kind)
}

func TestURLFinder_FixedBucket(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1, DisableDynamicParams: true, ParamBucket: 2048})
	f := NewURLFinder(deps, []string{"debug"})

	info := requestInfo(t, "GET", "http://example.com/page?q=12345", "")
	f.DetermineBucketSize(context.Background(), info)
	f.SetBucketSize(info)

	// The per-request bucket subtracts the query the request already carries.
	assert.Equal(t, 2048-len("q=12345"), info.Bucket(models.SurfaceURL))
}

func TestBodyFormFinder_IsSearchable(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewBodyFormFinder(deps, []string{"debug"})

	tests := []struct {
		name       string
		method     string
		body       string
		searchable bool
	}{
		{"post with form body", "POST", "a=1&b=2", true},
		{"post without body", "POST", "", true},
		{"get is bodyless", "GET", "", false},
		{"head is bodyless", "HEAD", "", false},
		{"json body is not a form", "POST", `{"a":1}`, false},
		{"garbage body is not a form", "POST", "no pairs here", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := requestInfo(t, tt.method, "http://example.com/", tt.body)
			assert.Equal(t, tt.searchable, f.IsSearchable(info))
		})
	}
}

func TestBodyFormFinder_ProbeAppendsToBody(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewBodyFormFinder(deps, []string{"debug"})

	info := requestInfo(t, "POST", server.URL+"/", "a=1")
	f.SetupCanary(info)
	canary, _ := info.Canary(models.SurfaceBodyForm)

	verdict := f.Probe(context.Background(), info, []string{"debug"})
	assert.Equal(t, models.VerdictDiscard, verdict.Kind)
	assert.Equal(t, "a=1&debug="+canary.Value(), gotBody)
	assert.Equal(t, "a=1", info.Request.Body, "the original request stays untouched")
}

func TestBodyJSONFinder_IsSearchable(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewBodyJSONFinder(deps, []string{"debug"})

	tests := []struct {
		name       string
		body       string
		searchable bool
	}{
		{"object", `{"a":1}`, true},
		{"array", `[1,2]`, false},
		{"scalar", `5`, false},
		{"string", `"text"`, false},
		{"form body", "a=1&b=2", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := requestInfo(t, "POST", "http://example.com/api", tt.body)
			assert.Equal(t, tt.searchable, f.IsSearchable(info))
		})
	}
}

func TestBodyJSONFinder_ProbeInsertsKeys(t *testing.T) {
	// Discovery of an accepted JSON key: the server flips its answer when the
	// admin key is present.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(buf), `"admin"`) {
			w.Write([]byte(`{"admin":true}`))
			return
		}
		w.Write([]byte(`{"a":1}`))
	}))
	defer server.Close()

	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewBodyJSONFinder(deps, []string{"admin", "foo"})

	info := requestInfo(t, "POST", server.URL+"/api", `{"a":1}`)
	info.SetBaseline(&models.Response{
		StatusCode: 200,
		Headers:    http.Header{"Content-Type": []string{"application/json"}, "Content-Length": []string{"7"}},
		Body:       []byte(`{"a":1}`),
	}, 0)
	f.SetupCanary(info)

	verdict := f.Probe(context.Background(), info, []string{"admin"})
	require.Equal(t, models.VerdictHit, verdict.Kind)
	assert.Equal(t, "admin", verdict.Finding.Name)
	assert.Equal(t, models.SurfaceBodyJSON, verdict.Finding.Surface)

	verdict = f.Probe(context.Background(), info, []string{"foo"})
	assert.Equal(t, models.VerdictDiscard, verdict.Kind)
}

func TestBodyJSONFinder_ExistingKeysUntouched(t *testing.T) {
	u, _ := url.Parse("http://example.com/api")
	req := models.NewRequest("POST", u, nil, `{"a":1}`)

	err := addJSONParams(req, []string{"a", "b"}, "val")
	require.NoError(t, err)

	obj := jsonObject(req.Body)
	assert.EqualValues(t, 1, obj["a"], "existing keys keep their values")
	assert.Equal(t, "val", obj["b"])
}

func TestHeaderFinder_WordChunksByCount(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewHeaderFinder(deps, []string{"X-One", "X-Two", "X-Three", "X-Four", "X-Five"})

	info := requestInfo(t, "GET", "http://example.com/", "")
	info.Request.Headers.Set("X-One", "already here")
	info.SetBucket(models.SurfaceHeader, 2)

	chunks := f.WordChunks(info)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"X-Two", "X-Three"}, chunks[0])
	assert.Equal(t, []string{"X-Four", "X-Five"}, chunks[1])
}

func TestHeaderFinder_WordlistFiltered(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewHeaderFinder(deps, []string{"X-Good", "bad header", "also:bad", "X_Fine-2"})

	assert.Equal(t, []string{"X-Good", "X_Fine-2"}, f.wordlist)
}

func TestHeaderFinder_ProbeCarriesCacheBusterAndCanary(t *testing.T) {
	var gotQuery url.Values
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Get("X-Secret")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewHeaderFinder(deps, []string{"X-Secret"})

	info := requestInfo(t, "GET", server.URL+"/", "")
	f.SetupCanary(info)
	canary, _ := info.Canary(models.SurfaceHeader)

	verdict := f.Probe(context.Background(), info, []string{"X-Secret"})
	assert.Equal(t, models.VerdictDiscard, verdict.Kind)
	assert.Equal(t, canary.Value(), gotHeader)
	assert.Len(t, gotQuery, 1, "every header probe must bust intermediate caches")
}

func TestCookieFinder_ProbeAppendsToCookieHeader(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewCookieFinder(deps, []string{"sid", "trace"})

	info := requestInfo(t, "GET", server.URL+"/", "")
	info.Request.Headers.Set("Cookie", "existing=1")
	f.SetupCanary(info)
	canary, _ := info.Canary(models.SurfaceCookie)

	verdict := f.Probe(context.Background(), info, []string{"sid", "trace"})
	assert.Equal(t, models.VerdictDiscard, verdict.Kind)
	assert.Equal(t, "existing=1; sid="+canary.Value()+"; trace="+canary.Value(), gotCookie)
	assert.Equal(t, "existing=1", info.Request.Cookie(), "the original request stays untouched")
}

func TestCookieFinder_NameFiltering(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewCookieFinder(deps, []string{"good", "has=eq", "has,comma", "has;semi", "fine_too"})

	assert.Equal(t, []string{"good", "fine_too"}, f.wordlist)
}

func TestCookieFinder_WordChunksSkipExisting(t *testing.T) {
	deps := testDeps(t, config.FinderConfig{Threads: 1})
	f := NewCookieFinder(deps, []string{"sid", "trace"})

	info := requestInfo(t, "GET", "http://example.com/", "")
	info.Request.Headers.Set("Cookie", "sid=abc; other=1")
	f.SetupCanary(info)
	info.SetBucket(models.SurfaceCookie, 4096)

	chunks := f.WordChunks(info)
	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"trace"}, chunks[0])
}
