package models

// Canary is the value injected for every candidate name of one surface: a
// random alphanumeric prefix plus a fixed breaker of quote/shell
// metacharacters that tends to trip server-side echo or error paths.
type Canary struct {
	Base    string
	Breaker string
}

// Value returns the full injected value.
func (c Canary) Value() string {
	return c.Base + c.Breaker
}

// RequestInfo is the unit of work for the discovery engine: one prepared
// target request together with its baseline response and the per-surface
// probing state derived from it.
type RequestInfo struct {
	Request *Request

	// OriginURL and Netloc are frozen from the prepared request before any
	// probe mutates a copy of it.
	OriginURL string
	Netloc    string

	// Baseline is the untouched response to the request as given. Requests
	// without a baseline are filtered out before probing starts.
	Baseline *Response

	// BaselineTagCount is the number of HTML tags in the baseline body, 0
	// when the body is not HTML.
	BaselineTagCount int

	// AdditionalNames holds candidate names contributed by miners for this
	// request's host.
	AdditionalNames []string

	canaries map[Surface]Canary
	buckets  map[Surface]int
}

// NewRequestInfo wraps a prepared request. Canaries and buckets are populated
// later by the finders and the bucket controller.
func NewRequestInfo(req *Request) *RequestInfo {
	return &RequestInfo{
		Request:   req,
		OriginURL: req.URL.String(),
		Netloc:    req.URL.Host,
		canaries:  make(map[Surface]Canary),
		buckets:   make(map[Surface]int),
	}
}

// SetBaseline records the reference response and its HTML tag count.
func (ri *RequestInfo) SetBaseline(resp *Response, tagCount int) {
	ri.Baseline = resp
	ri.BaselineTagCount = tagCount
}

// Canary returns the canary prepared for the surface; ok is false until
// SetCanary ran for it.
func (ri *RequestInfo) Canary(surface Surface) (Canary, bool) {
	c, ok := ri.canaries[surface]
	return c, ok
}

// SetCanary stores the canary for a surface. Draws are independent per
// surface so reflections cannot be attributed to the wrong one.
func (ri *RequestInfo) SetCanary(surface Surface, c Canary) {
	ri.canaries[surface] = c
}

// Bucket returns the per-request payload budget of the surface. Zero means
// the bucket could not be determined and the surface must be skipped.
func (ri *RequestInfo) Bucket(surface Surface) int {
	return ri.buckets[surface]
}

// SetBucket stores the per-request payload budget of the surface.
func (ri *RequestInfo) SetBucket(surface Surface, size int) {
	if size < 0 {
		size = 0
	}
	ri.buckets[surface] = size
}
