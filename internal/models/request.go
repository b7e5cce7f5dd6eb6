package models

import (
	"net/http"
	"net/url"
)

// Request is a prepared HTTP request owned by the engine. Cookies live in the
// Cookie header, the body is kept as a raw string so finders can append to it
// without re-encoding what the user supplied.
type Request struct {
	Method  string
	URL     *url.URL
	Headers http.Header
	Body    string
}

// NewRequest builds a Request from its parts.
func NewRequest(method string, u *url.URL, headers http.Header, body string) *Request {
	if headers == nil {
		headers = make(http.Header)
	}
	return &Request{Method: method, URL: u, Headers: headers, Body: body}
}

// Clone returns a deep copy safe to mutate for a single probe.
func (r *Request) Clone() *Request {
	u := *r.URL
	return &Request{
		Method:  r.Method,
		URL:     &u,
		Headers: r.Headers.Clone(),
		Body:    r.Body,
	}
}

// Host returns the host:port authority of the request URL.
func (r *Request) Host() string {
	return r.URL.Host
}

// AppendQuery appends an already-encoded query fragment to the URL.
func (r *Request) AppendQuery(fragment string) {
	if fragment == "" {
		return
	}
	if r.URL.RawQuery == "" {
		r.URL.RawQuery = fragment
	} else {
		r.URL.RawQuery += "&" + fragment
	}
}

// Cookie returns the raw Cookie header value.
func (r *Request) Cookie() string {
	return r.Headers.Get("Cookie")
}

// AppendCookies appends an already-formatted "name=value; ..." string to the
// Cookie header, creating it when absent.
func (r *Request) AppendCookies(pairs string) {
	if pairs == "" {
		return
	}
	if existing := r.Headers.Get("Cookie"); existing != "" {
		r.Headers.Set("Cookie", existing+"; "+pairs)
	} else {
		r.Headers.Set("Cookie", pairs)
	}
}
