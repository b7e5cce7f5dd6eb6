package models

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

// Response captures everything the analyzer needs from an HTTP exchange. The
// body is fully read so responses can be compared after the connection is
// returned to the pool.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Elapsed    time.Duration
}

// Header returns the first value of the named header, or "".
func (r *Response) Header(name string) string {
	return r.Headers.Get(name)
}

// ContentLength returns the Content-Length header value, defaulting to "0"
// when the server did not send one.
func (r *Response) ContentLength() string {
	if v := r.Headers.Get("Content-Length"); v != "" {
		return v
	}
	return "0"
}

// BodyText returns the response body as a string.
func (r *Response) BodyText() string {
	return string(r.Body)
}

// RawText renders headers plus body as one searchable blob. Servers often
// echo injected header values only in response headers, so reflection checks
// for the header and cookie surfaces scan this instead of the body alone.
func (r *Response) RawText() string {
	var sb strings.Builder
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range r.Headers[name] {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\r\n")
		}
	}
	sb.WriteString("\r\n")
	sb.Write(r.Body)
	return sb.String()
}
