// Package requestparser turns user input — URLs, raw HTTP request files,
// Burp exports — into prepared requests for the engine.
package requestparser

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// RawRequest is a parsed request before its scheme is known. Target is the
// authority plus request path as found in the file.
type RawRequest struct {
	Method  string
	Target  string
	Headers http.Header
	Body    string
}

var (
	errEmptyRequest   = errors.New("raw request is empty")
	errMissingHost    = errors.New("raw request has no Host header")
	lineBreakRe       = regexp.MustCompile(`\r?\n`)
	headBodySplitRe   = regexp.MustCompile(`\r?\n\r?\n`)
	headerSeparatorRe = regexp.MustCompile(`\s*:\s*`)
)

// ParseRaw parses a standard HTTP request dump: request line, headers, blank
// line, optional body. The Host header supplies the authority.
func ParseRaw(text string) (*RawRequest, error) {
	text = strings.TrimLeft(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyRequest
	}

	var head, body string
	if loc := headBodySplitRe.FindStringIndex(text); loc != nil {
		head = text[:loc[0]]
		body = strings.TrimSpace(text[loc[1]:])
	} else {
		head = text
	}

	lines := lineBreakRe.Split(head, -1)
	requestLine := strings.Fields(lines[0])
	if len(requestLine) < 2 {
		return nil, fmt.Errorf("malformed request line %q", lines[0])
	}
	method := strings.ToUpper(requestLine[0])
	uri := requestLine[1]

	headers := make(http.Header)
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := headerSeparatorRe.Split(line, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		headers.Add(parts[0], parts[1])
	}

	host := headers.Get("Host")
	if host == "" {
		return nil, errMissingHost
	}

	return &RawRequest{
		Method:  method,
		Target:  host + "/" + strings.TrimLeft(uri, "/"),
		Headers: headers,
		Body:    body,
	}, nil
}

// Serialize renders a raw request back into the on-disk dump format.
// ParseRaw(Serialize(r)) yields an equal request.
func Serialize(r *RawRequest) string {
	var sb strings.Builder

	host := r.Headers.Get("Host")
	uri := strings.TrimPrefix(r.Target, host)
	if uri == "" {
		uri = "/"
	}

	sb.WriteString(r.Method)
	sb.WriteString(" ")
	sb.WriteString(uri)
	sb.WriteString(" HTTP/1.1\r\n")

	for name, values := range r.Headers {
		for _, value := range values {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\r\n")
		}
	}
	sb.WriteString("\r\n")
	sb.WriteString(r.Body)
	return sb.String()
}
