package requestparser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// Resolve turns a raw request into a prepared one by detecting its scheme: an
// HTTPS HEAD is attempted first, and a TLS-level failure downgrades to HTTP.
// Hosts that answer neither way yield an error and the target is dropped.
func Resolve(ctx context.Context, client *httpclient.Client, raw *RawRequest) (*models.Request, error) {
	probe, err := buildRequest("https", raw)
	if err != nil {
		return nil, err
	}
	head := probe.Clone()
	head.Method = "HEAD"
	head.Body = ""

	scheme := "https"
	if _, err := client.Do(ctx, head); err != nil {
		if !isTLSFallbackError(err) {
			return nil, fmt.Errorf("target unreachable: %w", err)
		}
		scheme = "http"
	}

	return buildRequest(scheme, raw)
}

// buildRequest assembles the prepared request for a scheme.
func buildRequest(scheme string, raw *RawRequest) (*models.Request, error) {
	u, err := url.Parse(scheme + "://" + strings.TrimLeft(raw.Target, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid request target %q: %w", raw.Target, err)
	}
	return models.NewRequest(raw.Method, u, raw.Headers.Clone(), raw.Body), nil
}

// isTLSFallbackError recognizes failures that mean "the port speaks plain
// HTTP", as opposed to the host being down.
func isTLSFallbackError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "server gave HTTP response to HTTPS client") ||
		strings.Contains(msg, "tls:") ||
		strings.Contains(msg, "TLS handshake")
}
