// Package httpclient sends prepared probe requests. It owns retries, the
// inter-probe delay and transport construction; it never interprets status
// codes, that is the callers' job.
package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/aleister1102/paramseeker/internal/config"
	"github.com/aleister1102/paramseeker/internal/models"
)

// Client wraps net/http.Client with the probing contract: pooled connections,
// optional proxy, configurable redirect policy, and no cookie jar so probe
// cookies never leak between requests.
type Client struct {
	client *http.Client
	cfg    config.HTTPClientConfig
	logger zerolog.Logger
}

// New creates a Client from the given configuration.
func New(cfg config.HTTPClientConfig, logger zerolog.Logger) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}

	if cfg.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", cfg.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout(),
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Client{client: client, cfg: cfg, logger: logger}, nil
}

// Do sends the request once and fully reads the response. Any HTTP status is
// a success at this layer; only transport failures return an error.
func (c *Client) Do(ctx context.Context, req *models.Request) (*models.Response, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}

	for name, values := range req.Headers {
		// net/http derives these from the body and connection state.
		if name == "Content-Length" || name == "Connection" {
			continue
		}
		if name == "Host" {
			if len(values) > 0 {
				httpReq.Host = values[0]
			}
			continue
		}
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &models.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       bodyBytes,
		Elapsed:    time.Since(start),
	}, nil
}

// DoWithRetry applies the probing retry contract: up to Retry attempts with
// the configured delay slept before each one. It returns nil after the last
// transport failure; callers turn that into a RETRY verdict.
func (c *Client) DoWithRetry(ctx context.Context, req *models.Request) *models.Response {
	for attempt := 0; attempt < c.cfg.Retry; attempt++ {
		if err := c.sleep(ctx, c.cfg.Delay()); err != nil {
			return nil
		}

		resp, err := c.Do(ctx, req)
		if err == nil {
			return resp
		}

		c.logger.Debug().
			Err(err).
			Int("attempt", attempt+1).
			Int("retry", c.cfg.Retry).
			Str("url", req.URL.String()).
			Msg("Probe attempt failed")

		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// sleep waits for d or until the context is cancelled.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddCacheBuster appends a random key=value query pair so intermediate caches
// cannot serve a stale response for header-surface probes.
func AddCacheBuster(req *models.Request) {
	req.AppendQuery(models.RandomToken(10) + "=" + models.RandomToken(10))
}
