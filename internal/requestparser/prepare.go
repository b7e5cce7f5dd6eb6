package requestparser

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aleister1102/paramseeker/internal/httpclient"
	"github.com/aleister1102/paramseeker/internal/models"
)

// userAgents is the pool a prepared URL target draws its User-Agent from.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 Edg/119.0.2151.97",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
}

// Options bundles the inputs that shape request preparation.
type Options struct {
	// URL is a single target URL or the path of a file with one URL per line.
	URL string
	// Method applies to targets given via URL.
	Method string
	// RawPath is a raw request file or a directory of them.
	RawPath string
	// Body replaces an empty body on non-idempotent requests.
	Body string
	// Headers are extra "Name: value" lines applied to every request.
	Headers []string
	// Threads bounds concurrent scheme detection.
	Threads int
}

// Prepare turns the configured inputs into RequestInfos with resolved
// schemes. The second return value lists targets that could not be prepared.
func Prepare(ctx context.Context, client *httpclient.Client, opts Options, logger zerolog.Logger) ([]*models.RequestInfo, []string, error) {
	raws, err := collectRaw(opts)
	if err != nil {
		return nil, nil, err
	}
	if len(raws) == 0 {
		return nil, nil, fmt.Errorf("no target requests found")
	}

	applyBody(raws, opts.Body)
	extra, err := parseHeaderFlags(opts.Headers)
	if err != nil {
		return nil, nil, err
	}

	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	prepared := make([]*models.Request, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			req, err := Resolve(gctx, client, raw)
			if err != nil {
				logger.Debug().Err(err).Str("target", raw.Target).Msg("Scheme detection failed")
				return nil
			}
			prepared[i] = req
			return nil
		})
	}
	_ = g.Wait()

	var infos []*models.RequestInfo
	var failed []string
	for i, req := range prepared {
		if req == nil {
			failed = append(failed, raws[i].Target)
			continue
		}
		for name, value := range extra {
			req.Headers.Set(name, value)
		}
		infos = append(infos, models.NewRequestInfo(req))
	}
	return infos, failed, nil
}

// collectRaw gathers raw requests from the -u and -r inputs.
func collectRaw(opts Options) ([]*RawRequest, error) {
	var raws []*RawRequest

	if opts.URL != "" {
		fromURLs, err := fromURLInput(opts.URL, opts.Method)
		if err != nil {
			return nil, err
		}
		raws = append(raws, fromURLs...)
	}

	if opts.RawPath != "" {
		fromFiles, err := fromRawPath(opts.RawPath)
		if err != nil {
			return nil, err
		}
		raws = append(raws, fromFiles...)
	}

	return raws, nil
}

// fromURLInput accepts a literal URL or a file of URLs.
func fromURLInput(input, method string) ([]*RawRequest, error) {
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		return fromURLFile(input, method)
	}
	raw, err := fromURL(input, method)
	if err != nil {
		return nil, err
	}
	return []*RawRequest{raw}, nil
}

func fromURLFile(path, method string) ([]*RawRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer file.Close()

	var raws []*RawRequest
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		raw, err := fromURL(line, method)
		if err != nil {
			continue
		}
		raws = append(raws, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return raws, nil
}

// fromURL builds a raw request with a browser-like default header set. The
// scheme given by the user is dropped: Resolve re-detects it.
func fromURL(rawURL, method string) (*RawRequest, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid target URL %q", rawURL)
	}

	headers := make(http.Header)
	headers.Set("Host", u.Host)
	headers.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US,en;q=0.5")
	headers.Set("Accept-Encoding", "gzip, deflate")

	target := u.Host + u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	return &RawRequest{
		Method:  strings.ToUpper(method),
		Target:  target,
		Headers: headers,
	}, nil
}

// fromRawPath loads raw request dumps (or Burp exports) from a file or every
// file under a directory.
func fromRawPath(path string) ([]*RawRequest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("raw request path does not exist: %w", err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk raw request directory: %w", err)
		}
	} else {
		files = []string{path}
	}

	var raws []*RawRequest
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read raw request file %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if IsBurpExport(data) {
			fromBurp, err := ParseBurpXML(data)
			if err != nil {
				return nil, err
			}
			raws = append(raws, fromBurp...)
			continue
		}
		raw, err := ParseRaw(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse raw request file %s: %w", file, err)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// applyBody installs the -d body on requests whose method can act on one and
// whose body is still empty.
func applyBody(raws []*RawRequest, body string) {
	if body == "" {
		return
	}
	for _, raw := range raws {
		switch raw.Method {
		case "GET", "HEAD", "OPTIONS", "TRACE", "CONNECT":
			continue
		}
		if raw.Body != "" {
			continue
		}
		raw.Body = body
		raw.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
	}
}

// parseHeaderFlags splits repeated -H "Name: value" arguments.
func parseHeaderFlags(flags []string) (map[string]string, error) {
	headers := make(map[string]string, len(flags))
	for _, flag := range flags {
		parts := headerSeparatorRe.Split(strings.TrimSpace(flag), 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("malformed -H header %q", flag)
		}
		headers[parts[0]] = parts[1]
	}
	return headers, nil
}
