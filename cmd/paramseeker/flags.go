package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// headerList collects repeatable -H flags.
type headerList []string

func (h *headerList) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerList) Set(value string) error {
	*h = append(*h, value)
	return nil
}

// AppFlags mirrors the command line surface.
type AppFlags struct {
	URL             string
	Method          string
	Body            string
	RawRequests     string
	Headers         []string
	FollowRedirects bool
	DisableMining   bool
	Output          string
	OutputFormat    string
	Verbosity       int
	ConfigFile      string

	FindAll     bool
	FindHeaders bool
	FindParams  bool
	FindCookies bool

	HeaderWordlists string
	ParamWordlists  string
	CookieWordlists string

	HeaderBucket int
	ParamBucket  int
	CookieBucket int

	DisableDynamicHeaders bool
	DisableDynamicParams  bool
	DisableDynamicCookies bool

	Proxy   string
	Delay   float64
	Threads int
	Retry   int
	Timeout int
}

// ParseFlags reads the command line, exiting with status 1 on invalid
// combinations.
func ParseFlags() AppFlags {
	var flags AppFlags
	var headers headerList

	flag.StringVar(&flags.URL, "u", "", "Target URL or path to a file with one URL per line")
	flag.StringVar(&flags.Method, "m", "GET", "HTTP method for targets given via -u")
	flag.StringVar(&flags.Body, "d", "", "Request body for non-idempotent methods without one")
	flag.StringVar(&flags.RawRequests, "r", "", "Raw HTTP request file or directory (Burp XML exports are recognized)")
	flag.Var(&headers, "H", "Additional header 'Name: value' (repeatable)")
	flag.BoolVar(&flags.FollowRedirects, "follow", false, "Follow redirects")
	flag.BoolVar(&flags.DisableMining, "dm", false, "Disable parameter mining from page content")
	flag.StringVar(&flags.Output, "o", "", "Write the report to this file instead of stdout")
	flag.StringVar(&flags.OutputFormat, "of", "light", "Output format: table, json or light")
	flag.IntVar(&flags.Verbosity, "v", 2, "Verbosity 0..3")
	flag.StringVar(&flags.ConfigFile, "gc", "", "Path to a YAML/JSON config file")

	flag.BoolVar(&flags.FindAll, "fa", false, "Search all surfaces")
	flag.BoolVar(&flags.FindHeaders, "fh", false, "Search request headers")
	flag.BoolVar(&flags.FindParams, "fp", false, "Search URL, form and JSON parameters")
	flag.BoolVar(&flags.FindCookies, "fc", false, "Search cookies")

	flag.StringVar(&flags.HeaderWordlists, "hw", "", "Comma-separated header wordlists")
	flag.StringVar(&flags.ParamWordlists, "pw", "", "Comma-separated parameter wordlists")
	flag.StringVar(&flags.CookieWordlists, "cw", "", "Comma-separated cookie wordlists")

	flag.IntVar(&flags.HeaderBucket, "hb", 2048, "Fixed header bucket (count) when dynamic sizing is off")
	flag.IntVar(&flags.ParamBucket, "pb", 2048, "Fixed parameter bucket (bytes) when dynamic sizing is off")
	flag.IntVar(&flags.CookieBucket, "cb", 2048, "Fixed cookie bucket (bytes) when dynamic sizing is off")

	flag.BoolVar(&flags.DisableDynamicHeaders, "ddh", false, "Disable dynamic header bucket sizing")
	flag.BoolVar(&flags.DisableDynamicParams, "ddp", false, "Disable dynamic parameter bucket sizing")
	flag.BoolVar(&flags.DisableDynamicCookies, "ddc", false, "Disable dynamic cookie bucket sizing")

	flag.StringVar(&flags.Proxy, "proxy", "", "HTTP or SOCKS proxy URL")
	flag.Float64Var(&flags.Delay, "p", 0, "Per-worker delay in seconds before each probe")
	flag.IntVar(&flags.Threads, "t", 7, "Worker count")
	flag.IntVar(&flags.Retry, "retry", 2, "Total send attempts per probe")
	flag.IntVar(&flags.Timeout, "timeout", 13, "Per-attempt timeout in seconds")

	flag.Parse()
	flags.Headers = headers

	if err := validateFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
	return flags
}

// validateFlags rejects combinations the engine cannot run with.
func validateFlags(flags AppFlags) error {
	if flags.URL == "" && flags.RawRequests == "" {
		return fmt.Errorf("one of -u or -r is required")
	}

	if flags.URL != "" {
		if _, err := os.Stat(flags.URL); err != nil {
			u, parseErr := url.Parse(flags.URL)
			if parseErr != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("-u is neither an existing file nor a valid URL")
			}
		}
	}

	if flags.RawRequests != "" {
		if _, err := os.Stat(flags.RawRequests); err != nil {
			return fmt.Errorf("-r path does not exist")
		}
	}

	if !flags.FindAll && !flags.FindHeaders && !flags.FindParams && !flags.FindCookies {
		return fmt.Errorf("no scan type selected: use -fa, -fh, -fp or -fc")
	}

	switch flags.OutputFormat {
	case "table", "json", "light":
	default:
		return fmt.Errorf("unknown output format %q", flags.OutputFormat)
	}

	if flags.Retry <= 0 {
		return fmt.Errorf("-retry must be greater than 0")
	}
	if flags.Timeout <= 0 {
		return fmt.Errorf("-timeout must be greater than 0")
	}
	if flags.Threads <= 0 {
		return fmt.Errorf("-t must be greater than 0")
	}
	if flags.Delay < 0 {
		return fmt.Errorf("-p must not be negative")
	}
	return nil
}
