package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aleister1102/paramseeker/internal/logger"
)

// OutputFormat names a reporter output style.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatLight OutputFormat = "light"
)

// GlobalConfig contains all configuration sections for the application.
type GlobalConfig struct {
	HTTPClientConfig HTTPClientConfig `json:"http_client_config,omitempty" yaml:"http_client_config,omitempty"`
	FinderConfig     FinderConfig     `json:"finder_config,omitempty" yaml:"finder_config,omitempty"`
	WordlistConfig   WordlistConfig   `json:"wordlist_config,omitempty" yaml:"wordlist_config,omitempty"`
	MinerConfig      MinerConfig      `json:"miner_config,omitempty" yaml:"miner_config,omitempty"`
	ReporterConfig   ReporterConfig   `json:"reporter_config,omitempty" yaml:"reporter_config,omitempty"`
	LogConfig        logger.LogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// HTTPClientConfig configures the probe executor.
type HTTPClientConfig struct {
	// Retry is the total number of send attempts per probe.
	Retry int `json:"retry,omitempty" yaml:"retry,omitempty" validate:"gt=0"`
	// TimeoutSeconds bounds a single attempt.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gt=0"`
	// DelaySeconds is the per-worker pause before each probe.
	DelaySeconds    float64 `json:"delay_seconds,omitempty" yaml:"delay_seconds,omitempty" validate:"gte=0"`
	Proxy           string  `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	FollowRedirects bool    `json:"follow_redirects,omitempty" yaml:"follow_redirects,omitempty"`

	MaxIdleConns        int  `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost int  `json:"max_idle_conns_per_host,omitempty" yaml:"max_idle_conns_per_host,omitempty"`
	EnableHTTP2         bool `json:"enable_http2,omitempty" yaml:"enable_http2,omitempty"`
}

// Timeout returns the per-attempt timeout as a duration.
func (c HTTPClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay returns the inter-probe delay as a duration.
func (c HTTPClientConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// FinderConfig configures which surfaces are searched and how chunks are
// sized when dynamic bucket sizing is off.
type FinderConfig struct {
	Threads int `json:"threads,omitempty" yaml:"threads,omitempty" validate:"gt=0"`

	FindAll     bool `json:"find_all,omitempty" yaml:"find_all,omitempty"`
	FindHeaders bool `json:"find_headers,omitempty" yaml:"find_headers,omitempty"`
	FindParams  bool `json:"find_params,omitempty" yaml:"find_params,omitempty"`
	FindCookies bool `json:"find_cookies,omitempty" yaml:"find_cookies,omitempty"`

	// Fixed buckets used when the matching dynamic sizing is disabled.
	// HeaderBucket is a header count, the others are byte budgets.
	HeaderBucket int `json:"header_bucket,omitempty" yaml:"header_bucket,omitempty" validate:"gt=0"`
	ParamBucket  int `json:"param_bucket,omitempty" yaml:"param_bucket,omitempty" validate:"gt=0"`
	CookieBucket int `json:"cookie_bucket,omitempty" yaml:"cookie_bucket,omitempty" validate:"gt=0"`

	DisableDynamicHeaders bool `json:"disable_dynamic_headers,omitempty" yaml:"disable_dynamic_headers,omitempty"`
	DisableDynamicParams  bool `json:"disable_dynamic_params,omitempty" yaml:"disable_dynamic_params,omitempty"`
	DisableDynamicCookies bool `json:"disable_dynamic_cookies,omitempty" yaml:"disable_dynamic_cookies,omitempty"`
}

// AnySurfaceEnabled reports whether at least one find flag is set.
func (c FinderConfig) AnySurfaceEnabled() bool {
	return c.FindAll || c.FindHeaders || c.FindParams || c.FindCookies
}

// WordlistConfig lists the wordlist files per surface.
type WordlistConfig struct {
	ParamWordlists  []string `json:"param_wordlists,omitempty" yaml:"param_wordlists,omitempty"`
	HeaderWordlists []string `json:"header_wordlists,omitempty" yaml:"header_wordlists,omitempty"`
	CookieWordlists []string `json:"cookie_wordlists,omitempty" yaml:"cookie_wordlists,omitempty"`
}

// MinerConfig configures parameter mining from page content.
type MinerConfig struct {
	Disabled         bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	MineWebArchive   bool `json:"mine_web_archive,omitempty" yaml:"mine_web_archive,omitempty"`
	MaxScriptFetches int  `json:"max_script_fetches,omitempty" yaml:"max_script_fetches,omitempty" validate:"gte=0"`
}

// ReporterConfig configures result output.
type ReporterConfig struct {
	Format     OutputFormat `json:"output_format,omitempty" yaml:"output_format,omitempty" validate:"omitempty,oneof=table json light"`
	OutputFile string       `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	// TermWidth bounds line reflow in the light format.
	TermWidth int `json:"term_width,omitempty" yaml:"term_width,omitempty" validate:"gt=0"`
}

// NewDefaultGlobalConfig creates a GlobalConfig with default values.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		HTTPClientConfig: HTTPClientConfig{
			Retry:               2,
			TimeoutSeconds:      13,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			EnableHTTP2:         true,
		},
		FinderConfig: FinderConfig{
			Threads:      7,
			HeaderBucket: 2048,
			ParamBucket:  2048,
			CookieBucket: 2048,
		},
		MinerConfig: MinerConfig{
			MaxScriptFetches: 50,
		},
		ReporterConfig: ReporterConfig{
			Format:    FormatLight,
			TermWidth: 100,
		},
		LogConfig: logger.NewDefaultLogConfig(),
	}
}

// LoadGlobalConfig loads a YAML or JSON config file over the defaults. An
// empty path returns the defaults untouched.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(err, "failed to read config file")
	}

	// yaml.v3 handles JSON input as well, so one decoder covers both
	// supported extensions.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, WrapError(err, "failed to parse config file "+filepath.Base(path))
	}
	return cfg, nil
}
