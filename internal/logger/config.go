package logger

// LogConfig controls where and how the application logs.
type LogConfig struct {
	// Verbosity maps the CLI -v level onto zerolog levels:
	// 0 errors only, 1 warnings, 2 info (default), 3 debug.
	Verbosity int `json:"verbosity,omitempty" yaml:"verbosity,omitempty" validate:"gte=0,lte=3"`

	// Format selects "console" or "json" output.
	Format string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=console json"`

	// LogFile enables rotating file output when non-empty.
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty"`

	// NoColor disables ANSI colors on the console writer.
	NoColor bool `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// NewDefaultLogConfig returns the default logging configuration.
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		Verbosity:     2,
		Format:        "console",
		MaxLogSizeMB:  10,
		MaxLogBackups: 3,
	}
}
