package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return NewValidationError(first.Namespace(), first.Value(), "failed rule '"+first.Tag()+"'")
		}
		return WrapError(err, "config validation failed")
	}

	if !cfg.FinderConfig.AnySurfaceEnabled() {
		return NewValidationError("FinderConfig", nil, "no surface enabled: set one of find_all, find_headers, find_params, find_cookies")
	}

	if err := validateWordlists(cfg); err != nil {
		return err
	}
	return nil
}

// validateWordlists requires a readable wordlist for every enabled surface.
func validateWordlists(cfg *GlobalConfig) error {
	type requirement struct {
		enabled bool
		paths   []string
		name    string
	}
	requirements := []requirement{
		{cfg.FinderConfig.FindAll || cfg.FinderConfig.FindParams, cfg.WordlistConfig.ParamWordlists, "param_wordlists"},
		{cfg.FinderConfig.FindAll || cfg.FinderConfig.FindHeaders, cfg.WordlistConfig.HeaderWordlists, "header_wordlists"},
		{cfg.FinderConfig.FindAll || cfg.FinderConfig.FindCookies, cfg.WordlistConfig.CookieWordlists, "cookie_wordlists"},
	}

	for _, req := range requirements {
		if !req.enabled {
			continue
		}
		if len(req.paths) == 0 {
			return NewValidationError(req.name, nil, "at least one wordlist is required for this surface")
		}
		var missing []string
		for _, path := range req.paths {
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				missing = append(missing, path)
			}
		}
		if len(missing) > 0 {
			return NewValidationError(req.name, strings.Join(missing, ", "), "wordlist paths do not point at files")
		}
	}
	return nil
}
