// Package config loads the optional ambient runtime-tuning overlay
// (spifyrfb.yaml) that carries no wire-format consequence: log
// verbosity, default encoding preference, and status-API rate limits.
// It is entirely optional; a missing file yields Defaults() unchanged.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Runtime is the ambient tuning overlay. Load layers a file's values
// over Defaults(). cmd/spifyrfb-worker loads and logs it but applies
// none of its fields: framebuffer updates are always ZRLE-encoded and
// the status API uses its own rate-limit defaults.
type Runtime struct {
	LogVerbosity    int     `yaml:"log_verbosity"`
	EncodingOrder   []string `yaml:"encoding_order"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// Defaults returns the built-in Runtime values used when no
// spifyrfb.yaml is present and no flag overrides them.
func Defaults() Runtime {
	return Runtime{
		LogVerbosity:    1,
		EncodingOrder:   []string{"ZRLE", "Zlib", "Hextile", "Raw"},
		RateLimitPerSec: 1,
		RateLimitBurst:  5,
	}
}

// Load reads path as YAML into a Runtime seeded with Defaults(), so any
// field the file omits keeps its default. A missing file is not an
// error; it returns Defaults() unchanged.
func Load(path string) (Runtime, error) {
	rt := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return rt, nil
	}
	if err != nil {
		return rt, err
	}

	if err := yaml.Unmarshal(data, &rt); err != nil {
		return rt, err
	}
	return rt, nil
}
