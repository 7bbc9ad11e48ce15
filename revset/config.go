package revset

import (
	"github.com/sahib/config"
)

// Config controls the knobs of symbol resolution and filter evaluation.
type Config struct {
	// UserEmail is the configured user's email, used by the mine()
	// predicate.
	UserEmail string

	// MinPrefixLen is the minimum length of a hex string before it is
	// considered as a commit/change id prefix.
	MinPrefixLen int

	// MaxSuggestionDistance bounds the edit distance of "did you mean"
	// candidates attached to a NoSuchRevision error.
	MaxSuggestionDistance int
}

// DefaultConfig is a Config with sane default values.
var DefaultConfig = &Config{
	MinPrefixLen:          2,
	MaxSuggestionDistance: 2,
}

// ConfigFromYaml extracts the revset relevant keys from a managed config
// (see the defaults package for the schema).
func ConfigFromYaml(cfg *config.Config) *Config {
	return &Config{
		UserEmail:             cfg.String("user.email"),
		MinPrefixLen:          int(cfg.Int("resolve.min-prefix-length")),
		MaxSuggestionDistance: int(cfg.Int("suggestions.max-distance")),
	}
}

// orDefault guards against callers passing a nil config.
func (cfg *Config) orDefault() *Config {
	if cfg == nil {
		return DefaultConfig
	}

	return cfg
}
