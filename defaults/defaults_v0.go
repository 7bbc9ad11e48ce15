package defaults

import (
	"github.com/sahib/config"
)

// DefaultsV0 is the initial config layout of the revset engine.
var DefaultsV0 = config.DefaultMapping{
	"user": config.DefaultMapping{
		"email": config.DefaultEntry{
			Default:      "",
			NeedsRestart: false,
			Docs:         "Email of the repository owner; mine() selects commits authored by it.",
		},
	},
	"resolve": config.DefaultMapping{
		"min-prefix-length": config.DefaultEntry{
			Default:      2,
			NeedsRestart: false,
			Docs:         "Minimum length of a hex string before it is tried as an id prefix.",
			Validator:    config.IntRangeValidator(1, 40),
		},
	},
	"suggestions": config.DefaultMapping{
		"max-distance": config.DefaultEntry{
			Default:      2,
			NeedsRestart: false,
			Docs:         "Maximum edit distance of »did you mean« ref name candidates.",
			Validator:    config.IntRangeValidator(0, 16),
		},
	},
}
