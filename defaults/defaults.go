// Package defaults holds the config schema of the revset engine and the
// helpers to load a config file against it.
package defaults

import (
	"os"

	e "github.com/pkg/errors"
	"github.com/sahib/config"
)

// CurrentVersion is the current version of the config layout.
const CurrentVersion = 0

// Defaults is the default validation for the revset engine.
var Defaults = DefaultsV0

// OpenMigratedConfig takes the config.yml at path and loads it.
// If required, it also migrates the config structure to the newest
// version - callers can always rely on the latest config keys to be
// present.
func OpenMigratedConfig(path string) (*config.Config, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(err, "failed to open config")
	}

	defer fd.Close()

	mgr := config.NewMigrater(CurrentVersion, config.StrictnessPanic)
	mgr.Add(0, nil, DefaultsV0)

	cfg, err := mgr.Migrate(config.NewYamlDecoder(fd))
	if err != nil {
		return nil, e.Wrap(err, "failed to migrate")
	}

	return cfg, nil
}

// Empty returns a config with all keys set to their default.
func Empty() *config.Config {
	cfg, err := config.Open(nil, Defaults, config.StrictnessPanic)
	if err != nil {
		// The defaults are a compile time constant; opening them
		// cannot fail.
		panic(err)
	}

	return cfg
}
