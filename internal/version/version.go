// Package version pins the strategy config schema version and checks
// persisted configs against it.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the config schema version this build understands.
const SchemaVersion = "1.0.0"

// Engine is the engine release version, set at build time via ldflags.
var Engine = "dev"

// CheckSchemaCompatibility reports whether a config written at the given
// schema version can be loaded by this build. An empty version is
// accepted as "current". Major and minor must match; patch differences
// are compatible.
func CheckSchemaCompatibility(configVersion string) error {
	if configVersion == "" {
		return nil
	}

	cfgVer, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid config schema version %q: %w", configVersion, err)
	}
	ourVer, err := semver.NewVersion(SchemaVersion)
	if err != nil {
		return fmt.Errorf("invalid built-in schema version %q: %w", SchemaVersion, err)
	}

	if cfgVer.Major() != ourVer.Major() || cfgVer.Minor() != ourVer.Minor() {
		return fmt.Errorf("config schema version %s is not compatible with %s", configVersion, SchemaVersion)
	}

	return nil
}
