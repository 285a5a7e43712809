package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CheckVersionCompatibility checks whether a strategy plugin built against pluginVersion
// can run on an engine at engineVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major and minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
func CheckVersionCompatibility(engineVersion, pluginVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	pluginVersion = strings.TrimPrefix(pluginVersion, "v")

	if engineVersion == "main" || pluginVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	pluginSemver, err := semver.NewVersion(pluginVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid plugin version '%s'", pluginVersion)
	}

	if engineSemver.Major() != pluginSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: engine is %d.x.x but strategy requires %d.x.x",
			engineSemver.Major(), pluginSemver.Major())
	}

	if engineSemver.Minor() != pluginSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: engine is %d.%d.x but strategy requires %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			pluginSemver.Major(), pluginSemver.Minor())
	}

	return nil
}
