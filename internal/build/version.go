package build

import "fmt"

const (
	appMajor = 0
	appMinor = 1
	appPatch = 0

	// appPreRelease marks the version as a pre-release. It must only
	// contain characters from the semantic versioning alphanumeric set.
	appPreRelease = "beta"
)

// Commit stores the current commit hash of this build, set by the build
// system via ldflags.
var Commit string

// Version returns the application version as a properly formed semantic
// version string.
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)

	if appPreRelease != "" {
		version = fmt.Sprintf("%s-%s", version, appPreRelease)
	}

	return version
}
