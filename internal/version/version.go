// Package version exposes the build-time version of the binary. The version
// value is injected with ldflags at release time.
package version

import (
	"envforge/pkg/semver"
)

var version = "0.0.0"

func GetVersion() string {
	return version
}

func GetNumericVersion() int {
	return semver.GetNumericVersion(version)
}

// IsSmallerThan reports whether the running version is older than semVer.
func IsSmallerThan(semVer string) bool {
	return semver.IsNewer(semVer, version)
}
