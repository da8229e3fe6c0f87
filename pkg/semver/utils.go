package semver

import (
	"strconv"
	"strings"
)

// GetNumericVersion folds a dotted version string into a single comparable
// integer (each component gets three decimal digits). A leading "v" is
// tolerated.
func GetNumericVersion(semVer string) int {
	semVer = strings.TrimPrefix(semVer, "v")
	parts := strings.Split(semVer, ".")
	result := 0
	for _, part := range parts {
		num, _ := strconv.Atoi(part)
		result = result*1000 + num
	}
	return result
}

// IsNewer reports whether candidate is a strictly newer version than current.
func IsNewer(candidate, current string) bool {
	return GetNumericVersion(candidate) > GetNumericVersion(current)
}
