// Package version reports the build version of generapi.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/generapi/generapi/internal/version.Version=x.y.z"
var Version = ""

const devVersion = "0.0.1-dev"

// Get returns the version string that was set at build time via ldflags.
// Returns "0.0.1-dev" if Version is empty (development builds only).
func Get() (string, error) {
	if Version == "" {
		return devVersion, nil
	}

	version := strings.TrimPrefix(Version, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}

	return version, nil
}

// String is Get without the error: a malformed build version is reported as is.
func String() string {
	v, err := Get()
	if err != nil {
		return Version
	}
	return v
}

// Parse extracts major, minor, patch from version string like "1.2.3" or "1.2.3-dirty"
func Parse(version string) (major, minor, patch int) {
	parts := strings.SplitN(strings.TrimPrefix(version, "v"), "-", 2)
	version = parts[0]

	nums := strings.Split(version, ".")
	if len(nums) >= 1 {
		major, _ = strconv.Atoi(nums[0])
	}
	if len(nums) >= 2 {
		minor, _ = strconv.Atoi(nums[1])
	}
	if len(nums) >= 3 {
		patch, _ = strconv.Atoi(nums[2])
	}
	return
}
