package common

import (
	"github.com/blang/semver/v4"
)

var (
	// VersionStr is the build version, overridden at build time through -ldflags.
	VersionStr = "1.1.0"

	// Version is the parsed form of VersionStr, carried in every session record.
	Version semver.Version
)

func init() {
	Version = semver.MustParse(VersionStr)
}
