// Package version exposes the build version of the sensibo CLI.
package version

// version is overridden at build time with
// -ldflags "-X github.com/rshade/sensibo/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Set via ldflags
var version = "dev"

// GetVersion returns the version string the binary was built with.
func GetVersion() string {
	return version
}
