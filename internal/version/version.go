// Package version holds the version string stamped into -v output and
// the .ident directive of emitted assembly.
package version

const version = "0.1.0"

// String returns the full version string.
func String() string {
	return "exp version " + version
}
