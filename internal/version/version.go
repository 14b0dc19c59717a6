// Package version exposes build metadata stamped at link time.
package version

import "runtime"

// Set via -ldflags "-X github.com/pscheid92/reviewpulse/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
	}
}
