// Package buildinfo exposes version information stamped at build time:
//
//	go build -ldflags "-X github.com/matzehuels/pangolin/pkg/buildinfo.Version=v0.2.0 \
//	    -X github.com/matzehuels/pangolin/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git revision.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

func init() {
	if Commit != "none" {
		return
	}
	// go install builds carry VCS metadata instead of ldflags.
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
		case "vcs.time":
			Date = s.Value
		}
	}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies outgoing requests.
func UserAgent() string {
	return "pangolin/" + Version
}
