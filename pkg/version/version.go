// Package version exposes build information stamped at link time, e.g.
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/issuetrack/pkg/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information, overridden with -ldflags -X.
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = ""
)

// Info is the build information of the running binary.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

// Get returns the build information. Without stamped values the VCS
// revision recorded by the Go toolchain is used when available.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}

	if info.Commit != "<unknown>" {
		return info
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.time":
			if info.Date == "" {
				info.Date = setting.Value
			}
		}
	}

	return info
}

func (i Info) String() string {
	s := fmt.Sprintf("issuetrack %s (commit %s", i.Version, i.Commit)
	if i.Date != "" {
		s += ", built " + i.Date
	}

	return s + ", " + i.GoVersion + ")"
}
