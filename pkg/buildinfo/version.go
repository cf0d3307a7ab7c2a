// Package buildinfo reports which rockgraph build is running.
//
// Release binaries stamp the variables at link time:
//
//	go build -ldflags "-X github.com/matzehuels/rockgraph/pkg/buildinfo.Version=v0.2.0 \
//	    -X github.com/matzehuels/rockgraph/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/rockgraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/rockgraph
//
// Binaries built with "go install github.com/matzehuels/rockgraph/cmd/rockgraph@vX"
// carry no ldflags; for those the module version and VCS revision recorded by
// the Go toolchain are used instead. "rockgraph --version" prints the result.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Link-time values. Left at their defaults in development builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info is the resolved build identity.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Resolve returns the link-time values, filling the ones left at their
// defaults from the toolchain's embedded build information.
func Resolve() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

// String returns the build information, one field per line.
func String() string {
	i := Resolve()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	i := Resolve()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
