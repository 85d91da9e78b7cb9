package version

import (
	"runtime/debug"
	"strings"
)

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/cattree/pkg/version.Version=v1.2.3"
var Version = "v0.1.0"

// String returns Version followed by the short VCS revision when the binary
// was built from a checkout, e.g. "v0.1.0 (3f2a9c1, dirty)".
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return Version
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	parts := []string{rev}
	if dirty {
		parts = append(parts, "dirty")
	}
	return Version + " (" + strings.Join(parts, ", ") + ")"
}
