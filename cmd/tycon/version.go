package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version is the module version for `go install ...@vX` builds. Local
// builds report devel-VERSION, plus the short commit when stamped.
func Version() string {
	v := strings.TrimSpace(embeddedVersion)
	info, ok := debug.ReadBuildInfo()
	switch {
	case !ok:
		return v
	case info.Main.Version != "" && info.Main.Version != "(devel)":
		return info.Main.Version
	}
	if rev := setting(info, "vcs.revision"); len(rev) >= 7 {
		return "devel-" + v + "+" + rev[:7]
	}
	return "devel-" + v
}

func setting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
