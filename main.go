package main

import (
	"runtime/debug"

	"github.com/marcus/phonebook/cmd"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

// effectiveVersion prefers an injected version, then the module version
// recorded by `go install`, then a devel+<rev> string from VCS info.
func effectiveVersion(v string) string {
	if v != "" && v != "dev" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}
	return vcsVersion(info.Settings, v)
}

func vcsVersion(settings []debug.BuildSetting, fallback string) string {
	var rev string
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return fallback
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	out := "devel+" + rev
	if dirty {
		out += "+dirty"
	}
	return out
}

func main() {
	cmd.SetVersion(effectiveVersion(Version))
	cmd.Execute()
}
