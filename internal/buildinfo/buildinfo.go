// Package buildinfo exposes version data set with -ldflags -X, falling back
// to the VCS stamp the Go toolchain embeds.
package buildinfo

import (
    "runtime"
    "runtime/debug"
)

var (
    Version = "dev"
    Commit  = ""
    BuiltAt = ""
)

// Info is reported by /debug/info.
func Info() map[string]string {
    commit, builtAt := Commit, BuiltAt
    if bi, ok := debug.ReadBuildInfo(); ok {
        for _, s := range bi.Settings {
            switch {
            case s.Key == "vcs.revision" && commit == "":
                commit = s.Value
            case s.Key == "vcs.time" && builtAt == "":
                builtAt = s.Value
            }
        }
    }
    return map[string]string{
        "version": Version,
        "commit":  commit,
        "builtAt": builtAt,
        "go":      runtime.Version(),
    }
}

// String is the one-line form logged at startup.
func String() string {
    i := Info()
    s := i["version"]
    if c := i["commit"]; c != "" {
        if len(c) > 12 {
            c = c[:12]
        }
        s += " (" + c + ")"
    }
    return s
}
