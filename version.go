package sitelai

import (
	"runtime/debug"
	"sync"
)

const (
	Name        = "sitelai"
	Description = "Markup-preserving translation of static site pages"
	Version     = "0.1.0"
)

// Set with -ldflags "-X github.com/ZaguanLabs/sitelai.GitCommit=...".
// When left empty they are filled from the VCS stamp of the binary.
var (
	GitCommit string
	BuildDate string
)

var stampOnce sync.Once

func stamp() {
	stampOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if GitCommit == "" {
					GitCommit = s.Value
				}
			case "vcs.time":
				if BuildDate == "" {
					BuildDate = s.Value
				}
			}
		}
	})
}

// BuildInfo returns the commit and build date, empty when unknown.
func BuildInfo() (commit, date string) {
	stamp()
	return GitCommit, BuildDate
}

// FullVersion is Version with the short commit appended, e.g. 0.1.0+abc1234.
func FullVersion() string {
	commit, _ := BuildInfo()
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" {
		return Version
	}
	return Version + "+" + commit
}

// UserAgent identifies sitelai to translation services.
func UserAgent() string {
	return Name + "/" + Version
}
