package cli

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Version information, overridden at link time
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if Commit != "none" {
		return
	}
	if i, ok := debug.ReadBuildInfo(); ok {
		if vcsv, ok := lo.Find(i.Settings, func(s debug.BuildSetting) bool {
			return s.Key == "vcs.revision"
		}); ok {
			Commit = vcsv.Value
		}
	}
}
