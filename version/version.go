// Package version exposes the build stamp embedded at link time.
package version

import (
	"fmt"
	"runtime"
)

// Stamped via -ldflags on release builds; source builds report dev.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build stamp plus the toolchain that produced it.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("survtime %s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
