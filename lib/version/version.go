// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/qrcloak/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Build is the structured form of the build information, as printed
// by `qrcloak version --json`.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if build.Commit == "unknown" {
		build.fillFromBuildInfo()
	}
	return build
}

func (b *Build) fillFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.Commit = setting.Value
			if len(b.Commit) > 12 {
				b.Commit = b.Commit[:12]
			}
		case "vcs.modified":
			b.Dirty = setting.Value == "true"
		case "vcs.time":
			if b.BuildTime == "unknown" {
				b.BuildTime = setting.Value
			}
		}
	}
}

// Info returns a one-line version string for --version output.
func Info() string {
	build := Current()
	dirty := ""
	if build.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", build.Version, build.Commit, dirty, build.BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	build := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", Info(), build.Go, build.Platform)
}

// Short returns just the version number.
func Short() string {
	return Version
}
