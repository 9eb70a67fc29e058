// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build identity of ZPR binaries.
//
// The variables are stamped at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/zpr-foundation/zprproto/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import "fmt"

// Set via -ldflags at build time; the defaults identify an unstamped
// development build.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the working tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns the one-line version string used for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}
