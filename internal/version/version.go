// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Product is the name reported in the User-Agent of outgoing API requests.
const Product = "furnishop"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String formats the info for the -version flag.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", Product, i.versionOrDev(), i.GitCommit, i.BuildTime)
}

// UserAgent returns the User-Agent header value for API requests.
func (i Info) UserAgent() string {
	return Product + "/" + i.versionOrDev()
}

func (i Info) versionOrDev() string {
	if i.Version == "" {
		return "dev"
	}
	return i.Version
}
