// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package models

// AppBuildInfo carries the build-time metadata injected into both
// binaries via linker flags and shown by the version endpoint and the
// console's about window.
type AppBuildInfo struct {
	buildVersion string
	buildDate    string
	buildCommit  string
}

// NewAppBuildInfo constructs [AppBuildInfo] from the provided metadata.
func NewAppBuildInfo(buildVersion, buildDate, buildCommit string) AppBuildInfo {
	return AppBuildInfo{
		buildVersion: buildVersion,
		buildDate:    buildDate,
		buildCommit:  buildCommit,
	}
}

// BuildVersion returns the version string of the build.
func (a AppBuildInfo) BuildVersion() string {
	return a.buildVersion
}

// BuildDate returns the build timestamp string.
func (a AppBuildInfo) BuildDate() string {
	return a.buildDate
}

// BuildCommit returns the source-control commit hash of the build.
func (a AppBuildInfo) BuildCommit() string {
	return a.buildCommit
}
