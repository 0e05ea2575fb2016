// Package version holds the build version of the forecaster.
package version

// Version is set at build time with -ldflags "-X github.com/leadflow/forecaster/version.Version=...".
var Version = "dev"
