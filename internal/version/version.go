// Package version holds the build-time version string reported by the
// admin HTTP surface's /api/v1/version endpoint.
package version

// Version is overridden at build time via -ldflags "-X ...version.Version=...".
var Version = "dev"
