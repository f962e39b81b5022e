// Package version carries the build version string, overridden at build
// time via -ldflags "-X ...version.Version=v1.2.3".
package version

var Version = "dev"
