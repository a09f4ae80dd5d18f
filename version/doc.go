// Package version reports the httppipe build version.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/httppipe/version.Version=1.2.0"
//
// When they are not set, the values recorded by the Go toolchain in the
// binary's build info are used instead.
package version
