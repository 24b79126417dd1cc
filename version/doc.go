// Package version reports the build of the binary embedding this module.
//
// Version and Commit can be set at link time:
//
//	go build -ldflags "-X github.com/jonnyholland/ComposableArchitecturePattern/version.Version=1.4.0"
//
// Otherwise the VCS settings recorded by the Go toolchain are used.
package version
