// Package buildinfo reports the version of the savevault binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/savevault-go/internal/infra/buildinfo.Version=v1.2.0" ./cmd/savevault
//
// Without ldflags the commit and build time come from the VCS stamp the Go
// toolchain embeds in the binary, when there is one.
package buildinfo
