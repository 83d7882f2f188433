// Package version reports how a seqkit binary was built.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/seqkit/version.Version=1.0.0" ./cmd/seqdemo
//
// Values left unset fall back to the VCS stamps the Go toolchain embeds.
package version
