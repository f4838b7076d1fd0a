// Package buildinfo carries release metadata stamped at link time, e.g.
//
//	go build -ldflags "-X github.com/cleared-dev/stmtparse/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	// Version is the release tag, reported by --version and /api/health.
	Version = "dev"
	// Commit is the source revision.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
