// Package integration drives the HTTP API against a real Postgres started with
// testcontainers. Run with `go test ./test/integration`; -short skips it.
package integration
