// Package gizi holds application-wide build information.
package gizi

var (
	// Version of the application, set at build time.
	Version = "v0.1.0"
	// Build timestamp, set at build time.
	Build = "n/a"
)
