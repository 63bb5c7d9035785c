// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Lumen is the canonical application identifier used for filesystem paths and CLI branding.
	Lumen = "lumen"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the HTTP User-Agent string sent with every media server request.
	UserAgent = Lumen + "/" + Version
)

// Build metadata, injected at link time through -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
