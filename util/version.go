package util

//nolint:gochecknoglobals
var (
	// Version current version number, set at build time
	Version = "undefined"
	// BuildTime build time of the binary, set at build time
	BuildTime = "undefined"
)
