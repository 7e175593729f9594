package config

// Version is the labelr binary version.
// Set at build time via: -ldflags "-X github.com/labelr/labelr/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
