package version

// GitVersion is stamped by the build via -ldflags.
var GitVersion = "dev"
