package consts

// Version is the release version of this build. Overridden at link time for tagged releases.
var Version = "v0.0.0-dev"
