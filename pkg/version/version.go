// Package version carries the relay's build identity, overridable at link
// time via -ldflags.
package version

// Version is the relay's release version, set at build time.
var Version = "dev"

// Software is the NIP-11 software identifier URL for this relay.
const Software = "https://github.com/wisp-relay/wisp-relay"
