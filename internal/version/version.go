// ABOUTME: Version constants for the module
// ABOUTME: Referenced by the CLI and user agent strings
package version

// Version is the release version, overridden at build time with
// -ldflags "-X ...version.Version=x.y.z".
var Version = "dev"

// Product is the public name of this library.
const Product = "vocalis-go"
