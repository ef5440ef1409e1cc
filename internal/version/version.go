// ABOUTME: Version information for resonate-local
// ABOUTME: Product, manufacturer and release constants shown by the CLI
package version

const (
	// Product is the user-facing program name
	Product = "Resonate Local Player"

	// Manufacturer identifies the publisher
	Manufacturer = "Resonate"

	// Version is the release version
	Version = "0.3.0"
)

// String returns the product and version for --version output
func String() string {
	return Product + " " + Version
}
