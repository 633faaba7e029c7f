// Package version provides build and version information.
package version

// Name is the program's display name.
const Name = "Asteroid Opposition Search"

// Version is the current application version.
const Version = "1.0.0"

// Milestones:
// 1.0.0 - Two-pass opposition, closest-approach and peak-brightness scan with constellation tags
// 0.9.0 - Kepler ephemeris provider and JSON orbital-element catalogue

// String returns the banner printed by the version switch.
func String() string {
	return Name + " " + Version
}
