// Package machineid obtains a stable machine-identity string used to
// derive the cache encryption key. Each supported OS has its own probe;
// the derivation and cipher logic live elsewhere and never see the
// platform differences.
package machineid

import "errors"

// ErrUnsupportedPlatform is returned on platforms without an identity probe.
var ErrUnsupportedPlatform = errors.New("machineid: unsupported platform")

// ID returns the machine-specific identifier for the current platform:
// the Windows registry MachineGuid, the Linux machine-id file, or the
// macOS IOPlatformUUID.
func ID() (string, error) {
	return probe()
}
