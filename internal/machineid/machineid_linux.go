package machineid

import (
	"fmt"
	"os"
	"strings"
)

// machineIDPaths are checked in order; systemd populates the first,
// older dbus setups only the second.
var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

func probe() (string, error) {
	for _, path := range machineIDPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("machineid: no machine-id file found in %v", machineIDPaths)
}
