package machineid

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

func probe() (string, error) {
	key, err := registry.OpenKey(
		registry.LOCAL_MACHINE,
		`SOFTWARE\Microsoft\Cryptography`,
		registry.QUERY_VALUE|registry.WOW64_64KEY,
	)
	if err != nil {
		return "", fmt.Errorf("machineid: open cryptography registry key: %w", err)
	}
	defer key.Close()

	guid, _, err := key.GetStringValue("MachineGuid")
	if err != nil {
		return "", fmt.Errorf("machineid: read MachineGuid: %w", err)
	}
	return guid, nil
}
