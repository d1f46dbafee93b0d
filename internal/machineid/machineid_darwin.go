package machineid

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const ioregTimeout = 10 * time.Second

func probe() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ioregTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return "", fmt.Errorf("machineid: ioreg query failed: %w", err)
	}

	// Looking for: "IOPlatformUUID" = "XXXXXXXX-XXXX-..."
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "IOPlatformUUID") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) >= 4 {
			return parts[len(parts)-2], nil
		}
	}
	return "", fmt.Errorf("machineid: IOPlatformUUID not found in ioreg output")
}
