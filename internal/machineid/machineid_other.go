//go:build !linux && !darwin && !windows

package machineid

func probe() (string, error) {
	return "", ErrUnsupportedPlatform
}
