package platform

import (
	"fmt"
	"strings"
)

// normalizeOS validates the OS name against the three supported values.
func normalizeOS(osName string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(osName)) {
	case "darwin":
		return "darwin", nil
	case "linux":
		return "linux", nil
	case "windows":
		return "windows", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, osName)
	}
}

// normalizeArch converts machine architecture strings to canonical names.
// Accepts both GOARCH values and uname machine aliases.
func normalizeArch(machine string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(machine)) {
	case "amd64", "x86_64":
		return "amd64", nil
	case "arm64", "aarch64":
		return "arm64", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedArchitecture, machine)
	}
}

// extensionFor returns the executable extension for an OS name.
func extensionFor(osName string) string {
	if osName == "windows" {
		return ".exe"
	}
	return ""
}
