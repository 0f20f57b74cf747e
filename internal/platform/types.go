// Package platform resolves the host operating system and CPU architecture
// into the canonical triple used to name Revyl release assets.
//
// Resolution fails closed: any OS outside {darwin, linux, windows} or any
// architecture that does not normalize to amd64 or arm64 is rejected with a
// sentinel error rather than producing a guessed asset name.
package platform

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolution failures. Callers distinguish them with
// errors.Is; both are fatal to the whole provisioning operation.
var (
	ErrUnsupportedPlatform     = errors.New("unsupported platform")
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
)

// Info contains the resolved platform triple.
type Info struct {
	OS      string // "darwin", "linux", "windows"
	Arch    string // "amd64", "arm64" (normalized)
	ArchRaw string // machine string as reported (e.g. "x86_64", "aarch64")
	Ext     string // ".exe" on windows, "" otherwise
}

// AssetName returns the release asset filename for this platform,
// following the revyl-{os}-{arch}{ext} naming convention.
func (i *Info) AssetName() string {
	return fmt.Sprintf("revyl-%s-%s%s", i.OS, i.Arch, i.Ext)
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == "amd64"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}
