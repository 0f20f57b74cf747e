package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Resolve detects the host platform and returns the canonical triple.
// The OS comes from runtime.GOOS; the machine architecture comes from the
// kernel (uname -m equivalent) via gopsutil, which is where alias forms like
// x86_64 and aarch64 actually appear, with runtime.GOARCH as the fallback.
//
// Resolution has no side effects beyond the host introspection call.
func Resolve(ctx context.Context) (*Info, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
	}
	return resolve(runtime.GOOS, detectMachine())
}

// resolve builds an Info from raw OS and machine strings. It is the pure
// core of Resolve, separated so unsupported combinations can be exercised
// directly in tests.
func resolve(osName, machine string) (*Info, error) {
	normalizedOS, err := normalizeOS(osName)
	if err != nil {
		return nil, err
	}

	arch, err := normalizeArch(machine)
	if err != nil {
		return nil, err
	}

	return &Info{
		OS:      normalizedOS,
		Arch:    arch,
		ArchRaw: machine,
		Ext:     extensionFor(normalizedOS),
	}, nil
}

// detectMachine returns the raw machine architecture string. gopsutil asks
// the kernel; when that fails or comes back empty the compile-time GOARCH
// is close enough.
func detectMachine() string {
	machine, err := host.KernelArch()
	if err != nil || strings.TrimSpace(machine) == "" {
		return runtime.GOARCH
	}
	return machine
}
