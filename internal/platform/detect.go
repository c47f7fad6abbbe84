package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect uses runtime.GOOS and runtime.GOARCH for OS and architecture,
// and gopsutil for Linux distribution details.
//
// Distribution lookup failures are not fatal: the OS alone is enough to
// pick a release asset. A cancelled context is, on every OS.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", err)
	}

	info := &Info{
		OS:      runtime.GOOS,
		Arch:    normalizeArch(runtime.GOARCH),
		ArchRaw: runtime.GOARCH,
	}

	if info.IsLinux() {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		platform = normalizePlatform(platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}

// FixedDetector reports a predetermined platform. It backs the
// --platform override and keeps tests independent of the host.
type FixedDetector struct {
	Info Info
}

// Fixed returns a detector that always reports os/arch.
func Fixed(os, arch string) Detector {
	return &FixedDetector{Info: Info{
		OS:      normalizePlatform(os),
		Arch:    normalizeArch(arch),
		ArchRaw: arch,
	}}
}

// Parse builds a fixed detector from an "os" or "os/arch" string.
// A missing architecture defaults to amd64, the only one Carvel publishes.
func Parse(value string) (Detector, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("platform cannot be empty")
	}

	os, arch, found := strings.Cut(value, "/")
	if os == "" || (found && arch == "") {
		return nil, fmt.Errorf("invalid platform %q (expected os or os/arch)", value)
	}
	if !found {
		arch = "amd64"
	}
	return Fixed(os, arch), nil
}

// Detect returns a copy of the fixed info.
func (d *FixedDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := d.Info
	return &info, nil
}
