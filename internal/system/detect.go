package system

import (
	"context"
	"os"
	"runtime"
	"strings"
)

// OSInfo contains information about the operating system
type OSInfo struct {
	System   string `json:"system"`
	Distro   string `json:"distro"`
	Kernel   string `json:"kernel"`
	Hostname string `json:"hostname"`
}

// GetOSInfo returns detailed OS information
func GetOSInfo(ctx context.Context) *OSInfo {
	info := &OSInfo{
		System: runtime.GOOS,
	}

	if result, _ := RunCommand(ctx, TimeoutShort, "uname", "-r"); result != nil && result.Success {
		info.Kernel = strings.TrimSpace(result.Stdout)
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	info.Distro = GetDistro(ctx)

	return info
}

// GetDistro detects the Linux distribution
func GetDistro(ctx context.Context) string {
	// Try /etc/os-release
	if data, err := os.ReadFile(HostPath("/etc/os-release")); err == nil {
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "ID=") {
				distro := strings.TrimPrefix(line, "ID=")
				distro = strings.Trim(distro, "\"")
				return normalizeDistro(distro)
			}
		}
	}

	// Try lsb_release
	if result, _ := RunCommand(ctx, TimeoutShort, "lsb_release", "-si"); result != nil && result.Success {
		return normalizeDistro(strings.TrimSpace(result.Stdout))
	}

	// Fallback to checking specific files
	if FileExists("/etc/debian_version") {
		return "debian"
	}
	if FileExists("/etc/redhat-release") {
		return "rhel"
	}
	if FileExists("/etc/arch-release") {
		return "arch"
	}

	return "unknown"
}

func normalizeDistro(distro string) string {
	distro = strings.ToLower(distro)
	switch {
	case strings.Contains(distro, "ubuntu"):
		return "ubuntu"
	case strings.Contains(distro, "debian"):
		return "debian"
	case strings.Contains(distro, "centos"):
		return "centos"
	case strings.Contains(distro, "rhel"), strings.Contains(distro, "redhat"):
		return "rhel"
	case strings.Contains(distro, "fedora"):
		return "fedora"
	case strings.Contains(distro, "arch"):
		return "arch"
	case strings.Contains(distro, "alpine"):
		return "alpine"
	default:
		return distro
	}
}

// IsDebian returns true if the system is Debian-based
func IsDebian(distro string) bool {
	return distro == "debian" || distro == "ubuntu"
}

// IsRHEL returns true if the system is RHEL-based
func IsRHEL(distro string) bool {
	return distro == "rhel" || distro == "centos" || distro == "fedora"
}

// PackageManager returns the package manager command for the distro,
// or an empty string when none is known
func PackageManager(distro string) string {
	switch {
	case IsDebian(distro):
		return "apt"
	case IsRHEL(distro):
		return "dnf"
	default:
		return ""
	}
}
