// Package platform resolves host capabilities into an immutable Profile.
// The profile is derived once at startup and decides which dependency
// layers are installable on this machine.
package platform

import (
	"fmt"
	"os"
	"runtime"

	"synthctl/internal/executil"
)

// OS is the set of supported host operating systems.
type OS string

const (
	Darwin OS = "darwin"
	Linux  OS = "linux"
)

// Profile captures everything the install planner needs to know about the
// host. Fields are fixed after Detect and never re-read mid-run.
type Profile struct {
	OS            OS
	Arch          string
	HasGPU        bool // NVIDIA GPU tooling present
	DriverPresent bool // kernel driver loaded
}

// GPUCapable reports whether GPU-accelerated layers can run here.
func (p Profile) GPUCapable() bool {
	return p.OS == Linux && p.HasGPU && p.DriverPresent
}

// unsupportedOSError marks a host OS the installer has no path for.
type unsupportedOSError struct{ goos string }

func (e unsupportedOSError) Error() string {
	return fmt.Sprintf("unsupported host os %q: only linux and darwin are supported", e.goos)
}

// IsUnsupportedOS reports whether err indicates a host OS without an
// installation path.
func IsUnsupportedOS(err error) bool {
	_, ok := err.(unsupportedOSError)
	return ok
}

// Detect inspects the running host. GPU probing only happens on Linux; the
// macOS path is always CPU-only.
func Detect() (Profile, error) {
	return resolve(runtime.GOOS, runtime.GOARCH, executil.Have("nvidia-smi"), hasNvidiaDriver())
}

// resolve is the pure core of Detect, split out for tests.
func resolve(goos, arch string, smi, driver bool) (Profile, error) {
	switch goos {
	case "darwin":
		return Profile{OS: Darwin, Arch: arch}, nil
	case "linux":
		return Profile{OS: Linux, Arch: arch, HasGPU: smi, DriverPresent: driver}, nil
	default:
		return Profile{}, unsupportedOSError{goos: goos}
	}
}

// nvidiaDriverPath is a package variable so tests can point it elsewhere.
var nvidiaDriverPath = "/proc/driver/nvidia/version"

func hasNvidiaDriver() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	_, err := os.Stat(nvidiaDriverPath)
	return err == nil
}
