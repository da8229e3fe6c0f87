package probe

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// OSProbe reports the operating system.
type OSProbe struct{}

// NewOSProbe returns a new OSProbe.
func NewOSProbe() *OSProbe {
	return &OSProbe{}
}

// Name implements Probe.
func (p *OSProbe) Name() string { return ProbeOS }

// Value implements Probe.
func (p *OSProbe) Value() string { return runtime.GOOS }

// IsAvailable implements Probe.
func (p *OSProbe) IsAvailable() bool { return true }

// OSArchProbe reports the operating system architecture.
type OSArchProbe struct{}

// NewOSArchProbe returns a new OSArchProbe.
func NewOSArchProbe() *OSArchProbe {
	return &OSArchProbe{}
}

// Name implements Probe.
func (p *OSArchProbe) Name() string { return ProbeOSArch }

// Value implements Probe.
func (p *OSArchProbe) Value() string { return runtime.GOARCH }

// IsAvailable implements Probe.
func (p *OSArchProbe) IsAvailable() bool { return true }

// DiskFreeProbe reports free bytes at the given path via syscall.Statfs,
// which is available in the stdlib on Unix. Unsupported on Windows.
type DiskFreeProbe struct {
	path string
}

// NewDiskFreeProbe returns a new DiskFreeProbe for the given path.
func NewDiskFreeProbe(path string) *DiskFreeProbe {
	return &DiskFreeProbe{path: path}
}

// Name implements Probe.
func (p *DiskFreeProbe) Name() string { return ProbeDiskFree }

// Value implements Probe: returns free disk space in bytes.
func (p *DiskFreeProbe) Value() string {
	free, _ := statfsBytes(p.path, func(s *syscall.Statfs_t) uint64 { return s.Bavail * uint64(s.Bsize) })
	return strconv.FormatUint(free, 10)
}

// IsAvailable implements Probe.
func (p *DiskFreeProbe) IsAvailable() bool {
	return runtime.GOOS != "windows"
}

// statfsBytes computes bytes using statfs, returning 0 on failure.
func statfsBytes(path string, getter func(*syscall.Statfs_t) uint64) (uint64, bool) {
	if runtime.GOOS == "windows" {
		return 0, false
	}
	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return 0, false
	}
	return getter(&fs), true
}

// MemoryTotalProbe reports total physical memory in bytes on Linux.
type MemoryTotalProbe struct{}

// NewMemoryTotalProbe returns a new MemoryTotalProbe, or nil on non-Linux
// systems since the implementation reads /proc/meminfo.
func NewMemoryTotalProbe() *MemoryTotalProbe {
	if runtime.GOOS != "linux" {
		return nil
	}
	return &MemoryTotalProbe{}
}

// Name implements Probe.
func (p *MemoryTotalProbe) Name() string { return ProbeMemoryTotal }

// Value implements Probe: reads total memory from /proc/meminfo.
func (p *MemoryTotalProbe) Value() string {
	total, _ := readMemInfo("MemTotal")
	return total
}

// IsAvailable implements Probe.
func (p *MemoryTotalProbe) IsAvailable() bool {
	return runtime.GOOS == "linux"
}

// readMemInfo parses /proc/meminfo and returns the value in bytes.
func readMemInfo(key string) (string, bool) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return "", false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, key+":") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return "", false
		}
		value, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return "", false
		}

		// /proc/meminfo values default to kB.
		unit := "kB"
		if len(parts) >= 3 {
			unit = parts[2]
		}
		switch unit {
		case "kB":
			value *= 1024
		case "MB":
			value *= 1024 * 1024
		case "GB":
			value *= 1024 * 1024 * 1024
		}
		return strconv.FormatUint(value, 10), true
	}
	return "", false
}
