// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package host reads local system vitals from procfs and sysfs for the
// host panel: CPU load, memory, root disk usage, and interface rates.
package host

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// MemoryInfo holds system memory statistics.
type MemoryInfo struct {
	TotalBytes     uint64
	FreeBytes      uint64
	AvailableBytes uint64
}

// UsedBytes returns total minus available, guarding against underflow.
func (m MemoryInfo) UsedBytes() uint64 {
	if m.AvailableBytes > m.TotalBytes {
		return 0
	}
	return m.TotalBytes - m.AvailableBytes
}

// UsedPercent returns memory usage as a percentage.
func (m MemoryInfo) UsedPercent() float64 {
	if m.TotalBytes == 0 {
		return 0
	}
	return float64(m.UsedBytes()) / float64(m.TotalBytes) * 100
}

// LoadAvg holds the three load average samples from /proc/loadavg.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// DiskInfo holds usage of one mounted filesystem.
type DiskInfo struct {
	TotalBytes uint64
	UsedBytes  uint64
}

// UsedPercent returns disk usage as a percentage.
func (d DiskInfo) UsedPercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.UsedBytes) / float64(d.TotalBytes) * 100
}

func readMemInfo(procPath string) (MemoryInfo, error) {
	file, err := os.Open(filepath.Join(procPath, "meminfo"))
	if err != nil {
		return MemoryInfo{}, err
	}
	defer file.Close()

	var info MemoryInfo
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		// Field format: "Key: VALUE kB"
		val, _ := strconv.ParseUint(fields[1], 10, 64)
		valBytes := val * 1024

		switch fields[0] {
		case "MemTotal:":
			info.TotalBytes = valBytes
		case "MemFree:":
			info.FreeBytes = valBytes
		case "MemAvailable:":
			info.AvailableBytes = valBytes
		}
	}

	// Fallback for Available if not present (older kernels)
	if info.AvailableBytes == 0 {
		info.AvailableBytes = info.FreeBytes
	}

	return info, scanner.Err()
}

func readLoadAvg(procPath string) (LoadAvg, error) {
	data, err := os.ReadFile(filepath.Join(procPath, "loadavg"))
	if err != nil {
		return LoadAvg{}, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return LoadAvg{}, nil
	}
	var la LoadAvg
	la.Load1, _ = strconv.ParseFloat(fields[0], 64)
	la.Load5, _ = strconv.ParseFloat(fields[1], 64)
	la.Load15, _ = strconv.ParseFloat(fields[2], 64)
	return la, nil
}

func readUptime(procPath string) (float64, error) {
	data, err := os.ReadFile(filepath.Join(procPath, "uptime"))
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, nil
	}
	return strconv.ParseFloat(fields[0], 64)
}

func readDisk(mount string) (DiskInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(mount, &stat); err != nil {
		return DiskInfo{}, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	used := (stat.Blocks - stat.Bfree) * uint64(stat.Bsize)
	return DiskInfo{TotalBytes: total, UsedBytes: used}, nil
}
