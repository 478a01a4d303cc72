// Package sysinfo reads host state for the dashboard: capacity of the
// disk and memory pools, mounted removable media, and the folder tree
// that schedule sources and destinations are picked from.
package sysinfo

import (
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Usage is a point-in-time reading of a capacity pool.
type Usage struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

// Drive is a mounted filesystem that looks like plug-in media.
type Drive struct {
	Device string `json:"device"`
	Path   string `json:"path"`
	Fstype string `json:"fstype"`
}

// DiskUsage reports usage of the filesystem holding path.
func DiskUsage(path string) (Usage, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: u.Total, Used: u.Used, Free: u.Free, Percent: u.UsedPercent}, nil
}

// MemoryUsage reports physical memory usage.
func MemoryUsage() (Usage, error) {
	m, err := mem.VirtualMemory()
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: m.Total, Used: m.Used, Free: m.Free, Percent: m.UsedPercent}, nil
}

// RemovableDrives lists mounted partitions that are plausibly plug-in
// media: flagged removable by the OS, or mounted under a media path
// such as /media, /run/media or /mnt.
func RemovableDrives() ([]Drive, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}
	drives := []Drive{}
	for _, p := range parts {
		if !removable(p) {
			continue
		}
		drives = append(drives, Drive{Device: p.Device, Path: p.Mountpoint, Fstype: p.Fstype})
	}
	return drives, nil
}

func removable(p disk.PartitionStat) bool {
	for _, opt := range p.Opts {
		if opt == "removable" {
			return true
		}
	}
	return strings.Contains(p.Mountpoint, "/media") || strings.Contains(p.Mountpoint, "/mnt")
}
