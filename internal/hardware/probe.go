// Package hardware probes the host CPU, memory, GPU, disk, and platform.
// Probing never fails: every sub-probe degrades to a documented default so
// a broken tool on one axis cannot abort environment detection.
package hardware

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"github.com/wavescribe/wavescribe/internal/hardware/gpu"
	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// Probe collects a fresh hardware snapshot. The five sub-probes run
// concurrently and independently; Probe waits for all of them to settle
// rather than failing fast. Each call produces a new Profile, nothing is
// cached across calls.
func Probe(ctx context.Context) Profile {
	var p Profile

	var wg sync.WaitGroup
	wg.Add(5)

	go func() { defer wg.Done(); p.CPU = probeCPU(ctx) }()
	go func() { defer wg.Done(); p.Memory = probeMemory() }()
	go func() { defer wg.Done(); p.GPU = gpu.Detect(ctx) }()
	go func() { defer wg.Done(); p.Disk = probeDisk(ctx) }()
	go func() { defer wg.Done(); p.Platform = probePlatform() }()

	wg.Wait()
	return p
}

// probeCPU builds a baseline from gopsutil and the runtime, then overlays
// platform-specific enrichment. Enrichment failures are silently ignored;
// the baseline stands.
func probeCPU(ctx context.Context) CPU {
	c := defaultCPU()
	c.LogicalThreads = runtime.NumCPU()
	c.PhysicalCores = c.LogicalThreads

	if logical, err := cpu.Counts(true); err == nil && logical > 0 {
		c.LogicalThreads = logical
	}
	if physical, err := cpu.Counts(false); err == nil && physical > 0 {
		c.PhysicalCores = physical
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		if infos[0].ModelName != "" {
			c.Model = infos[0].ModelName
		}
		if infos[0].Mhz > 0 {
			c.ClockMHz = infos[0].Mhz
		}
	} else if err != nil {
		debug.Debug("gopsutil cpu info unavailable: %v", err)
	}

	switch runtime.GOOS {
	case "linux":
		if out, ok := runner.TryRun(ctx, "lscpu"); ok {
			applyLscpu(out, &c)
		}
	case "darwin":
		applySysctl(ctx, &c)
	}

	if c.PhysicalCores < 1 {
		c.PhysicalCores = 1
	}
	if c.LogicalThreads < c.PhysicalCores {
		c.LogicalThreads = c.PhysicalCores
	}
	return c
}

// applyLscpu overlays physical core count and canonical model name parsed
// from lscpu output onto the baseline.
func applyLscpu(output string, c *CPU) {
	coresPerSocket, sockets := 0, 1
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Model name":
			if value != "" {
				c.Model = value
			}
		case "Core(s) per socket":
			if n, err := strconv.Atoi(value); err == nil {
				coresPerSocket = n
			}
		case "Socket(s)":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				sockets = n
			}
		case "CPU(s)":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				c.LogicalThreads = n
			}
		case "CPU MHz", "CPU max MHz":
			if f, err := strconv.ParseFloat(value, 64); err == nil && c.ClockMHz == 0 {
				c.ClockMHz = f
			}
		}
	}

	if coresPerSocket > 0 {
		c.PhysicalCores = coresPerSocket * sockets
	}
}

// applySysctl overlays Darwin sysctl values onto the baseline.
func applySysctl(ctx context.Context, c *CPU) {
	if out, ok := runner.TryRun(ctx, "sysctl", "-n", "machdep.cpu.brand_string"); ok && out != "" {
		c.Model = out
	}
	if out, ok := runner.TryRun(ctx, "sysctl", "-n", "hw.physicalcpu"); ok {
		if n, err := strconv.Atoi(out); err == nil && n > 0 {
			c.PhysicalCores = n
		}
	}
	if out, ok := runner.TryRun(ctx, "sysctl", "-n", "hw.logicalcpu"); ok {
		if n, err := strconv.Atoi(out); err == nil && n > 0 {
			c.LogicalThreads = n
		}
	}
}

func probeMemory() Memory {
	vmem, err := mem.VirtualMemory()
	if err != nil {
		debug.Debug("memory probe failed: %v", err)
		return Memory{}
	}
	return Memory{
		TotalBytes:     vmem.Total,
		AvailableBytes: vmem.Available,
		UsedPercent:    vmem.UsedPercent,
	}
}

// probeDisk reports the volume holding the current working directory. When
// gopsutil cannot read it, a df fallback parses the human-readable listing.
func probeDisk(ctx context.Context) Disk {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	usage, err := disk.Usage(cwd)
	if err == nil {
		return Disk{
			TotalBytes:     usage.Total,
			AvailableBytes: usage.Free,
			UsedPercent:    usage.UsedPercent,
		}
	}
	debug.Debug("gopsutil disk probe failed: %v", err)

	if out, ok := runner.TryRun(ctx, "df", "-h", cwd); ok {
		if d, ok := parseDf(out); ok {
			return d
		}
	}
	return Disk{}
}

// parseDf extracts total and available space from `df -h` output.
func parseDf(output string) (Disk, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return Disk{}, false
	}

	// Header then one data row for the queried path
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return Disk{}, false
	}

	total, okTotal := ParseSize(fields[1])
	avail, okAvail := ParseSize(fields[3])
	if !okTotal || !okAvail || total == 0 {
		return Disk{}, false
	}

	used := total - avail
	return Disk{
		TotalBytes:     total,
		AvailableBytes: avail,
		UsedPercent:    float64(used) * 100 / float64(total),
	}, true
}

func probePlatform() Platform {
	p := defaultPlatform()
	info, err := host.Info()
	if err != nil {
		debug.Debug("platform probe failed: %v", err)
		return p
	}
	if info.Platform != "" {
		p.Version = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	} else {
		p.Version = info.PlatformVersion
	}
	return p
}
