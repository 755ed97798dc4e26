package hardware

import (
	"runtime"

	"github.com/wavescribe/wavescribe/internal/hardware/gpu"
)

// CPU describes the host processor. Counts fall back to 1 so downstream
// thread math never divides by zero.
type CPU struct {
	Model          string
	PhysicalCores  int
	LogicalThreads int
	Architecture   string
	ClockMHz       float64
}

// Memory holds raw byte figures. Formatting for display happens at the
// output boundary, never here.
type Memory struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedPercent    float64
}

// Disk describes the volume holding the current working directory.
type Disk struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedPercent    float64
}

// Platform identifies the operating system.
type Platform struct {
	OS           string
	Version      string
	Architecture string
}

// Profile is an immutable snapshot of the host hardware, produced fresh by
// every Probe call. GPU is nil when no usable GPU was detected.
type Profile struct {
	CPU      CPU
	Memory   Memory
	GPU      *gpu.GPU
	Disk     Disk
	Platform Platform
}

// defaultCPU is the fallback when every CPU probe fails.
func defaultCPU() CPU {
	return CPU{
		Model:          "unknown",
		PhysicalCores:  1,
		LogicalThreads: 1,
		Architecture:   runtime.GOARCH,
	}
}

// defaultPlatform is built from runtime primitives and cannot fail.
func defaultPlatform() Platform {
	return Platform{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}
