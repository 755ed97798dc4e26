// Package recommend maps a hardware snapshot to a speech-model
// configuration. Recommend is pure: same profile in, same config out.
package recommend

import (
	"github.com/wavescribe/wavescribe/internal/hardware"
)

// MaxThreads caps the transcription thread count. whisper.cpp sees
// diminishing returns past this on consumer CPUs.
const MaxThreads = 8

// ModelSize names a whisper.cpp model tier.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// Backend names an inference acceleration backend.
type Backend string

const (
	BackendCPU    Backend = "cpu"
	BackendCUDA   Backend = "cuda"
	BackendOpenCL Backend = "opencl"
	BackendMetal  Backend = "metal"
)

// Config is the recommended transcription setup for one host.
type Config struct {
	UseAcceleration bool
	ThreadCount     int
	ModelSize       ModelSize
	Backend         Backend
}

// Memory thresholds for model tiers. A tier is selected when total memory
// meets its floor; below the lowest floor the smallest model is used.
const (
	baseFloor   = 1 << 30
	smallFloor  = 2 << 30
	mediumFloor = 4 << 30
	largeFloor  = 8 << 30
)

// Recommend derives a transcription configuration from a hardware
// profile.
func Recommend(profile hardware.Profile) Config {
	backend := backendFor(profile)
	return Config{
		UseAcceleration: backend != BackendCPU,
		ThreadCount:     clampThreads(profile.CPU.PhysicalCores),
		ModelSize:       modelForMemory(profile.Memory.TotalBytes),
		Backend:         backend,
	}
}

func clampThreads(cores int) int {
	if cores < 1 {
		return 1
	}
	if cores > MaxThreads {
		return MaxThreads
	}
	return cores
}

func modelForMemory(totalBytes uint64) ModelSize {
	switch {
	case totalBytes >= largeFloor:
		return ModelLarge
	case totalBytes >= mediumFloor:
		return ModelMedium
	case totalBytes >= smallFloor:
		return ModelSmall
	case totalBytes >= baseFloor:
		return ModelBase
	default:
		return ModelTiny
	}
}

// backendFor picks the highest-throughput backend the GPU supports. CUDA
// outperforms OpenCL on the same silicon, so it wins when both are
// present.
func backendFor(profile hardware.Profile) Backend {
	g := profile.GPU
	if g == nil {
		return BackendCPU
	}
	switch {
	case g.SupportsCUDA:
		return BackendCUDA
	case g.SupportsMetal:
		return BackendMetal
	case g.SupportsOpenCL:
		return BackendOpenCL
	default:
		return BackendCPU
	}
}
