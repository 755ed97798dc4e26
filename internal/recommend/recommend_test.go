package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavescribe/wavescribe/internal/hardware"
	"github.com/wavescribe/wavescribe/internal/hardware/gpu"
)

func profileWith(cores int, memBytes uint64, g *gpu.GPU) hardware.Profile {
	return hardware.Profile{
		CPU:    hardware.CPU{Model: "test", PhysicalCores: cores, LogicalThreads: cores * 2},
		Memory: hardware.Memory{TotalBytes: memBytes},
		GPU:    g,
	}
}

func TestThreadCountClamped(t *testing.T) {
	for _, cores := range []int{0, 1, 2, 4, 8, 10, 64} {
		cfg := Recommend(profileWith(cores, 8<<30, nil))
		assert.GreaterOrEqual(t, cfg.ThreadCount, 1, "cores=%d", cores)
		assert.LessOrEqual(t, cfg.ThreadCount, MaxThreads, "cores=%d", cores)
		if cores >= 1 && cores <= MaxThreads {
			assert.Equal(t, cores, cfg.ThreadCount)
		}
	}
}

func TestModelSizeByMemory(t *testing.T) {
	tests := []struct {
		memBytes uint64
		want     ModelSize
	}{
		{0, ModelTiny},
		{512 << 20, ModelTiny},
		{1 << 30, ModelBase},
		{2 << 30, ModelSmall},
		{3 << 30, ModelSmall},
		{4 << 30, ModelMedium},
		{6 << 30, ModelMedium},
		{8 << 30, ModelLarge},
		{64 << 30, ModelLarge},
	}
	for _, tc := range tests {
		cfg := Recommend(profileWith(4, tc.memBytes, nil))
		assert.Equal(t, tc.want, cfg.ModelSize, "memory=%d", tc.memBytes)
	}
}

func TestModelSizeMonotonic(t *testing.T) {
	rank := map[ModelSize]int{
		ModelTiny: 0, ModelBase: 1, ModelSmall: 2, ModelMedium: 3, ModelLarge: 4,
	}
	prev := -1
	for mem := uint64(0); mem <= 16<<30; mem += 256 << 20 {
		cfg := Recommend(profileWith(4, mem, nil))
		r := rank[cfg.ModelSize]
		assert.GreaterOrEqual(t, r, prev, "memory=%d", mem)
		prev = r
	}
}

func TestBackendSelection(t *testing.T) {
	tests := []struct {
		name string
		gpu  *gpu.GPU
		want Backend
	}{
		{"no gpu", nil, BackendCPU},
		{"cuda", &gpu.GPU{SupportsCUDA: true, SupportsOpenCL: true}, BackendCUDA},
		{"metal", &gpu.GPU{SupportsMetal: true}, BackendMetal},
		{"opencl only", &gpu.GPU{SupportsOpenCL: true}, BackendOpenCL},
		{"cuda beats metal", &gpu.GPU{SupportsCUDA: true, SupportsMetal: true}, BackendCUDA},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Recommend(profileWith(4, 8<<30, tc.gpu))
			assert.Equal(t, tc.want, cfg.Backend)
			assert.Equal(t, tc.want != BackendCPU, cfg.UseAcceleration)
		})
	}
}

func TestDeterministic(t *testing.T) {
	p := profileWith(6, 12<<30, &gpu.GPU{SupportsCUDA: true})
	assert.Equal(t, Recommend(p), Recommend(p))
}

func TestAppleLaptopScenario(t *testing.T) {
	p := profileWith(10, 16<<30, &gpu.GPU{Vendor: gpu.VendorApple, SupportsMetal: true})
	cfg := Recommend(p)

	assert.Equal(t, 8, cfg.ThreadCount)
	assert.Equal(t, ModelLarge, cfg.ModelSize)
	assert.True(t, cfg.UseAcceleration)
	assert.Equal(t, BackendMetal, cfg.Backend)
}

func TestModestDesktopScenario(t *testing.T) {
	cfg := Recommend(profileWith(2, 4<<30, nil))

	assert.Equal(t, 2, cfg.ThreadCount)
	assert.Equal(t, ModelMedium, cfg.ModelSize)
	assert.False(t, cfg.UseAcceleration)
	assert.Equal(t, BackendCPU, cfg.Backend)
}
