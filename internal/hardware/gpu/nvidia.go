package gpu

import (
	"context"
	"strconv"
	"strings"

	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// detectNVIDIA queries nvidia-smi. A working nvidia-smi implies a CUDA
// capable driver; OpenCL ships with it.
func detectNVIDIA(ctx context.Context) (*GPU, bool) {
	out, ok := runner.TryRun(ctx, "nvidia-smi",
		"--query-gpu=name,memory.total,driver_version",
		"--format=csv,noheader,nounits")
	if !ok {
		return nil, false
	}
	return parseNvidiaSMI(out)
}

// parseNvidiaSMI parses the first line of nvidia-smi CSV output.
func parseNvidiaSMI(output string) (*GPU, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, ", ")
		if len(fields) < 3 {
			continue
		}

		g := &GPU{
			Vendor:         VendorNVIDIA,
			Model:          strings.TrimSpace(fields[0]),
			Driver:         strings.TrimSpace(fields[2]),
			SupportsCUDA:   true,
			SupportsOpenCL: true,
		}

		// Memory is reported in MiB
		if mib, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64); err == nil {
			g.VRAMBytes = mib * 1024 * 1024
		} else {
			debug.Warning("Failed to parse NVIDIA GPU memory: %v", err)
		}

		if g.Model == "" {
			continue
		}
		return g, true
	}
	return nil, false
}
