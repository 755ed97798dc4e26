package gpu

import (
	"context"
	"strconv"
	"strings"

	"github.com/wavescribe/wavescribe/internal/runner"
)

// detectApple queries system_profiler for the display chipset. Any Apple
// GPU reachable this way supports Metal.
func detectApple(ctx context.Context) (*GPU, bool) {
	out, ok := runner.TryRun(ctx, "system_profiler", "SPDisplaysDataType", "-detailLevel", "mini")
	if !ok {
		return nil, false
	}
	return parseSystemProfiler(out)
}

// parseSystemProfiler extracts the chipset model and VRAM from
// system_profiler SPDisplaysDataType output.
func parseSystemProfiler(output string) (*GPU, bool) {
	g := &GPU{
		Vendor:        VendorApple,
		SupportsMetal: true,
	}

	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Chipset Model":
			g.Model = value
		case "VRAM (Total)", "VRAM (Dynamic, Max)":
			g.VRAMBytes = parseVRAMLabel(value)
		}
	}

	if g.Model == "" {
		return nil, false
	}
	return g, true
}

// parseVRAMLabel converts labels such as "8 GB" or "1536 MB" to bytes.
func parseVRAMLabel(label string) uint64 {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return 0
	}
	value, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(fields[1]) {
	case "GB":
		return value << 30
	case "MB":
		return value << 20
	default:
		return 0
	}
}
