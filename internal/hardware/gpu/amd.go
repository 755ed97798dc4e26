package gpu

import (
	"context"
	"strings"

	"github.com/wavescribe/wavescribe/internal/runner"
)

// detectAMD tries rocm-smi first and falls back to scanning lspci for an
// AMD/ATI display controller.
func detectAMD(ctx context.Context) (*GPU, bool) {
	if out, ok := runner.TryRun(ctx, "rocm-smi", "--showproductname"); ok {
		if g, ok := parseRocmSMI(out); ok {
			return g, true
		}
	}

	out, ok := runner.TryRun(ctx, "lspci", "-d", "1002:", "-nn")
	if !ok {
		return nil, false
	}
	return parseLspciDisplay(out, VendorAMD)
}

// parseRocmSMI extracts the card series from rocm-smi output.
func parseRocmSMI(output string) (*GPU, bool) {
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "card series") && !strings.Contains(lower, "card model") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		model := strings.TrimSpace(value)
		if model == "" {
			continue
		}
		return &GPU{
			Vendor:         VendorAMD,
			Model:          model,
			SupportsOpenCL: true,
		}, true
	}
	return nil, false
}

// parseLspciDisplay extracts a display controller model from lspci output
// restricted to one vendor ID.
func parseLspciDisplay(output string, vendor Vendor) (*GPU, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "VGA") && !strings.Contains(line, "Display") &&
			!strings.Contains(line, "3D controller") {
			continue
		}
		parts := strings.SplitN(line, ": ", 2)
		if len(parts) < 2 {
			continue
		}
		model := strings.TrimSpace(parts[1])
		if model == "" {
			continue
		}
		return &GPU{
			Vendor:         vendor,
			Model:          model,
			SupportsOpenCL: true,
		}, true
	}
	return nil, false
}
