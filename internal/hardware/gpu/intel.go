package gpu

import (
	"context"

	"github.com/wavescribe/wavescribe/internal/runner"
)

// detectIntel scans lspci for an Intel display controller. Integrated
// Intel graphics expose OpenCL through the NEO runtime.
func detectIntel(ctx context.Context) (*GPU, bool) {
	out, ok := runner.TryRun(ctx, "lspci", "-d", "8086:", "-nn")
	if !ok {
		return nil, false
	}
	return parseLspciDisplay(out, VendorIntel)
}
