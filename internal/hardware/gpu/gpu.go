// Package gpu detects discrete and integrated GPUs through per-vendor
// strategies. Absence of a GPU is a normal outcome, never an error.
package gpu

import (
	"context"
	"runtime"

	"github.com/wavescribe/wavescribe/pkg/debug"
)

// Vendor identifies a GPU manufacturer.
type Vendor string

const (
	VendorNVIDIA Vendor = "NVIDIA"
	VendorAMD    Vendor = "AMD"
	VendorIntel  Vendor = "Intel"
	VendorApple  Vendor = "Apple"
)

// GPU describes a detected graphics device and its acceleration
// capabilities. VRAM is a raw byte count.
type GPU struct {
	Vendor         Vendor
	Model          string
	Driver         string
	VRAMBytes      uint64
	SupportsCUDA   bool
	SupportsOpenCL bool
	SupportsMetal  bool
}

// detector is one vendor-specific detection strategy.
type detector struct {
	vendor Vendor
	detect func(ctx context.Context) (*GPU, bool)
}

// Detect probes vendor strategies in priority order and returns the first
// match, or nil when no GPU is found. On Darwin the Apple strategy runs
// first; elsewhere NVIDIA is preferred so CUDA capability is not masked by
// an integrated device.
func Detect(ctx context.Context) *GPU {
	detectors := []detector{
		{VendorNVIDIA, detectNVIDIA},
		{VendorAMD, detectAMD},
		{VendorIntel, detectIntel},
	}
	if runtime.GOOS == "darwin" {
		detectors = []detector{{VendorApple, detectApple}}
	}

	for _, d := range detectors {
		if g, ok := d.detect(ctx); ok {
			debug.Info("Detected %s GPU: %s", g.Vendor, g.Model)
			return g
		}
		debug.Debug("No %s GPU detected", d.vendor)
	}
	return nil
}
