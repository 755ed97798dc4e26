package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/wavescribe/wavescribe/internal/config"
	"github.com/wavescribe/wavescribe/internal/deps"
	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/internal/hardware"
	"github.com/wavescribe/wavescribe/internal/install"
	"github.com/wavescribe/wavescribe/internal/media"
	"github.com/wavescribe/wavescribe/internal/recommend"
	"github.com/wavescribe/wavescribe/pkg/console"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

func usage() {
	fmt.Fprintf(os.Stderr, `wavescribe - local transcription toolchain installer

Usage:
  wavescribe env                      probe hardware and dependencies
  wavescribe setup [flags]            install missing tools
  wavescribe download [flags] <url>   extract WAV audio from a media URL

Setup flags:
  -model string     model size override (tiny|base|small|medium|large)
  -catalog string   path to a YAML model catalog override

Download flags:
  -output string    output directory (default ".")
`)
}

func main() {
	config.LoadEnvFile()
	debug.Reinitialize()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// One interrupt handler at the outermost boundary; everything below
	// observes cancellation through the context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "env":
		err = runEnv(ctx)
	case "setup":
		err = runSetup(ctx, os.Args[2:])
	case "download":
		err = runDownload(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	exit(err)
}

// exit maps an error to the process exit code. Cancellation is a benign
// outcome, not a failure.
func exit(err error) {
	if err == nil {
		return
	}
	if errs.IsCancelled(err) {
		console.Warning("Cancelled")
		os.Exit(0)
	}
	console.Error("%v", err)
	if remedy := errs.RemedyOf(err); remedy != "" {
		console.Remedy("%s", remedy)
	}
	os.Exit(1)
}

// runEnv probes hardware and dependencies concurrently and prints the
// snapshot with the derived recommendation.
func runEnv(ctx context.Context) error {
	var profile hardware.Profile
	var set deps.Set

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); profile = hardware.Probe(ctx) }()
	go func() { defer wg.Done(); set = deps.Check(ctx) }()
	wg.Wait()

	printProfile(profile)
	printDeps(set)
	printRecommendation(recommend.Recommend(profile))
	printInstallState()
	return nil
}

func printProfile(p hardware.Profile) {
	console.Status("Hardware")
	console.Print("  CPU:      %s (%d cores, %d threads)", p.CPU.Model, p.CPU.PhysicalCores, p.CPU.LogicalThreads)
	console.Print("  Memory:   %s total, %s available",
		console.FormatBytes(int64(p.Memory.TotalBytes)),
		console.FormatBytes(int64(p.Memory.AvailableBytes)))
	if p.GPU != nil {
		apis := accelAPIs(p)
		console.Print("  GPU:      %s %s (%s)", p.GPU.Vendor, p.GPU.Model, apis)
		if p.GPU.VRAMBytes > 0 {
			console.Print("            VRAM %s", console.FormatBytes(int64(p.GPU.VRAMBytes)))
		}
	} else {
		console.Print("  GPU:      none detected")
	}
	console.Print("  Disk:     %s free of %s",
		console.FormatBytes(int64(p.Disk.AvailableBytes)),
		console.FormatBytes(int64(p.Disk.TotalBytes)))
	console.Print("  Platform: %s/%s %s", p.Platform.OS, p.Platform.Architecture, p.Platform.Version)
}

func accelAPIs(p hardware.Profile) string {
	apis := ""
	add := func(name string, ok bool) {
		if !ok {
			return
		}
		if apis != "" {
			apis += ", "
		}
		apis += name
	}
	add("CUDA", p.GPU.SupportsCUDA)
	add("Metal", p.GPU.SupportsMetal)
	add("OpenCL", p.GPU.SupportsOpenCL)
	if apis == "" {
		apis = "no acceleration"
	}
	return apis
}

func printDeps(set deps.Set) {
	console.Status("Dependencies")
	for _, name := range []string{deps.Git, deps.CMake, deps.Compiler, deps.Interpreter, deps.Make} {
		st := set[name]
		if st.Available {
			console.Print("  [+] %-10s %s", name, st.Version)
		} else {
			console.Print("  [-] %-10s not found", name)
		}
	}
	if missing := deps.Missing(set); len(missing) > 0 {
		console.Warning("Missing required build tools: %v", missing)
		console.Remedy("install them with your system package manager before running setup")
	}
}

func printRecommendation(cfg recommend.Config) {
	console.Status("Recommendation")
	console.Print("  Threads:      %d", cfg.ThreadCount)
	console.Print("  Model:        %s", cfg.ModelSize)
	console.Print("  Backend:      %s", cfg.Backend)
	console.Print("  Acceleration: %t", cfg.UseAcceleration)
}

func printInstallState() {
	dirs, err := config.GetInstallDirs()
	if err != nil {
		debug.Warning("install dirs unavailable: %v", err)
		return
	}
	console.Status("Installed tools")
	for _, t := range install.Targets(dirs) {
		if t.Installed() {
			console.Print("  [+] %-12s %s", t.Name, t.BinaryPath)
		} else {
			console.Print("  [-] %-12s not installed", t.Name)
		}
	}
}

func runSetup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	modelFlag := fs.String("model", "", "model size override (tiny|base|small|medium|large)")
	catalogFlag := fs.String("catalog", "", "path to a YAML model catalog override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dirs, err := config.GetInstallDirs()
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "preparing install directories").
			WithRemedy("set WAVESCRIBE_HOME to a writable directory")
	}

	catalog, err := install.LoadCatalog(*catalogFlag)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "loading model catalog")
	}

	model := recommend.ModelSize(*modelFlag)
	switch model {
	case "", recommend.ModelTiny, recommend.ModelBase, recommend.ModelSmall,
		recommend.ModelMedium, recommend.ModelLarge:
	default:
		return fmt.Errorf("unknown model size %q", model)
	}
	if model == "" {
		profile := hardware.Probe(ctx)
		cfg := recommend.Recommend(profile)
		model = cfg.ModelSize
		console.Info("Recommended model for this machine: %s (%d threads, %s backend)",
			cfg.ModelSize, cfg.ThreadCount, cfg.Backend)
	}

	client := config.NewHTTPClient(0)
	installer := install.New(dirs, client, catalog, model)
	return installer.RunAutomatic(ctx)
}

func runDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	outputFlag := fs.String("output", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	url := fs.Arg(0)

	dirs, err := config.GetInstallDirs()
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "locating installed tools")
	}

	extractor, err := media.New(dirs)
	if err != nil {
		return err
	}
	return extractor.ExtractWAV(ctx, url, *outputFlag)
}
