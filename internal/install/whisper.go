package install

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/internal/recommend"
	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/console"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// buildTimeout bounds the whisper.cpp compile. A cold build on a slow
// machine takes a few minutes; anything past this is wedged.
const buildTimeout = 10 * time.Minute

// installSpeechEngine clones, builds, and provisions whisper.cpp: build
// tool check, pinned clone, cmake configure and build, binary
// verification, then the baseline model download.
func (i *Installer) installSpeechEngine(ctx context.Context, t Target) error {
	if err := i.checkTools(ctx); err != nil {
		return err
	}

	srcDir := i.Dirs.SpeechEngine
	if err := i.cloneSource(ctx, srcDir); err != nil {
		return err
	}
	if err := i.buildSource(ctx, srcDir); err != nil {
		return err
	}

	if !t.Installed() {
		return errs.New(errs.KindNonZeroExit, "build finished but %s is missing", t.BinaryPath).
			WithRemedy("inspect the build output above, then delete %s and re-run setup", srcDir)
	}
	console.Success("whisper.cpp built at %s", t.BinaryPath)

	return i.EnsureModel(ctx, i.Model)
}

// cloneSource fetches the pinned source revision. An existing checkout is
// reused so a failed build can resume without re-cloning.
func (i *Installer) cloneSource(ctx context.Context, srcDir string) error {
	if _, err := os.Stat(filepath.Join(srcDir, "CMakeLists.txt")); err == nil {
		debug.Info("Source already present at %s, skipping clone", srcDir)
		return nil
	}

	console.Status("Cloning whisper.cpp %s", speechEngineTag)
	_, err := i.run(ctx, "git", []string{
		"clone", "--depth", "1", "--branch", speechEngineTag,
		speechEngineRepo, srcDir,
	}, runner.Options{
		OnStderrLine: func(line string) { debug.Debug("git: %s", line) },
	})
	if err != nil {
		if errs.IsCancelled(err) {
			return err
		}
		return errs.Wrap(errs.KindNetwork, err, "cloning whisper.cpp").
			WithRemedy("check your network connection and that git can reach github.com")
	}
	return nil
}

// buildSource runs the cmake configure and compile steps inside srcDir.
func (i *Installer) buildSource(ctx context.Context, srcDir string) error {
	buildDir := filepath.Join(srcDir, "build")

	console.Status("Configuring build")
	_, err := i.run(ctx, "cmake", []string{
		"-S", srcDir, "-B", buildDir, "-DCMAKE_BUILD_TYPE=Release",
	}, runner.Options{
		OnStdoutLine: func(line string) { debug.Debug("cmake: %s", line) },
		OnStderrLine: func(line string) { debug.Debug("cmake: %s", line) },
	})
	if err != nil {
		if errs.IsCancelled(err) {
			return err
		}
		return errs.Wrap(errs.KindNonZeroExit, err, "configuring whisper.cpp build").
			WithRemedy("check that cmake and a C++ compiler are installed and working")
	}

	console.Status("Compiling (this can take several minutes)")
	_, err = i.run(ctx, "cmake", []string{
		"--build", buildDir, "--config", "Release",
		"-j", strconv.Itoa(buildParallelism()),
	}, runner.Options{
		Timeout:      buildTimeout,
		OnStdoutLine: func(line string) { debug.Debug("build: %s", line) },
		OnStderrLine: func(line string) { debug.Debug("build: %s", line) },
	})
	if err != nil {
		if errs.IsCancelled(err) || errs.Is(err, errs.KindTimeout) {
			return err
		}
		return errs.Wrap(errs.KindNonZeroExit, err, "compiling whisper.cpp").
			WithRemedy("run with DEBUG=true for full compiler output")
	}
	return nil
}

func buildParallelism() int {
	n := runtime.NumCPU()
	if n > recommend.MaxThreads {
		n = recommend.MaxThreads
	}
	if n < 1 {
		n = 1
	}
	return n
}

// EnsureModel downloads the ggml model for the given size unless it is
// already on disk.
func (i *Installer) EnsureModel(ctx context.Context, size recommend.ModelSize) error {
	preset, ok := i.Catalog.PresetFor(size)
	if !ok {
		return errs.New(errs.KindIO, "no model preset available for size %q", size)
	}

	dest := filepath.Join(i.Dirs.Models, preset.FileName)
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		console.Info("Model %s already present", preset.FileName)
		return nil
	}

	console.Info("Downloading model %s (~%s)", preset.Name, console.FormatBytes(preset.SizeBytes))
	if err := i.fetchWithProgress(ctx, preset.URL, dest); err != nil {
		return err
	}
	console.Success("Model %s ready", preset.FileName)
	return nil
}
