package install

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavescribe/wavescribe/internal/config"
	"github.com/wavescribe/wavescribe/internal/download"
	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/internal/recommend"
	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/console"
)

func init() {
	console.SetWriter(io.Discard)
}

func testDirs(t *testing.T) *config.InstallDirs {
	t.Helper()
	root := t.TempDir()
	dirs := &config.InstallDirs{
		Root:            root,
		AudioDownloader: filepath.Join(root, config.AudioDownloaderDir),
		SpeechEngine:    filepath.Join(root, config.SpeechEngineDir),
	}
	dirs.Models = filepath.Join(dirs.SpeechEngine, config.ModelsDir)
	return dirs
}

// recorder captures every process and network call an installer makes and
// fabricates their side effects.
type recorder struct {
	commands  []string
	downloads []string
}

func (r *recorder) installer(dirs *config.InstallDirs) *Installer {
	i := New(dirs, &http.Client{}, DefaultCatalog(), recommend.ModelBase)
	i.run = func(ctx context.Context, name string, args []string, opts runner.Options) (runner.Result, error) {
		r.commands = append(r.commands, name)
		switch name {
		case "git":
			// clone target is the last argument
			dir := args[len(args)-1]
			if err := os.MkdirAll(dir, 0750); err != nil {
				return runner.Result{}, err
			}
			if err := os.WriteFile(filepath.Join(dir, "CMakeLists.txt"), []byte("x"), 0644); err != nil {
				return runner.Result{}, err
			}
		case "cmake":
			if args[0] == "--build" {
				bin := filepath.Join(args[1], "bin")
				if err := os.MkdirAll(bin, 0750); err != nil {
					return runner.Result{}, err
				}
				binName := speechEngineBinary()
				if err := os.WriteFile(filepath.Join(bin, binName), []byte("elf"), 0755); err != nil {
					return runner.Result{}, err
				}
			}
		}
		return runner.Result{}, nil
	}
	i.checkTools = func(ctx context.Context) error { return nil }
	i.prompts = bufio.NewScanner(strings.NewReader(""))
	i.fetch = func(ctx context.Context, client *http.Client, url, dest string, onProgress func(download.Progress)) error {
		r.downloads = append(r.downloads, url)
		if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
			return err
		}
		return os.WriteFile(dest, []byte("payload"), 0644)
	}
	return i
}

func markInstalled(t *testing.T, target Target) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(target.BinaryPath), 0750))
	require.NoError(t, os.WriteFile(target.BinaryPath, []byte("bin"), 0755))
}

func TestPendingOrder(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	pending := i.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, AudioDownloader, pending[0].ID)
	assert.Equal(t, SpeechEngine, pending[1].ID)

	markInstalled(t, pending[0])
	pending = i.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, SpeechEngine, pending[0].ID)
}

func TestInstallAudioDownloader(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	require.NoError(t, i.Install(context.Background(), AudioDownloader))

	require.Len(t, rec.downloads, 1)
	assert.Contains(t, rec.downloads[0], "yt-dlp")
	assert.Empty(t, rec.commands, "binary install runs no external commands")

	target, _ := TargetByID(dirs, AudioDownloader)
	assert.True(t, target.Installed())
}

func TestInstallAlreadyInstalledIsNoOp(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	for _, target := range Targets(dirs) {
		markInstalled(t, target)
	}

	require.NoError(t, i.Install(context.Background(), AudioDownloader))
	require.NoError(t, i.Install(context.Background(), SpeechEngine))

	assert.Empty(t, rec.commands, "no processes for installed targets")
	assert.Empty(t, rec.downloads, "no downloads for installed targets")
}

func TestRunAutomaticInstallsEverything(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	require.NoError(t, i.RunAutomatic(context.Background()))

	for _, target := range Targets(dirs) {
		assert.True(t, target.Installed(), "target %s", target.ID)
	}
	assert.Contains(t, rec.commands, "git")
	assert.Contains(t, rec.commands, "cmake")

	// Model artifact landed beside the engine
	preset, ok := DefaultCatalog().PresetFor(recommend.ModelBase)
	require.True(t, ok)
	_, err := os.Stat(filepath.Join(dirs.Models, preset.FileName))
	assert.NoError(t, err)
}

func TestSelectTargetsSinglePendingSkipsPrompt(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)
	i.prompts = nil // a prompt read here would panic

	target, _ := TargetByID(dirs, SpeechEngine)
	selected, err := i.selectTargets([]Target{target})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, SpeechEngine, selected[0].ID)
}

func TestSelectTargetsByNumber(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)
	i.prompts = bufio.NewScanner(strings.NewReader("2\n"))

	selected, err := i.selectTargets(Targets(dirs))
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, SpeechEngine, selected[0].ID)
}

func TestSelectTargetsDefaultsToAll(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	for _, answer := range []string{"\n", "a\n", "all\n", ""} {
		i.prompts = bufio.NewScanner(strings.NewReader(answer))
		selected, err := i.selectTargets(Targets(dirs))
		require.NoError(t, err, "answer %q", answer)
		assert.Len(t, selected, 2, "answer %q", answer)
	}
}

func TestSelectTargetsInvalidChoice(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	for _, answer := range []string{"0\n", "3\n", "espresso\n"} {
		i.prompts = bufio.NewScanner(strings.NewReader(answer))
		_, err := i.selectTargets(Targets(dirs))
		assert.Error(t, err, "answer %q", answer)
	}
}

func TestRunAutomaticHonorsSelection(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)
	// First round: pick only yt-dlp; second round has one target left and
	// installs it without a prompt.
	i.prompts = bufio.NewScanner(strings.NewReader("1\n"))

	require.NoError(t, i.RunAutomatic(context.Background()))

	for _, target := range Targets(dirs) {
		assert.True(t, target.Installed(), "target %s", target.ID)
	}
}

func TestRunAutomaticTerminalWhenInstalled(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	for _, target := range Targets(dirs) {
		markInstalled(t, target)
	}

	require.NoError(t, i.RunAutomatic(context.Background()))
	assert.Empty(t, rec.commands)
	assert.Empty(t, rec.downloads)
}

func TestInstallCancelled(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := i.RunAutomatic(ctx)
	require.Error(t, err)
	assert.True(t, errs.IsCancelled(err))
	assert.Empty(t, rec.downloads)
}

func TestInstallUnknownTarget(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	err := i.Install(context.Background(), TargetID("espresso-machine"))
	require.Error(t, err)
}

func TestSpeechEngineFailsFastWithoutBuildTools(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)
	i.checkTools = func(ctx context.Context) error {
		return errs.New(errs.KindNonZeroExit, "missing required build tools: [git cmake]")
	}

	err := i.Install(context.Background(), SpeechEngine)
	require.Error(t, err)
	assert.Empty(t, rec.commands, "no clone or build attempted")
	assert.Empty(t, rec.downloads, "no model download attempted")
}

func TestCloneSkippedWhenSourcePresent(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	require.NoError(t, os.MkdirAll(dirs.SpeechEngine, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.SpeechEngine, "CMakeLists.txt"), []byte("x"), 0644))

	require.NoError(t, i.cloneSource(context.Background(), dirs.SpeechEngine))
	assert.Empty(t, rec.commands, "existing checkout must not be re-cloned")
}

func TestEnsureModelSkipsExisting(t *testing.T) {
	dirs := testDirs(t)
	rec := &recorder{}
	i := rec.installer(dirs)

	preset, ok := DefaultCatalog().PresetFor(recommend.ModelBase)
	require.True(t, ok)
	require.NoError(t, os.MkdirAll(dirs.Models, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.Models, preset.FileName), []byte("model"), 0644))

	require.NoError(t, i.EnsureModel(context.Background(), recommend.ModelBase))
	assert.Empty(t, rec.downloads)
}
