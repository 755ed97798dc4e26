// Package media wraps the installed yt-dlp binary to extract WAV audio
// from a media URL, with progress rendered from the tool's own output.
package media

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/wavescribe/wavescribe/internal/config"
	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/internal/install"
	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/console"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// progressPattern matches yt-dlp's download status lines, e.g.
// "[download]  42.3% of 10.00MiB at 1.2MiB/s".
var progressPattern = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)

// extractTimeout bounds one extraction. Long media on a slow connection
// takes far longer than a build; Ctrl-C covers anything shorter.
const extractTimeout = 2 * time.Hour

// Extractor runs the audio downloader tool.
type Extractor struct {
	binary string
	run    func(ctx context.Context, name string, args []string, opts runner.Options) (runner.Result, error)
}

// New builds an Extractor for the installed audio downloader. Returns an
// error when the tool is not installed yet.
func New(dirs *config.InstallDirs) (*Extractor, error) {
	target, ok := install.TargetByID(dirs, install.AudioDownloader)
	if !ok || !target.Installed() {
		return nil, errs.New(errs.KindIO, "audio downloader is not installed").
			WithRemedy("run `wavescribe setup` first")
	}
	return &Extractor{binary: target.BinaryPath, run: runner.Run}, nil
}

// ExtractWAV downloads the media at url and converts its audio track to a
// WAV file under outDir. The tool's own percentage output drives the
// progress line.
func (e *Extractor) ExtractWAV(ctx context.Context, url, outDir string) error {
	args := []string{
		"-x",
		"--audio-format", "wav",
		"--newline",
		"-o", filepath.Join(outDir, "%(title)s.%(ext)s"),
		url,
	}

	console.Info("Extracting audio from %s", url)
	_, err := e.run(ctx, e.binary, args, runner.Options{
		Timeout:      extractTimeout,
		OnStdoutLine: reportProgress,
		OnStderrLine: func(line string) { debug.Debug("yt-dlp: %s", line) },
	})
	console.ProgressDone()
	if err != nil {
		if errs.IsCancelled(err) || errs.Is(err, errs.KindTimeout) {
			return err
		}
		return errs.Wrap(errs.KindNonZeroExit, err, "extracting audio from %s", url).
			WithRemedy("check that the URL is reachable and supported")
	}

	console.Success("Audio saved under %s", outDir)
	return nil
}

func reportProgress(line string) {
	percent, ok := ParseProgressLine(line)
	if !ok {
		debug.Debug("yt-dlp: %s", line)
		return
	}
	console.Progress("Downloading %s", console.ProgressBar(int64(percent*10), 1000, 30))
}

// ParseProgressLine extracts the percentage from a yt-dlp download status
// line.
func ParseProgressLine(line string) (float64, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return percent, true
}
