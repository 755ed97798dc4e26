package install

import (
	"context"
	"os"
	"runtime"

	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/pkg/console"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// installAudioDownloader fetches the platform's yt-dlp release binary and
// marks it executable.
func (i *Installer) installAudioDownloader(ctx context.Context, t Target) error {
	if err := os.MkdirAll(i.Dirs.AudioDownloader, 0750); err != nil {
		return errs.Wrap(errs.KindIO, err, "creating %s", i.Dirs.AudioDownloader).
			WithRemedy("check permissions on %s", i.Dirs.Root)
	}

	url := audioDownloaderURL()
	console.Info("Downloading %s", url)
	if err := i.fetchWithProgress(ctx, url, t.BinaryPath); err != nil {
		return err
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(t.BinaryPath, 0755); err != nil {
			return errs.Wrap(errs.KindIO, err, "marking %s executable", t.BinaryPath)
		}
	}

	if !t.Installed() {
		return errs.New(errs.KindIO, "downloaded binary missing at %s", t.BinaryPath)
	}
	debug.Info("yt-dlp installed at %s", t.BinaryPath)
	return nil
}
