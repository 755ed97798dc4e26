// Package install sequences tool installation: the yt-dlp binary download
// and the whisper.cpp clone, build, and model fetch. Every step observes
// the session context and an installed target is never touched again.
package install

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wavescribe/wavescribe/internal/config"
	"github.com/wavescribe/wavescribe/internal/deps"
	"github.com/wavescribe/wavescribe/internal/download"
	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/internal/recommend"
	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/console"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// runFunc and fetchFunc mirror runner.Run and download.Fetch so tests can
// substitute recorders.
type runFunc func(ctx context.Context, name string, args []string, opts runner.Options) (runner.Result, error)

type fetchFunc func(ctx context.Context, client *http.Client, url, dest string, onProgress func(download.Progress)) error

// Installer drives installation of both tools.
type Installer struct {
	Dirs    *config.InstallDirs
	Client  *http.Client
	Catalog Catalog
	Model   recommend.ModelSize

	run        runFunc
	fetch      fetchFunc
	checkTools func(ctx context.Context) error
	prompts    *bufio.Scanner
}

// New builds an Installer wired to the real command runner and downloader,
// prompting on stdin when a choice is needed.
func New(dirs *config.InstallDirs, client *http.Client, catalog Catalog, model recommend.ModelSize) *Installer {
	return &Installer{
		Dirs:       dirs,
		Client:     client,
		Catalog:    catalog,
		Model:      model,
		run:        runner.Run,
		fetch:      download.Fetch,
		checkTools: requireBuildTools,
		prompts:    bufio.NewScanner(os.Stdin),
	}
}

// Pending returns targets whose installed predicate is false, in install
// order.
func (i *Installer) Pending() []Target {
	var pending []Target
	for _, t := range Targets(i.Dirs) {
		if !t.Installed() {
			pending = append(pending, t)
		}
	}
	return pending
}

// Install installs one target. Already-installed targets return
// immediately without process or network activity.
func (i *Installer) Install(ctx context.Context, id TargetID) error {
	t, ok := TargetByID(i.Dirs, id)
	if !ok {
		return errs.New(errs.KindUnsupportedPlatform, "unknown installation target %q", id)
	}
	if t.Installed() {
		console.Info("%s is already installed at %s", t.Name, t.BinaryPath)
		return nil
	}

	switch t.ID {
	case AudioDownloader:
		return i.installAudioDownloader(ctx, t)
	case SpeechEngine:
		return i.installSpeechEngine(ctx, t)
	}
	return errs.New(errs.KindUnsupportedPlatform, "unknown installation target %q", id)
}

// RunAutomatic installs every missing target, presenting a choice when
// more than one is pending and re-checking installed state after each
// round until nothing remains. Already fully installed is a terminal
// success.
func (i *Installer) RunAutomatic(ctx context.Context) error {
	pending := i.Pending()
	if len(pending) == 0 {
		console.Success("All tools are already installed")
		return nil
	}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(errs.KindCancelled, err, "installation cancelled")
		}

		selected, err := i.selectTargets(pending)
		if err != nil {
			return err
		}
		for _, t := range selected {
			if err := ctx.Err(); err != nil {
				return errs.Wrap(errs.KindCancelled, err, "installation cancelled")
			}
			console.Status("Installing %s", t.Name)
			if err := i.Install(ctx, t.ID); err != nil {
				return err
			}
			if !t.Installed() {
				return errs.New(errs.KindIO, "%s did not appear at %s after installation", t.Name, t.BinaryPath)
			}
			console.Success("%s installed", t.Name)
		}

		pending = i.Pending()
	}

	console.Success("All tools installed")
	return nil
}

// selectTargets asks which pending target to install. A single pending
// target needs no prompt; "a" or an empty answer (including a closed
// stdin, so piped invocations stay unattended) selects everything.
func (i *Installer) selectTargets(pending []Target) ([]Target, error) {
	if len(pending) == 1 {
		return pending, nil
	}

	console.Print("The following tools are not installed:")
	for n, t := range pending {
		console.Print("  [%d] %s", n+1, t.Name)
	}
	console.Print("  [a] all of them")
	console.Print("Choice [1-%d/a, default a]:", len(pending))

	choice := ""
	if i.prompts != nil && i.prompts.Scan() {
		choice = strings.TrimSpace(i.prompts.Text())
	}

	switch choice {
	case "", "a", "all":
		return pending, nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(pending) {
		return nil, fmt.Errorf("invalid choice %q (expected 1-%d or a)", choice, len(pending))
	}
	return pending[n-1 : n], nil
}

// fetchWithProgress downloads url to dest rendering an in-place progress
// bar named after the destination file.
func (i *Installer) fetchWithProgress(ctx context.Context, url, dest string) error {
	name := filepath.Base(dest)
	err := i.fetch(ctx, i.Client, url, dest, func(p download.Progress) {
		console.Progress("%s", console.FormatDownloadProgress(console.DownloadProgress{
			FileName:      name,
			BytesReceived: p.DownloadedBytes,
			TotalBytes:    p.TotalBytes,
		}))
	})
	console.ProgressDone()
	return err
}

// requireBuildTools verifies the build prerequisites and fails fast with
// an actionable message when any are missing.
func requireBuildTools(ctx context.Context) error {
	set := deps.Check(ctx)
	if deps.MeetsRequirements(set) {
		return nil
	}
	missing := deps.Missing(set)
	debug.Warning("missing build tools: %v", missing)
	return errs.New(errs.KindNonZeroExit, "missing required build tools: %v", missing).
		WithRemedy("install them with your system package manager (e.g. apt install git cmake build-essential) and re-run setup")
}
