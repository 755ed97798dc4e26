// Package download streams HTTP resources to disk with progress
// reporting and cooperative cancellation.
package download

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// chunkSize bounds the bytes read between cancellation checks.
const chunkSize = 32 * 1024

// Progress is a transient snapshot emitted while a transfer runs.
// Percent is monotonically non-decreasing and reaches 100 before Fetch
// returns success.
type Progress struct {
	Percent         int
	TotalBytes      int64
	DownloadedBytes int64
}

// Fetch downloads url into dest. The body is buffered in memory and
// written through a temp file so dest never holds a partial download; the
// artifacts handled here are tool binaries and models well under the size
// where incremental writes would matter. onProgress may be nil.
func Fetch(ctx context.Context, client *http.Client, url, dest string, onProgress func(Progress)) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.KindCancelled, err, "download cancelled before start")
	}

	debug.Info("Downloading %s -> %s", url, dest)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.Wrap(errs.KindNetwork, err, "building request for %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errs.Wrap(errs.KindCancelled, ctx.Err(), "download cancelled")
		}
		return errs.Wrap(errs.KindNetwork, err, "requesting %s", url).
			WithRemedy("check your network connection and proxy settings")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.New(errs.KindNetwork, "server returned %s for %s", resp.Status, url)
	}

	total := resp.ContentLength
	if total <= 0 {
		return errs.New(errs.KindNetwork, "server did not report a size for %s", url)
	}

	body, err := readAll(ctx, resp.Body, total, onProgress)
	if err != nil {
		return err
	}

	if err := writeAtomic(dest, body); err != nil {
		return err
	}

	debug.Info("Downloaded %d bytes in %s", total, time.Since(start).Round(time.Millisecond))
	return nil
}

// readAll drains r in chunks, checking for cancellation before each read
// and reporting progress after each one.
func readAll(ctx context.Context, r io.Reader, total int64, onProgress func(Progress)) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, total))
	chunk := make([]byte, chunkSize)
	var downloaded int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.KindCancelled, err, "download cancelled")
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			downloaded += int64(n)
			report(onProgress, downloaded, total)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, errs.Wrap(errs.KindCancelled, ctx.Err(), "download cancelled")
			}
			return nil, errs.Wrap(errs.KindNetwork, err, "reading response body").
				WithRemedy("check your network connection and retry")
		}
	}

	if downloaded < total {
		return nil, errs.New(errs.KindNetwork, "short body: got %d of %d bytes", downloaded, total)
	}
	return buf.Bytes(), nil
}

func report(onProgress func(Progress), downloaded, total int64) {
	if onProgress == nil {
		return
	}
	percent := int(downloaded * 100 / total)
	if percent > 100 {
		percent = 100
	}
	onProgress(Progress{
		Percent:         percent,
		TotalBytes:      total,
		DownloadedBytes: downloaded,
	})
}

// writeAtomic lands data at dest via a same-directory temp file and
// rename, so an interrupted write never leaves a truncated dest.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errs.Wrap(errs.KindIO, err, "creating %s", dir).
			WithRemedy("check directory permissions for %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "creating temp file in %s", dir).
			WithRemedy("check directory permissions and free space for %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.KindIO, err, "writing %s", tmpName).
			WithRemedy("check free disk space")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.KindIO, err, "closing %s", tmpName)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.KindIO, err, "moving download into place at %s", dest)
	}
	return nil
}
