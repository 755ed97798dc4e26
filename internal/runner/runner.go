// Package runner executes external commands with timeouts, cooperative
// cancellation, and line-oriented output streaming.
package runner

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/wavescribe/wavescribe/internal/errs"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

const (
	// DefaultTimeout bounds long-running commands such as builds.
	DefaultTimeout = 3 * time.Minute

	// ProbeTimeout bounds lightweight version and hardware probes.
	ProbeTimeout = 10 * time.Second
)

// Options configures a single command execution.
type Options struct {
	Dir          string
	Timeout      time.Duration
	OnStdoutLine func(string)
	OnStderrLine func(string)
}

// Result carries the full captured output of a completed command.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes a command and waits for it to finish. The per-operation
// timeout and the session context race; whichever fires first determines the
// failure kind, and either way the process is killed and fully reaped before
// Run returns. Line callbacks are invoked synchronously as each stream
// produces a line.
func Run(ctx context.Context, name string, args []string, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, errs.New(errs.KindCancelled, "%s not started", name)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	cmd.SysProcAttr = sysProcAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, errs.Wrap(errs.KindIO, err, "failed to open stdout pipe for %s", name)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, errs.Wrap(errs.KindIO, err, "failed to open stderr pipe for %s", name)
	}

	if err := cmd.Start(); err != nil {
		return Result{}, errs.Wrap(errs.KindIO, err, "failed to start %s", name)
	}

	var outBuf, errBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(&wg, stdout, &outBuf, opts.OnStdoutLine)
	go scanLines(&wg, stderr, &errBuf, opts.OnStderrLine)

	done := make(chan error, 1)
	go func() {
		wg.Wait()
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		terminate(cmd)
		<-done
		debug.Info("Command %s cancelled", name)
		return Result{Stdout: outBuf.String(), Stderr: errBuf.String()},
			errs.New(errs.KindCancelled, "%s cancelled", name)

	case <-timer.C:
		terminate(cmd)
		<-done
		debug.Warning("Command %s killed after %s timeout", name, timeout)
		return Result{Stdout: outBuf.String(), Stderr: errBuf.String()},
			errs.New(errs.KindTimeout, "%s exceeded %s", name, timeout)

	case err := <-done:
		result := Result{Stdout: outBuf.String(), Stderr: errBuf.String()}
		if err != nil {
			debug.Debug("Command %s failed: %v", name, err)
			return result, errs.Wrap(errs.KindNonZeroExit, err,
				"%s failed: %s", name, stderrTail(result.Stderr))
		}
		return result, nil
	}
}

// TryRun executes a command with the probe timeout and swallows all errors.
// Used for best-effort probing where absence of a tool is expected, not
// exceptional. Returns the trimmed stdout and whether the command succeeded.
func TryRun(ctx context.Context, name string, args ...string) (string, bool) {
	res, err := Run(ctx, name, args, Options{Timeout: ProbeTimeout})
	if err != nil {
		debug.Debug("Probe %s %v failed: %v", name, args, err)
		return "", false
	}
	return strings.TrimSpace(res.Stdout), true
}

// scanLines streams a pipe line by line into buf, invoking onLine per line.
func scanLines(wg *sync.WaitGroup, r io.Reader, buf *strings.Builder, onLine func(string)) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if onLine != nil {
			onLine(line)
		}
	}
}

// stderrTail returns the last non-empty stderr line for error messages.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output"
}
