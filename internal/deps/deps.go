// Package deps probes for the external tools the speech engine build
// needs. Each probe runs the tool's version command with a short timeout
// and parses the reported version.
package deps

import (
	"context"
	"regexp"

	"github.com/wavescribe/wavescribe/internal/runner"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// Canonical dependency names, used as Set keys and in user-facing output.
const (
	Git         = "git"
	CMake       = "cmake"
	Compiler    = "compiler"
	Interpreter = "python"
	Make        = "make"
)

// required lists the tools the speech engine build cannot proceed
// without, in the order they are reported to the user.
var required = []string{Git, CMake, Compiler}

// Status is the outcome of probing one tool.
type Status struct {
	Available bool
	Version   string
	Err       string
}

// Set maps dependency names to their probe outcomes. Built fresh on every
// Check call, never cached.
type Set map[string]Status

var versionPattern = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?`)

// ParseVersion extracts the first dotted version token from a tool's
// version output. Unrecognizable output yields "unknown version" so a
// working tool with odd banners still counts as available.
func ParseVersion(output string) string {
	if m := versionPattern.FindString(output); m != "" {
		return m
	}
	return "unknown version"
}

// probe runs a tool's version command and converts the outcome to a
// Status.
func probe(ctx context.Context, name string, args ...string) Status {
	out, ok := runner.TryRun(ctx, name, args...)
	if !ok {
		debug.Debug("dependency %s not found", name)
		return Status{Err: name + " not found"}
	}
	return Status{Available: true, Version: ParseVersion(out)}
}

// probeFirst tries candidate commands in order and reports the first that
// responds. Used for tools that ship under more than one name.
func probeFirst(ctx context.Context, candidates ...string) Status {
	var last Status
	for _, name := range candidates {
		last = probe(ctx, name, "--version")
		if last.Available {
			return last
		}
	}
	return last
}

// Check probes every known dependency and returns the full set. Probing
// never fails as a whole: a missing tool is recorded, not raised.
func Check(ctx context.Context) Set {
	set := Set{
		Git:         probe(ctx, "git", "--version"),
		CMake:       probe(ctx, "cmake", "--version"),
		Compiler:    probeFirst(ctx, "cc", "gcc", "clang"),
		Interpreter: probeFirst(ctx, "python3", "python"),
		Make:        probe(ctx, "make", "--version"),
	}
	for name, st := range set {
		if st.Available {
			debug.Info("dependency %s: %s", name, st.Version)
		}
	}
	return set
}

// MeetsRequirements reports whether every required tool is available.
func MeetsRequirements(set Set) bool {
	for _, name := range required {
		if !set[name].Available {
			return false
		}
	}
	return true
}

// Missing returns the names of unavailable required tools in their fixed
// reporting order. An empty slice means the build can proceed.
func Missing(set Set) []string {
	var missing []string
	for _, name := range required {
		if !set[name].Available {
			missing = append(missing, name)
		}
	}
	return missing
}
