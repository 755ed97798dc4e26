package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindTimeout, "build exceeded %s", "10m")
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindTimeout, kind)

	// Kind survives fmt.Errorf wrapping
	wrapped := fmt.Errorf("installing speech engine: %w", err)
	kind, ok = KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTimeout, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIs(t *testing.T) {
	err := New(KindNetwork, "server returned status 503")
	assert.True(t, Is(err, KindNetwork))
	assert.False(t, Is(err, KindTimeout))
	assert.False(t, Is(nil, KindNetwork))
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(New(KindCancelled, "aborted")))
	assert.True(t, IsCancelled(fmt.Errorf("step: %w", context.Canceled)))
	assert.False(t, IsCancelled(New(KindTimeout, "too slow")))
	assert.False(t, IsCancelled(nil))
}

func TestRemedy(t *testing.T) {
	err := New(KindNonZeroExit, "cmake configure failed").
		WithRemedy("install cmake: sudo apt-get install cmake")
	assert.Equal(t, "install cmake: sudo apt-get install cmake", RemedyOf(err))

	wrapped := fmt.Errorf("setup: %w", err)
	assert.Equal(t, "install cmake: sudo apt-get install cmake", RemedyOf(wrapped))

	assert.Empty(t, RemedyOf(errors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := Wrap(KindNetwork, inner, "fetching model")
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "network error")
	assert.Contains(t, err.Error(), "fetching model")
	assert.Contains(t, err.Error(), "connection refused")
}
