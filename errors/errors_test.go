package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := Wrapf(ErrSubmitFailed, "POST /message: status %d", 500)
	require.Error(t, err)

	assert.True(t, Is(err, ErrSubmitFailed))
	assert.False(t, Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "status 500")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrUnavailable, ErrNoEndpoint, ErrSubmitFailed, ErrTimeout}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}
