package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	base := errors.New("dial tcp: refused")
	err := Wrap(CodeTwilightUnavailable, "twilight fetch failed", base)

	require.EqualError(t, err, "twilight fetch failed: dial tcp: refused")
	require.True(t, IsCode(err, CodeTwilightUnavailable))
	require.False(t, IsCode(err, CodeInvalidInput))
	require.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("tick: %w", err)
	require.True(t, IsCode(wrapped, CodeTwilightUnavailable))
	require.Equal(t, CodeTwilightUnavailable, CodeOf(wrapped))
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(CodeInvalidInput, "query cannot be empty", nil)
	require.EqualError(t, err, "query cannot be empty")
	require.Nil(t, errors.Unwrap(err))
	require.Equal(t, "", CodeOf(errors.New("plain")))
}
