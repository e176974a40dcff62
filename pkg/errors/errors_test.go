package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesTypeAndStack(t *testing.T) {
	err := New(ErrorTypeInput, "cannot open feed").WithDetail("path", "/tmp/feed.zip")

	assert.Equal(t, "input: cannot open feed", err.Error())
	assert.Equal(t, "/tmp/feed.zip", err.Details["path"])
	assert.NotEmpty(t, err.Stack)
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeInput, "read stops.txt")

	require.NotNil(t, err)
	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.True(t, IsType(err, ErrorTypeInput))
	assert.False(t, IsType(err, ErrorTypeOutput))
	assert.Equal(t, "input: read stops.txt: unexpected EOF", err.Error())
}

func TestWrapPreservesStackOfStructuredCause(t *testing.T) {
	inner := New(ErrorTypeInternal, "boom")
	outer := Wrap(inner, ErrorTypeOutput, "write report")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeOutput))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInput, "nothing"))
}
