package json

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(sample{Code: "unused_shape", Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"unused_shape","count":2}`, string(data))

	var got sample
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, "unused_shape", got.Code)
}

func TestMarshalToWriterDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalToWriter(&buf, map[string]string{"url": "http://a.example/?x=1&y=<2>"}, ""))
	assert.Contains(t, buf.String(), "&y=<2>")
}

func TestMarshalToWriterIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalToWriter(&buf, sample{Code: "a"}, "  "))
	assert.Contains(t, buf.String(), "\n  \"code\"")
}

func TestStreamingEncoderArray(t *testing.T) {
	var buf bytes.Buffer
	se := NewStreamingEncoder(&buf, true)
	require.NoError(t, se.Encode(sample{Code: "a", Count: 1}))
	require.NoError(t, se.Encode(sample{Code: "b", Count: 2}))
	require.NoError(t, se.Close())

	var got []sample
	require.NoError(t, Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []sample{{"a", 1}, {"b", 2}}, got)
}

func TestStreamingEncoderLines(t *testing.T) {
	var buf bytes.Buffer
	se := NewStreamingEncoder(&buf, false)
	require.NoError(t, se.Encode(sample{Code: "a"}))
	require.NoError(t, se.Encode(sample{Code: "b"}))
	require.NoError(t, se.Close())

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte{'\n'}))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamingEncoderReportsWriteError(t *testing.T) {
	se := NewStreamingEncoder(failingWriter{}, true)
	assert.Error(t, se.Encode(sample{}))
	assert.Error(t, se.Close())
}
