package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenReadFrameRoundTrips(t *testing.T) {
	req, err := NewRequest(MethodSearch, SearchParams{Query: "auth", Limit: 20})
	require.NoError(t, err)
	require.NotEmpty(t, req.ID)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, req))

	var got Request
	require.NoError(t, ReadFrame(bufio.NewReader(&buf), &got))
	require.Equal(t, req.ID, got.ID)
	require.Equal(t, req.Method, got.Method)

	var params SearchParams
	require.NoError(t, json.Unmarshal(got.Params, &params))
	require.Equal(t, "auth", params.Query)
}

func TestReadFrameRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	header[0] = 0xFF
	header[1] = 0xFF
	header[2] = 0xFF
	header[3] = 0xFF
	buf.Write(header[:])

	var got Request
	err := ReadFrame(bufio.NewReader(&buf), &got)
	require.Error(t, err)
}

func TestNewOKResponseAndNewErrorResponse(t *testing.T) {
	ok, err := NewOKResponse("id-1", Ack{Message: "done"})
	require.NoError(t, err)
	require.True(t, ok.OK)
	require.Nil(t, ok.Error)

	failed := NewErrorResponse("id-2", "search-error", "boom")
	require.False(t, failed.OK)
	require.Equal(t, "search-error", failed.Error.Kind)
}
