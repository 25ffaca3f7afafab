package iojson

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"total": 2}))
	assert.Equal(t, "{\n  \"total\": 2\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"bad": make(chan int)}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "error marshaling in iojson.Write")
}

func TestWriteLine(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, WriteLine(&out, map[string]string{"event": "reload"}))
	require.NoError(t, WriteLine(&out, map[string]string{"event": "sweep"}))
	assert.Equal(t, "{\"event\":\"reload\"}\n{\"event\":\"sweep\"}\n", out.String())
}

func TestMarshalError(t *testing.T) {
	got := MarshalError("task not found", map[string]any{"id": "42"})

	var e Error
	require.NoError(t, json.Unmarshal([]byte(got), &e))
	assert.Equal(t, "task not found", e.Message)
	assert.Equal(t, "42", e.Data["id"])
}
