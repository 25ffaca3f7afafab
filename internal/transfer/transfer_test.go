package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcal/internal/core/task"
)

func sampleTasks() []task.Task {
	return []task.Task{
		{
			ID:        "1",
			Title:     "Buy milk",
			Status:    task.StatusTodo,
			Priority:  task.PriorityMedium,
			DueDate:   "2024-03-18",
			CreatedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:          "2",
			Title:       "Write report",
			Description: "quarterly",
			Status:      task.StatusDone,
			Priority:    task.PriorityHigh,
			CreatedAt:   time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestExport_IndentedArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleTasks()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \"id\": \"1\""), out)
	assert.Contains(t, out, `"dueDate": "2024-03-18"`)
	assert.True(t, strings.HasSuffix(out, "]\n"))

	var back []task.Task
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sampleTasks(), back)
}

func TestExport_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportFile(dir, sampleTasks())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), path)
	assert.NoFileExists(t, path+".tmp")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := Decode(f)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got)
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"object", `{"id":"1"}`},
		{"garbage", `not json`},
		{"truncated", `[{"id":"1"`},
		{"invalid element", `[{"id":"1","title":"","status":"todo","priority":"low"}]`},
		{"bad status", `[{"id":"1","title":"x","status":"later","priority":"low"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrParseFailure)
		})
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	got, err := Decode(strings.NewReader(" [] "))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type stubPicker struct {
	src Source
	err error
}

func (s stubPicker) Pick(ctx context.Context) (Source, error) { return s.src, s.err }

func source(name, body string) Source {
	return Source{Name: name, Body: io.NopCloser(strings.NewReader(body))}
}

func TestImporter_Import(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, Export(&valid, sampleTasks()))

	tests := []struct {
		name    string
		picker  Picker
		want    int
		wantErr error
	}{
		{"valid", stubPicker{src: source("tasks-data.json", valid.String())}, 2, nil},
		{"cancelled", stubPicker{err: ErrCancelled}, 0, ErrCancelled},
		{"malformed", stubPicker{src: source("tasks.json", "{oops")}, 0, ErrParseFailure},
		{"wrong type", stubPicker{src: source("tasks.yaml", valid.String())}, 0, ErrFileType},
		{"stdin", stubPicker{src: source(StdinName, valid.String())}, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := NewImporter(tt.picker, nil, zerolog.Nop())

			got := im.Import(context.Background())
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)

			_, err := NewImporter(tt.picker, nil, zerolog.Nop()).Load(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestImporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	im := NewImporter(stubPicker{src: source("a.json", "[]")}, nil, zerolog.Nop())
	_, err := im.Load(ctx)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, im.Import(ctx))
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"/tmp/tasks-data.json", DefaultPatterns, true},
		{"tasks.JSON", DefaultPatterns, false},
		{"backup.json.bak", DefaultPatterns, false},
		{"tasks-2024.json", []string{"tasks-*.json"}, true},
		{"notes.json", []string{"tasks-*.json"}, false},
		{"export.txt", []string{"*.{json,txt}"}, true},
		{StdinName, []string{"*.json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.path, tt.patterns))
		})
	}
}

func TestPathPicker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	src, err := PathPicker{Path: path}.Pick(context.Background())
	require.NoError(t, err)
	defer func() { _ = src.Body.Close() }()
	assert.Equal(t, path, src.Name)

	_, err = PathPicker{Path: path + ".missing"}.Pick(context.Background())
	require.Error(t, err)
}

func TestReaderPicker_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	src, err := ReaderPicker{In: f}.Pick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StdinName, src.Name)

	got, err := Decode(src.Body)
	require.NoError(t, err)
	assert.Empty(t, got)
}
