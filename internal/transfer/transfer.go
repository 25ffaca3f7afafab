// Package transfer moves the task collection in and out of the board as a
// formatted JSON array, the "tasks-data.json" document.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/colonyops/taskcal/internal/core/task"
)

// DefaultFileName is the name exported documents are written under.
const DefaultFileName = "tasks-data.json"

var (
	// ErrParseFailure is returned when content is not a well-formed task array.
	ErrParseFailure = errors.New("import content is not a task array")
	// ErrCancelled is returned when the user dismisses the file picker.
	ErrCancelled = errors.New("import cancelled")
	// ErrFileType is returned when the chosen file matches none of the
	// allowed import patterns.
	ErrFileType = errors.New("file type not allowed for import")
)

// Export writes tasks as a two-space indented JSON array.
func Export(w io.Writer, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}

// ExportFile writes the export document to path atomically. When path is a
// directory the document is named DefaultFileName inside it. The final path
// is returned.
func ExportFile(path string, tasks []task.Task) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := Export(&buf, tasks); err != nil {
		return "", err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// Decode reads a task array. Anything other than a JSON array of valid
// tasks fails with ErrParseFailure; one invalid element rejects the whole
// document.
func Decode(r io.Reader) ([]task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrParseFailure)
	}

	var tasks []task.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	for i, t := range tasks {
		if err := task.Validate(t); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrParseFailure, i, err)
		}
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}
