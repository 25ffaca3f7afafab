package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskcal/internal/core/logging"
	"github.com/colonyops/taskcal/internal/core/task"
)

// DefaultPatterns restricts imports to JSON documents.
var DefaultPatterns = []string{"*.json"}

// Source is an opened import document.
type Source struct {
	Name string
	Body io.ReadCloser
}

// Picker chooses and opens the document to import. It returns ErrCancelled
// when the user backs out.
type Picker interface {
	Pick(ctx context.Context) (Source, error)
}

// Importer reads task arrays through a Picker.
type Importer struct {
	picker   Picker
	patterns []string
	log      zerolog.Logger
}

// NewImporter returns an importer that only accepts files whose base name
// matches one of patterns. An empty list uses DefaultPatterns.
func NewImporter(picker Picker, patterns []string, log zerolog.Logger) *Importer {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &Importer{
		picker:   picker,
		patterns: patterns,
		log:      logging.Component(log, "importer"),
	}
}

// Load picks, checks and decodes a document, reporting why it failed.
func (im *Importer) Load(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	src, err := im.picker.Pick(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Body.Close() }()

	if !Allowed(src.Name, im.patterns) {
		return nil, fmt.Errorf("%w: %s", ErrFileType, src.Name)
	}

	tasks, err := Decode(src.Body)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return tasks, nil
}

// Import is Load with every failure mapped to an empty list. Cancellation
// is silent; anything else is logged at warn.
func (im *Importer) Import(ctx context.Context) []task.Task {
	tasks, err := im.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCancelled) {
			im.log.Warn().Ctx(ctx).Err(err).Msg("import failed")
		}
		return []task.Task{}
	}
	return tasks
}

// Allowed reports whether the base name of path matches any pattern. Names
// read from stdin ("-") are always allowed.
func Allowed(path string, patterns []string) bool {
	if path == StdinName {
		return true
	}
	name := filepath.Base(path)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
