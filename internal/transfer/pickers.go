package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/colonyops/taskcal/internal/core/styles"
)

// StdinName is the Source name used for piped input.
const StdinName = "-"

// PathPicker opens a fixed path, as given by a --file flag.
type PathPicker struct {
	Path string
}

func (p PathPicker) Pick(ctx context.Context) (Source, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return Source{}, fmt.Errorf("open import file: %w", err)
	}
	return Source{Name: p.Path, Body: f}, nil
}

// ReaderPicker reads piped input. It refuses an interactive terminal so a
// bare invocation does not hang waiting for input.
type ReaderPicker struct {
	In *os.File
}

func (p ReaderPicker) Pick(ctx context.Context) (Source, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	if term.IsTerminal(int(in.Fd())) {
		return Source{}, errors.New("no input provided (stdin is a terminal); use --file or pipe JSON input")
	}
	return Source{Name: StdinName, Body: io.NopCloser(in)}, nil
}

// FilePicker asks the user to choose a document with an interactive file
// browser limited to .json files.
type FilePicker struct {
	Dir string
}

func (p FilePicker) Pick(ctx context.Context) (Source, error) {
	dir := p.Dir
	if dir == "" {
		dir = "."
	}

	var path string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewFilePicker().
				Title("Import tasks").
				Description("Choose a tasks JSON document").
				CurrentDirectory(dir).
				AllowedTypes([]string{".json"}).
				Picking(true).
				Value(&path),
		),
	).WithTheme(styles.FormTheme())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return Source{}, ErrCancelled
		}
		return Source{}, fmt.Errorf("file picker: %w", err)
	}

	if strings.TrimSpace(path) == "" {
		return Source{}, ErrCancelled
	}
	return PathPicker{Path: path}.Pick(ctx)
}
