// Package source turns workflow files into graph values. Each supported format
// has a Loader; Load picks one from the file extension.
//
// Loaders only decode. Structural checks on the resulting graph belong to
// graph.Validate, which the caller runs before executing.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/burstflow/internal/ctxlog"
	"github.com/specialistvlad/burstflow/internal/fsutil"
	"github.com/specialistvlad/burstflow/internal/graph"
)

// ErrUnsupportedFormat is returned for files no loader understands.
var ErrUnsupportedFormat = errors.New("unsupported workflow format")

// Workflow is a decoded workflow file.
type Workflow struct {
	ID    string
	Name  string
	Path  string
	Graph graph.Graph
}

// Loader decodes one workflow file.
type Loader interface {
	Load(ctx context.Context, path string) (*Workflow, error)
}

var loaders = map[string]Loader{
	".hcl":  NewHCLLoader(),
	".json": NewJSONLoader(),
	".yaml": NewYAMLLoader(),
	".yml":  NewYAMLLoader(),
	".md":   NewSuggestionLoader(),
	".txt":  NewSuggestionLoader(),
}

// Extensions lists the file extensions Load accepts, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(loaders))
	for ext := range loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoaderFor returns the loader registered for path's extension.
func LoaderFor(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, path)
	}
	return l, nil
}

// Load decodes the workflow at path with the loader for its extension.
func Load(ctx context.Context, path string) (*Workflow, error) {
	l, err := LoaderFor(path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loading workflow file.", "path", path, "loader", fmt.Sprintf("%T", l))
	wf, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if wf.ID == "" {
		wf.ID = defaultID(path)
	}
	wf.Path = path
	return wf, nil
}

// Discover expands files and directories into the workflow files they contain.
func Discover(paths ...string) ([]string, error) {
	return fsutil.FindFiles(paths, Extensions()...)
}

func defaultID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
