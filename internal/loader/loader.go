// Package loader reads dataset files from a filesystem root. JSON files are
// parsed, everything else is returned as raw text.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	layering "github.com/goliatone/go-countries/layering"
)

// NotFoundError reports a missing dataset file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("countries: file %q not found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

// ParseError reports a file that is not well formed JSON.
type ParseError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Offset > 0 {
		return fmt.Sprintf("countries: parse %q at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("countries: parse %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Loader resolves slash separated paths against FS.
type Loader struct {
	FS fs.FS
}

// New returns a Loader reading from fsys.
func New(fsys fs.FS) *Loader {
	return &Loader{FS: fsys}
}

// NewDir returns a Loader rooted at dir on the local disk.
func NewDir(dir string) *Loader {
	return New(os.DirFS(dir))
}

// LoadFile returns the raw contents of name.
func (l *Loader) LoadFile(name string) (string, error) {
	raw, err := fs.ReadFile(l.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: name, Err: err}
		}
		return "", fmt.Errorf("countries: read %q: %w", name, err)
	}
	return string(raw), nil
}

// LoadJSON reads name and decodes it into generic JSON values.
func (l *Loader) LoadJSON(name string) (any, error) {
	text, err := l.LoadFile(name)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		parseErr := &ParseError{Path: name, Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			parseErr.Offset = syntaxErr.Offset
		}
		return nil, parseErr
	}
	return out, nil
}

// LoadJSONFiles parses every *.json file directly inside dir. Entries are
// keyed by the upper-cased file name without its extension and ordered by
// file name, as fs.ReadDir returns them. A missing directory yields an empty map.
func (l *Loader) LoadJSONFiles(dir string) (*layering.Map[any], error) {
	out := layering.NewMap[any]()

	entries, err := fs.ReadDir(l.FS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("countries: list %q: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(path.Ext(name), ".json") {
			continue
		}
		value, err := l.LoadJSON(path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out.Set(FileKey(name), value)
	}
	return out, nil
}

// FileKey maps a file name such as "us.json" to its dataset key "US".
func FileKey(name string) string {
	stem := name[:len(name)-len(path.Ext(name))]
	return strings.ToUpper(stem)
}
