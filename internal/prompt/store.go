package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

//go:embed templates/*
var embedded embed.FS

// Default template names.
const (
	AnalyzeIssueSystem = "analyze_issue_system.txt"
	AnalyzeIssueUser   = "analyze_issue_user.txt"
	AnalysisComment    = "analysis_comment.md"
	DuplicatesComment  = "duplicates_comment.md"
)

// Store loads templates by name from a directory tree.
type Store struct {
	fsys fs.FS
}

// NewStore returns a Store rooted at dir, or over the built-in templates when dir is empty.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		return &Store{fsys: sub}, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory %s is not a directory", dir)
	}
	return &Store{fsys: os.DirFS(dir)}, nil
}

// NewStoreFS wraps an existing filesystem, mostly for tests.
func NewStoreFS(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

func (s *Store) Load(name string) (Template, error) {
	if !fs.ValidPath(name) {
		return Template{}, &NotFoundError{Name: name, Err: fs.ErrInvalid}
	}
	data, err := fs.ReadFile(s.fsys, path.Clean(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Template{}, &NotFoundError{Name: name, Err: err}
		}
		return Template{}, fmt.Errorf("read template %s: %w", name, err)
	}
	return Template{Name: name, Text: string(data)}, nil
}

// LoadAll loads every named template and checks its syntax, so a bad
// template directory is reported before any of them is rendered.
func (s *Store) LoadAll(names ...string) (map[string]Template, error) {
	out := make(map[string]Template, len(names))
	for _, name := range names {
		t, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		if err := t.Check(); err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}
