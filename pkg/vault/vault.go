// Package vault serves the note corpus: listing documents, reading their
// contents, and resolving names against an index snapshot.
package vault

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Document is a single named note. Name is the basename without extension;
// Path is the slash-separated location relative to the vault root, extension
// included.
type Document struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Provider lists the corpus and reads document contents. Implementations
// never fabricate content: a read either returns what is stored or fails.
type Provider interface {
	List(ctx context.Context) ([]Document, error)
	Read(ctx context.Context, document Document) (string, error)
}

// FS serves documents from a directory tree on disk.
type FS struct {
	root string
	exts []string
}

var _ Provider = (*FS)(nil)

// Option configures an FS provider.
type Option func(*FS)

// WithExtensions overrides the file extensions treated as notes.
func WithExtensions(exts ...string) Option {
	return func(f *FS) {
		f.exts = nil

		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			f.exts = append(f.exts, strings.ToLower(ext))
		}
	}
}

// NewFS creates a provider rooted at the given directory.
func NewFS(root string, options ...Option) (*FS, error) {
	if root == "" {
		return nil, errors.New("missing vault root")
	}

	f := &FS{
		root: root,
		exts: []string{".md", ".txt"},
	}

	for _, option := range options {
		option(f)
	}

	return f, nil
}

// List walks the vault and returns every note. Hidden directories are
// skipped.
func (f *FS) List(ctx context.Context) ([]Document, error) {
	var documents []Document

	err := filepath.WalkDir(f.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != f.root {
				return fs.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))

		if !slices.Contains(f.exts, ext) {
			return nil
		}

		rel, err := filepath.Rel(f.root, path)

		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		documents = append(documents, Document{
			Name: strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Path: rel,
		})

		return nil
	})

	if err != nil {
		return nil, err
	}

	return documents, nil
}

// Read returns the verbatim contents of a listed document.
func (f *FS) Read(ctx context.Context, document Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := filepath.FromSlash(document.Path)

	if rel == "" || filepath.IsAbs(rel) || strings.Contains(document.Path, "..") {
		return "", errors.New("invalid document path")
	}

	data, err := os.ReadFile(filepath.Join(f.root, rel))

	if err != nil {
		return "", err
	}

	return string(data), nil
}
