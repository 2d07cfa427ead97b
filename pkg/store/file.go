package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var idPattern = regexp.MustCompile(`^[\w-]+$`)

// File keeps one JSON document per conversation in a directory. Writes go
// through a temporary file and rename, so a crash never leaves a half-written
// record behind.
type File struct {
	dir string
}

var _ Store = (*File)(nil)

// NewFile creates a file store rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("missing store directory")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	return &File{
		dir: dir,
	}, nil
}

func (f *File) Load(ctx context.Context, conversationID string) (Record, error) {
	path, err := f.path(conversationID)

	if err != nil {
		return Record{}, err
	}

	data, err := os.ReadFile(path)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}

		return Record{}, err
	}

	var record Record

	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("decode conversation %s: %w", conversationID, err)
	}

	return record, nil
}

func (f *File) Save(ctx context.Context, record Record) error {
	path, err := f.path(record.ConversationID)

	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")

	if err != nil {
		return err
	}

	temp, err := os.CreateTemp(f.dir, ".conversation-*")

	if err != nil {
		return err
	}

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(temp.Name())

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return err
	}

	return os.Rename(temp.Name(), path)
}

func (f *File) Delete(ctx context.Context, conversationID string) error {
	path, err := f.path(conversationID)

	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}

		return err
	}

	return nil
}

func (f *File) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)

	if err != nil {
		return nil, err
	}

	var ids []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}

	sort.Strings(ids)

	return ids, nil
}

func (f *File) path(conversationID string) (string, error) {
	if !idPattern.MatchString(conversationID) {
		return "", fmt.Errorf("invalid conversation id %q", conversationID)
	}

	return filepath.Join(f.dir, conversationID+".json"), nil
}
