package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
)

// File keeps every view's state in one JSON document on disk. Writes replace
// the file atomically so a crash never leaves a half-written document.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile constructs a File store at path. The file is created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, listview.ErrStateNotFound
	}
	return v, nil
}

func (f *File) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		// An unreadable document is replaced rather than blocking every save.
		doc = make(map[string]json.RawMessage)
	}
	if !json.Valid(data) {
		return fmt.Errorf("storage/file: value for %s is not valid JSON", key)
	}
	doc[key] = json.RawMessage(data)
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage/file: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("storage/file: mkdir: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("storage/file: write: %w", err)
	}
	return nil
}

func (f *File) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("storage/file: read: %w", err)
	}
	doc := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("storage/file: decode: %w", err)
	}
	return doc, nil
}
