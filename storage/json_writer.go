package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"icity-exporter/models"
)

// JSONWriter renders the full entry collection as an indented UTF-8 JSON
// array. Non-ASCII text is written as-is, not escaped.
type JSONWriter struct {
	file *os.File
}

// NewJSONWriter creates (or truncates) the JSON file at the given path.
// Intermediate directories are created automatically.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("json: create file %q: %w", path, err)
	}

	return &JSONWriter{file: f}, nil
}

// Write serializes all entries in their deduplicated order.
func (w *JSONWriter) Write(entries []*models.Entry) error {
	if entries == nil {
		entries = []*models.Entry{}
	}

	enc := json.NewEncoder(w.file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *JSONWriter) Close() error {
	return w.file.Close()
}
