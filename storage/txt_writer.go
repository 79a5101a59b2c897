package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"icity-exporter/models"
)

// ruleWidth is the width of the separator rules in the TXT rendering.
const ruleWidth = 80

// TXTWriter renders entries as a linear, human-readable text file: one
// block per entry in original order, separated by fixed-width rules.
type TXTWriter struct {
	file *os.File
}

// NewTXTWriter creates (or truncates) the TXT file at the given path.
// Intermediate directories are created automatically.
func NewTXTWriter(path string) (*TXTWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("txt: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("txt: create file %q: %w", path, err)
	}

	return &TXTWriter{file: f}, nil
}

// Write renders every entry with a 1-based sequence number. Title and
// location lines appear only when non-empty; the DateTime line prefers the
// structured local timestamp and falls back to the heading plus time
// label, or is omitted when neither exists.
func (w *TXTWriter) Write(entries []*models.Entry) error {
	b := bufio.NewWriter(w.file)

	fmt.Fprintln(b, "iCity Diary Export (text)")
	fmt.Fprintf(b, "Total entries: %d\n", len(entries))
	fmt.Fprintln(b, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(b)

	for i, e := range entries {
		fmt.Fprintf(b, "#%d  ID: %s\n", i+1, e.ID)
		if dt := bestDatetime(e); dt != "" {
			fmt.Fprintf(b, "DateTime: %s\n", dt)
		}
		if e.Title != "" {
			fmt.Fprintf(b, "Title: %s\n", e.Title)
		}
		if e.Location != "" {
			fmt.Fprintf(b, "Location: %s\n", e.Location)
		}
		fmt.Fprintf(b, "URL: %s\n", e.SourceURL)
		fmt.Fprintln(b, "Text:")
		fmt.Fprintln(b, strings.TrimSpace(e.Text))
		fmt.Fprintln(b, strings.Repeat("-", ruleWidth))
		fmt.Fprintln(b)
	}

	if err := b.Flush(); err != nil {
		return fmt.Errorf("txt: flush: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *TXTWriter) Close() error {
	return w.file.Close()
}

// bestDatetime returns the best available datetime string for an entry.
func bestDatetime(e *models.Entry) string {
	if e.DatetimeLocal != "" {
		return e.DatetimeLocal
	}
	return strings.TrimSpace(e.DateLabel + " " + e.TimeLabel)
}
