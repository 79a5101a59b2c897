package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"icity-exporter/models"
)

func writeTXT(t *testing.T, entries []*models.Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out", "export.txt")

	w, err := NewTXTWriter(path)
	if err != nil {
		t.Fatalf("NewTXTWriter: %v", err)
	}
	if err := w.Write(entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return string(data)
}

func TestTXTWriterFullEntry(t *testing.T) {
	content := writeTXT(t, []*models.Entry{{
		ID:            "a1",
		DatetimeLocal: "2026-03-05 08:30",
		Title:         "Morning",
		Location:      "上海",
		Text:          "line one\nline two",
		SourceURL:     "https://icity.ly/a/a1",
	}})

	for _, want := range []string{
		"iCity Diary Export (text)\n",
		"Total entries: 1\n",
		strings.Repeat("=", 80) + "\n",
		"#1  ID: a1\n",
		"DateTime: 2026-03-05 08:30\n",
		"Title: Morning\n",
		"Location: 上海\n",
		"URL: https://icity.ly/a/a1\n",
		"Text:\nline one\nline two\n",
		strings.Repeat("-", 80) + "\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("missing %q in:\n%s", want, content)
		}
	}
}

func TestTXTWriterDatetimeFallback(t *testing.T) {
	content := writeTXT(t, []*models.Entry{{
		ID:        "a1",
		DateLabel: "3月5日2026",
		TimeLabel: "08:30",
		SourceURL: "https://icity.ly/a/a1",
	}})

	if !strings.Contains(content, "DateTime: 3月5日2026 08:30\n") {
		t.Errorf("expected joined label fallback in:\n%s", content)
	}
}

func TestTXTWriterOmitsEmptyOptionalLines(t *testing.T) {
	content := writeTXT(t, []*models.Entry{{
		ID:        "a1",
		SourceURL: "https://icity.ly/a/a1",
	}})

	for _, absent := range []string{"DateTime:", "Title:", "Location:"} {
		if strings.Contains(content, absent) {
			t.Errorf("line %q should be omitted when empty:\n%s", absent, content)
		}
	}
}

func TestTXTWriterSequenceNumbers(t *testing.T) {
	content := writeTXT(t, []*models.Entry{
		{ID: "a1", SourceURL: "u1"},
		{ID: "a2", SourceURL: "u2"},
	})

	i1 := strings.Index(content, "#1  ID: a1")
	i2 := strings.Index(content, "#2  ID: a2")
	if i1 == -1 || i2 == -1 || i1 > i2 {
		t.Errorf("sequence numbering wrong:\n%s", content)
	}
}
