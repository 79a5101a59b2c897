package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"icity-exporter/models"
)

func mdEntry(id, datetimeLocal, title string) *models.Entry {
	return &models.Entry{
		ID:            id,
		DatetimeLocal: datetimeLocal,
		Title:         title,
		Text:          "body of " + id,
		SourceURL:     "https://icity.ly/a/" + id,
	}
}

func TestMarkdownWriterTreeLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "md")
	w := NewMarkdownWriter(root)

	entries := []*models.Entry{
		mdEntry("a2", "2026-03-05 09:00", ""),
		mdEntry("a1", "2026-03-05 08:30", "Morning"),
		mdEntry("b1", "2025-12-31 23:59", ""),
	}

	if err := w.Write(entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.FileCount() != 2 {
		t.Errorf("FileCount = %d; want 2", w.FileCount())
	}

	data, err := os.ReadFile(filepath.Join(root, "2026", "03", "2026-03-05.md"))
	if err != nil {
		t.Fatalf("day file missing: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# 2026-03-05\n\n> 共 2 条日记\n\n") {
		t.Errorf("day header wrong:\n%s", content)
	}
	// Entries sorted ascending by time within the day.
	i830 := strings.Index(content, "## 08:30 - Morning")
	i900 := strings.Index(content, "## 09:00")
	if i830 == -1 || i900 == -1 || i830 > i900 {
		t.Errorf("sections missing or out of order:\n%s", content)
	}
	if !strings.Contains(content, "- ID: `a1`") {
		t.Errorf("missing id bullet:\n%s", content)
	}
	if !strings.Contains(content, "- 链接: https://icity.ly/a/a1") {
		t.Errorf("missing link bullet:\n%s", content)
	}
	// One rule between the two sections, none after the last.
	if strings.Count(content, "---\n") != 1 {
		t.Errorf("expected exactly one separator rule:\n%s", content)
	}
	if strings.HasSuffix(strings.TrimRight(content, "\n"), "---") {
		t.Errorf("no rule after the last section:\n%s", content)
	}

	if _, err := os.Stat(filepath.Join(root, "2025", "12", "2025-12-31.md")); err != nil {
		t.Errorf("second day file missing: %v", err)
	}
}

func TestMarkdownWriterSkipsUnresolvedEntries(t *testing.T) {
	root := filepath.Join(t.TempDir(), "md")
	w := NewMarkdownWriter(root)

	entries := []*models.Entry{
		mdEntry("ok", "2026-03-05 08:30", ""),
		{ID: "nodate", Text: "no usable date", SourceURL: "https://icity.ly/a/nodate"},
	}

	if err := w.Write(entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.FileCount() != 1 {
		t.Errorf("FileCount = %d; want 1 (unresolved entry excluded)", w.FileCount())
	}

	data, _ := os.ReadFile(filepath.Join(root, "2026", "03", "2026-03-05.md"))
	if strings.Contains(string(data), "nodate") {
		t.Error("unresolved entry leaked into the markdown tree")
	}
}

func TestMarkdownWriterStableOrderForEqualTimes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "md")
	w := NewMarkdownWriter(root)

	entries := []*models.Entry{
		mdEntry("first", "2026-03-05 08:30", ""),
		mdEntry("second", "2026-03-05 08:30", ""),
	}

	if err := w.Write(entries); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(root, "2026", "03", "2026-03-05.md"))
	content := string(data)
	if strings.Index(content, "`first`") > strings.Index(content, "`second`") {
		t.Errorf("equal times must keep encounter order:\n%s", content)
	}
}

func TestMarkdownWriterDestructiveReplace(t *testing.T) {
	root := filepath.Join(t.TempDir(), "md")
	w := NewMarkdownWriter(root)

	if err := w.Write([]*models.Entry{
		mdEntry("a1", "2026-03-05 08:30", ""),
		mdEntry("b1", "2026-04-01 10:00", ""),
	}); err != nil {
		t.Fatalf("first Write: %v", err)
	}

	oldDay := filepath.Join(root, "2026", "04", "2026-04-01.md")
	if _, err := os.Stat(oldDay); err != nil {
		t.Fatalf("expected day file from first run: %v", err)
	}

	// Re-export with a strictly smaller set: the removed day must vanish.
	if err := w.Write([]*models.Entry{mdEntry("a1", "2026-03-05 08:30", "")}); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	if _, err := os.Stat(oldDay); !os.IsNotExist(err) {
		t.Error("stale day file survived the re-export")
	}
	if w.FileCount() != 1 {
		t.Errorf("FileCount = %d; want 1 after re-export", w.FileCount())
	}
}
