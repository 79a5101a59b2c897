package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"icity-exporter/models"
	"icity-exporter/scraper/icity"
)

// MarkdownWriter partitions entries by calendar day and writes one
// Markdown file per day under root/YYYY/MM/YYYY-MM-DD.md. Entries whose
// date cannot be resolved are left out of the tree (they remain in the
// JSON and TXT outputs).
//
// Write destructively replaces the whole root directory first, so day
// files from a previous run that this run no longer produces do not
// linger.
type MarkdownWriter struct {
	root      string
	fileCount int
}

// NewMarkdownWriter creates a writer rooted at the given directory. The
// directory itself is (re)created on Write, not here.
func NewMarkdownWriter(root string) *MarkdownWriter {
	return &MarkdownWriter{root: root}
}

type dayKey struct {
	year  int
	month int
	day   int
}

type daySlot struct {
	hm    string
	entry *models.Entry
}

// Write groups resolvable entries by day and renders the tree. Within a
// day, entries are sorted ascending by HH:MM; equal times keep their
// encounter order.
func (w *MarkdownWriter) Write(entries []*models.Entry) error {
	grouped := make(map[dayKey][]daySlot)
	for _, e := range entries {
		rd, ok := icity.ResolveDate(e)
		if !ok {
			continue
		}
		k := dayKey{year: rd.Year, month: rd.Month, day: rd.Day}
		grouped[k] = append(grouped[k], daySlot{hm: rd.HM, entry: e})
	}

	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("markdown: clear root %q: %w", w.root, err)
	}
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return fmt.Errorf("markdown: create root %q: %w", w.root, err)
	}

	days := make([]dayKey, 0, len(grouped))
	for k := range grouped {
		days = append(days, k)
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].year != days[j].year {
			return days[i].year < days[j].year
		}
		if days[i].month != days[j].month {
			return days[i].month < days[j].month
		}
		return days[i].day < days[j].day
	})

	w.fileCount = 0
	for _, k := range days {
		items := grouped[k]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].hm < items[j].hm
		})

		name := fmt.Sprintf("%04d-%02d-%02d", k.year, k.month, k.day)
		dir := filepath.Join(w.root, fmt.Sprintf("%04d", k.year), fmt.Sprintf("%02d", k.month))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("markdown: create day dir %q: %w", dir, err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", name)
		fmt.Fprintf(&b, "> 共 %d 条日记\n\n", len(items))
		for i, it := range items {
			b.WriteString(formatEntryMarkdown(it.entry, it.hm))
			if i < len(items)-1 {
				b.WriteString("---\n\n")
			}
		}

		path := filepath.Join(dir, name+".md")
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("markdown: write %q: %w", path, err)
		}
		w.fileCount++
	}

	return nil
}

// FileCount returns the number of day files written by the last Write.
func (w *MarkdownWriter) FileCount() int {
	return w.fileCount
}

// Close is a no-op; MarkdownWriter holds no open handles between writes.
func (w *MarkdownWriter) Close() error {
	return nil
}

// formatEntryMarkdown renders one entry section: time (plus title when
// present) as the heading, id/location/link bullets, then the body.
func formatEntryMarkdown(e *models.Entry, hm string) string {
	var lines []string

	if e.Title != "" {
		lines = append(lines, fmt.Sprintf("## %s - %s", hm, e.Title))
	} else {
		lines = append(lines, "## "+hm)
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("- ID: `%s`", e.ID))
	if e.Location != "" {
		lines = append(lines, "- 地点: "+e.Location)
	}
	lines = append(lines, "- 链接: "+e.SourceURL)
	lines = append(lines, "")
	lines = append(lines, strings.TrimSpace(e.Text))
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}
