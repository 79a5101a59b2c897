package models

// Entry is one diary post extracted from a listing page. Entries are
// created by the page extractor and never mutated afterwards.
type Entry struct {
	// ID is the site-assigned identifier from the /a/<id> detail link and
	// the deduplication key. When the link does not match that pattern the
	// raw href is used instead, so ID is never empty.
	ID string `json:"id"`
	// DateLabel is the text of the nearest preceding date heading on the
	// page, in the site's locale phrasing. Empty if no heading preceded.
	DateLabel string `json:"date_label"`
	// DatetimeISO is the machine-readable datetime attribute, if present.
	DatetimeISO string `json:"datetime_iso"`
	// DatetimeLocal is the human-readable "YYYY-MM-DD HH:MM" string, if present.
	DatetimeLocal string `json:"datetime_local"`
	// TimeLabel is the short time-of-day text shown next to the entry.
	TimeLabel string `json:"time_label"`
	Title     string `json:"title"`
	// Text is the entry body with hard breaks preserved and runs of blank
	// lines collapsed to a single separator.
	Text      string `json:"text"`
	Location  string `json:"location"`
	SourceURL string `json:"source_url"`
}

// ResolvedDate is an entry's calendar day plus HH:MM time, derived on
// demand for Markdown partitioning. It is never stored on the Entry.
type ResolvedDate struct {
	Year  int
	Month int
	Day   int
	HM    string
}

// ExportReport holds the summary stats computed over the exported dataset.
type ExportReport struct {
	TotalEntries      int
	ResolvedEntries   int
	UnresolvedEntries int
	WithTitle         int
	WithLocation      int
	EntriesByYear     map[int]int
	EntriesByLocation map[string]int
	FirstDay          string
	LastDay           string
}
