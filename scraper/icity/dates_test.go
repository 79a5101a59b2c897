package icity

import (
	"testing"

	"icity-exporter/models"
)

func TestResolveDateStructuredTimestamp(t *testing.T) {
	e := &models.Entry{DatetimeLocal: "2026-03-05 08:30"}

	rd, ok := ResolveDate(e)
	if !ok {
		t.Fatal("expected structured timestamp to resolve")
	}
	want := models.ResolvedDate{Year: 2026, Month: 3, Day: 5, HM: "08:30"}
	if rd != want {
		t.Errorf("ResolveDate = %+v; want %+v", rd, want)
	}
}

func TestResolveDateLabelFallback(t *testing.T) {
	e := &models.Entry{DateLabel: "3月5日2026", TimeLabel: "08:30"}

	rd, ok := ResolveDate(e)
	if !ok {
		t.Fatal("expected label fallback to resolve")
	}
	want := models.ResolvedDate{Year: 2026, Month: 3, Day: 5, HM: "08:30"}
	if rd != want {
		t.Errorf("ResolveDate = %+v; want %+v", rd, want)
	}
}

func TestResolveDateTierOneWins(t *testing.T) {
	// Structured timestamp and label disagree; the structured one is
	// authoritative.
	e := &models.Entry{
		DatetimeLocal: "2026-03-05 08:30",
		DateLabel:     "12月31日2020",
		TimeLabel:     "23:59",
	}

	rd, ok := ResolveDate(e)
	if !ok {
		t.Fatal("expected resolution")
	}
	want := models.ResolvedDate{Year: 2026, Month: 3, Day: 5, HM: "08:30"}
	if rd != want {
		t.Errorf("ResolveDate = %+v; want tier 1 result %+v", rd, want)
	}
}

func TestResolveDateZeroPadsFallbackTime(t *testing.T) {
	e := &models.Entry{DateLabel: "3月5日 2026", TimeLabel: "8:05"}

	rd, ok := ResolveDate(e)
	if !ok {
		t.Fatal("expected resolution")
	}
	if rd.HM != "08:05" {
		t.Errorf("HM = %q; want zero-padded %q", rd.HM, "08:05")
	}
}

func TestResolveDateUnresolved(t *testing.T) {
	tests := []struct {
		name  string
		entry *models.Entry
	}{
		{"all empty", &models.Entry{}},
		{"label without time", &models.Entry{DateLabel: "3月5日2026"}},
		{"time without label", &models.Entry{TimeLabel: "08:30"}},
		{"malformed structured", &models.Entry{DatetimeLocal: "2026/03/05 08:30"}},
		{"label missing year", &models.Entry{DateLabel: "3月5日", TimeLabel: "08:30"}},
	}

	for _, tt := range tests {
		if _, ok := ResolveDate(tt.entry); ok {
			t.Errorf("%s: expected unresolved", tt.name)
		}
	}
}

func TestResolveDateMalformedStructuredFallsThrough(t *testing.T) {
	// A malformed structured timestamp should not block tier 2.
	e := &models.Entry{
		DatetimeLocal: "yesterday",
		DateLabel:     "11月23日2025",
		TimeLabel:     "22:01",
	}

	rd, ok := ResolveDate(e)
	if !ok {
		t.Fatal("expected tier 2 resolution")
	}
	want := models.ResolvedDate{Year: 2025, Month: 11, Day: 23, HM: "22:01"}
	if rd != want {
		t.Errorf("ResolveDate = %+v; want %+v", rd, want)
	}
}
