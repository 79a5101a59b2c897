package icity

import (
	"fmt"
	"regexp"
	"strconv"

	"icity-exporter/models"
)

var (
	// datetimeLocalRegexp matches the strict "YYYY-MM-DD HH:MM" form of the
	// structured timestamp attribute.
	datetimeLocalRegexp = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\s+(\d{2}:\d{2})$`)
	// dateLabelRegexp matches the locale date heading, e.g. "3月5日2026".
	dateLabelRegexp = regexp.MustCompile(`(\d{1,2})月\s*(\d{1,2})日\s*(\d{4})`)
	// timeLabelRegexp matches the HH:MM fragment of the time-of-day label.
	timeLabelRegexp = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// ResolveDate derives an entry's calendar day and HH:MM time. The
// structured datetime_local field is authoritative; when it is absent or
// malformed, the locale date heading combined with the time label is used
// instead. Entries matching neither tier report ok=false: they are left
// out of the per-day Markdown tree but still appear in JSON and TXT
// output.
func ResolveDate(e *models.Entry) (models.ResolvedDate, bool) {
	if m := datetimeLocalRegexp.FindStringSubmatch(e.DatetimeLocal); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return models.ResolvedDate{Year: year, Month: month, Day: day, HM: m[4]}, true
	}

	dm := dateLabelRegexp.FindStringSubmatch(e.DateLabel)
	tm := timeLabelRegexp.FindStringSubmatch(e.TimeLabel)
	if dm == nil || tm == nil {
		return models.ResolvedDate{}, false
	}

	year, _ := strconv.Atoi(dm[3])
	month, _ := strconv.Atoi(dm[1])
	day, _ := strconv.Atoi(dm[2])
	hh, _ := strconv.Atoi(tm[1])
	mm, _ := strconv.Atoi(tm[2])

	return models.ResolvedDate{
		Year:  year,
		Month: month,
		Day:   day,
		HM:    fmt.Sprintf("%02d:%02d", hh, mm),
	}, true
}
