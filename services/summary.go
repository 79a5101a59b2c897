package services

import (
	"fmt"
	"sort"
	"strings"

	"icity-exporter/models"
	"icity-exporter/scraper/icity"
	"icity-exporter/utils"
)

// SummaryService computes and prints the post-export summary.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate computes summary stats over the deduplicated entry set.
func (s *SummaryService) Generate(entries []*models.Entry) *models.ExportReport {
	report := &models.ExportReport{
		EntriesByYear:     make(map[int]int),
		EntriesByLocation: make(map[string]int),
	}

	if len(entries) == 0 {
		return report
	}

	report.TotalEntries = len(entries)

	for _, e := range entries {
		if e.Title != "" {
			report.WithTitle++
		}
		if e.Location != "" {
			report.WithLocation++
			report.EntriesByLocation[e.Location]++
		}

		rd, ok := icity.ResolveDate(e)
		if !ok {
			report.UnresolvedEntries++
			continue
		}
		report.ResolvedEntries++
		report.EntriesByYear[rd.Year]++

		day := fmt.Sprintf("%04d-%02d-%02d", rd.Year, rd.Month, rd.Day)
		if report.FirstDay == "" || day < report.FirstDay {
			report.FirstDay = day
		}
		if day > report.LastDay {
			report.LastDay = day
		}
	}

	return report
}

// Print renders the report as a console block.
func (s *SummaryService) Print(r *models.ExportReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  iCity DIARY EXPORT SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total entries     : \033[1m%d\033[0m\n", r.TotalEntries)
	fmt.Printf("  With resolved day : \033[1m%d\033[0m\n", r.ResolvedEntries)
	if r.UnresolvedEntries > 0 {
		fmt.Printf("  Unresolved dates  : \033[1;31m%d\033[0m (kept in JSON/TXT only)\n", r.UnresolvedEntries)
	}
	fmt.Printf("  With title        : %d\n", r.WithTitle)
	fmt.Printf("  With location     : %d\n", r.WithLocation)
	fmt.Println()

	if r.FirstDay != "" {
		fmt.Printf("\033[1;33m  Date Range\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s — %s\n", r.FirstDay, r.LastDay)
		fmt.Println()
	}

	if len(r.EntriesByYear) > 0 {
		fmt.Printf("\033[1;33m  Entries by Year\033[0m\n")
		fmt.Printf("  %s\n", thin)
		years := make([]int, 0, len(r.EntriesByYear))
		for y := range r.EntriesByYear {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			fmt.Printf("  %d : %d\n", y, r.EntriesByYear[y])
		}
		fmt.Println()
	}

	if len(r.EntriesByLocation) > 0 {
		fmt.Printf("\033[1;33m  Top Locations\033[0m\n")
		fmt.Printf("  %s\n", thin)

		type locCount struct {
			loc   string
			count int
		}
		locs := make([]locCount, 0, len(r.EntriesByLocation))
		for loc, n := range r.EntriesByLocation {
			locs = append(locs, locCount{loc, n})
		}
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].count != locs[j].count {
				return locs[i].count > locs[j].count
			}
			return locs[i].loc < locs[j].loc
		})
		if len(locs) > 5 {
			locs = locs[:5]
		}
		for _, lc := range locs {
			fmt.Printf("  %-30s %d\n", truncate(lc.loc, 30), lc.count)
		}
		fmt.Println()
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
