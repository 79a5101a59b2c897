package icity

import (
	"errors"
	"fmt"
	"time"

	"icity-exporter/models"
	"icity-exporter/utils"
)

// Fetcher retrieves the raw markup of one listing page. It must carry any
// session cookies needed for authenticated access; Client.FetchPage is the
// production implementation.
type Fetcher func(url string) (string, error)

// Progress receives a per-page observation after each non-empty page:
// the page number, entries added by that page, and the running total.
type Progress func(page, added, total int)

var (
	// ErrSessionExpired marks runs aborted because the site redirected a
	// listing request back to the login page.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoEntries marks runs that completed without finding any entries.
	ErrNoEntries = errors.New("no diary entries found")
)

// SessionExpiredError reports the page at which the session became invalid.
type SessionExpiredError struct {
	Page int
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired while fetching page %d, run the export again", e.Page)
}

func (e *SessionExpiredError) Unwrap() error { return ErrSessionExpired }

// Scraper drives the sequential page loop over a user's diary listing.
type Scraper struct {
	fetch     Fetcher
	siteBase  string
	maxPages  int
	rateLimit time.Duration
	progress  Progress
	logger    *utils.Logger
}

// Options tunes a scrape run.
type Options struct {
	// MaxPages caps the number of pages fetched; 0 means no cap.
	MaxPages int
	// RateLimit is the fixed delay between page fetches.
	RateLimit time.Duration
	// Progress, if set, is called once per non-empty page.
	Progress Progress
}

// NewScraper creates a Scraper fetching through fetch and resolving entry
// links against siteBase.
func NewScraper(fetch Fetcher, siteBase string, opts Options, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetch:     fetch,
		siteBase:  siteBase,
		maxPages:  opts.MaxPages,
		rateLimit: opts.RateLimit,
		progress:  opts.Progress,
		logger:    logger,
	}
}

// ScrapeAll fetches listing pages starting at postsURL until a page yields
// no entries, then deduplicates the accumulated entries by id. The loop is
// strictly sequential: each page's existence is only known once the
// previous page turned out non-empty, and the site is rate-sensitive.
//
// Fetch errors and session expiry abort the run immediately; there is no
// retry here. A run that finds nothing at all returns ErrNoEntries so the
// caller can report "nothing exported" instead of writing empty files.
func (s *Scraper) ScrapeAll(postsURL string) ([]*models.Entry, error) {
	var all []*models.Entry
	pages := &pager{postsURL: postsURL}

	for {
		page, url := pages.next()

		markup, err := s.fetch(url)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		if IsLoginPage(markup) {
			return nil, &SessionExpiredError{Page: page}
		}

		entries := ExtractEntries(markup, s.siteBase)
		if len(entries) == 0 {
			s.logger.Debug("[icity] Page %d is empty — reached the end", page)
			break
		}

		all = append(all, entries...)
		if s.progress != nil {
			s.progress(page, len(entries), len(all))
		}

		if s.maxPages > 0 && page >= s.maxPages {
			s.logger.Debug("[icity] Page cap %d reached — stopping", s.maxPages)
			break
		}

		time.Sleep(s.rateLimit)
	}

	deduped := dedupeByID(all)
	if dropped := len(all) - len(deduped); dropped > 0 {
		s.logger.Warn("[icity] Dropped %d duplicate entries across page boundaries", dropped)
	}

	if len(deduped) == 0 {
		return nil, ErrNoEntries
	}
	return deduped, nil
}

// pager lazily yields listing page URLs in order: the bare listing URL
// for page 1, then ?page=n. It is finite only because the caller stops
// asking once a page comes back empty, and it is not restartable — a new
// run starts from a fresh pager.
type pager struct {
	postsURL string
	page     int
}

func (p *pager) next() (page int, url string) {
	p.page++
	if p.page == 1 {
		return p.page, p.postsURL
	}
	return p.page, fmt.Sprintf("%s?page=%d", p.postsURL, p.page)
}

// dedupeByID keeps the first occurrence of each id in encounter order.
// Pages can overlap at their boundaries when the site is written to during
// a run; the first-seen payload wins with no content comparison.
func dedupeByID(entries []*models.Entry) []*models.Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]*models.Entry, 0, len(entries))

	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
