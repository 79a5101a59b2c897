package storage

import "icity-exporter/models"

// EntryWriter is the interface any export backend must satisfy. Writers
// are constructed only after a scrape run has finished successfully, so a
// failed run never leaves half-written output behind.
type EntryWriter interface {
	Write(entries []*models.Entry) error
	Close() error
}
