package storage

import (
	"github.com/google/uuid"

	"housing-pipeline/models"
)

// ListingWriter is the interface any run-tagged storage backend must satisfy.
type ListingWriter interface {
	Write(runID uuid.UUID, listings []models.Listing) error
	Close() error
}

// RunReader loads the cleaned listings of a stored run.
type RunReader interface {
	FetchRun(runID uuid.UUID) ([]models.Listing, error)
	LatestRun() (uuid.UUID, error)
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

// FrameWriter persists a tabular view of a cleaned run.
type FrameWriter interface {
	WriteFrame(f models.Frame) error
	Close() error
}

var (
	_ ListingWriter    = (*PostgresWriter)(nil)
	_ RunReader        = (*PostgresWriter)(nil)
	_ RawListingWriter = (*CSVWriter)(nil)
	_ FrameWriter      = (*CSVWriter)(nil)
)
