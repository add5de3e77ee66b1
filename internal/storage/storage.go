package storage

import (
	"context"

	"github.com/nimbuslabs/nimbus/internal/weather"
)

// LocationStore is the persistence interface for the geocoding cache.
// City names resolve to stable coordinates, so successful lookups are
// kept across runs; conversation state is never stored here.
type LocationStore interface {
	// GetLocation returns the cached location for a city name, or nil
	// (with a nil error) on a cache miss.
	GetLocation(ctx context.Context, city string) (*weather.Location, error)

	// PutLocation stores a resolved location under the given city name,
	// replacing any previous entry.
	PutLocation(ctx context.Context, city string, loc weather.Location) error

	// Close releases resources.
	Close() error
}
