package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nimbuslabs/nimbus/internal/storage"
	"github.com/nimbuslabs/nimbus/internal/weather"

	_ "modernc.org/sqlite"
)

// LocationCache implements storage.LocationStore backed by a SQLite
// database. Keys are case-insensitive city names as the user typed them.
type LocationCache struct {
	db *sql.DB
}

var _ storage.LocationStore = (*LocationCache)(nil)

// Open creates or opens a SQLite database at the given path and runs
// migrations. Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*LocationCache, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &LocationCache{db: db}, nil
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func (c *LocationCache) GetLocation(ctx context.Context, city string) (*weather.Location, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT latitude, longitude, name, country FROM locations WHERE city = ?`,
		cacheKey(city))

	var loc weather.Location
	err := row.Scan(&loc.Latitude, &loc.Longitude, &loc.Name, &loc.Country)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying location: %w", err)
	}
	return &loc, nil
}

func (c *LocationCache) PutLocation(ctx context.Context, city string, loc weather.Location) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO locations (city, latitude, longitude, name, country, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(city) DO UPDATE SET
			latitude = excluded.latitude, longitude = excluded.longitude,
			name = excluded.name, country = excluded.country,
			updated_at = excluded.updated_at`,
		cacheKey(city), loc.Latitude, loc.Longitude, loc.Name, loc.Country, now,
	)
	if err != nil {
		return fmt.Errorf("inserting location: %w", err)
	}
	return nil
}

func (c *LocationCache) Close() error {
	return c.db.Close()
}
