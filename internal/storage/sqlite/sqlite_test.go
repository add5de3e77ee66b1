package sqlite

import (
	"context"
	"testing"

	"github.com/nimbuslabs/nimbus/internal/weather"
)

func testCache(t *testing.T) *LocationCache {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening memory db: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutAndGetLocation(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	loc := weather.Location{
		Latitude:  48.8566,
		Longitude: 2.3522,
		Name:      "Paris",
		Country:   "France",
	}
	if err := c.PutLocation(ctx, "Paris", loc); err != nil {
		t.Fatalf("PutLocation: %v", err)
	}

	got, err := c.GetLocation(ctx, "Paris")
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if got == nil {
		t.Fatal("GetLocation returned nil for cached city")
	}
	if got.Name != "Paris" || got.Country != "France" {
		t.Errorf("got %+v", got)
	}
	if got.Latitude != 48.8566 || got.Longitude != 2.3522 {
		t.Errorf("coords = %v,%v", got.Latitude, got.Longitude)
	}
}

func TestGetLocationMiss(t *testing.T) {
	c := testCache(t)

	got, err := c.GetLocation(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got %+v", got)
	}
}

func TestGetLocationIsCaseInsensitive(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	loc := weather.Location{Latitude: 35.68, Longitude: 139.69, Name: "Tokyo", Country: "Japan"}
	if err := c.PutLocation(ctx, "Tokyo", loc); err != nil {
		t.Fatalf("PutLocation: %v", err)
	}

	for _, key := range []string{"tokyo", "TOKYO", "  Tokyo  "} {
		got, err := c.GetLocation(ctx, key)
		if err != nil {
			t.Fatalf("GetLocation(%q): %v", key, err)
		}
		if got == nil || got.Name != "Tokyo" {
			t.Errorf("GetLocation(%q) = %+v, want Tokyo", key, got)
		}
	}
}

func TestPutLocationOverwrites(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	first := weather.Location{Latitude: 1, Longitude: 2, Name: "Springfield", Country: "US"}
	second := weather.Location{Latitude: 3, Longitude: 4, Name: "Springfield", Country: "Canada"}

	if err := c.PutLocation(ctx, "Springfield", first); err != nil {
		t.Fatalf("first PutLocation: %v", err)
	}
	if err := c.PutLocation(ctx, "Springfield", second); err != nil {
		t.Fatalf("second PutLocation: %v", err)
	}

	got, err := c.GetLocation(ctx, "Springfield")
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if got.Country != "Canada" || got.Latitude != 3 {
		t.Errorf("got %+v, want the second entry", got)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	c := testCache(t)
	if err := runMigrations(c.db); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}
}
