package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func testService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig()
	cfg.GeocodingURL = srv.URL + "/v1/search"
	cfg.ForecastURL = srv.URL + "/v1/forecast"
	cfg.Timeout = 2 * time.Second

	svc := NewService(cfg, nil)
	t.Cleanup(svc.Close)
	return svc
}

func TestResolveSuccess(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Paris" {
			t.Errorf("name param = %q, want Paris", got)
		}
		if got := r.URL.Query().Get("count"); got != "1" {
			t.Errorf("count param = %q, want 1", got)
		}
		w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"}]}`))
	}))

	loc, err := svc.Resolve(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.Name != "Paris" || loc.Country != "France" {
		t.Errorf("loc = %+v", loc)
	}
	if loc.Latitude != 48.85 || loc.Longitude != 2.35 {
		t.Errorf("coords = %v,%v", loc.Latitude, loc.Longitude)
	}
	if loc.String() != "Paris, France" {
		t.Errorf("String() = %q", loc.String())
	}
}

func TestResolveNotFound(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))

	_, err := svc.Resolve(context.Background(), "Qwxyzland")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveHTTPFailureIsNotNotFound(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	}))

	_, err := svc.Resolve(context.Background(), "Paris")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("transport failure must not look like not-found")
	}
}

func TestCurrentConditionsDefaultsMissingFields(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only temperature present; everything else must default, not fail.
		w.Write([]byte(`{"current":{"temperature_2m":18.2},"current_units":{"temperature_2m":"°C"}}`))
	}))

	c, err := svc.CurrentConditions(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("CurrentConditions: %v", err)
	}
	if c.Temperature != 18.2 {
		t.Errorf("temperature = %v", c.Temperature)
	}
	if c.Humidity != 0 || c.WindSpeed != 0 || c.Precipitation != 0 {
		t.Errorf("missing fields should default to zero: %+v", c)
	}
	if c.WeatherCode != nil {
		t.Errorf("weather code should be absent, got %v", *c.WeatherCode)
	}
	if c.TemperatureUnit != "°C" {
		t.Errorf("temperature unit = %q", c.TemperatureUnit)
	}
}

func TestCurrentConditionsFullResponse(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("timezone") != "auto" {
			t.Errorf("timezone = %q, want auto", q.Get("timezone"))
		}
		w.Write([]byte(`{
			"current": {
				"temperature_2m": 21.5, "apparent_temperature": 20.0,
				"relative_humidity_2m": 60, "wind_speed_10m": 12.3,
				"precipitation": 0.4, "weather_code": 61
			},
			"current_units": {
				"temperature_2m": "°C", "relative_humidity_2m": "%",
				"wind_speed_10m": "km/h", "precipitation": "mm"
			}
		}`))
	}))

	c, err := svc.CurrentConditions(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("CurrentConditions: %v", err)
	}
	if c.WeatherCode == nil || *c.WeatherCode != 61 {
		t.Errorf("weather code = %v, want 61", c.WeatherCode)
	}

	formatted := c.FormatForLLM()
	for _, want := range []string{
		"Temperature: 21.5 °C",
		"Feels like: 20 °C",
		"Humidity: 60 %",
		"Wind Speed: 12.3 km/h",
		"Precipitation: 0.4 mm",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("FormatForLLM missing %q:\n%s", want, formatted)
		}
	}
}

// memCache is an in-memory LocationCache for testing cache interaction.
type memCache struct {
	mu   sync.Mutex
	locs map[string]Location
	gets int
	puts int
}

func newMemCache() *memCache {
	return &memCache{locs: make(map[string]Location)}
}

func (m *memCache) GetLocation(ctx context.Context, city string) (*Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if loc, ok := m.locs[city]; ok {
		return &loc, nil
	}
	return nil, nil
}

func (m *memCache) PutLocation(ctx context.Context, city string, loc Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.locs[city] = loc
	return nil
}

func TestResolveUsesCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"results":[{"latitude":1,"longitude":2,"name":"Paris","country":"France"}]}`))
	}))
	t.Cleanup(srv.Close)

	cache := newMemCache()
	cfg := DefaultClientConfig()
	cfg.GeocodingURL = srv.URL
	svc := NewService(cfg, cache)
	t.Cleanup(svc.Close)

	ctx := context.Background()
	if _, err := svc.Resolve(ctx, "Paris"); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if _, err := svc.Resolve(ctx, "Paris"); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if hits != 1 {
		t.Errorf("geocoding API hits = %d, want 1 (second lookup should be cached)", hits)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestCityResultString(t *testing.T) {
	errResult := CityResult{City: "Y", Err: "Error: Could not find coordinates for city 'Y'."}
	if errResult.String() != errResult.Err {
		t.Errorf("error result String() = %q", errResult.String())
	}

	incomplete := CityResult{City: "Z"}
	if incomplete.String() != "Error: Incomplete data for city 'Z'." {
		t.Errorf("incomplete result String() = %q", incomplete.String())
	}
}
