package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// currentFields are the variables requested from the forecast endpoint.
var currentFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"apparent_temperature",
	"precipitation",
	"weather_code",
	"wind_speed_10m",
}

// ErrNotFound is returned by Resolve when the geocoding API has no match
// for a city name. It is distinct from transport or HTTP failures.
var ErrNotFound = errors.New("city not found")

// ClientConfig tunes the shared HTTP connection pool and its two-tier
// timeout (connect vs. whole request).
type ClientConfig struct {
	GeocodingURL   string
	ForecastURL    string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	MaxConns       int
	MaxIdleConns   int
}

// DefaultClientConfig mirrors the bounds a single interactive session needs.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		GeocodingURL:   defaultGeocodingURL,
		ForecastURL:    defaultForecastURL,
		Timeout:        10 * time.Second,
		ConnectTimeout: 5 * time.Second,
		MaxConns:       10,
		MaxIdleConns:   5,
	}
}

// LocationCache is consulted before the network on Resolve and populated
// after a successful lookup. Cache errors are ignored; the lookup proceeds.
type LocationCache interface {
	GetLocation(ctx context.Context, city string) (*Location, error)
	PutLocation(ctx context.Context, city string, loc Location) error
}

// Service talks to the Open-Meteo geocoding and forecast APIs. One Service
// (and its connection pool) is shared by all concurrent per-city lookups
// for the life of a session and released once by Close.
type Service struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
	cache        LocationCache
}

// NewService creates a Service with a pooled transport. cache may be nil.
func NewService(cfg ClientConfig, cache LocationCache) *Service {
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = defaultGeocodingURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = defaultForecastURL
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxConnsPerHost:     cfg.MaxConns,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Service{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		cache:        cache,
	}
}

// Close releases the pooled connections.
func (s *Service) Close() {
	s.httpClient.CloseIdleConnections()
}

// Resolve looks up coordinates for a city name. Returns ErrNotFound when
// the geocoding API has no result; any other error is a transport or
// protocol failure.
func (s *Service) Resolve(ctx context.Context, cityName string) (*Location, error) {
	if s.cache != nil {
		if loc, err := s.cache.GetLocation(ctx, cityName); err == nil && loc != nil {
			return loc, nil
		}
	}

	params := url.Values{}
	params.Set("name", cityName)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var result struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := s.getJSON(ctx, s.geocodingURL, params, &result); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", cityName, err)
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("geocoding %q: %w", cityName, ErrNotFound)
	}

	first := result.Results[0]
	loc := Location{
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Name:      first.Name,
		Country:   first.Country,
	}

	if s.cache != nil {
		_ = s.cache.PutLocation(ctx, cityName, loc)
	}
	return &loc, nil
}

// CurrentConditions fetches the current weather for coordinates. Fields
// the API omits decode to their zero values rather than failing.
func (s *Service) CurrentConditions(ctx context.Context, latitude, longitude float64) (*Conditions, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("timezone", "auto")

	var result struct {
		Current struct {
			Temperature         float64 `json:"temperature_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			Humidity            float64 `json:"relative_humidity_2m"`
			WindSpeed           float64 `json:"wind_speed_10m"`
			Precipitation       float64 `json:"precipitation"`
			WeatherCode         *int    `json:"weather_code"`
		} `json:"current"`
		CurrentUnits struct {
			Temperature   string `json:"temperature_2m"`
			Humidity      string `json:"relative_humidity_2m"`
			WindSpeed     string `json:"wind_speed_10m"`
			Precipitation string `json:"precipitation"`
		} `json:"current_units"`
	}
	if err := s.getJSON(ctx, s.forecastURL, params, &result); err != nil {
		return nil, fmt.Errorf("fetching weather: %w", err)
	}

	return &Conditions{
		Temperature:         result.Current.Temperature,
		ApparentTemperature: result.Current.ApparentTemperature,
		Humidity:            result.Current.Humidity,
		WindSpeed:           result.Current.WindSpeed,
		Precipitation:       result.Current.Precipitation,
		WeatherCode:         result.Current.WeatherCode,
		TemperatureUnit:     result.CurrentUnits.Temperature,
		HumidityUnit:        result.CurrentUnits.Humidity,
		WindSpeedUnit:       result.CurrentUnits.WindSpeed,
		PrecipitationUnit:   result.CurrentUnits.Precipitation,
	}, nil
}

func (s *Service) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
