package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nimbuslabs/nimbus/internal/llm"
	"github.com/nimbuslabs/nimbus/internal/weather"
)

// WeatherToolName is the single tool exposed to the model.
const WeatherToolName = "get_weather"

// errNoCities is the tool-result content for an empty city list.
const errNoCities = "Error: No cities provided."

func weatherToolDef() llm.ToolDef {
	return llm.ToolDef{
		Name:        WeatherToolName,
		Description: "Get the current weather for one or multiple cities if user asked.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cities": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Get the current weather ONLY if the user explicitly asks for a city. Do not use for general greetings.",
				},
			},
			"required": []string{"cities"},
		},
	}
}

// WeatherProvider is what the executor needs from the external data client.
type WeatherProvider interface {
	Resolve(ctx context.Context, cityName string) (*weather.Location, error)
	CurrentConditions(ctx context.Context, latitude, longitude float64) (*weather.Conditions, error)
}

// executeToolCall dispatches one tool invocation and returns its tool
// result message. Failures never escape as errors; they become content
// the model can react to on the next turn.
func (a *Assistant) executeToolCall(ctx context.Context, tc llm.ToolCall) llm.Message {
	if tc.Name != WeatherToolName {
		return llm.ToolResultMessage(tc.ID, tc.Name, "Error: Unknown function requested.")
	}

	parsed := parseToolArguments(tc.Arguments)
	cities := parsed.cities
	if len(cities) == 0 {
		return llm.ToolResultMessage(tc.ID, WeatherToolName, errNoCities)
	}

	results := LookupAll(ctx, a.weather, cities, a.OnCityLookup)

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = r.String()
	}
	return llm.ToolResultMessage(tc.ID, WeatherToolName, strings.Join(blocks, "\n\n"))
}

// LookupAll fans out one pipeline per city and waits for all of them.
// Results land at the index of their input city, so the output order
// always matches the input order no matter which lookup finishes first.
// Duplicates are looked up independently. onLookup, if set, is called as
// each city's pipeline starts.
func LookupAll(ctx context.Context, provider WeatherProvider, cities []string, onLookup func(city string)) []weather.CityResult {
	results := make([]weather.CityResult, len(cities))

	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		go func(i int, city string) {
			defer wg.Done()
			results[i] = lookupCity(ctx, provider, city, onLookup)
		}(i, city)
	}
	wg.Wait()

	return results
}

// lookupCity resolves one city to coordinates and fetches its current
// conditions. Any failure is converted to an error string on the result;
// it never aborts sibling lookups.
func lookupCity(ctx context.Context, provider WeatherProvider, city string, onLookup func(city string)) weather.CityResult {
	if onLookup != nil {
		onLookup(city)
	}

	loc, err := provider.Resolve(ctx, city)
	if err != nil {
		return weather.CityResult{
			City: city,
			Err:  fmt.Sprintf("Error: Could not find coordinates for city '%s'.", city),
		}
	}

	conditions, err := provider.CurrentConditions(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return weather.CityResult{
			City: city,
			Err:  fmt.Sprintf("Error fetching weather data for %s: %s", city, err),
		}
	}

	return weather.CityResult{City: city, Location: loc, Conditions: conditions}
}
