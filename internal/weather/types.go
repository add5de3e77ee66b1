package weather

import "fmt"

// Location is a geocoded place.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
}

func (l Location) String() string {
	if l.Country != "" {
		return l.Name + ", " + l.Country
	}
	return l.Name
}

// Conditions is a current-weather reading with the units the API reported.
type Conditions struct {
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         *int    `json:"weather_code,omitempty"`

	TemperatureUnit   string `json:"temperature_unit"`
	HumidityUnit      string `json:"humidity_unit"`
	WindSpeedUnit     string `json:"wind_speed_unit"`
	PrecipitationUnit string `json:"precipitation_unit"`
}

// FormatForLLM renders the reading as plain text for tool-result content.
func (c Conditions) FormatForLLM() string {
	return fmt.Sprintf(
		"Temperature: %v %s\n"+
			"Feels like: %v %s\n"+
			"Humidity: %v %s\n"+
			"Wind Speed: %v %s\n"+
			"Precipitation: %v %s",
		c.Temperature, c.TemperatureUnit,
		c.ApparentTemperature, c.TemperatureUnit,
		c.Humidity, c.HumidityUnit,
		c.WindSpeed, c.WindSpeedUnit,
		c.Precipitation, c.PrecipitationUnit,
	)
}

// CityResult is the outcome of one per-city lookup: either a location plus
// conditions, or an error line. Exactly one side is meaningful.
type CityResult struct {
	City       string
	Location   *Location
	Conditions *Conditions
	Err        string
}

// String renders the result block that goes into the tool-result content.
func (r CityResult) String() string {
	if r.Err != "" {
		return r.Err
	}
	if r.Location != nil && r.Conditions != nil {
		return fmt.Sprintf("Weather for %s:\n%s", r.Location, r.Conditions.FormatForLLM())
	}
	return fmt.Sprintf("Error: Incomplete data for city '%s'.", r.City)
}
