package types

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ForecastEntry is one timestamped point of a multi-day forecast series.
type ForecastEntry struct {
	Timestamp     time.Time `json:"timestamp"` // always UTC
	Temp          float64   `json:"temp"`
	FeelsLike     float64   `json:"feels_like"`
	Condition     string    `json:"condition"`
	Precipitation float64   `json:"precipitation,omitempty"` // probability in [0,1]
	HasPrecipProb bool      `json:"-"`
}

type Forecast struct {
	City    string          `json:"city"`
	Entries []ForecastEntry `json:"entries"`
}

// WeatherDigest is the trip-scoped summary injected into the packing prompt.
type WeatherDigest struct {
	City    string          `json:"city"`
	Summary string          `json:"summary"`
	Entries []ForecastEntry `json:"entries"`
}
