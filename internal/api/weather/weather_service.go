package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/api/external"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service resolves a destination to a trip-scoped weather digest through the
// geocode -> forecast -> filter -> summarize pipeline.
type Service interface {
	GetTripWeatherDigest(ctx context.Context, destination string, start, end time.Time) (*types.WeatherDigest, error)
}

type ServiceImpl struct {
	cfg    config.WeatherConfig
	caller *external.Client
	cache  *cache.Cache
	logger *slog.Logger
}

func NewService(cfg config.WeatherConfig, logger *slog.Logger) *ServiceImpl {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ServiceImpl{
		cfg:    cfg,
		caller: external.NewClient(timeout, logger),
		cache:  cache.New(1*time.Hour, 10*time.Minute),
		logger: logger,
	}
}

// GetTripWeatherDigest runs the full pipeline. Digests are cached for an hour
// per destination and date range.
func (s *ServiceImpl) GetTripWeatherDigest(ctx context.Context, destination string, start, end time.Time) (*types.WeatherDigest, error) {
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "GetTripWeatherDigest")
	defer span.End()

	cacheKey := fmt.Sprintf("weather_%s_%s_%s", destination, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*types.WeatherDigest), nil
	}

	coords, err := s.Geocode(ctx, destination)
	if err != nil {
		return nil, err
	}

	forecast, err := s.FetchForecast(ctx, coords)
	if err != nil {
		return nil, err
	}

	city := forecast.City
	if city == "" {
		city = destination
	}

	filtered := FilterByDateWindow(forecast.Entries, start, end)
	digest := &types.WeatherDigest{
		City:    city,
		Summary: Summarize(filtered, city),
		Entries: filtered,
	}

	s.cache.Set(cacheKey, digest, cache.DefaultExpiration)
	return digest, nil
}

type geocodeResponse struct {
	Addresses []struct {
		FormattedAddress string `json:"formattedAddress"`
		Geometry         *struct {
			Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
		} `json:"geometry"`
	} `json:"addresses"`
}

// Geocode resolves a free-text place name to coordinates, taking the first
// candidate only.
func (s *ServiceImpl) Geocode(ctx context.Context, place string) (types.Coordinates, error) {
	query := url.Values{}
	query.Set("query", place)
	query.Set("limit", "1")

	var result geocodeResponse
	err := s.caller.DoJSON(ctx, external.Request{
		Method:  "GET",
		URL:     s.cfg.GeocodeBaseURL + "/geocode/forward",
		Query:   query,
		Headers: map[string]string{"Authorization": s.cfg.GeocodeAPIKey},
	}, &result)
	if err != nil {
		return types.Coordinates{}, err
	}

	if len(result.Addresses) == 0 {
		s.logger.WarnContext(ctx, "No addresses found for destination", slog.String("place", place))
		return types.Coordinates{}, types.NewExternalError(types.ErrKindPlaceNotFound,
			fmt.Sprintf("could not find coordinates for %q", place), nil)
	}

	address := result.Addresses[0]
	if address.Geometry == nil || len(address.Geometry.Coordinates) < 2 {
		return types.Coordinates{}, types.NewExternalError(types.ErrKindMalformed,
			"geocode result is missing coordinates", nil)
	}
	return types.Coordinates{
		Latitude:  address.Geometry.Coordinates[1],
		Longitude: address.Geometry.Coordinates[0],
	}, nil
}

type forecastResponse struct {
	List *[]struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Pop *float64 `json:"pop"`
	} `json:"list"`
	City *struct {
		Name string `json:"name"`
	} `json:"city"`
}

// FetchForecast retrieves the multi-day forecast series for coordinates,
// validating the top-level shape before returning.
func (s *ServiceImpl) FetchForecast(ctx context.Context, coords types.Coordinates) (*types.Forecast, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", coords.Latitude))
	query.Set("lon", fmt.Sprintf("%f", coords.Longitude))
	query.Set("units", "metric")
	query.Set("appid", s.cfg.ForecastAPIKey)

	var result forecastResponse
	err := s.caller.DoJSON(ctx, external.Request{
		Method: "GET",
		URL:    s.cfg.ForecastBaseURL + "/forecast",
		Query:  query,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.List == nil || result.City == nil {
		return nil, types.NewExternalError(types.ErrKindMalformed,
			"forecast response is missing the entries list or resolved place name", nil)
	}

	forecast := &types.Forecast{City: result.City.Name}
	for _, item := range *result.List {
		condition := ""
		if len(item.Weather) > 0 {
			condition = item.Weather[0].Main
		}
		entry := types.ForecastEntry{
			Timestamp: time.Unix(item.Dt, 0).UTC(),
			Temp:      item.Main.Temp,
			FeelsLike: item.Main.FeelsLike,
			Condition: condition,
		}
		if item.Pop != nil {
			entry.Precipitation = *item.Pop
			entry.HasPrecipProb = true
		}
		forecast.Entries = append(forecast.Entries, entry)
	}
	return forecast, nil
}

// FilterByDateWindow keeps entries whose UTC timestamp falls within the
// inclusive calendar-date range [start, end]. Both boundaries are naive
// calendar dates; the end boundary becomes start-of-day of end+1, exclusive,
// so the whole end date is covered. A trip beyond the forecast horizon simply
// yields an empty slice.
func FilterByDateWindow(entries []types.ForecastEntry, start, end time.Time) []types.ForecastEntry {
	startUTC := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endExclusive := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	filtered := make([]types.ForecastEntry, 0, len(entries))
	for _, e := range entries {
		ts := e.Timestamp.UTC()
		if !ts.Before(startUTC) && ts.Before(endExclusive) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// precipConditions are condition labels that imply precipitation on their own.
var precipConditions = map[string]bool{
	"Rain":         true,
	"Snow":         true,
	"Drizzle":      true,
	"Thunderstorm": true,
}

// Summarize reduces a filtered forecast series to the short natural-language
// digest injected into the packing prompt.
func Summarize(entries []types.ForecastEntry, city string) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No specific forecast data available for the selected dates in %s (may be too far out).", city)
	}

	var tempSum, feelsSum float64
	minTemp, maxTemp := entries[0].Temp, entries[0].Temp
	counts := map[string]int{}
	var order []string
	precip := false

	for _, e := range entries {
		tempSum += e.Temp
		feelsSum += e.FeelsLike
		if e.Temp < minTemp {
			minTemp = e.Temp
		}
		if e.Temp > maxTemp {
			maxTemp = e.Temp
		}
		if _, seen := counts[e.Condition]; !seen {
			order = append(order, e.Condition)
		}
		counts[e.Condition]++
		if e.HasPrecipProb && e.Precipitation > 0.3 {
			precip = true
		} else if precipConditions[e.Condition] {
			precip = true
		}
	}

	n := float64(len(entries))
	avgTemp := tempSum / n
	avgFeels := feelsSum / n

	// Most frequent one-or-two conditions, ties broken by first appearance.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	top := order
	if len(top) > 2 {
		top = top[:2]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s: ", city)
	fmt.Fprintf(&b, "Average temperature around %.1f°C (feels like %.1f°C). ", avgTemp, avgFeels)
	fmt.Fprintf(&b, "Highs reaching near %.1f°C, lows around %.1f°C. ", maxTemp, minTemp)
	fmt.Fprintf(&b, "Conditions mainly %s. ", strings.Join(top, ", "))
	if precip {
		b.WriteString("Possibility of precipitation (rain/snow). ")
	} else {
		b.WriteString("Likely dry. ")
	}
	b.WriteString("(Note: This is a general forecast for the period).")
	return b.String()
}
