package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entryAt(ts time.Time, temp float64, condition string) types.ForecastEntry {
	return types.ForecastEntry{Timestamp: ts, Temp: temp, FeelsLike: temp, Condition: condition}
}

func TestFilterByDateWindow(t *testing.T) {
	start := date(2025, time.July, 10)
	end := date(2025, time.July, 12)

	entries := []types.ForecastEntry{
		entryAt(time.Date(2025, time.July, 9, 23, 0, 0, 0, time.UTC), 20, "Clear"),  // before window
		entryAt(time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC), 21, "Clear"),  // start boundary
		entryAt(time.Date(2025, time.July, 11, 12, 0, 0, 0, time.UTC), 22, "Rain"),  // middle
		entryAt(time.Date(2025, time.July, 12, 23, 59, 0, 0, time.UTC), 23, "Rain"), // last moment of end date
		entryAt(time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC), 24, "Clear"),  // start of end+1, excluded
	}

	filtered := FilterByDateWindow(entries, start, end)
	require.Len(t, filtered, 3)
	assert.Equal(t, 21.0, filtered[0].Temp)
	assert.Equal(t, 23.0, filtered[2].Temp)

	t.Run("idempotent", func(t *testing.T) {
		again := FilterByDateWindow(filtered, start, end)
		assert.Equal(t, filtered, again)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FilterByDateWindow(nil, start, end))
	})

	t.Run("trip beyond horizon", func(t *testing.T) {
		assert.Empty(t, FilterByDateWindow(entries, date(2025, time.August, 1), date(2025, time.August, 5)))
	})
}

func TestSummarize(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		got := Summarize(nil, "Paris")
		assert.Equal(t, "No specific forecast data available for the selected dates in Paris (may be too far out).", got)
	})

	t.Run("dry forecast", func(t *testing.T) {
		entries := []types.ForecastEntry{
			{Timestamp: date(2025, time.July, 10), Temp: 20, FeelsLike: 19, Condition: "Clear"},
			{Timestamp: date(2025, time.July, 11), Temp: 24, FeelsLike: 23, Condition: "Clouds"},
			{Timestamp: date(2025, time.July, 12), Temp: 22, FeelsLike: 21, Condition: "Clear"},
		}
		got := Summarize(entries, "Lisbon")
		assert.Contains(t, got, "Weather forecast for Lisbon:")
		assert.Contains(t, got, "Average temperature around 22.0°C (feels like 21.0°C).")
		assert.Contains(t, got, "Highs reaching near 24.0°C, lows around 20.0°C.")
		assert.Contains(t, got, "Conditions mainly Clear, Clouds.")
		assert.Contains(t, got, "Likely dry.")
	})

	t.Run("precipitation by condition", func(t *testing.T) {
		entries := []types.ForecastEntry{
			{Temp: 10, Condition: "Rain"},
		}
		assert.Contains(t, Summarize(entries, "Bergen"), "Possibility of precipitation (rain/snow).")
	})

	t.Run("precipitation by probability", func(t *testing.T) {
		entries := []types.ForecastEntry{
			{Temp: 10, Condition: "Clouds", Precipitation: 0.6, HasPrecipProb: true},
		}
		assert.Contains(t, Summarize(entries, "Bergen"), "Possibility of precipitation (rain/snow).")
	})

	t.Run("low probability stays dry", func(t *testing.T) {
		entries := []types.ForecastEntry{
			{Temp: 10, Condition: "Clouds", Precipitation: 0.1, HasPrecipProb: true},
		}
		assert.Contains(t, Summarize(entries, "Bergen"), "Likely dry.")
	})

	t.Run("top conditions capped at two, ties by first appearance", func(t *testing.T) {
		entries := []types.ForecastEntry{
			{Temp: 10, Condition: "Clouds"},
			{Temp: 10, Condition: "Clear"},
			{Temp: 10, Condition: "Mist"},
		}
		assert.Contains(t, Summarize(entries, "X"), "Conditions mainly Clouds, Clear.")
	})
}

func TestGeocode(t *testing.T) {
	ctx := context.Background()

	newService := func(baseURL string) *ServiceImpl {
		return NewService(config.WeatherConfig{
			GeocodeBaseURL: baseURL,
			GeocodeAPIKey:  "test-key",
			Timeout:        2 * time.Second,
		}, testLogger())
	}

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/geocode/forward", r.URL.Path)
			assert.Equal(t, "Paris", r.URL.Query().Get("query"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "test-key", r.Header.Get("Authorization"))
			w.Write([]byte(`{"addresses":[{"formattedAddress":"Paris, France","geometry":{"coordinates":[2.3522,48.8566]}}]}`)) //nolint:errcheck
		}))
		defer srv.Close()

		coords, err := newService(srv.URL).Geocode(ctx, "Paris")
		require.NoError(t, err)
		assert.InDelta(t, 48.8566, coords.Latitude, 0.0001)
		assert.InDelta(t, 2.3522, coords.Longitude, 0.0001)
	})

	t.Run("no results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"addresses":[]}`)) //nolint:errcheck
		}))
		defer srv.Close()

		_, err := newService(srv.URL).Geocode(ctx, "Nowhereville")
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindPlaceNotFound))
	})

	t.Run("missing geometry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"addresses":[{"formattedAddress":"Paris, France"}]}`)) //nolint:errcheck
		}))
		defer srv.Close()

		_, err := newService(srv.URL).Geocode(ctx, "Paris")
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindMalformed))
	})

	t.Run("upstream HTTP error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newService(srv.URL).Geocode(ctx, "Paris")
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindHTTP))
	})
}

func TestFetchForecast(t *testing.T) {
	ctx := context.Background()

	newService := func(baseURL string) *ServiceImpl {
		return NewService(config.WeatherConfig{
			ForecastBaseURL: baseURL,
			ForecastAPIKey:  "owm-key",
			Timeout:         2 * time.Second,
		}, testLogger())
	}

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/forecast", r.URL.Path)
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "owm-key", r.URL.Query().Get("appid"))
			w.Write([]byte(`{
				"list": [
					{"dt": 1752141600, "main": {"temp": 24.5, "feels_like": 25.1}, "weather": [{"main": "Clear"}], "pop": 0.1},
					{"dt": 1752152400, "main": {"temp": 21.0, "feels_like": 20.0}, "weather": []}
				],
				"city": {"name": "Paris"}
			}`)) //nolint:errcheck
		}))
		defer srv.Close()

		forecast, err := newService(srv.URL).FetchForecast(ctx, types.Coordinates{Latitude: 48.85, Longitude: 2.35})
		require.NoError(t, err)
		assert.Equal(t, "Paris", forecast.City)
		require.Len(t, forecast.Entries, 2)

		first := forecast.Entries[0]
		assert.Equal(t, time.Unix(1752141600, 0).UTC(), first.Timestamp)
		assert.Equal(t, 24.5, first.Temp)
		assert.Equal(t, "Clear", first.Condition)
		assert.True(t, first.HasPrecipProb)
		assert.Equal(t, 0.1, first.Precipitation)

		second := forecast.Entries[1]
		assert.Equal(t, "", second.Condition)
		assert.False(t, second.HasPrecipProb)
	})

	t.Run("missing list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"city": {"name": "Paris"}}`)) //nolint:errcheck
		}))
		defer srv.Close()

		_, err := newService(srv.URL).FetchForecast(ctx, types.Coordinates{})
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindMalformed))
	})

	t.Run("missing city", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"list": []}`)) //nolint:errcheck
		}))
		defer srv.Close()

		_, err := newService(srv.URL).FetchForecast(ctx, types.Coordinates{})
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindMalformed))
	})
}

func TestGetTripWeatherDigest_Cache(t *testing.T) {
	ctx := context.Background()
	geocodeCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/forward", func(w http.ResponseWriter, r *http.Request) {
		geocodeCalls++
		w.Write([]byte(`{"addresses":[{"geometry":{"coordinates":[2.35,48.85]}}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[{"dt":1752141600,"main":{"temp":20,"feels_like":20},"weather":[{"main":"Clear"}]}],"city":{"name":"Paris"}}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	service := NewService(config.WeatherConfig{
		GeocodeBaseURL:  srv.URL,
		ForecastBaseURL: srv.URL,
		Timeout:         2 * time.Second,
	}, testLogger())

	start := date(2025, time.July, 10)
	end := date(2025, time.July, 12)

	first, err := service.GetTripWeatherDigest(ctx, "Paris", start, end)
	require.NoError(t, err)
	assert.Equal(t, "Paris", first.City)
	require.Len(t, first.Entries, 1)

	second, err := service.GetTripWeatherDigest(ctx, "Paris", start, end)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, geocodeCalls, "second call should be served from cache")
}
