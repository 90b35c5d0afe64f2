package weather

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/travelmate-api/internal/api"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetTripWeather(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	weatherService Service
	tripService    trip.Service
	logger         *slog.Logger
}

func NewHandlerImpl(weatherService Service, tripService trip.Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		weatherService: weatherService,
		tripService:    tripService,
		logger:         logger,
	}
}

// GetTripWeather godoc
// @Summary      Trip Weather Digest
// @Description  Resolves the trip destination to coordinates and returns a forecast digest scoped to the trip dates.
// @Tags         Weather
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.WeatherDigest "Weather Digest"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip or Place Not Found"
// @Failure      502 {object} types.Response "Upstream Provider Failure"
// @Security     BearerAuth
// @Router       /trips/{tripID}/weather [get]
func (h *HandlerImpl) GetTripWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetTripWeather"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	t, err := h.tripService.GetTrip(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to load trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve trip")
		return
	}

	digest, err := h.weatherService.GetTripWeatherDigest(ctx, t.Destination, t.StartDate, t.EndDate)
	if err != nil {
		l.ErrorContext(ctx, "Failed to build weather digest",
			slog.String("destination", t.Destination),
			slog.String("kind", string(types.KindOf(err))),
			slog.Any("error", err),
		)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Could not retrieve weather for this trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, digest)
}
