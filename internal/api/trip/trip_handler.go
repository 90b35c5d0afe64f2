package trip

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/travelmate-api/internal/api"
	"github.com/FACorreiaa/travelmate-api/internal/api/auth"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateTrip(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
	ListTrips(w http.ResponseWriter, r *http.Request)
	UpdateTrip(w http.ResponseWriter, r *http.Request)
	DeleteTrip(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tripService Service
	logger      *slog.Logger
}

func NewHandlerImpl(tripService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tripService: tripService,
		logger:      logger,
	}
}

// RequireUserID extracts the authenticated user ID from the context, writing
// the error response itself when the request is not authenticated.
func RequireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// URLTripID parses the {tripID} route parameter, writing the error response
// itself on failure.
func URLTripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return uuid.Nil, false
	}
	return tripID, true
}

// CreateTrip godoc
// @Summary      Create Trip
// @Description  Creates a trip for the authenticated user.
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        trip body types.CreateTripParams true "Trip Parameters"
// @Success      201 {object} types.Trip "Created Trip"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /trips [post]
func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateTrip"))

	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var params types.CreateTripParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.tripService.CreateTrip(ctx, userID, params)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// GetTrip godoc
// @Summary      Get Trip
// @Description  Retrieves one of the authenticated user's trips.
// @Tags         Trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.Trip "Trip"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID} [get]
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetTrip"))

	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := URLTripID(w, r)
	if !ok {
		return
	}

	t, err := h.tripService.GetTrip(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, t)
}

// ListTrips godoc
// @Summary      List Trips
// @Description  Lists the authenticated user's trips ordered by start date.
// @Tags         Trips
// @Produce      json
// @Success      200 {array} types.Trip "Trips"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /trips [get]
func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListTrips"))

	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	trips, err := h.tripService.ListTrips(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list trips")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// UpdateTrip godoc
// @Summary      Update Trip
// @Description  Applies a partial update to one of the authenticated user's trips.
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        trip body types.UpdateTripParams true "Fields to update"
// @Success      200 {object} types.Trip "Updated Trip"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID} [put]
func (h *HandlerImpl) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateTrip"))

	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := URLTripID(w, r)
	if !ok {
		return
	}

	var params types.UpdateTripParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.tripService.UpdateTrip(ctx, userID, tripID, params)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		default:
			l.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update trip")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteTrip godoc
// @Summary      Delete Trip
// @Description  Deletes a trip together with its packing list, tips and chat history.
// @Tags         Trips
// @Param        tripID path string true "Trip ID"
// @Success      204 "Deleted"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID} [delete]
func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteTrip"))

	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := URLTripID(w, r)
	if !ok {
		return
	}

	if err := h.tripService.DeleteTrip(ctx, userID, tripID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
