package packing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/travelmate-api/internal/api"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetPackingList(w http.ResponseWriter, r *http.Request)
	GeneratePackingList(w http.ResponseWriter, r *http.Request)
	AddCustomItem(w http.ResponseWriter, r *http.Request)
	UpdateItem(w http.ResponseWriter, r *http.Request)
	DeleteItem(w http.ResponseWriter, r *http.Request)
	ToggleItem(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	packingService Service
	logger         *slog.Logger
}

func NewHandlerImpl(packingService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		packingService: packingService,
		logger:         logger,
	}
}

func urlItemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid item ID format")
		return uuid.Nil, false
	}
	return itemID, true
}

// GetPackingList godoc
// @Summary      Get Packing List
// @Description  Returns the trip's packing list with items grouped by category.
// @Tags         Packing
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.PackingListResponse "Packing List"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/packing [get]
func (h *HandlerImpl) GetPackingList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetPackingList"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	resp, err := h.packingService.GetPackingList(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get packing list", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve packing list")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GeneratePackingList godoc
// @Summary      Generate Packing List
// @Description  Generates packing items with the AI provider, replacing previously generated items. Custom items are preserved.
// @Tags         Packing
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.GenerateResult "Generation Result"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Failure      500 {object} types.Response "Unusable AI Response"
// @Failure      502 {object} types.Response "AI Provider Failure"
// @Security     BearerAuth
// @Router       /trips/{tripID}/packing/generate [post]
func (h *HandlerImpl) GeneratePackingList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GeneratePackingList"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	result, err := h.packingService.GeneratePackingList(ctx, userID, tripID)
	if err != nil {
		l.ErrorContext(ctx, "Packing list generation failed",
			slog.String("kind", string(types.KindOf(err))),
			slog.Any("error", err),
		)
		api.ErrorResponse(w, r, api.StatusFromError(err), generationErrorMessage(err))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// generationErrorMessage keeps raw model output and upstream bodies out of
// user-facing error payloads.
func generationErrorMessage(err error) string {
	switch types.KindOf(err) {
	case types.ErrKindConfiguration:
		return "AI service is not configured"
	case types.ErrKindTimeout, types.ErrKindUnreachable, types.ErrKindHTTP, types.ErrKindUpstream, types.ErrKindUnauthorized:
		return "Failed to communicate with the AI service"
	case types.ErrKindEmptyCompletion, types.ErrKindUnparseable, types.ErrKindMalformed:
		return "AI response was not in the expected format"
	default:
		if errors.Is(err, types.ErrNotFound) {
			return "Trip not found"
		}
		return "Generation failed"
	}
}

// AddCustomItem godoc
// @Summary      Add Custom Item
// @Description  Adds a user-defined item to the trip's packing list.
// @Tags         Packing
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        item body types.CreatePackingItemParams true "Item Parameters"
// @Success      201 {object} types.PackingItem "Created Item"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/packing/items [post]
func (h *HandlerImpl) AddCustomItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "AddCustomItem"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	var params types.CreatePackingItemParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.packingService.AddCustomItem(ctx, userID, tripID, params)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		default:
			l.ErrorContext(ctx, "Failed to add custom item", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to add item")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary      Update Packing Item
// @Description  Applies a partial update to a packing item the user owns.
// @Tags         Packing
// @Accept       json
// @Produce      json
// @Param        itemID path string true "Item ID"
// @Param        item body types.UpdatePackingItemParams true "Fields to update"
// @Success      200 {object} types.PackingItem "Updated Item"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Item Not Found"
// @Security     BearerAuth
// @Router       /packing/items/{itemID} [put]
func (h *HandlerImpl) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateItem"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := urlItemID(w, r)
	if !ok {
		return
	}

	var params types.UpdatePackingItemParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.packingService.UpdateItem(ctx, userID, itemID, params)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Item not found")
		default:
			l.ErrorContext(ctx, "Failed to update item", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update item")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary      Delete Packing Item
// @Description  Removes a packing item the user owns.
// @Tags         Packing
// @Param        itemID path string true "Item ID"
// @Success      204 "Deleted"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Item Not Found"
// @Security     BearerAuth
// @Router       /packing/items/{itemID} [delete]
func (h *HandlerImpl) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteItem"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := urlItemID(w, r)
	if !ok {
		return
	}

	if err := h.packingService.DeleteItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Item not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete item", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ToggleItem godoc
// @Summary      Toggle Packing Item
// @Description  Flips the completed flag on a packing item the user owns.
// @Tags         Packing
// @Produce      json
// @Param        itemID path string true "Item ID"
// @Success      200 {object} map[string]bool "New completed state"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Item Not Found"
// @Security     BearerAuth
// @Router       /packing/items/{itemID}/toggle [post]
func (h *HandlerImpl) ToggleItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ToggleItem"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := urlItemID(w, r)
	if !ok {
		return
	}

	completed, err := h.packingService.ToggleItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Item not found")
			return
		}
		l.ErrorContext(ctx, "Failed to toggle item", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to toggle item")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]bool{"completed": completed})
}
