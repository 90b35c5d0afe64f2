package tips

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
	GetTips(w http.ResponseWriter, r *http.Request)
	GenerateTips(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tipsService Service
	logger      *slog.Logger
}

func NewHandlerImpl(tipsService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tipsService: tipsService,
		logger:      logger,
	}
}

// GetTips godoc
// @Summary      Get Travel Tips
// @Description  Returns the trip's travel tips grouped by category.
// @Tags         Tips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.TravelTipsResponse "Travel Tips"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/tips [get]
func (h *HandlerImpl) GetTips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetTips"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	resp, err := h.tipsService.GetTips(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get travel tips", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve travel tips")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GenerateTips godoc
// @Summary      Generate Travel Tips
// @Description  Generates travel tips with the AI provider, replacing any previous tips.
// @Tags         Tips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} types.GenerateResult "Generation Result"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Failure      500 {object} types.Response "Unusable AI Response"
// @Failure      502 {object} types.Response "AI Provider Failure"
// @Security     BearerAuth
// @Router       /trips/{tripID}/tips/generate [post]
func (h *HandlerImpl) GenerateTips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GenerateTips"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	result, err := h.tipsService.GenerateTips(ctx, userID, tripID)
	if err != nil {
		l.ErrorContext(ctx, "Travel tips generation failed",
			slog.String("kind", string(types.KindOf(err))),
			slog.Any("error", err),
		)
		api.ErrorResponse(w, r, api.StatusFromError(err), generationErrorMessage(err))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

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
