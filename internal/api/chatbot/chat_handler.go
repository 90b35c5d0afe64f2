package chatbot

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
	GetHistory(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	chatService Service
	logger      *slog.Logger
}

func NewHandlerImpl(chatService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		chatService: chatService,
		logger:      logger,
	}
}

// GetHistory godoc
// @Summary      Assistant History
// @Description  Returns the trip's assistant conversation in chronological order.
// @Tags         Assistant
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {array} types.ChatMessage "Messages"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Security     BearerAuth
// @Router       /trips/{tripID}/assistant [get]
func (h *HandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetHistory"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	history, err := h.chatService.History(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get chat history", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve chat history")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, history)
}

// SendMessage godoc
// @Summary      Ask the Assistant
// @Description  Sends a question to the trip assistant and returns its reply with the updated history.
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        request body types.AssistantRequest true "User Message"
// @Success      200 {object} types.AssistantResponse "Assistant Reply"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Trip Not Found"
// @Failure      502 {object} types.Response "AI Provider Failure"
// @Security     BearerAuth
// @Router       /trips/{tripID}/assistant [post]
func (h *HandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SendMessage"))

	userID, ok := trip.RequireUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := trip.URLTripID(w, r)
	if !ok {
		return
	}

	var req types.AssistantRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.chatService.Ask(ctx, userID, tripID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		default:
			l.ErrorContext(ctx, "Assistant request failed",
				slog.String("kind", string(types.KindOf(err))),
				slog.Any("error", err),
			)
			api.ErrorResponse(w, r, api.StatusFromError(err), "Assistant is unavailable right now")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
