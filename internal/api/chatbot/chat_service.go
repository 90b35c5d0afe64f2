package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/travelmate-api/internal/api/completions"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

const (
	assistantTemperature = 0.7
	assistantMaxTokens   = 1000

	// historyWindow bounds how many stored messages are replayed to the
	// model on each turn.
	historyWindow = 20
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Ask sends the user's question to the assistant with trip context and
	// recent history, persisting both sides of the exchange.
	Ask(ctx context.Context, userID, tripID uuid.UUID, message string) (*types.AssistantResponse, error)

	// History returns the stored conversation for the trip.
	History(ctx context.Context, userID, tripID uuid.UUID) ([]types.ChatMessage, error)
}

type ServiceImpl struct {
	repo     Repository
	tripRepo trip.Repository
	aiClient completions.Client
	logger   *slog.Logger
}

func NewService(repo Repository, tripRepo trip.Repository, aiClient completions.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		tripRepo: tripRepo,
		aiClient: aiClient,
		logger:   logger,
	}
}

func assistantSystemPrompt(t *types.Trip) string {
	activities := t.Activities
	if activities == "" {
		activities = "Not specified"
	}
	return fmt.Sprintf(`You are a travel assistant helping with a trip to %s from %s to %s.
Planned activities: %s

Answer the user's questions about this trip concisely and helpfully.`,
		t.Destination,
		t.StartDate.Format("2006-01-02"),
		t.EndDate.Format("2006-01-02"),
		activities,
	)
}

func (s *ServiceImpl) Ask(ctx context.Context, userID, tripID uuid.UUID, message string) (*types.AssistantResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Ask")
	defer span.End()

	l := s.logger.With(slog.String("method", "Ask"), slog.String("tripID", tripID.String()))

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message is required: %w", types.ErrValidation)
	}

	t, err := s.tripRepo.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListMessages(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	msgs := []completions.Message{
		{Role: completions.RoleSystem, Content: assistantSystemPrompt(t)},
	}
	for _, m := range history {
		role := completions.RoleAssistant
		if m.IsUserMessage {
			role = completions.RoleUser
		}
		msgs = append(msgs, completions.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, completions.Message{Role: completions.RoleUser, Content: message})

	reply, err := s.aiClient.ChatCompletion(ctx, msgs, assistantTemperature, assistantMaxTokens)
	if err != nil {
		l.ErrorContext(ctx, "Assistant completion failed", slog.Any("error", err))
		return nil, err
	}

	// Persist only after a successful exchange so a failed completion does
	// not leave a dangling user turn in the history.
	if _, err := s.repo.InsertMessage(ctx, tripID, userID, message, true); err != nil {
		return nil, err
	}
	if _, err := s.repo.InsertMessage(ctx, tripID, userID, reply, false); err != nil {
		return nil, err
	}

	updated, err := s.repo.ListMessages(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return &types.AssistantResponse{Reply: reply, History: updated}, nil
}

func (s *ServiceImpl) History(ctx context.Context, userID, tripID uuid.UUID) ([]types.ChatMessage, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "History")
	defer span.End()

	if _, err := s.tripRepo.Get(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, tripID)
}
