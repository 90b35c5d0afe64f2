package chatbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/travelmate-api/internal/api/completions"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// MockChatRepository is a mock implementation of Repository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) InsertMessage(ctx context.Context, tripID, userID uuid.UUID, content string, isUser bool) (*types.ChatMessage, error) {
	args := m.Called(ctx, tripID, userID, content, isUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, tripID uuid.UUID) ([]types.ChatMessage, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatMessage), args.Error(1)
}

// MockTripRepository is a mock implementation of trip.Repository
type MockTripRepository struct {
	mock.Mock
}

func (m *MockTripRepository) Create(ctx context.Context, userID uuid.UUID, destination string, start, end time.Time, activities, notes string) (*types.Trip, error) {
	args := m.Called(ctx, userID, destination, start, end, activities, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripRepository) Get(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripRepository) List(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockTripRepository) Update(ctx context.Context, userID, tripID uuid.UUID, destination *string, start, end *time.Time, activities, notes *string) error {
	args := m.Called(ctx, userID, tripID, destination, start, end, activities, notes)
	return args.Error(0)
}

func (m *MockTripRepository) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	args := m.Called(ctx, userID, tripID)
	return args.Error(0)
}

// MockCompletionClient is a mock implementation of completions.Client
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) ChatCompletion(ctx context.Context, messages []completions.Message, temperature float64, maxTokens int) (string, error) {
	args := m.Called(ctx, messages, temperature, maxTokens)
	return args.String(0), args.Error(1)
}

func setupChatServiceTest() (*ServiceImpl, *MockChatRepository, *MockTripRepository, *MockCompletionClient) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockChatRepository)
	mockTrips := new(MockTripRepository)
	mockAI := new(MockCompletionClient)
	service := NewService(mockRepo, mockTrips, mockAI, logger)
	return service, mockRepo, mockTrips, mockAI
}

func tokyoTrip(userID uuid.UUID) *types.Trip {
	return &types.Trip{
		ID:          uuid.New(),
		UserID:      userID,
		Destination: "Tokyo",
		StartDate:   time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
		Activities:  "Food tour, temples",
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success persists both turns after the reply", func(t *testing.T) {
		service, mockRepo, mockTrips, mockAI := setupChatServiceTest()
		tr := tokyoTrip(userID)
		history := []types.ChatMessage{
			{TripID: tr.ID, Content: "Any sushi recommendations?", IsUserMessage: true},
			{TripID: tr.ID, Content: "Try the Tsukiji outer market.", IsUserMessage: false},
		}
		updated := append(history,
			types.ChatMessage{Content: "What about ramen?", IsUserMessage: true},
			types.ChatMessage{Content: "Ichiran in Shibuya is open late.", IsUserMessage: false},
		)

		mockTrips.On("Get", mock.Anything, userID, tr.ID).Return(tr, nil).Once()
		mockRepo.On("ListMessages", mock.Anything, tr.ID).Return(history, nil).Once()

		var sentMessages []completions.Message
		mockAI.On("ChatCompletion", mock.Anything, mock.Anything, assistantTemperature, assistantMaxTokens).
			Run(func(args mock.Arguments) {
				sentMessages = args.Get(1).([]completions.Message)
			}).
			Return("Ichiran in Shibuya is open late.", nil).Once()

		mockRepo.On("InsertMessage", mock.Anything, tr.ID, userID, "What about ramen?", true).
			Return(&types.ChatMessage{}, nil).Once()
		mockRepo.On("InsertMessage", mock.Anything, tr.ID, userID, "Ichiran in Shibuya is open late.", false).
			Return(&types.ChatMessage{}, nil).Once()
		mockRepo.On("ListMessages", mock.Anything, tr.ID).Return(updated, nil).Once()

		resp, err := service.Ask(ctx, userID, tr.ID, "  What about ramen? ")
		require.NoError(t, err)
		assert.Equal(t, "Ichiran in Shibuya is open late.", resp.Reply)
		assert.Equal(t, updated, resp.History)

		// system prompt + 2 history turns + new question
		require.Len(t, sentMessages, 4)
		assert.Equal(t, completions.RoleSystem, sentMessages[0].Role)
		assert.Contains(t, sentMessages[0].Content, "trip to Tokyo from 2025-11-03 to 2025-11-10")
		assert.Contains(t, sentMessages[0].Content, "Planned activities: Food tour, temples")
		assert.Equal(t, completions.RoleUser, sentMessages[1].Role)
		assert.Equal(t, completions.RoleAssistant, sentMessages[2].Role)
		assert.Equal(t, "What about ramen?", sentMessages[3].Content)

		mockRepo.AssertExpectations(t)
	})

	t.Run("history replay is bounded", func(t *testing.T) {
		service, mockRepo, mockTrips, mockAI := setupChatServiceTest()
		tr := tokyoTrip(userID)

		history := make([]types.ChatMessage, 0, historyWindow+10)
		for i := 0; i < historyWindow+10; i++ {
			history = append(history, types.ChatMessage{
				Content:       fmt.Sprintf("message %d", i),
				IsUserMessage: i%2 == 0,
			})
		}

		mockTrips.On("Get", mock.Anything, userID, tr.ID).Return(tr, nil).Once()
		mockRepo.On("ListMessages", mock.Anything, tr.ID).Return(history, nil).Once()

		var sentMessages []completions.Message
		mockAI.On("ChatCompletion", mock.Anything, mock.Anything, assistantTemperature, assistantMaxTokens).
			Run(func(args mock.Arguments) {
				sentMessages = args.Get(1).([]completions.Message)
			}).
			Return("ok", nil).Once()

		mockRepo.On("InsertMessage", mock.Anything, tr.ID, userID, mock.Anything, mock.Anything).
			Return(&types.ChatMessage{}, nil).Twice()
		mockRepo.On("ListMessages", mock.Anything, tr.ID).Return(history, nil).Once()

		_, err := service.Ask(ctx, userID, tr.ID, "hello")
		require.NoError(t, err)

		// system prompt + bounded history + new question
		require.Len(t, sentMessages, historyWindow+2)
		assert.Equal(t, "message 10", sentMessages[1].Content, "oldest messages are dropped first")
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		service, _, mockTrips, _ := setupChatServiceTest()
		tripID := uuid.New()

		_, err := service.Ask(ctx, userID, tripID, "   ")
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		mockTrips.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completion failure persists nothing", func(t *testing.T) {
		service, mockRepo, mockTrips, mockAI := setupChatServiceTest()
		tr := tokyoTrip(userID)

		mockTrips.On("Get", mock.Anything, userID, tr.ID).Return(tr, nil).Once()
		mockRepo.On("ListMessages", mock.Anything, tr.ID).Return([]types.ChatMessage{}, nil).Once()
		mockAI.On("ChatCompletion", mock.Anything, mock.Anything, assistantTemperature, assistantMaxTokens).
			Return("", types.NewExternalError(types.ErrKindTimeout, "timed out", nil)).Once()

		_, err := service.Ask(ctx, userID, tr.ID, "hello")
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindTimeout))
		mockRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign trip is not found", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupChatServiceTest()
		tripID := uuid.New()

		mockTrips.On("Get", mock.Anything, userID, tripID).Return(nil, types.ErrNotFound).Once()

		_, err := service.Ask(ctx, userID, tripID, "hello")
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		mockRepo.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupChatServiceTest()
		tr := tokyoTrip(userID)
		history := []types.ChatMessage{{Content: "hi", IsUserMessage: true}}

		mockTrips.On("Get", mock.Anything, userID, tr.ID).Return(tr, nil).Once()
		mockRepo.On("ListMessages", mock.Anything, tr.ID).Return(history, nil).Once()

		got, err := service.History(ctx, userID, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, history, got)
	})

	t.Run("foreign trip is not found", func(t *testing.T) {
		service, mockRepo, mockTrips, _ := setupChatServiceTest()
		tripID := uuid.New()

		mockTrips.On("Get", mock.Anything, userID, tripID).Return(nil, types.ErrNotFound).Once()

		_, err := service.History(ctx, userID, tripID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		mockRepo.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
	})
}
