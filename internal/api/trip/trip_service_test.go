package trip

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// MockTripRepository is a mock implementation of Repository
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

func setupTripServiceTest() (*ServiceImpl, *MockTripRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockTripRepository)
	service := NewService(mockRepo, logger)
	return service, mockRepo
}

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		expected := &types.Trip{ID: uuid.New(), UserID: userID, Destination: "Rome"}

		start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC)
		mockRepo.On("Create", mock.Anything, userID, "Rome", start, end, "Sightseeing", "").
			Return(expected, nil).Once()

		got, err := service.CreateTrip(ctx, userID, types.CreateTripParams{
			Destination: "  Rome ",
			StartDate:   "2025-10-01",
			EndDate:     "2025-10-07",
			Activities:  "Sightseeing",
		})
		require.NoError(t, err)
		assert.Equal(t, expected, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("single day trip is allowed", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		day := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
		mockRepo.On("Create", mock.Anything, userID, "Rome", day, day, "", "").
			Return(&types.Trip{}, nil).Once()

		_, err := service.CreateTrip(ctx, userID, types.CreateTripParams{
			Destination: "Rome",
			StartDate:   "2025-10-01",
			EndDate:     "2025-10-01",
		})
		require.NoError(t, err)
	})

	t.Run("missing destination", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()

		_, err := service.CreateTrip(ctx, userID, types.CreateTripParams{
			Destination: "  ",
			StartDate:   "2025-10-01",
			EndDate:     "2025-10-07",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad date format", func(t *testing.T) {
		service, _ := setupTripServiceTest()

		_, err := service.CreateTrip(ctx, userID, types.CreateTripParams{
			Destination: "Rome",
			StartDate:   "01/10/2025",
			EndDate:     "2025-10-07",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
	})

	t.Run("end before start", func(t *testing.T) {
		service, _ := setupTripServiceTest()

		_, err := service.CreateTrip(ctx, userID, types.CreateTripParams{
			Destination: "Rome",
			StartDate:   "2025-10-07",
			EndDate:     "2025-10-01",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
	})
}

func TestUpdateTrip(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	current := &types.Trip{
		ID:          tripID,
		UserID:      userID,
		Destination: "Rome",
		StartDate:   time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC),
	}

	t.Run("moving only the end date is validated against the stored start", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		endDate := "2025-09-30" // before the stored start date

		mockRepo.On("Get", mock.Anything, userID, tripID).Return(current, nil).Once()

		_, err := service.UpdateTrip(ctx, userID, tripID, types.UpdateTripParams{EndDate: &endDate})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moving both dates together is validated against each other", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		startDate := "2025-11-01"
		endDate := "2025-11-05"
		updated := &types.Trip{ID: tripID, UserID: userID, Destination: "Rome"}

		mockRepo.On("Get", mock.Anything, userID, tripID).Return(current, nil).Once()
		mockRepo.On("Update", mock.Anything, userID, tripID,
			(*string)(nil), mock.Anything, mock.Anything, (*string)(nil), (*string)(nil)).
			Return(nil).Once()
		mockRepo.On("Get", mock.Anything, userID, tripID).Return(updated, nil).Once()

		got, err := service.UpdateTrip(ctx, userID, tripID, types.UpdateTripParams{
			StartDate: &startDate,
			EndDate:   &endDate,
		})
		require.NoError(t, err)
		assert.Equal(t, updated, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty destination is rejected", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		destination := "   "

		mockRepo.On("Get", mock.Anything, userID, tripID).Return(current, nil).Once()

		_, err := service.UpdateTrip(ctx, userID, tripID, types.UpdateTripParams{Destination: &destination})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
	})

	t.Run("not found passes through", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()

		mockRepo.On("Get", mock.Anything, userID, tripID).Return(nil, types.ErrNotFound).Once()

		_, err := service.UpdateTrip(ctx, userID, tripID, types.UpdateTripParams{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestListAndDeleteTrip(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("list", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		trips := []types.Trip{{Destination: "Rome"}, {Destination: "Lisbon"}}
		mockRepo.On("List", mock.Anything, userID).Return(trips, nil).Once()

		got, err := service.ListTrips(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, trips, got)
	})

	t.Run("delete", func(t *testing.T) {
		service, mockRepo := setupTripServiceTest()
		tripID := uuid.New()
		mockRepo.On("Delete", mock.Anything, userID, tripID).Return(nil).Once()

		require.NoError(t, service.DeleteTrip(ctx, userID, tripID))
		mockRepo.AssertExpectations(t)
	})
}
