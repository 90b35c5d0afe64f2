package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, params types.CreateTripParams) (*types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) (*types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
}

type ServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// parseDate accepts calendar dates in YYYY-MM-DD form.
func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a valid date in YYYY-MM-DD format: %w", field, types.ErrValidation)
	}
	return t, nil
}

func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, params types.CreateTripParams) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip")
	defer span.End()

	destination := strings.TrimSpace(params.Destination)
	if destination == "" {
		return nil, fmt.Errorf("destination is required: %w", types.ErrValidation)
	}

	start, err := parseDate(params.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseDate(params.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("return date cannot be before departure date: %w", types.ErrValidation)
	}

	return s.repo.Create(ctx, userID, destination, start, end, params.Activities, params.Notes)
}

func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	return s.repo.Get(ctx, userID, tripID)
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	return s.repo.List(ctx, userID)
}

// UpdateTrip applies a partial update. The date ordering rule is enforced
// against the merged result, so moving only one endpoint cannot invert the
// range.
func (s *ServiceImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateTrip")
	defer span.End()

	current, err := s.repo.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	var destination *string
	if params.Destination != nil {
		d := strings.TrimSpace(*params.Destination)
		if d == "" {
			return nil, fmt.Errorf("destination cannot be empty: %w", types.ErrValidation)
		}
		destination = &d
	}

	var start, end *time.Time
	effectiveStart, effectiveEnd := current.StartDate, current.EndDate
	if params.StartDate != nil {
		t, err := parseDate(*params.StartDate, "start_date")
		if err != nil {
			return nil, err
		}
		start, effectiveStart = &t, t
	}
	if params.EndDate != nil {
		t, err := parseDate(*params.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		end, effectiveEnd = &t, t
	}
	if effectiveEnd.Before(effectiveStart) {
		return nil, fmt.Errorf("return date cannot be before departure date: %w", types.ErrValidation)
	}

	if err := s.repo.Update(ctx, userID, tripID, destination, start, end, params.Activities, params.Notes); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, tripID)
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, tripID)
}
