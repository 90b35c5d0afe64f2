package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Repository = (*PostgresTripRepo)(nil)

type Repository interface {
	// Create inserts a trip owned by userID.
	Create(ctx context.Context, userID uuid.UUID, destination string, start, end time.Time, activities, notes string) (*types.Trip, error)

	// Get returns the trip only when it is owned by userID; any other
	// user's trip comes back as ErrNotFound.
	Get(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)

	// List returns the user's trips ordered by start date ascending.
	List(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)

	// Update applies the non-nil fields. Returns ErrNotFound when the trip
	// does not exist or is owned by another user.
	Update(ctx context.Context, userID, tripID uuid.UUID, destination *string, start, end *time.Time, activities, notes *string) error

	// Delete removes the trip and, through cascades, its packing list,
	// tips and chat history.
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

type PostgresTripRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresTripRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresTripRepo {
	return &PostgresTripRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const tripColumns = "id, user_id, destination, start_date, end_date, activities, notes, created_at, updated_at"

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var t types.Trip
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Destination,
		&t.StartDate,
		&t.EndDate,
		&t.Activities,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTripRepo) Create(ctx context.Context, userID uuid.UUID, destination string, start, end time.Time, activities, notes string) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateTrip"), slog.String("userID", userID.String()))

	query := fmt.Sprintf(`
		INSERT INTO trips (user_id, destination, start_date, end_date, activities, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, tripColumns)

	t, err := scanTrip(r.pgpool.QueryRow(ctx, query, userID, destination, start, end, activities, notes))
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating trip: %w", err)
	}

	l.InfoContext(ctx, "Trip created", slog.String("tripID", t.ID.String()))
	span.SetStatus(codes.Ok, "Trip created")
	return t, nil
}

func (r *PostgresTripRepo) Get(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "Get", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM trips WHERE id = $1 AND user_id = $2", tripColumns)
	t, err := scanTrip(r.pgpool.QueryRow(ctx, query, tripID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Trip not found")
			return nil, fmt.Errorf("trip not found: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching trip: %w", err)
	}

	span.SetStatus(codes.Ok, "Trip fetched")
	return t, nil
}

func (r *PostgresTripRepo) List(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM trips WHERE user_id = $1 ORDER BY start_date ASC", tripColumns)
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query trips", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing trips: %w", err)
	}
	defer rows.Close()

	trips := make([]types.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning trip: %w", err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating trips: %w", err)
	}

	span.SetStatus(codes.Ok, "Trips listed")
	return trips, nil
}

func (r *PostgresTripRepo) Update(ctx context.Context, userID, tripID uuid.UUID, destination *string, start, end *time.Time, activities, notes *string) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateTrip"), slog.String("tripID", tripID.String()))

	// Build query dynamically
	var setClauses []string
	var args []interface{}
	argID := 1

	if destination != nil {
		setClauses = append(setClauses, fmt.Sprintf("destination = $%d", argID))
		args = append(args, *destination)
		argID++
	}
	if start != nil {
		setClauses = append(setClauses, fmt.Sprintf("start_date = $%d", argID))
		args = append(args, *start)
		argID++
	}
	if end != nil {
		setClauses = append(setClauses, fmt.Sprintf("end_date = $%d", argID))
		args = append(args, *end)
		argID++
	}
	if activities != nil {
		setClauses = append(setClauses, fmt.Sprintf("activities = $%d", argID))
		args = append(args, *activities)
		argID++
	}
	if notes != nil {
		setClauses = append(setClauses, fmt.Sprintf("notes = $%d", argID))
		args = append(args, *notes)
		argID++
	}

	if len(setClauses) == 0 {
		l.InfoContext(ctx, "UpdateTrip called with no fields to update")
		span.SetStatus(codes.Ok, "No update fields provided")
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	query := fmt.Sprintf("UPDATE trips SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(setClauses, ", "), argID, argID+1)
	args = append(args, tripID, userID)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Trip not found")
		return fmt.Errorf("trip not found: %w", types.ErrNotFound)
	}

	l.InfoContext(ctx, "Trip updated")
	span.SetStatus(codes.Ok, "Trip updated")
	return nil
}

func (r *PostgresTripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM trips WHERE id = $1 AND user_id = $2", tripID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Trip not found")
		return fmt.Errorf("trip not found: %w", types.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "Trip deleted", slog.String("tripID", tripID.String()))
	span.SetStatus(codes.Ok, "Trip deleted")
	return nil
}
