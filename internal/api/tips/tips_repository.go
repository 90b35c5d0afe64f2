package tips

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Repository = (*PostgresTipsRepo)(nil)

type Repository interface {
	// GetOrCreateTips returns the trip's tips container, creating an empty
	// one on first access.
	GetOrCreateTips(ctx context.Context, tripID uuid.UUID) (*types.TravelTips, error)

	// ListTips returns all tip items ordered by category.
	ListTips(ctx context.Context, tipsID uuid.UUID) ([]types.TipItem, error)

	// ReplaceTips atomically wipes the previous tips and inserts the new
	// batch. Tips carry no user edits, so regeneration replaces everything.
	ReplaceTips(ctx context.Context, tipsID uuid.UUID, items []types.TipItem) (int, error)
}

type PostgresTipsRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresTipsRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresTipsRepo {
	return &PostgresTipsRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresTipsRepo) GetOrCreateTips(ctx context.Context, tripID uuid.UUID) (*types.TravelTips, error) {
	ctx, span := otel.Tracer("TipsRepo").Start(ctx, "GetOrCreateTips", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "travel_tips"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	var tips types.TravelTips
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO travel_tips (trip_id)
		VALUES ($1)
		ON CONFLICT (trip_id) DO UPDATE SET trip_id = EXCLUDED.trip_id
		RETURNING id, trip_id, generated, last_updated
	`, tripID).Scan(&tips.ID, &tips.TripID, &tips.Generated, &tips.LastUpdated)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get or create travel tips", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPSERT failed")
		return nil, fmt.Errorf("database error fetching travel tips: %w", err)
	}

	span.SetStatus(codes.Ok, "Travel tips ready")
	return &tips, nil
}

func (r *PostgresTipsRepo) ListTips(ctx context.Context, tipsID uuid.UUID) ([]types.TipItem, error) {
	ctx, span := otel.Tracer("TipsRepo").Start(ctx, "ListTips", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "tip_items"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
		SELECT id, travel_tips_id, category, content
		FROM tip_items WHERE travel_tips_id = $1 ORDER BY category, id
	`, tipsID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query tip items", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing tip items: %w", err)
	}
	defer rows.Close()

	items := make([]types.TipItem, 0)
	for rows.Next() {
		var it types.TipItem
		if err := rows.Scan(&it.ID, &it.TravelTipsID, &it.Category, &it.Content); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning tip item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating tip items: %w", err)
	}

	span.SetStatus(codes.Ok, "Tips listed")
	return items, nil
}

func (r *PostgresTipsRepo) ReplaceTips(ctx context.Context, tipsID uuid.UUID, items []types.TipItem) (int, error) {
	ctx, span := otel.Tracer("TipsRepo").Start(ctx, "ReplaceTips", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "tip_items"),
		attribute.Int("items.count", len(items)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ReplaceTips"), slog.String("tipsID", tipsID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM tip_items WHERE travel_tips_id = $1", tipsID); err != nil {
		l.ErrorContext(ctx, "Failed to clear tip items", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return 0, fmt.Errorf("database error clearing tip items: %w", err)
	}

	created := 0
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tip_items (travel_tips_id, category, content)
			VALUES ($1, $2, $3)
		`, tipsID, it.Category, it.Content); err != nil {
			l.ErrorContext(ctx, "Failed to insert tip item", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB INSERT failed")
			return 0, fmt.Errorf("database error inserting tip item: %w", err)
		}
		created++
	}

	if _, err := tx.Exec(ctx, `
		UPDATE travel_tips SET generated = TRUE, last_updated = $1 WHERE id = $2
	`, time.Now(), tipsID); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("database error marking tips generated: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("database error committing tip items: %w", err)
	}

	l.InfoContext(ctx, "Replaced tip items", slog.Int("created", created))
	span.SetStatus(codes.Ok, "Tips replaced")
	return created, nil
}
