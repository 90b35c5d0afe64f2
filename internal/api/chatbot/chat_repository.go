package chatbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Repository = (*PostgresChatRepo)(nil)

type Repository interface {
	// InsertMessage appends one message to the trip's conversation.
	InsertMessage(ctx context.Context, tripID, userID uuid.UUID, content string, isUser bool) (*types.ChatMessage, error)

	// ListMessages returns the conversation in chronological order.
	ListMessages(ctx context.Context, tripID uuid.UUID) ([]types.ChatMessage, error)
}

type PostgresChatRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresChatRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresChatRepo {
	return &PostgresChatRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresChatRepo) InsertMessage(ctx context.Context, tripID, userID uuid.UUID, content string, isUser bool) (*types.ChatMessage, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "InsertMessage", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_messages"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	var msg types.ChatMessage
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO chat_messages (trip_id, user_id, content, is_user_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, trip_id, user_id, content, is_user_message, created_at
	`, tripID, userID, content, isUser).Scan(
		&msg.ID,
		&msg.TripID,
		&msg.UserID,
		&msg.Content,
		&msg.IsUserMessage,
		&msg.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert chat message", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error inserting chat message: %w", err)
	}

	span.SetStatus(codes.Ok, "Message inserted")
	return &msg, nil
}

func (r *PostgresChatRepo) ListMessages(ctx context.Context, tripID uuid.UUID) ([]types.ChatMessage, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "ListMessages", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_messages"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
		SELECT id, trip_id, user_id, content, is_user_message, created_at
		FROM chat_messages WHERE trip_id = $1 ORDER BY created_at ASC
	`, tripID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query chat messages", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]types.ChatMessage, 0)
	for rows.Next() {
		var msg types.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.TripID, &msg.UserID, &msg.Content, &msg.IsUserMessage, &msg.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating chat messages: %w", err)
	}

	span.SetStatus(codes.Ok, "Messages listed")
	return messages, nil
}
