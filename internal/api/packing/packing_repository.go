package packing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Repository = (*PostgresPackingRepo)(nil)

type Repository interface {
	// GetOrCreateList returns the trip's packing list, creating an empty
	// one on first access.
	GetOrCreateList(ctx context.Context, tripID uuid.UUID) (*types.PackingList, error)

	// ListItems returns all items on the list ordered by category then name.
	ListItems(ctx context.Context, listID uuid.UUID) ([]types.PackingItem, error)

	// ReplaceGeneratedItems atomically deletes the previous AI-generated
	// items (custom_added = false), inserts the new batch and marks the
	// list as generated. User-added items survive.
	ReplaceGeneratedItems(ctx context.Context, listID uuid.UUID, items []types.PackingItem) (int, error)

	// InsertItem adds a single item to the list.
	InsertItem(ctx context.Context, listID uuid.UUID, item types.PackingItem) (*types.PackingItem, error)

	// GetItemForUser returns the item only when its list belongs to one of
	// the user's trips.
	GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*types.PackingItem, error)

	// GetItemTripWindow returns the start and end dates of the trip owning
	// the item, subject to the same ownership rule as GetItemForUser.
	GetItemTripWindow(ctx context.Context, userID, itemID uuid.UUID) (start, end time.Time, err error)

	// UpdateItem applies the non-nil fields to an item the user owns.
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, name *string, category *string, quantity *int, isEssential *bool, notes *string, forDay *time.Time, clearForDay bool) error

	// DeleteItem removes an item the user owns.
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error

	// ToggleCompleted flips the completed flag and returns the new value.
	ToggleCompleted(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
}

// DB is the subset of pgxpool.Pool the repository needs. Narrowing it keeps
// the repository testable against a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

type PostgresPackingRepo struct {
	logger *slog.Logger
	pgpool DB
}

func NewPostgresPackingRepo(pgpool DB, logger *slog.Logger) *PostgresPackingRepo {
	return &PostgresPackingRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// ownershipFilter joins an item back to the owning user so every item-level
// statement enforces ownership in the same WHERE clause.
const ownershipFilter = `
	packing_items.id = $1 AND packing_items.packing_list_id IN (
		SELECT pl.id FROM packing_lists pl
		JOIN trips t ON t.id = pl.trip_id
		WHERE t.user_id = $2
	)`

const itemColumns = "id, packing_list_id, name, category, quantity, is_essential, notes, for_day, custom_added, completed"

// itemColumnsQualified avoids the ambiguous "id" when the ownership filter
// brings other tables into play.
const itemColumnsQualified = "packing_items.id, packing_list_id, name, category, quantity, is_essential, notes, for_day, custom_added, completed"

func scanItem(row pgx.Row) (*types.PackingItem, error) {
	var it types.PackingItem
	var notes *string
	err := row.Scan(
		&it.ID,
		&it.PackingListID,
		&it.Name,
		&it.Category,
		&it.Quantity,
		&it.IsEssential,
		&notes,
		&it.ForDay,
		&it.CustomAdded,
		&it.Completed,
	)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		it.Notes = *notes
	}
	return &it, nil
}

func (r *PostgresPackingRepo) GetOrCreateList(ctx context.Context, tripID uuid.UUID) (*types.PackingList, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "GetOrCreateList", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "packing_lists"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	var list types.PackingList
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO packing_lists (trip_id)
		VALUES ($1)
		ON CONFLICT (trip_id) DO UPDATE SET trip_id = EXCLUDED.trip_id
		RETURNING id, trip_id, generated, last_updated
	`, tripID).Scan(&list.ID, &list.TripID, &list.Generated, &list.LastUpdated)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get or create packing list", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPSERT failed")
		return nil, fmt.Errorf("database error fetching packing list: %w", err)
	}

	span.SetStatus(codes.Ok, "Packing list ready")
	return &list, nil
}

func (r *PostgresPackingRepo) ListItems(ctx context.Context, listID uuid.UUID) ([]types.PackingItem, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "ListItems", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM packing_items WHERE packing_list_id = $1 ORDER BY category, name", itemColumns)
	rows, err := r.pgpool.Query(ctx, query, listID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query packing items", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing packing items: %w", err)
	}
	defer rows.Close()

	items := make([]types.PackingItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning packing item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error iterating packing items: %w", err)
	}

	span.SetStatus(codes.Ok, "Items listed")
	return items, nil
}

func (r *PostgresPackingRepo) ReplaceGeneratedItems(ctx context.Context, listID uuid.UUID, items []types.PackingItem) (int, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "ReplaceGeneratedItems", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "packing_items"),
		attribute.Int("items.count", len(items)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ReplaceGeneratedItems"), slog.String("listID", listID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Custom items survive regeneration.
	if _, err := tx.Exec(ctx, `
		DELETE FROM packing_items WHERE packing_list_id = $1 AND custom_added = FALSE
	`, listID); err != nil {
		l.ErrorContext(ctx, "Failed to clear generated items", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return 0, fmt.Errorf("database error clearing generated items: %w", err)
	}

	created := 0
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO packing_items (packing_list_id, name, category, quantity, is_essential, notes, for_day, custom_added)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		`, listID, it.Name, it.Category, it.Quantity, it.IsEssential, it.Notes, it.ForDay); err != nil {
			l.ErrorContext(ctx, "Failed to insert generated item", slog.String("item", it.Name), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB INSERT failed")
			return 0, fmt.Errorf("database error inserting generated item: %w", err)
		}
		created++
	}

	if _, err := tx.Exec(ctx, `
		UPDATE packing_lists SET generated = TRUE, last_updated = $1 WHERE id = $2
	`, time.Now(), listID); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("database error marking list generated: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("database error committing generated items: %w", err)
	}

	l.InfoContext(ctx, "Replaced generated items", slog.Int("created", created))
	span.SetStatus(codes.Ok, "Generated items replaced")
	return created, nil
}

func (r *PostgresPackingRepo) InsertItem(ctx context.Context, listID uuid.UUID, item types.PackingItem) (*types.PackingItem, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "InsertItem", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	query := fmt.Sprintf(`
		INSERT INTO packing_items (packing_list_id, name, category, quantity, is_essential, notes, for_day, custom_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, itemColumns)

	it, err := scanItem(r.pgpool.QueryRow(ctx, query,
		listID, item.Name, item.Category, item.Quantity, item.IsEssential, item.Notes, item.ForDay, item.CustomAdded))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert packing item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error inserting packing item: %w", err)
	}

	span.SetStatus(codes.Ok, "Item inserted")
	return it, nil
}

func (r *PostgresPackingRepo) GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*types.PackingItem, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "GetItemForUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM packing_items WHERE %s", itemColumnsQualified, ownershipFilter)
	it, err := scanItem(r.pgpool.QueryRow(ctx, query, itemID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Item not found")
			return nil, fmt.Errorf("packing item not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching packing item: %w", err)
	}

	span.SetStatus(codes.Ok, "Item fetched")
	return it, nil
}

func (r *PostgresPackingRepo) GetItemTripWindow(ctx context.Context, userID, itemID uuid.UUID) (time.Time, time.Time, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "GetItemTripWindow", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	var start, end time.Time
	err := r.pgpool.QueryRow(ctx, `
		SELECT t.start_date, t.end_date
		FROM packing_items
		JOIN packing_lists pl ON pl.id = packing_items.packing_list_id
		JOIN trips t ON t.id = pl.trip_id
		WHERE packing_items.id = $1 AND t.user_id = $2
	`, itemID, userID).Scan(&start, &end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Item not found")
			return time.Time{}, time.Time{}, fmt.Errorf("packing item not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		return time.Time{}, time.Time{}, fmt.Errorf("database error fetching trip window: %w", err)
	}

	span.SetStatus(codes.Ok, "Trip window fetched")
	return start, end, nil
}

func (r *PostgresPackingRepo) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, name *string, category *string, quantity *int, isEssential *bool, notes *string, forDay *time.Time, clearForDay bool) error {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "UpdateItem", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateItem"), slog.String("itemID", itemID.String()))

	var setClauses []string
	var args []interface{}
	argID := 3 // $1 and $2 are reserved for the ownership filter

	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *name)
		argID++
	}
	if category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", argID))
		args = append(args, *category)
		argID++
	}
	if quantity != nil {
		setClauses = append(setClauses, fmt.Sprintf("quantity = $%d", argID))
		args = append(args, *quantity)
		argID++
	}
	if isEssential != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_essential = $%d", argID))
		args = append(args, *isEssential)
		argID++
	}
	if notes != nil {
		setClauses = append(setClauses, fmt.Sprintf("notes = $%d", argID))
		args = append(args, *notes)
		argID++
	}
	if forDay != nil {
		setClauses = append(setClauses, fmt.Sprintf("for_day = $%d", argID))
		args = append(args, *forDay)
		argID++
	} else if clearForDay {
		setClauses = append(setClauses, "for_day = NULL")
	}

	if len(setClauses) == 0 {
		l.InfoContext(ctx, "UpdateItem called with no fields to update")
		span.SetStatus(codes.Ok, "No update fields provided")
		return nil
	}

	query := fmt.Sprintf("UPDATE packing_items SET %s WHERE %s",
		strings.Join(setClauses, ", "), ownershipFilter)
	allArgs := append([]interface{}{itemID, userID}, args...)

	tag, err := r.pgpool.Exec(ctx, query, allArgs...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update packing item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating packing item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Item not found")
		return fmt.Errorf("packing item not found: %w", types.ErrNotFound)
	}

	l.InfoContext(ctx, "Packing item updated")
	span.SetStatus(codes.Ok, "Item updated")
	return nil
}

func (r *PostgresPackingRepo) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "DeleteItem", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	query := fmt.Sprintf("DELETE FROM packing_items WHERE %s", ownershipFilter)
	tag, err := r.pgpool.Exec(ctx, query, itemID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete packing item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting packing item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Item not found")
		return fmt.Errorf("packing item not found: %w", types.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "Item deleted")
	return nil
}

func (r *PostgresPackingRepo) ToggleCompleted(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	ctx, span := otel.Tracer("PackingRepo").Start(ctx, "ToggleCompleted", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "packing_items"),
	))
	defer span.End()

	query := fmt.Sprintf("UPDATE packing_items SET completed = NOT completed WHERE %s RETURNING completed", ownershipFilter)
	var completed bool
	err := r.pgpool.QueryRow(ctx, query, itemID, userID).Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Item not found")
			return false, fmt.Errorf("packing item not found: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to toggle packing item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return false, fmt.Errorf("database error toggling packing item: %w", err)
	}

	span.SetStatus(codes.Ok, "Item toggled")
	return completed, nil
}
