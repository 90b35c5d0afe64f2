package packing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/travelmate-api/app/observability/metrics"
	"github.com/FACorreiaa/travelmate-api/internal/api/airesponse"
	"github.com/FACorreiaa/travelmate-api/internal/api/completions"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/api/weather"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// weatherUnavailable is what the model sees when the forecast pipeline
// failed. Generation still proceeds.
const weatherUnavailable = "Weather information could not be retrieved."

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetPackingList(ctx context.Context, userID, tripID uuid.UUID) (*types.PackingListResponse, error)
	GeneratePackingList(ctx context.Context, userID, tripID uuid.UUID) (*types.GenerateResult, error)
	AddCustomItem(ctx context.Context, userID, tripID uuid.UUID, params types.CreatePackingItemParams) (*types.PackingItem, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, params types.UpdatePackingItemParams) (*types.PackingItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	ToggleItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
}

type ServiceImpl struct {
	repo        Repository
	tripRepo    trip.Repository
	weatherSvc  weather.Service
	aiClient    completions.Client
	logger      *slog.Logger
	generations singleflight.Group
}

func NewService(repo Repository, tripRepo trip.Repository, weatherSvc weather.Service, aiClient completions.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:       repo,
		tripRepo:   tripRepo,
		weatherSvc: weatherSvc,
		aiClient:   aiClient,
		logger:     logger,
	}
}

func (s *ServiceImpl) GetPackingList(ctx context.Context, userID, tripID uuid.UUID) (*types.PackingListResponse, error) {
	ctx, span := otel.Tracer("PackingService").Start(ctx, "GetPackingList")
	defer span.End()

	if _, err := s.tripRepo.Get(ctx, userID, tripID); err != nil {
		return nil, err
	}

	list, err := s.repo.GetOrCreateList(ctx, tripID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]types.PackingItem)
	for _, it := range items {
		display := types.PackingCategoryDisplay(it.Category)
		grouped[display] = append(grouped[display], it)
	}

	return &types.PackingListResponse{List: *list, ItemsByCategory: grouped}, nil
}

// GeneratePackingList asks the completion provider for a packing list and
// replaces the previous AI-generated items with the reconciled result.
// Concurrent requests for the same trip share one generation.
func (s *ServiceImpl) GeneratePackingList(ctx context.Context, userID, tripID uuid.UUID) (*types.GenerateResult, error) {
	ctx, span := otel.Tracer("PackingService").Start(ctx, "GeneratePackingList")
	defer span.End()

	t, err := s.tripRepo.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	// The generation is shared by every coalesced caller, so it must not die
	// with the first caller's request context.
	genCtx := context.WithoutCancel(ctx)
	result, err, _ := s.generations.Do(tripID.String(), func() (interface{}, error) {
		return s.generate(genCtx, t)
	})
	metrics.Get().RecordGeneration(ctx, "packing", metrics.Outcome(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return result.(*types.GenerateResult), nil
}

func (s *ServiceImpl) generate(ctx context.Context, t *types.Trip) (*types.GenerateResult, error) {
	l := s.logger.With(slog.String("method", "GeneratePackingList"), slog.String("tripID", t.ID.String()))

	summary := weatherUnavailable
	digest, err := s.weatherSvc.GetTripWeatherDigest(ctx, t.Destination, t.StartDate, t.EndDate)
	if err != nil {
		l.WarnContext(ctx, "Weather digest unavailable, generating without forecast",
			slog.String("kind", string(types.KindOf(err))),
			slog.Any("error", err),
		)
	} else {
		summary = digest.Summary
	}

	raw, err := s.aiClient.ChatCompletion(ctx, []completions.Message{
		{Role: completions.RoleSystem, Content: systemPrompt},
		{Role: completions.RoleUser, Content: buildPrompt(t, summary)},
	}, promptTemperature, promptMaxTokens)
	if err != nil {
		return nil, err
	}

	obj, err := airesponse.Recover(raw, airesponse.CategoriesShape("name", "items"))
	if err != nil {
		l.ErrorContext(ctx, "Could not recover packing list from model output", slog.Any("error", err))
		return nil, err
	}

	items := s.reconcileItems(ctx, t, airesponse.Categories(obj))

	list, err := s.repo.GetOrCreateList(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.ReplaceGeneratedItems(ctx, list.ID, items)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "Packing list generated", slog.Int("items_created", created))
	return &types.GenerateResult{
		ItemsCreated: created,
		Message:      "Packing list generated successfully",
	}, nil
}

// reconcileItems maps the model's free-form categories and items onto the
// fixed schema. Individually bad items are dropped, never the whole batch.
func (s *ServiceImpl) reconcileItems(ctx context.Context, t *types.Trip, categories []airesponse.RawCategory) []types.PackingItem {
	var items []types.PackingItem
	for _, cat := range categories {
		code := airesponse.NormalizeCategory(cat.Name, types.PackingCategoryChoices, string(types.PackingCategoryMisc))
		for _, raw := range cat.Items {
			name := airesponse.StringField(raw, "name")
			if name == "" {
				s.logger.WarnContext(ctx, "Skipping item with no name", slog.String("category", cat.Name))
				continue
			}

			quantity := airesponse.IntField(raw, "quantity", 1)
			if quantity < 1 {
				quantity = 1
			}

			items = append(items, types.PackingItem{
				Name:        name,
				Category:    types.PackingCategory(code),
				Quantity:    quantity,
				IsEssential: airesponse.BoolField(raw, "essential"),
				Notes:       airesponse.StringField(raw, "notes"),
				ForDay:      s.parseForDay(ctx, t, airesponse.StringField(raw, "for_day"), name),
			})
		}
	}
	return items
}

// parseForDay keeps a day-specific tag only when it parses and falls inside
// the trip range; anything else drops to nil so a stray date cannot fail the
// insert.
func (s *ServiceImpl) parseForDay(ctx context.Context, t *types.Trip, value, itemName string) *time.Time {
	if value == "" {
		return nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not parse for_day, dropping it",
			slog.String("value", value), slog.String("item", itemName))
		return nil
	}
	if day.Before(t.StartDate) || day.After(t.EndDate) {
		s.logger.WarnContext(ctx, "for_day falls outside the trip range, dropping it",
			slog.String("value", value), slog.String("item", itemName))
		return nil
	}
	return &day
}

func (s *ServiceImpl) AddCustomItem(ctx context.Context, userID, tripID uuid.UUID, params types.CreatePackingItemParams) (*types.PackingItem, error) {
	ctx, span := otel.Tracer("PackingService").Start(ctx, "AddCustomItem")
	defer span.End()

	t, err := s.tripRepo.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("item name is required: %w", types.ErrValidation)
	}

	category := strings.ToUpper(strings.TrimSpace(params.Category))
	if !types.IsValidPackingCategory(category) {
		s.logger.WarnContext(ctx, "Invalid category code for custom item, defaulting",
			slog.String("category", params.Category))
		category = string(types.PackingCategoryMisc)
	}

	quantity := params.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var forDay *time.Time
	if params.ForDay != nil && *params.ForDay != "" {
		day, err := time.Parse("2006-01-02", *params.ForDay)
		if err != nil {
			return nil, fmt.Errorf("for_day must be a valid date in YYYY-MM-DD format: %w", types.ErrValidation)
		}
		if day.Before(t.StartDate) || day.After(t.EndDate) {
			return nil, fmt.Errorf("for_day must fall within the trip dates: %w", types.ErrValidation)
		}
		forDay = &day
	}

	list, err := s.repo.GetOrCreateList(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return s.repo.InsertItem(ctx, list.ID, types.PackingItem{
		Name:        name,
		Category:    types.PackingCategory(category),
		Quantity:    quantity,
		IsEssential: params.IsEssential,
		Notes:       params.Notes,
		ForDay:      forDay,
		CustomAdded: true,
	})
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, params types.UpdatePackingItemParams) (*types.PackingItem, error) {
	ctx, span := otel.Tracer("PackingService").Start(ctx, "UpdateItem")
	defer span.End()

	var name *string
	if params.Name != nil {
		n := strings.TrimSpace(*params.Name)
		if n == "" {
			return nil, fmt.Errorf("item name cannot be empty: %w", types.ErrValidation)
		}
		name = &n
	}

	var category *string
	if params.Category != nil {
		c := strings.ToUpper(strings.TrimSpace(*params.Category))
		if !types.IsValidPackingCategory(c) {
			return nil, fmt.Errorf("unknown packing category %q: %w", *params.Category, types.ErrValidation)
		}
		category = &c
	}

	var quantity *int
	if params.Quantity != nil {
		q := *params.Quantity
		if q < 1 {
			q = 1
		}
		quantity = &q
	}

	var forDay *time.Time
	clearForDay := false
	if params.ForDay != nil {
		if *params.ForDay == "" {
			clearForDay = true
		} else {
			day, err := time.Parse("2006-01-02", *params.ForDay)
			if err != nil {
				return nil, fmt.Errorf("for_day must be a valid date in YYYY-MM-DD format: %w", types.ErrValidation)
			}
			// Same rule as AddCustomItem: a day tag has to fall inside the
			// owning trip's dates.
			start, end, err := s.repo.GetItemTripWindow(ctx, userID, itemID)
			if err != nil {
				return nil, err
			}
			if day.Before(start) || day.After(end) {
				return nil, fmt.Errorf("for_day must fall within the trip dates: %w", types.ErrValidation)
			}
			forDay = &day
		}
	}

	if err := s.repo.UpdateItem(ctx, userID, itemID, name, category, quantity, params.IsEssential, params.Notes, forDay, clearForDay); err != nil {
		return nil, err
	}
	return s.repo.GetItemForUser(ctx, userID, itemID)
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.repo.DeleteItem(ctx, userID, itemID)
}

func (s *ServiceImpl) ToggleItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return s.repo.ToggleCompleted(ctx, userID, itemID)
}
