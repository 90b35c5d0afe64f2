package tips

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/travelmate-api/app/observability/metrics"
	"github.com/FACorreiaa/travelmate-api/internal/api/airesponse"
	"github.com/FACorreiaa/travelmate-api/internal/api/completions"
	"github.com/FACorreiaa/travelmate-api/internal/api/trip"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetTips(ctx context.Context, userID, tripID uuid.UUID) (*types.TravelTipsResponse, error)
	GenerateTips(ctx context.Context, userID, tripID uuid.UUID) (*types.GenerateResult, error)
}

type ServiceImpl struct {
	repo        Repository
	tripRepo    trip.Repository
	aiClient    completions.Client
	logger      *slog.Logger
	generations singleflight.Group
}

func NewService(repo Repository, tripRepo trip.Repository, aiClient completions.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		tripRepo: tripRepo,
		aiClient: aiClient,
		logger:   logger,
	}
}

func (s *ServiceImpl) GetTips(ctx context.Context, userID, tripID uuid.UUID) (*types.TravelTipsResponse, error) {
	ctx, span := otel.Tracer("TipsService").Start(ctx, "GetTips")
	defer span.End()

	if _, err := s.tripRepo.Get(ctx, userID, tripID); err != nil {
		return nil, err
	}

	tips, err := s.repo.GetOrCreateTips(ctx, tripID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListTips(ctx, tips.ID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]types.TipItem)
	for _, it := range items {
		display := types.TipCategoryDisplay(it.Category)
		grouped[display] = append(grouped[display], it)
	}

	return &types.TravelTipsResponse{Tips: *tips, TipsByCategory: grouped}, nil
}

// GenerateTips asks the completion provider for travel tips and replaces the
// previous set wholesale. Tips carry no user edits, so nothing needs to
// survive regeneration. Concurrent requests for the same trip share one
// generation.
func (s *ServiceImpl) GenerateTips(ctx context.Context, userID, tripID uuid.UUID) (*types.GenerateResult, error) {
	ctx, span := otel.Tracer("TipsService").Start(ctx, "GenerateTips")
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
	metrics.Get().RecordGeneration(ctx, "tips", metrics.Outcome(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return result.(*types.GenerateResult), nil
}

func (s *ServiceImpl) generate(ctx context.Context, t *types.Trip) (*types.GenerateResult, error) {
	l := s.logger.With(slog.String("method", "GenerateTips"), slog.String("tripID", t.ID.String()))

	raw, err := s.aiClient.ChatCompletion(ctx, []completions.Message{
		{Role: completions.RoleSystem, Content: systemPrompt},
		{Role: completions.RoleUser, Content: buildPrompt(t)},
	}, promptTemperature, promptMaxTokens)
	if err != nil {
		return nil, err
	}

	obj, err := airesponse.Recover(raw, airesponse.CategoriesShape("name", "items"))
	if err != nil {
		l.ErrorContext(ctx, "Could not recover travel tips from model output", slog.Any("error", err))
		return nil, err
	}

	var items []types.TipItem
	for _, cat := range airesponse.Categories(obj) {
		code := airesponse.NormalizeCategory(cat.Name, types.TipCategoryChoices, string(types.TipCategoryGeneral))
		for _, raw := range cat.Items {
			content := airesponse.StringField(raw, "tip")
			if content == "" {
				l.WarnContext(ctx, "Skipping tip with no text", slog.String("category", cat.Name))
				continue
			}
			items = append(items, types.TipItem{
				Category: types.TipCategory(code),
				Content:  content,
			})
		}
	}

	tips, err := s.repo.GetOrCreateTips(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.ReplaceTips(ctx, tips.ID, items)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "Travel tips generated", slog.Int("tips_created", created))
	return &types.GenerateResult{
		ItemsCreated: created,
		Message:      "Travel tips generated successfully",
	}, nil
}
