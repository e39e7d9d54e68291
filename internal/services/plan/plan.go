// Package plan содержит бизнес-логику каталога планов: выдачу каталога
// с учётом роли запрашивающего и админское обновление тарифов.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Ключи кеша каталога по области видимости.
const (
	cacheKeyAll      = "plans:all"
	cacheKeyReseller = "plans:reseller"
)

// Repository определяет методы для работы с каталогом планов в хранилище.
type Repository interface {
	// ListPlans возвращает весь каталог.
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	// ListPlansByType возвращает планы одного типа аккаунта.
	ListPlansByType(ctx context.Context, accountType string) ([]*models.Plan, error)
	// UpsertPlan вставляет либо обновляет запись каталога.
	UpsertPlan(ctx context.Context, plan models.Plan) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику каталога планов с кешированием чтений.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый Service каталога планов.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает каталог планов с учётом роли запрашивающего:
// админ видит весь каталог, реселлер — только планы своего типа.
// У владельца магазина отдельного пути к каталогу нет — тариф он
// указывает только при оформлении подписки.
func (s *Service) List(ctx context.Context, requesterRole string) ([]*models.Plan, error) {
	const op = "services.plan.List"

	var cacheKey string
	switch requesterRole {
	case models.RoleAdmin:
		cacheKey = cacheKeyAll
	case models.RoleReseller:
		cacheKey = cacheKeyReseller
	default:
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	var cached []*models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	var plans []*models.Plan
	if requesterRole == models.RoleAdmin {
		plans, err = s.repo.ListPlans(ctx)
	} else {
		plans, err = s.repo.ListPlansByType(ctx, models.AccountTypeReseller)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(cacheKey, plans, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", slog.String("key", cacheKey), sl.Err(err))
	}
	return plans, nil
}

// Upsert выполняет админское массовое обновление каталога. Операция
// идемпотентна по ключу (тип аккаунта, тариф). Возвращает каталог после
// обновления.
func (s *Service) Upsert(ctx context.Context, requesterRole string, req models.DummyUpsertPlans) ([]*models.Plan, error) {
	const op = "services.plan.Upsert"

	if requesterRole != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	for _, tier := range req.Tiers {
		// Границы продублированы из тегов валидатора: сервис не должен
		// зависеть от того, что HTTP-слой уже проверил запрос.
		if tier.Amount < 0 {
			return nil, fmt.Errorf("%s: amount must be non-negative: %w", op, apperr.ErrValidation)
		}
		if tier.DurationDays < 1 {
			return nil, fmt.Errorf("%s: duration must be at least one day: %w", op, apperr.ErrValidation)
		}

		plan := models.Plan{
			AccountType:  tier.AccountType,
			Tier:         tier.Tier,
			Amount:       tier.Amount,
			DurationDays: tier.DurationDays,
		}
		if err := s.repo.UpsertPlan(ctx, plan); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	s.log.Info("plan catalog updated", slog.Int("tiers", len(req.Tiers)))

	for _, key := range []string{cacheKeyAll, cacheKeyReseller} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate plans cache", slog.String("key", key), sl.Err(err))
		}
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}
