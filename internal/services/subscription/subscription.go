// Package subscription содержит бизнес-логику жизненного цикла подписки:
// оформление, отмену, чтение истории и админскую сверку счётчиков квот.
//
// Состояние подписки выводится лениво: активной считается учётная
// запись, у которой выставлена ссылка на запись подписки, дата окончания
// в будущем и статус записи completed. Фонового процесса, снимающего
// истёкшие подписки, нет — истёкшие счётчики чинит следующая операция
// либо админская сверка.
package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/metrics"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	"github.com/magabrotheeeer/marketplace-backend/internal/services/entitlement"
)

// Repository определяет методы хранилища, нужные жизненному циклу подписки.
type Repository interface {
	// GetUserByUID возвращает учётную запись по идентификатору.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	// GetPlan возвращает запись каталога по паре (тип аккаунта, тариф).
	GetPlan(ctx context.Context, accountType, tier string) (*models.Plan, error)
	// GetSubscriptionByUID возвращает запись подписки.
	GetSubscriptionByUID(ctx context.Context, uid string) (*models.Subscription, error)
	// CreateSubscription атомарно фиксирует оформление подписки.
	CreateSubscription(ctx context.Context, entry models.Subscription, counters models.EntitlementCounters) (*models.Subscription, error)
	// CancelSubscription атомарно отменяет подписку.
	CancelSubscription(ctx context.Context, subscriptionUID, userUID string) error
	// UpdateEntitlement записывает снимок счётчиков квот.
	UpdateEntitlement(ctx context.Context, userUID string, counters models.EntitlementCounters) error
	// ListSubscriptions возвращает историю подписок пользователя.
	ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error)
	// ListAllSubscriptions возвращает все записи подписок с пагинацией.
	ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
}

// Notifier публикует события жизненного цикла для внешнего эмиттера
// уведомлений.
type Notifier interface {
	Publish(ctx context.Context, event models.Event) error
}

// Service реализует бизнес-логику жизненного цикла подписки.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый Service жизненного цикла подписки.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Subscribe оформляет подписку на тариф. Повторное оформление при
// действующей подписке допустимо и целиком замещает прежнюю квоту:
// без переноса остатка и без суммирования — использованные слоты
// обнуляются.
func (s *Service) Subscribe(ctx context.Context, userUID string, req models.DummySubscribe) (*models.Subscription, error) {
	const op = "services.subscription.Subscribe"

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accountType, ok := models.AccountTypeForRole(user.Role)
	if !ok {
		// Админ подписок не имеет.
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	planConfig, err := s.repo.GetPlan(ctx, accountType, req.Tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counters, err := entitlement.CountersFor(user.Role, req.Tier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry := models.Subscription{
		UID:             uuid.New().String(),
		UserUID:         user.UID,
		UserName:        user.FullName,
		AccountType:     accountType,
		Tier:            req.Tier,
		Amount:          planConfig.Amount,
		Status:          models.StatusCompleted,
		StartedAt:       s.now().UTC(),
		DurationDays:    planConfig.DurationDays,
		CardholderName:  req.PaymentMethod.CardholderName,
		CardExpiryMonth: req.PaymentMethod.ExpiryMonth,
		CardExpiryYear:  req.PaymentMethod.ExpiryYear,
	}

	created, err := s.repo.CreateSubscription(ctx, entry, counters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription created",
		slog.String("order_id", created.OrderID),
		slog.String("tier", created.Tier),
		slog.String("payment_method", req.PaymentMethod.MaskedSummary()),
	)
	metrics.LifecycleEvents.WithLabelValues(models.EventSubscribed).Inc()

	s.publish(ctx, models.Event{
		UserUID:  user.UID,
		Kind:     models.EventSubscribed,
		Content:  fmt.Sprintf("Subscribed to %s plan until %s.", created.Tier, created.EndsAt().Format("2006-01-02")),
		Category: accountType,
	})

	return created, nil
}

// Cancel отменяет действующую подписку. Повторная отмена не идемпотентна:
// второй вызов подряд завершается apperr.ErrNoActiveSubscription.
func (s *Service) Cancel(ctx context.Context, userUID string) error {
	const op = "services.subscription.Cancel"

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.Role == models.RoleAdmin {
		return fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	if user.SubscriptionUID == nil {
		return fmt.Errorf("%s: %w", op, apperr.ErrNoActiveSubscription)
	}

	if err := s.repo.CancelSubscription(ctx, *user.SubscriptionUID, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription cancelled", slog.String("user_uid", user.UID))
	metrics.LifecycleEvents.WithLabelValues(models.EventCancelled).Inc()

	accountType, _ := models.AccountTypeForRole(user.Role)
	s.publish(ctx, models.Event{
		UserUID:  user.UID,
		Kind:     models.EventCancelled,
		Content:  "Your subscription has been cancelled.",
		Category: accountType,
	})
	return nil
}

// ManageCounts — админская сверка счётчиков квот. Пересчитывает снимок
// из тарифа и статуса текущей записи подписки независимо от потоков
// оформления и отмены; без действующей completed-подписки счётчики
// безусловно обнуляются.
func (s *Service) ManageCounts(ctx context.Context, targetUID string) (models.EntitlementCounters, error) {
	const op = "services.subscription.ManageCounts"

	user, err := s.repo.GetUserByUID(ctx, targetUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, apperr.ErrUserNotFound)
		}
		return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, err)
	}
	if user.Role == models.RoleAdmin {
		return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	var current *models.Subscription
	if user.SubscriptionUID != nil {
		current, err = s.repo.GetSubscriptionByUID(ctx, *user.SubscriptionUID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	active := current != nil &&
		current.Status == models.StatusCompleted &&
		!user.SubscriptionExpired(s.now())

	var counters models.EntitlementCounters
	kind := models.EventEntitlementReset
	if active {
		counters, err = entitlement.Reconcile(user.Role, current.Tier, user.UsedPromotions)
		if err != nil {
			return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, err)
		}
		kind = models.EventEntitlementUpdated
	} else {
		counters = entitlement.Reset()
	}

	if err := s.repo.UpdateEntitlement(ctx, user.UID, counters); err != nil {
		return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("entitlement reconciled",
		slog.String("user_uid", user.UID),
		slog.String("kind", kind),
	)
	metrics.LifecycleEvents.WithLabelValues(kind).Inc()

	accountType, _ := models.AccountTypeForRole(user.Role)
	content := "Your entitlement counters have been reset."
	if kind == models.EventEntitlementUpdated {
		content = "Your entitlement counters have been updated."
	}
	s.publish(ctx, models.Event{
		UserUID:  user.UID,
		Kind:     kind,
		Content:  content,
		Category: accountType,
	})
	return counters, nil
}

// List возвращает историю подписок: админ видит все записи с пагинацией,
// остальные роли — только свои.
func (s *Service) List(ctx context.Context, userUID, role string, limit, offset int) ([]*models.Subscription, error) {
	const op = "services.subscription.List"

	var entries []*models.Subscription
	var err error
	if role == models.RoleAdmin {
		entries, err = s.repo.ListAllSubscriptions(ctx, limit, offset)
	} else {
		entries, err = s.repo.ListSubscriptions(ctx, userUID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// publish отправляет событие эмиттеру уведомлений после фиксации
// состояния. Публикация best-effort: её сбой не откатывает переход.
func (s *Service) publish(ctx context.Context, event models.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish lifecycle event",
			slog.String("kind", event.Kind),
			slog.String("user_uid", event.UserUID),
			sl.Err(err),
		)
	}
}
