package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/orderid"
	"github.com/magabrotheeeer/marketplace-backend/internal/metrics"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Число попыток зарезервировать номер заказа, прежде чем сдаться.
const orderIDMaxAttempts = 3

// CreateSubscription атомарно фиксирует оформление подписки: резервирует
// номер заказа в последовательности текущего года, вставляет запись
// подписки и обновляет ссылку, дату окончания и счётчики квот учётной
// записи — всё в одной транзакции. Возвращает запись с заполненным
// номером заказа.
//
// Резервирование номера — атомарный инкремент по ключу года, поэтому
// гонка двух одновременных оформлений закрыта; повтор при нарушении
// уникальности оставлен как страховка на orderIDMaxAttempts попыток,
// после чего возвращается apperr.ErrSequenceExhausted.
func (s *Storage) CreateSubscription(ctx context.Context, entry models.Subscription, counters models.EntitlementCounters) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	for attempt := 1; attempt <= orderIDMaxAttempts; attempt++ {
		created, err := s.createSubscriptionTx(ctx, entry, counters)
		if err == nil {
			return created, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			metrics.OrderIDRetries.Inc()
			continue
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, fmt.Errorf("%s: %w", op, apperr.ErrSequenceExhausted)
}

func (s *Storage) createSubscriptionTx(ctx context.Context, entry models.Subscription, counters models.EntitlementCounters) (*models.Subscription, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	year := entry.StartedAt.Year()
	var seq int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_counters (year, value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET value = order_counters.value + 1
		RETURNING value`, year).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve order sequence: %w", err)
	}
	entry.OrderID = orderid.Format(year, seq)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscriptions (uid, order_id, user_uid, user_name, account_type, tier,
			amount, status, started_at, duration_days,
			cardholder_name, card_expiry_month, card_expiry_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.UID, entry.OrderID, entry.UserUID, entry.UserName, entry.AccountType, entry.Tier,
		entry.Amount, entry.Status, entry.StartedAt, entry.DurationDays,
		entry.CardholderName, entry.CardExpiryMonth, entry.CardExpiryYear)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE users
		SET subscription_uid = $1, subscription_end_time = $2,
		    total_promotions = $3, used_promotions = $4, total_scans = $5, updated_at = now()
		WHERE uid = $6`,
		entry.UID, entry.EndsAt(),
		counters.TotalPromotions, counters.UsedPromotions, counters.TotalScans, entry.UserUID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user entitlement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user %s not found", entry.UserUID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return &entry, nil
}

// CancelSubscription атомарно отменяет подписку: помечает запись
// статусом cancelled, очищает ссылку и дату окончания у учётной записи
// и обнуляет счётчики квот. Запись подписки остаётся в истории.
func (s *Storage) CancelSubscription(ctx context.Context, subscriptionUID, userUID string) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE uid = $2`,
		models.StatusCancelled, subscriptionUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrSubscriptionNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET subscription_uid = NULL, subscription_end_time = NULL,
		    total_promotions = 0, used_promotions = 0, total_scans = 0, updated_at = now()
		WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	return nil
}

// GetSubscriptionByUID возвращает запись подписки по идентификатору.
func (s *Storage) GetSubscriptionByUID(ctx context.Context, uid string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, order_id, user_uid, user_name, account_type, tier, amount, status,
			      started_at, duration_days, cardholder_name, card_expiry_month, card_expiry_year
			  FROM subscriptions WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.Subscription
	if err := row.Scan(&result.UID, &result.OrderID, &result.UserUID, &result.UserName,
		&result.AccountType, &result.Tier, &result.Amount, &result.Status,
		&result.StartedAt, &result.DurationDays,
		&result.CardholderName, &result.CardExpiryMonth, &result.CardExpiryYear); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListSubscriptions возвращает историю подписок пользователя,
// новые записи первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, order_id, user_uid, user_name, account_type, tier, amount, status,
			      started_at, duration_days, cardholder_name, card_expiry_month, card_expiry_year
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY started_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.UID, &item.OrderID, &item.UserUID, &item.UserName,
			&item.AccountType, &item.Tier, &item.Amount, &item.Status,
			&item.StartedAt, &item.DurationDays,
			&item.CardholderName, &item.CardExpiryMonth, &item.CardExpiryYear); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllSubscriptions возвращает все записи подписок с пагинацией.
func (s *Storage) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, order_id, user_uid, user_name, account_type, tier, amount, status,
			      started_at, duration_days, cardholder_name, card_expiry_month, card_expiry_year
			  FROM subscriptions
			  ORDER BY started_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.UID, &item.OrderID, &item.UserUID, &item.UserName,
			&item.AccountType, &item.Tier, &item.Amount, &item.Status,
			&item.StartedAt, &item.DurationDays,
			&item.CardholderName, &item.CardExpiryMonth, &item.CardExpiryYear); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
