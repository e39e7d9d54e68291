package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// GetUserByUID возвращает учётную запись по идентификатору.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, full_name, store_name, role, subscription_uid,
			      subscription_end_time, total_promotions, used_promotions, total_scans
			  FROM users WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.User
	if err := row.Scan(&result.UID, &result.Email, &result.FullName, &result.StoreName,
		&result.Role, &result.SubscriptionUID, &result.SubscriptionEnd,
		&result.TotalPromotions, &result.UsedPromotions, &result.TotalScans); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// CreateUser вставляет учётную запись, если записи с таким email ещё нет.
// Возвращает true, если запись была создана. Используется провижинингом.
func (s *Storage) CreateUser(ctx context.Context, user models.User, passwordHash string) (bool, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, full_name, store_name, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (email) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Email, user.FullName, user.StoreName, passwordHash, user.Role)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// UpdateEntitlement записывает снимок счётчиков квот учётной записи.
// Ссылку на подписку и дату окончания не трогает: сверка счётчиков
// чинит дрейф квот, а не историю подписок.
func (s *Storage) UpdateEntitlement(ctx context.Context, userUID string, counters models.EntitlementCounters) error {
	const op = "storage.UpdateEntitlement"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET total_promotions = $1, used_promotions = $2, total_scans = $3, updated_at = now()
			  WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query,
		counters.TotalPromotions, counters.UsedPromotions, counters.TotalScans, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: user %s not found", op, userUID)
	}
	return nil
}
