package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// ListPlans возвращает весь каталог планов.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT account_type, tier, amount, duration_days, updated_at
			  FROM plans
			  ORDER BY account_type, tier`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var item models.Plan
		if err := rows.Scan(&item.AccountType, &item.Tier, &item.Amount,
			&item.DurationDays, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPlansByType возвращает планы одного типа аккаунта.
func (s *Storage) ListPlansByType(ctx context.Context, accountType string) ([]*models.Plan, error) {
	const op = "storage.ListPlansByType"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT account_type, tier, amount, duration_days, updated_at
			  FROM plans
			  WHERE account_type = $1
			  ORDER BY tier`
	rows, err := s.DB.QueryContext(ctx, query, accountType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var item models.Plan
		if err := rows.Scan(&item.AccountType, &item.Tier, &item.Amount,
			&item.DurationDays, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan возвращает запись каталога по точному совпадению пары
// (тип аккаунта, тариф).
func (s *Storage) GetPlan(ctx context.Context, accountType, tier string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT account_type, tier, amount, duration_days, updated_at
			  FROM plans
			  WHERE account_type = $1 AND tier = $2`
	row := s.DB.QueryRowContext(ctx, query, accountType, tier)

	var result models.Plan
	if err := row.Scan(&result.AccountType, &result.Tier, &result.Amount,
		&result.DurationDays, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpsertPlan вставляет либо обновляет запись каталога по ключу
// (тип аккаунта, тариф). Операция идемпотентна.
func (s *Storage) UpsertPlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.UpsertPlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (account_type, tier, amount, duration_days, updated_at)
			  VALUES ($1, $2, $3, $4, now())
			  ON CONFLICT (account_type, tier)
			  DO UPDATE SET amount = EXCLUDED.amount, duration_days = EXCLUDED.duration_days, updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query,
		plan.AccountType, plan.Tier, plan.Amount, plan.DurationDays); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SeedPlan вставляет запись каталога, не трогая существующую.
// Возвращает true, если запись была создана. Используется провижинингом.
func (s *Storage) SeedPlan(ctx context.Context, plan models.Plan) (bool, error) {
	const op = "storage.SeedPlan"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (account_type, tier, amount, duration_days, updated_at)
			  VALUES ($1, $2, $3, $4, now())
			  ON CONFLICT (account_type, tier) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query,
		plan.AccountType, plan.Tier, plan.Amount, plan.DurationDays)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}
