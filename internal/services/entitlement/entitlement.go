// Package entitlement содержит правила пересчёта квот: таблицу лимитов
// по тарифам и вывод снимка счётчиков из роли и тарифа. Функции чистые,
// состояние не хранится.
//
// Квоты несимметричны по ролям: владелец магазина получает промо-слоты
// с отдельным счётчиком использованных, реселлер — только общий лимит
// сканов. Шкала лимитов у обеих ролей одна и та же.
package entitlement

import (
	"fmt"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Лимиты слотов по тарифам; одинаковая шкала для промо-слотов и сканов.
var tierLimits = map[string]int{
	models.TierOne:   20,
	models.TierTwo:   50,
	models.TierThree: 100,
}

// LimitFor возвращает лимит слотов для тарифа.
// Неизвестный тариф — жёсткая ошибка, без умолчаний.
func LimitFor(tier string) (int, error) {
	const op = "entitlement.LimitFor"
	limit, ok := tierLimits[tier]
	if !ok {
		return 0, fmt.Errorf("%s: unknown tier %q: %w", op, tier, apperr.ErrValidation)
	}
	return limit, nil
}

// CountersFor строит снимок счётчиков для свежеоформленной подписки:
// лимит по тарифу, использованные слоты обнулены. Чужие для роли
// счётчики остаются нулями.
func CountersFor(role, tier string) (models.EntitlementCounters, error) {
	const op = "entitlement.CountersFor"

	limit, err := LimitFor(tier)
	if err != nil {
		return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, err)
	}

	switch role {
	case models.RoleStoreOwner:
		return models.EntitlementCounters{TotalPromotions: limit}, nil
	case models.RoleReseller:
		return models.EntitlementCounters{TotalScans: limit}, nil
	default:
		return models.EntitlementCounters{}, fmt.Errorf("%s: role %q holds no entitlement: %w", op, role, apperr.ErrForbidden)
	}
}

// Reconcile строит снимок счётчиков для сверки квот действующей
// подписки: лимит берётся из тарифа, а использованные промо-слоты
// сохраняются, но обрезаются до нового лимита — сверка чинит дрейф,
// а не обнуляет потребление.
func Reconcile(role, tier string, usedPromotions int) (models.EntitlementCounters, error) {
	const op = "entitlement.Reconcile"

	counters, err := CountersFor(role, tier)
	if err != nil {
		return models.EntitlementCounters{}, fmt.Errorf("%s: %w", op, err)
	}
	if role == models.RoleStoreOwner {
		counters.UsedPromotions = min(usedPromotions, counters.TotalPromotions)
	}
	return counters, nil
}

// Reset возвращает нулевой снимок счётчиков — состояние учётной записи
// без действующей подписки.
func Reset() models.EntitlementCounters {
	return models.EntitlementCounters{}
}
