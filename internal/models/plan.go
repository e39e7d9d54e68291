package models

import "time"

// Тарифы каталога планов.
const (
	TierOne   = "tier1"
	TierTwo   = "tier2"
	TierThree = "tier3"
)

// Plan — запись каталога планов, уникальная по паре (тип аккаунта, тариф).
// Записи создаются при провижининге, изменяются только админом и никогда
// не удаляются.
type Plan struct {
	AccountType  string    // reseller или store_owner
	Tier         string    // tier1, tier2 или tier3
	Amount       float64   // Стоимость, >= 0
	DurationDays int       // Длительность в днях, >= 1
	UpdatedAt    time.Time // Момент последнего изменения
}

// DummyPlan используется для приёма одной записи каталога из JSON-запроса
// админского обновления тарифов.
type DummyPlan struct {
	AccountType  string  `json:"type" validate:"required,oneof=reseller store_owner"` // Тип аккаунта
	Tier         string  `json:"tier" validate:"required,oneof=tier1 tier2 tier3"`    // Тариф
	Amount       float64 `json:"amount" validate:"gte=0"`                             // Стоимость (>= 0)
	DurationDays int     `json:"duration" validate:"required,gte=1"`                  // Длительность в днях (>= 1)
}

// DummyUpsertPlans — JSON-тело запроса на массовое обновление каталога.
type DummyUpsertPlans struct {
	Tiers []DummyPlan `json:"tiers" validate:"required,min=1,dive"` // Список записей каталога
}

// PlanView — представление записи каталога в ответе API.
type PlanView struct {
	Amount       float64 `json:"amount"`
	DurationDays int     `json:"duration"`
}

// GroupPlans раскладывает плоский список планов в двухуровневую структуру
// тип аккаунта -> тариф, в том виде, в котором каталог отдаётся клиентам.
func GroupPlans(plans []*Plan) map[string]map[string]PlanView {
	grouped := make(map[string]map[string]PlanView)
	for _, p := range plans {
		if _, ok := grouped[p.AccountType]; !ok {
			grouped[p.AccountType] = make(map[string]PlanView)
		}
		grouped[p.AccountType][p.Tier] = PlanView{
			Amount:       p.Amount,
			DurationDays: p.DurationDays,
		}
	}
	return grouped
}
