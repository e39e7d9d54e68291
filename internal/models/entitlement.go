package models

// EntitlementCounters — снимок счётчиков квот, записываемый в учётную
// запись одной операцией. Для владельца магазина значимы промо-слоты,
// для реселлера — сканы; чужие для роли поля всегда нули.
type EntitlementCounters struct {
	TotalPromotions int // Всего промо-слотов
	UsedPromotions  int // Использовано промо-слотов
	TotalScans      int // Всего сканов
}

// Event — запись события жизненного цикла подписки, передаваемая
// внешнему эмиттеру уведомлений. Сервис гарантирует одно событие на
// успешный переход состояния; доставку обеспечивает эмиттер.
type Event struct {
	UserUID  string `json:"user_uid"` // Учётная запись, к которой относится событие
	Kind     string `json:"kind"`     // Вид события
	Content  string `json:"content"`  // Текст уведомления
	Category string `json:"category"` // Категория: тип аккаунта
}

// Виды событий жизненного цикла.
const (
	EventSubscribed         = "subscribed"
	EventCancelled          = "cancelled"
	EventEntitlementUpdated = "entitlement_updated"
	EventEntitlementReset   = "entitlement_reset"
)
