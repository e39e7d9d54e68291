// Package models содержит доменные структуры маркетплейса: учётные записи,
// каталог планов, записи подписок и события жизненного цикла,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли учётных записей.
const (
	RoleAdmin      = "admin"
	RoleReseller   = "reseller"
	RoleStoreOwner = "store_owner"
)

// Типы аккаунтов в каталоге планов. Админ планов не имеет.
const (
	AccountTypeReseller   = "reseller"
	AccountTypeStoreOwner = "store_owner"
)

// User представляет учётную запись маркетплейса вместе со снимком квот.
// Счётчики промо-слотов ведутся только для владельцев магазинов,
// счётчик сканов — только для реселлеров; отдельного счётчика
// "использованных" сканов в модели нет.
type User struct {
	UID             string     // Уникальный идентификатор
	Email           string     // Электронная почта (уникальная)
	FullName        string     // Полное имя
	StoreName       *string    // Название магазина (только store_owner)
	Role            string     // admin, reseller или store_owner
	SubscriptionUID *string    // Ссылка на текущую запись подписки
	SubscriptionEnd *time.Time // Момент истечения оплаченного периода
	TotalPromotions int        // Всего промо-слотов по тарифу
	UsedPromotions  int        // Использовано промо-слотов
	TotalScans      int        // Всего сканов по тарифу
}

// AccountTypeForRole возвращает тип аккаунта каталога планов для роли.
// Для админа тип не определён — вторым значением возвращается false.
func AccountTypeForRole(role string) (string, bool) {
	switch role {
	case RoleReseller:
		return AccountTypeReseller, true
	case RoleStoreOwner:
		return AccountTypeStoreOwner, true
	default:
		return "", false
	}
}

// SubscriptionExpired сообщает, истёк ли оплаченный период к моменту now.
// Отсутствие даты окончания трактуется как истёкший период: активность
// всегда выводится из subscription_end_time, а не из кэшированных счётчиков.
func (u *User) SubscriptionExpired(now time.Time) bool {
	return u.SubscriptionEnd == nil || !u.SubscriptionEnd.After(now)
}
